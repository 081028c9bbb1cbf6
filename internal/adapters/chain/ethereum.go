package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
	"github.com/AbstractLogica/acp-tracker/internal/metrics"
)

// Config selects the node and the token whose transfers are tracked.
type Config struct {
	RPCURL       string
	TokenAddress common.Address
	MinInterval  time.Duration
}

// EthereumService implements domain.ChainService for EVM chains. Every call
// goes through the rate limited gateway.
type EthereumService struct {
	token   common.Address
	gateway *Gateway
	client  *ethclient.Client
}

// Dial connects to cfg.RPCURL and wraps the client in a gateway.
func Dial(cfg Config, m *metrics.Metrics, logger *zap.Logger) (*EthereumService, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	s := NewEthereumService(client, cfg, m, logger)
	s.client = client
	return s, nil
}

// NewEthereumService wraps an existing transport.
func NewEthereumService(transport Transport, cfg Config, m *metrics.Metrics, logger *zap.Logger) *EthereumService {
	return &EthereumService{
		token:   cfg.TokenAddress,
		gateway: NewGateway(transport, cfg.MinInterval, m, logger),
	}
}

// Close stops the gateway and the underlying connection.
func (s *EthereumService) Close() {
	s.gateway.Close()
	if s.client != nil {
		s.client.Close()
	}
}

func (s *EthereumService) LatestBlock(ctx context.Context) (domain.BlockRef, error) {
	return s.header(ctx, nil)
}

func (s *EthereumService) BlockByNumber(ctx context.Context, number uint64) (domain.BlockRef, error) {
	return s.header(ctx, new(big.Int).SetUint64(number))
}

func (s *EthereumService) header(ctx context.Context, number *big.Int) (domain.BlockRef, error) {
	h, err := s.gateway.HeaderByNumber(ctx, number)
	if err != nil {
		return domain.BlockRef{}, err
	}
	if h == nil || h.Number == nil {
		return domain.BlockRef{}, fmt.Errorf("node returned empty header for block %v", number)
	}
	return domain.BlockRef{Number: h.Number.Uint64(), Timestamp: h.Time}, nil
}

func (s *EthereumService) TransferLogs(ctx context.Context, recipient common.Address, fromBlock uint64) ([]domain.TransferEvent, error) {
	logs, err := s.gateway.FilterLogs(ctx, TransferFilter(s.token, recipient, fromBlock))
	if err != nil {
		return nil, err
	}

	events := make([]domain.TransferEvent, 0, len(logs))
	for _, l := range logs {
		ev, err := DecodeTransfer(l)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
