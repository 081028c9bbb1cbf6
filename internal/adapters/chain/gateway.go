package chain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AbstractLogica/acp-tracker/internal/metrics"
)

// ErrGatewayClosed is returned to callers still queued when the gateway closes.
var ErrGatewayClosed = errors.New("gateway closed")

// Transport is the node API the gateway serializes. *ethclient.Client
// satisfies it.
type Transport interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

type call struct {
	ctx      context.Context
	op       string
	fn       func(ctx context.Context) error
	done     chan error
	enqueued time.Time
}

// Gateway runs every node call on a single worker goroutine, one at a time,
// in arrival order, with at least minInterval between the start of
// consecutive calls. Transport errors are returned unmodified and never
// retried.
type Gateway struct {
	transport Transport
	limiter   *rate.Limiter
	jobs      chan *call
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewGateway starts the gateway worker. Close must be called to stop it.
func NewGateway(transport Transport, minInterval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Gateway {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	g := &Gateway{
		transport: transport,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		jobs:      make(chan *call),
		closed:    make(chan struct{}),
		metrics:   m,
		logger:    logger.With(zap.String("component", "gateway")),
	}
	g.wg.Add(1)
	go g.worker()
	return g
}

// HeaderByNumber fetches a header; nil number means latest.
func (g *Gateway) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	op := "get_block_by_number"
	if number == nil {
		op = "get_latest_block"
	}
	var header *types.Header
	err := g.do(ctx, op, func(ctx context.Context) error {
		h, err := g.transport.HeaderByNumber(ctx, number)
		header = h
		return err
	})
	return header, err
}

// FilterLogs runs one eth_getLogs query.
func (g *Gateway) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := g.do(ctx, "get_logs", func(ctx context.Context) error {
		l, err := g.transport.FilterLogs(ctx, q)
		logs = l
		return err
	})
	return logs, err
}

// Close stops accepting calls. A call already started runs to completion.
func (g *Gateway) Close() {
	g.closeOnce.Do(func() { close(g.closed) })
	g.wg.Wait()
}

func (g *Gateway) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	c := &call{ctx: ctx, op: op, fn: fn, done: make(chan error, 1), enqueued: time.Now()}

	select {
	case g.jobs <- c:
	case <-ctx.Done():
		return ctx.Err()
	case <-g.closed:
		return ErrGatewayClosed
	}

	// Once the worker has taken the call it always answers.
	return <-c.done
}

func (g *Gateway) worker() {
	defer g.wg.Done()

	for {
		select {
		case <-g.closed:
			return
		case c := <-g.jobs:
			g.run(c)
		}
	}
}

func (g *Gateway) run(c *call) {
	if err := c.ctx.Err(); err != nil {
		c.done <- err
		return
	}
	if err := g.limiter.Wait(c.ctx); err != nil {
		c.done <- err
		return
	}

	start := time.Now()
	err := c.fn(c.ctx)
	took := time.Since(start)

	g.metrics.ObserveGatewayCall(c.op, start.Sub(c.enqueued), took, err)
	if err != nil {
		g.logger.Debug("Node call failed", zap.String("operation", c.op), zap.Duration("took", took), zap.Error(err))
	}
	c.done <- err
}
