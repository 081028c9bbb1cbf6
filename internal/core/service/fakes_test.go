package service

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

const genesisTime = 1_700_000_000

// fakeChain is a synthetic chain with non-decreasing block timestamps.
type fakeChain struct {
	mu         sync.Mutex
	timestamps []uint64
	byNumber   int
	latest     int
	latestErr  error
	blockErr   error

	transfers map[common.Address][]domain.TransferEvent
	failing   map[common.Address]error
	panicking map[common.Address]bool
}

// newFakeChain builds n blocks spaced step seconds apart.
func newFakeChain(n int, step uint64) *fakeChain {
	ts := make([]uint64, n)
	for i := range ts {
		ts[i] = genesisTime + uint64(i)*step
	}
	return &fakeChain{timestamps: ts}
}

func (f *fakeChain) LatestBlock(ctx context.Context) (domain.BlockRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest++
	if f.latestErr != nil {
		return domain.BlockRef{}, f.latestErr
	}
	n := len(f.timestamps) - 1
	return domain.BlockRef{Number: uint64(n), Timestamp: f.timestamps[n]}, nil
}

func (f *fakeChain) BlockByNumber(ctx context.Context, number uint64) (domain.BlockRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byNumber++
	if f.blockErr != nil {
		return domain.BlockRef{}, f.blockErr
	}
	return domain.BlockRef{Number: number, Timestamp: f.timestamps[number]}, nil
}

func (f *fakeChain) TransferLogs(ctx context.Context, recipient common.Address, fromBlock uint64) ([]domain.TransferEvent, error) {
	if f.panicking[recipient] {
		panic("node returned garbage")
	}
	if err := f.failing[recipient]; err != nil {
		return nil, err
	}
	return f.transfers[recipient], nil
}

func (f *fakeChain) calls() (latest, byNumber int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.byNumber
}

// recordingResolver captures the targets it is asked for.
type recordingResolver struct {
	mu      sync.Mutex
	targets []uint64
	block   uint64
	err     error
}

func (r *recordingResolver) Resolve(ctx context.Context, target uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
	return r.block, r.err
}

type fakeNotifier struct {
	name string
	err  error

	mu   sync.Mutex
	sent []domain.Message
}

func (n *fakeNotifier) Name() string { return n.name }

func (n *fakeNotifier) Send(ctx context.Context, msg domain.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *fakeNotifier) messages() []domain.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Message(nil), n.sent...)
}

type fakeGuard struct {
	held     bool
	err      error
	released int
}

func (g *fakeGuard) TryAcquire(ctx context.Context, tf domain.Timeframe) (func(), bool, error) {
	if g.err != nil {
		return nil, false, g.err
	}
	if g.held {
		return nil, false, nil
	}
	return func() { g.released++ }, true, nil
}

// tokens converts a whole number of tokens to 18-decimal base units.
func tokens(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(domain.TokenDecimals), nil))
}

func transfer(amount *big.Int) domain.TransferEvent {
	return domain.TransferEvent{Data: common.LeftPadBytes(amount.Bytes(), 32)}
}

func okResult(name, identity string, position int, whole int64) domain.AgentResult {
	agent := domain.Agent{Name: name, TokenIdentity: identity, Position: position}
	return domain.NewOKResult(agent, tokens(whole), FormatUnits(tokens(whole), domain.TokenDecimals))
}
