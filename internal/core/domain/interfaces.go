package domain

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidTimeframe is a programming defect: static configuration
	// never produces an unknown timeframe.
	ErrInvalidTimeframe = errors.New("invalid timeframe")
	// ErrNotConfigured marks a delivery channel whose settings are missing.
	ErrNotConfigured = errors.New("channel not configured")
	// ErrRunInProgress is returned when a timeframe is already running.
	ErrRunInProgress = errors.New("run already in progress")
	// ErrMalformedLog marks a transfer log without an amount.
	ErrMalformedLog = errors.New("malformed transfer log")
)

// ChainService is the serialized access point to the chain node.
type ChainService interface {
	// LatestBlock returns the node's current "latest" block.
	LatestBlock(ctx context.Context) (BlockRef, error)

	// BlockByNumber returns the block at the given height.
	BlockByNumber(ctx context.Context, number uint64) (BlockRef, error)

	TransferSource
}

// TransferSource fetches an agent's incoming token transfers.
type TransferSource interface {
	// TransferLogs returns the token Transfer logs whose recipient is the
	// given address, from fromBlock to latest. One node call, no paging.
	TransferLogs(ctx context.Context, recipient common.Address, fromBlock uint64) ([]TransferEvent, error)
}

// BlockResolver maps a wall-clock timestamp to a block number.
type BlockResolver interface {
	Resolve(ctx context.Context, targetTimestamp uint64) (uint64, error)
}

// Notifier delivers a message to one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// RunGuard prevents overlapping runs of the same timeframe.
type RunGuard interface {
	// TryAcquire returns ok=false when the timeframe is already held.
	TryAcquire(ctx context.Context, tf Timeframe) (release func(), ok bool, err error)
}
