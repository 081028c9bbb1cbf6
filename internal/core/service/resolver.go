package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

// BlockTimestampResolver finds the first block at or after a timestamp.
type BlockTimestampResolver struct {
	chain domain.ChainService
}

func NewBlockTimestampResolver(chain domain.ChainService) *BlockTimestampResolver {
	return &BlockTimestampResolver{chain: chain}
}

// Resolve returns the smallest block number whose timestamp is >= target,
// searching [0, latest]. Targets at or past the latest block's timestamp
// return the latest block without searching. Nothing is cached between
// calls: latest is fetched every time.
func (r *BlockTimestampResolver) Resolve(ctx context.Context, target uint64) (uint64, error) {
	latest, err := r.chain.LatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}

	if target >= latest.Timestamp {
		return latest.Number, nil
	}

	low, high := uint64(0), latest.Number
	for low < high {
		mid := low + (high-low)/2
		block, err := r.chain.BlockByNumber(ctx, mid)
		if err != nil {
			return 0, fmt.Errorf("failed to get block %d: %w", mid, err)
		}
		if block.Timestamp < target {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low, nil
}

// StartOfMonthUTC is 00:00:00 UTC on the 1st of now's UTC month, in epoch seconds.
func StartOfMonthUTC(now time.Time) uint64 {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return uint64(start.Unix())
}

// PriorUTCDate is midnight UTC of the calendar day before t.
func PriorUTCDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day()-1, 0, 0, 0, 0, time.UTC)
}

// WindowResolver turns a timeframe into the first block of its window.
//
// Daily and Weekly are rolling: the target is the chain's latest block
// timestamp minus the window. Monthly is calendar aligned to the wall clock
// and ignores the chain's notion of now. Both behaviours are intentional.
type WindowResolver struct {
	chain    domain.ChainService
	resolver domain.BlockResolver
	now      func() time.Time
}

func NewWindowResolver(chain domain.ChainService, resolver domain.BlockResolver, now func() time.Time) *WindowResolver {
	if now == nil {
		now = time.Now
	}
	return &WindowResolver{chain: chain, resolver: resolver, now: now}
}

// FromBlock resolves the start block for tf.
func (w *WindowResolver) FromBlock(ctx context.Context, tf domain.Timeframe) (uint64, error) {
	if err := tf.Validate(); err != nil {
		return 0, err
	}

	window, rolling := tf.RollingWindow()
	if !rolling {
		return w.resolver.Resolve(ctx, StartOfMonthUTC(w.now()))
	}

	latest, err := w.chain.LatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	var target uint64
	if latest.Timestamp > window {
		target = latest.Timestamp - window
	}
	return w.resolver.Resolve(ctx, target)
}
