package lock

import (
	"context"
	"sync"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

// MemoryGuard tracks running timeframes within this process.
type MemoryGuard struct {
	mu      sync.Mutex
	running map[domain.Timeframe]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{running: make(map[domain.Timeframe]struct{})}
}

func (g *MemoryGuard) TryAcquire(_ context.Context, tf domain.Timeframe) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.running[tf]; busy {
		return nil, false, nil
	}
	g.running[tf] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, tf)
			g.mu.Unlock()
		})
	}, true, nil
}
