package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
	"github.com/AbstractLogica/acp-tracker/internal/metrics"
)

// GroupPipeline computes one group's ranked summary for a timeframe.
type GroupPipeline struct {
	transfers  domain.TransferSource
	windows    *WindowResolver
	aggregator *Aggregator
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewGroupPipeline(
	transfers domain.TransferSource,
	windows *WindowResolver,
	aggregator *Aggregator,
	m *metrics.Metrics,
	logger *zap.Logger,
) *GroupPipeline {
	return &GroupPipeline{
		transfers:  transfers,
		windows:    windows,
		aggregator: aggregator,
		metrics:    m,
		logger:     logger.With(zap.String("component", "pipeline")),
	}
}

// Run resolves the window once, then aggregates every agent in order. An
// agent whose fetch or decode fails is recorded as failed and the group
// still completes. Only a failure to resolve the window fails the group.
func (p *GroupPipeline) Run(ctx context.Context, tf domain.Timeframe, group domain.Group) (*domain.GroupSummary, error) {
	// 1. Resolve the start block shared by every agent in this run
	fromBlock, err := p.windows.FromBlock(ctx, tf)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start block for %s: %w", tf, err)
	}

	log := p.logger.With(
		zap.String("timeframe", string(tf)),
		zap.String("group", group.Name),
		zap.Uint64("from_block", fromBlock),
	)
	log.Info("Processing group", zap.Int("agents", len(group.Agents)))

	// 2. Aggregate agents one at a time
	results := make([]domain.AgentResult, 0, len(group.Agents))
	for _, agent := range group.Agents {
		results = append(results, p.runAgent(ctx, log, tf, fromBlock, agent))
	}

	// 3. Rank
	return &domain.GroupSummary{
		Group:     group.Name,
		Timeframe: tf,
		FromBlock: fromBlock,
		Results:   Rank(results),
	}, nil
}

func (p *GroupPipeline) runAgent(ctx context.Context, log *zap.Logger, tf domain.Timeframe, fromBlock uint64, agent domain.Agent) domain.AgentResult {
	log = log.With(zap.String("agent", agent.Name), zap.String("address", agent.Address.Hex()))

	events, err := p.transfers.TransferLogs(ctx, agent.Address, fromBlock)
	if err != nil {
		return p.failed(log, tf, agent, fmt.Errorf("failed to fetch transfers: %w", err))
	}

	raw, formatted, err := p.aggregator.Aggregate(events)
	if err != nil {
		return p.failed(log, tf, agent, fmt.Errorf("failed to aggregate transfers: %w", err))
	}

	log.Debug("Aggregated agent", zap.Int("logs", len(events)), zap.String("total", formatted))
	return domain.NewOKResult(agent, raw, formatted)
}

func (p *GroupPipeline) failed(log *zap.Logger, tf domain.Timeframe, agent domain.Agent, err error) domain.AgentResult {
	log.Warn("Agent failed", zap.Error(err))
	p.metrics.AgentFailed(string(tf), agent.Group)
	return domain.NewFailedResult(agent, err)
}
