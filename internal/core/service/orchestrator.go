package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
	"github.com/AbstractLogica/acp-tracker/internal/metrics"
)

// Default calendar triggers, evaluated in UTC.
const (
	DailySpec   = "0 0 * * *"
	WeeklySpec  = "0 0 * * 1"
	MonthlySpec = "0 0 1 * *"
)

// ScheduleOptions configures the orchestrator's triggers.
type ScheduleOptions struct {
	Specs        map[domain.Timeframe]string
	RunOnStartup bool
	// Guard, when set, skips a trigger whose timeframe is still running.
	Guard domain.RunGuard
	Now   func() time.Time
}

// DefaultSchedule returns the standard UTC triggers with startup runs on.
func DefaultSchedule() ScheduleOptions {
	return ScheduleOptions{
		Specs: map[domain.Timeframe]string{
			domain.Daily:   DailySpec,
			domain.Weekly:  WeeklySpec,
			domain.Monthly: MonthlySpec,
		},
		RunOnStartup: true,
	}
}

// RunReport is what one timeframe run produced.
type RunReport struct {
	Timeframe domain.Timeframe
	Started   time.Time
	// Summaries holds the groups that completed, in configuration order.
	Summaries    []*domain.GroupSummary
	FailedGroups []string
	// Total is only set for Daily runs.
	Total *domain.DedupedTotal
}

// ScheduleOrchestrator runs every group for a timeframe on calendar triggers.
type ScheduleOrchestrator struct {
	groups     []domain.Group
	pipeline   *GroupPipeline
	dispatcher *Dispatcher
	messages   MessageBuilder
	opts       ScheduleOptions
	cron       *cron.Cron
	metrics    *metrics.Metrics
	logger     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduleOrchestrator(
	groups []domain.Group,
	pipeline *GroupPipeline,
	dispatcher *Dispatcher,
	messages MessageBuilder,
	opts ScheduleOptions,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ScheduleOrchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger = logger.With(zap.String("component", "scheduler"))
	return &ScheduleOrchestrator{
		groups:     groups,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		messages:   messages,
		opts:       opts,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{logger.Sugar()})),
		),
		metrics: m,
		logger:  logger,
	}
}

// Start registers the triggers, starts the scheduler and, if enabled, kicks
// off one run per timeframe (daily, weekly, monthly in that order). It does
// not block.
func (o *ScheduleOrchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	for _, tf := range domain.Timeframes {
		spec, ok := o.opts.Specs[tf]
		if !ok || spec == "" {
			continue
		}
		if _, err := o.cron.AddFunc(spec, func() { o.trigger(ctx, tf) }); err != nil {
			cancel()
			return fmt.Errorf("failed to schedule %s run %q: %w", tf, spec, err)
		}
		o.logger.Info("Scheduled timeframe", zap.String("timeframe", string(tf)), zap.String("spec", spec))
	}

	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()

	o.cron.Start()
	o.logger.Info("Scheduler started")

	if o.opts.RunOnStartup {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for _, tf := range domain.Timeframes {
				if ctx.Err() != nil {
					return
				}
				o.trigger(ctx, tf)
			}
		}()
	}
	return nil
}

// Stop cancels in-flight runs and waits for them to return, or for ctx.
func (o *ScheduleOrchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Unlock()

	cronDone := o.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler did not stop in time: %w", ctx.Err())
	}
}

func (o *ScheduleOrchestrator) trigger(ctx context.Context, tf domain.Timeframe) {
	if _, err := o.RunTimeframe(ctx, tf); err != nil && !errors.Is(err, domain.ErrRunInProgress) {
		o.logger.Error("Timeframe run failed", zap.String("timeframe", string(tf)), zap.Error(err))
	}
}

// RunTimeframe runs every group for tf in parallel and dispatches each
// group's summary as it completes. A failing group is logged and left out.
// Daily runs then dedupe the union of all completed groups and dispatch the
// total. An unknown timeframe returns ErrInvalidTimeframe.
func (o *ScheduleOrchestrator) RunTimeframe(ctx context.Context, tf domain.Timeframe) (*RunReport, error) {
	log := o.logger.With(zap.String("timeframe", string(tf)))

	if err := tf.Validate(); err != nil {
		o.metrics.ObserveRun(string(tf), "invalid", 0)
		return nil, err
	}

	if o.opts.Guard != nil {
		release, ok, err := o.opts.Guard.TryAcquire(ctx, tf)
		switch {
		case err != nil:
			log.Warn("Run guard unavailable, running unguarded", zap.Error(err))
		case !ok:
			log.Warn("Previous run still in progress, skipping trigger")
			o.metrics.ObserveRun(string(tf), "skipped", 0)
			return nil, fmt.Errorf("%w: %s", domain.ErrRunInProgress, tf)
		default:
			defer release()
		}
	}

	report := &RunReport{Timeframe: tf, Started: o.opts.Now()}
	log.Info("Starting run", zap.Int("groups", len(o.groups)))

	summaries := make([]*domain.GroupSummary, len(o.groups))
	var eg errgroup.Group
	for i, group := range o.groups {
		eg.Go(func() error {
			summaries[i] = o.runGroup(ctx, tf, group)
			return nil
		})
	}
	_ = eg.Wait()

	for i, s := range summaries {
		if s == nil {
			report.FailedGroups = append(report.FailedGroups, o.groups[i].Name)
			continue
		}
		report.Summaries = append(report.Summaries, s)
	}

	if tf == domain.Daily {
		var union []domain.AgentResult
		for _, s := range report.Summaries {
			union = append(union, InConfigOrder(s.Results)...)
		}
		total := Dedupe(union)
		total.Date = PriorUTCDate(report.Started)
		report.Total = &total

		log.Info("Daily total",
			zap.String("total", total.Total.StringFixed(valuePlaces)),
			zap.Int("unique_agents", len(total.Unique)))
		o.dispatcher.Dispatch(ctx, o.messages.Total(total))
	}

	outcome := "ok"
	if len(report.FailedGroups) > 0 {
		outcome = "partial"
	}
	took := o.opts.Now().Sub(report.Started)
	o.metrics.ObserveRun(string(tf), outcome, took)
	log.Info("Run finished",
		zap.Int("groups_ok", len(report.Summaries)),
		zap.Strings("groups_failed", report.FailedGroups),
		zap.Duration("took", took))
	return report, nil
}

// runGroup returns nil when the group failed. A panic inside one group is
// contained to that group.
func (o *ScheduleOrchestrator) runGroup(ctx context.Context, tf domain.Timeframe, group domain.Group) (summary *domain.GroupSummary) {
	log := o.logger.With(zap.String("timeframe", string(tf)), zap.String("group", group.Name))
	defer func() {
		if r := recover(); r != nil {
			log.Error("Group panicked", zap.Any("panic", r))
			o.metrics.GroupFailed(string(tf), group.Name)
			summary = nil
		}
	}()

	s, err := o.pipeline.Run(ctx, tf, group)
	if err != nil {
		log.Error("Group failed", zap.Error(err))
		o.metrics.GroupFailed(string(tf), group.Name)
		return nil
	}
	o.dispatcher.Dispatch(ctx, o.messages.Group(s))
	return s
}

// cronLogger adapts zap to cron's logger so recovered panics are structured.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
