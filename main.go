package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/AbstractLogica/acp-tracker/internal/adapters/chain"
	"github.com/AbstractLogica/acp-tracker/internal/adapters/lock"
	"github.com/AbstractLogica/acp-tracker/internal/adapters/notify"
	"github.com/AbstractLogica/acp-tracker/internal/config"
	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
	"github.com/AbstractLogica/acp-tracker/internal/core/service"
	"github.com/AbstractLogica/acp-tracker/internal/logging"
	"github.com/AbstractLogica/acp-tracker/internal/metrics"
	"github.com/AbstractLogica/acp-tracker/pkg/version"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tracker",
		zap.String("version", version.GetBuildInfo().String()),
		zap.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Tracker exited with error", zap.Error(err))
	}
	logger.Info("Tracker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	eth, err := chain.Dial(chain.Config{
		RPCURL:       cfg.Chain.RPCURL,
		TokenAddress: cfg.TokenAddress(),
		MinInterval:  cfg.Gateway.MinInterval,
	}, m, logger)
	if err != nil {
		return err
	}
	defer eth.Close()

	resolver := service.NewBlockTimestampResolver(eth)
	windows := service.NewWindowResolver(eth, resolver, time.Now)
	pipeline := service.NewGroupPipeline(eth, windows, service.NewAggregator(), m, logger)

	notifiers := []domain.Notifier{
		notify.NewDiscord(cfg.Notify.DiscordWebhookURL, cfg.Notify.Timeout, logger),
		notify.NewTelegram(cfg.Notify.TelegramBotToken, cfg.Notify.TelegramChatID, cfg.Notify.Timeout, logger),
	}
	dispatcher := service.NewDispatcher(notifiers, m, logger)

	opts := service.ScheduleOptions{
		Specs:        cfg.Scheduler.Specs(),
		RunOnStartup: cfg.Scheduler.RunOnStartup,
	}
	if cfg.Scheduler.SkipIfRunning {
		guard, closeGuard, err := newRunGuard(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeGuard()
		opts.Guard = guard
	}

	messages := service.MessageBuilder{Symbol: cfg.Chain.TokenSymbol, ExplorerURL: cfg.Chain.ExplorerURL}
	orchestrator := service.NewScheduleOrchestrator(cfg.DomainGroups(), pipeline, dispatcher, messages, opts, m, logger)

	if cfg.Metrics.ListenAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Serving metrics", zap.String("addr", cfg.Metrics.ListenAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	<-ctx.Done()
	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return orchestrator.Stop(shutdownCtx)
}

// newRunGuard prefers the shared Redis guard and falls back to in-process.
func newRunGuard(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.RunGuard, func(), error) {
	if !cfg.Redis.Enabled() {
		return lock.NewMemoryGuard(), func() {}, nil
	}

	client, err := lock.NewRedisClient(ctx, lock.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	guard := lock.NewRedisGuard(client, lock.DefaultKeyPrefix, cfg.Redis.LockTTL, logger)
	return guard, func() { _ = client.Close() }, nil
}
