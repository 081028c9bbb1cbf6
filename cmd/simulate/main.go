package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/AbstractLogica/acp-tracker/internal/adapters/chain"
	"github.com/AbstractLogica/acp-tracker/internal/adapters/notify"
	"github.com/AbstractLogica/acp-tracker/internal/config"
	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
	"github.com/AbstractLogica/acp-tracker/internal/core/service"
	"github.com/AbstractLogica/acp-tracker/internal/logging"
	"github.com/AbstractLogica/acp-tracker/pkg/version"
)

func main() {
	timeframe := flag.String("timeframe", "daily", "daily, weekly or monthly")
	group := flag.String("group", "", "only run this group")
	configPath := flag.String("config", "", "config file (defaults to ./configs/config.yaml or ./config.yaml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo().String())
		return
	}

	// 1. Load the same configuration as the service
	tf, err := domain.ParseTimeframe(*timeframe)
	if err != nil {
		log.Fatalf("invalid -timeframe: %v", err)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	groups := cfg.DomainGroups()
	if *group != "" {
		groups = filterGroup(groups, *group)
		if len(groups) == 0 {
			log.Fatalf("unknown group %q", *group)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 2. Wire the pipeline with stdout as the only channel
	eth, err := chain.Dial(chain.Config{
		RPCURL:       cfg.Chain.RPCURL,
		TokenAddress: cfg.TokenAddress(),
		MinInterval:  cfg.Gateway.MinInterval,
	}, nil, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer eth.Close()

	windows := service.NewWindowResolver(eth, service.NewBlockTimestampResolver(eth), time.Now)
	pipeline := service.NewGroupPipeline(eth, windows, service.NewAggregator(), nil, logger)
	dispatcher := service.NewDispatcher([]domain.Notifier{notify.NewWriter(os.Stdout)}, nil, logger)
	messages := service.MessageBuilder{Symbol: cfg.Chain.TokenSymbol, ExplorerURL: cfg.Chain.ExplorerURL}
	orchestrator := service.NewScheduleOrchestrator(groups, pipeline, dispatcher, messages, service.ScheduleOptions{}, nil, logger)

	// 3. Run once
	logger.Info("Simulating run", zap.String("timeframe", string(tf)), zap.Int("groups", len(groups)))
	report, err := orchestrator.RunTimeframe(ctx, tf)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}
	if len(report.Summaries) == 0 {
		log.Fatalf("every group failed: %v", report.FailedGroups)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func filterGroup(groups []domain.Group, name string) []domain.Group {
	for _, g := range groups {
		if g.Name == name {
			return []domain.Group{g}
		}
	}
	return nil
}
