// Command backfill rewrites counsellor records whose isApproved flag and
// verificationStatus disagree, or whose status is missing.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/harentsoaR/mindcare-admin-api/internal/bootstrap"
	"github.com/harentsoaR/mindcare-admin-api/internal/config"
	"github.com/harentsoaR/mindcare-admin-api/internal/services"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	dryRun := flag.Bool("dry-run", false, "report drifted records without writing")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall time limit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := bootstrap.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stores, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close(context.Background())

	moderation := services.NewModerationService(stores.Users, nil, logger)
	repaired, err := moderation.RepairDrift(ctx, *dryRun)
	if err != nil {
		logger.Error("backfill stopped", slog.Int("repaired", len(repaired)), slog.Any("error", err))
		_ = stores.Close(context.Background())
		os.Exit(1)
	}
	logger.Info("backfill finished",
		slog.Int("records", len(repaired)),
		slog.Bool("dryRun", *dryRun),
	)
}
