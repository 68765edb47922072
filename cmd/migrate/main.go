package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/jobboard/internal/config"
	"github.com/smallbiznis/jobboard/internal/repository"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	target := flag.Int64("target", 0, "target version for down command (optional)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	dsn, err := config.LoadDatabaseURL()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	migrator, err := repository.NewMigrator(dsn, logger)
	if err != nil {
		logger.Fatal("configure migrator", zap.Error(err))
	}

	switch *command {
	case "up":
		err = migrator.Up(ctx)
	case "status":
		err = migrator.Status(ctx)
	case "down":
		err = migrator.Down(ctx, *target)
	default:
		logger.Error("unsupported command", zap.String("command", *command))
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migration command failed", zap.String("command", *command), zap.Error(err))
		os.Exit(1)
	}

	logger.Info("migration command completed", zap.String("command", *command))
}
