// Command migrate manages the Postgres schema.
//
//	migrate [up|down|version]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindwell-backend/internal/shared/config"
	"mindwell-backend/internal/shared/storage/db"
	"mindwell-backend/internal/shared/telemetry"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	cfg := config.Load()
	telemetry.Init(cfg.Env)
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := run(ctx, cfg.DatabaseURL, cmd); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": cmd, "error": err.Error()})
		telemetry.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, cmd string) error {
	pool, err := db.Open(ctx, databaseURL, db.ProfileMigrate)
	if err != nil {
		return err
	}
	defer pool.Close()

	switch cmd {
	case "up":
		return db.RunMigrations(ctx, pool)
	case "down":
		if err := db.RollbackMigration(ctx, pool); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q (want up, down or version)", cmd)
	}

	version, err := db.MigrationVersion(ctx, pool)
	if err != nil {
		return err
	}
	telemetry.Info("migrate.version", map[string]any{"command": cmd, "version": version})
	return nil
}
