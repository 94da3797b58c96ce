package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/admin"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/notify"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := repomanager.OpenDB(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}

	logger := logging.NewJSONLogger(false)
	m := repomanager.NewPostgresRepositoryManager()
	us := services.NewUserService(db, m, cfg, notify.NewLogNotifier(logger), logger)

	migrate := func(ctx context.Context) error { return m.RunMigrations(ctx, db) }
	return admin.New(us, migrate, os.Stdout).Run(ctx, positional(os.Args[1:]))
}

// positional returns the command and its operand, which come before any
// config flags.
func positional(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			return args[:i]
		}
	}
	return args
}
