package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tegenaria/internal/admincli"
	"github.com/dmitrijs2005/tegenaria/internal/logging"
	"github.com/dmitrijs2005/tegenaria/internal/server/config"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tegenaria/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	os.Exit(run())
}

func run() int {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, "text")

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open error: %v\n", err)
		return 1
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	users := services.NewUserService(db, rm, cfg, logger)
	migrate := func(ctx context.Context) error { return rm.RunMigrations(ctx, db) }

	app := admincli.New(users, migrate, os.Stdin, os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, admincli.ErrUsage) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
