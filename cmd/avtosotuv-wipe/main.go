// Command avtosotuv-wipe removes every listing, image and directory entry.
// Users are kept and the directory is re-seeded on the next start. It refuses to run without -yes.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"avtosotuv/internal/config"
	applog "avtosotuv/internal/log"
	"avtosotuv/internal/repos"
)

func main() {
	yes := flag.Bool("yes", false, "confirm the wipe")
	flag.Parse()

	cfg := config.Load()
	logger, err := applog.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("[log] %v", err)
	}
	defer func() { _ = applog.Close() }()

	if !*yes {
		logger.Fatal("wipe.refused", zap.String("hint", "pass -yes to delete all listings and services"))
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	var images, cars, services int64
	err = repos.InTx(ctx, db, func(tx *sqlx.Tx) error {
		var err error
		if images, cars, err = repos.NewCarRepo(tx).Purge(ctx); err != nil {
			return err
		}
		services, err = repos.NewServiceRepo(tx).Purge(ctx)
		return err
	})
	if err != nil {
		logger.Fatal("wipe.fail", zap.Error(err))
	}
	logger.Info("wipe.done",
		zap.String("db", cfg.DBDSN),
		zap.Int64("images", images),
		zap.Int64("cars", cars),
		zap.Int64("services", services),
	)
}
