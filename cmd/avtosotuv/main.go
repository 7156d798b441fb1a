package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"avtosotuv/internal/bot"
	"avtosotuv/internal/config"
	"avtosotuv/internal/events"
	"avtosotuv/internal/http/handlers"
	applog "avtosotuv/internal/log"
	"avtosotuv/internal/repos"
	"avtosotuv/internal/services"
	"avtosotuv/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := applog.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("[log] %v", err)
	}
	defer func() { _ = applog.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	// Images go to S3 when configured, local disk otherwise.
	var store services.ImageStore
	uploadDir := ""
	if cfg.S3Endpoint != "" {
		s3, err := storage.NewS3(ctx, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
		if err != nil {
			logger.Fatal("storage.s3.init", zap.Error(err))
		}
		store = s3
	} else {
		local, err := storage.NewLocal(cfg.UploadDir)
		if err != nil {
			logger.Fatal("storage.local.init", zap.Error(err))
		}
		store = local
		uploadDir = local.Dir()
	}

	var pub events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		n, err := events.NewNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn("events.nats.unavailable", zap.Error(err))
		} else {
			pub = n
		}
	}
	defer pub.Close()

	deps := handlers.NewDeps(db, cfg, store, pub)
	deps.UploadDir = uploadDir
	app := handlers.NewApp(deps)

	if cfg.BotToken != "" {
		b, err := bot.New(cfg.BotToken, cfg.MiniAppURL)
		if err != nil {
			logger.Warn("bot.init.fail", zap.Error(err))
		} else {
			go func() {
				if err := b.Run(ctx); err != nil {
					logger.Error("bot.run", zap.Error(err))
				}
			}()
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server.shutdown", zap.Error(err))
		}
	}()

	logger.Info("server.start", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server.listen", zap.Error(err))
	}
	logger.Info("server.stop")
}
