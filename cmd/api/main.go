package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ecommerce-admin/internal/config"
	"ecommerce-admin/internal/infra/db"
	"ecommerce-admin/internal/logger"
	"ecommerce-admin/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPI(); err != nil {
		return err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return err
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	//本番はマイグレーションを別で流す
	if !cfg.IsProd() {
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	e := server.New(cfg, log, gormDB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("addr", cfg.Addr()).Info("server start")
	if err := server.Start(ctx, e, cfg.Addr()); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
