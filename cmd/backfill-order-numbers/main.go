// backfill-order-numbers は order_number が NULL の注文に番号を振る運用ツール。
//
//	go run ./cmd/backfill-order-numbers [-batch 100]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ecommerce-admin/internal/config"
	"ecommerce-admin/internal/infra/db"
	infraRepo "ecommerce-admin/internal/infra/repository"
	"ecommerce-admin/internal/logger"
	"ecommerce-admin/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "backfill failed:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	batch := flag.Int("batch", cfg.BackfillBatchSize, "rows per batch")
	flag.Parse()
	if *batch < 1 {
		return fmt.Errorf("-batch must be >= 1")
	}

	log, err := logger.New(cfg)
	if err != nil {
		return err
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}

	seq := infraRepo.NewOrderNumberGormSequence(gormDB)
	job := usecase.NewOrderNumberBackfill(
		infraRepo.NewOrderGormRepository(gormDB),
		seq,
		infraRepo.NewTxManagerGorm(gormDB, seq),
		*batch,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := job.Run(ctx)
	if err != nil {
		return fmt.Errorf("after %d rows: %w", res.Processed, err)
	}

	fmt.Printf("Backfill complete. Processed %d orders (assigned %d, skipped %d).\n", res.Processed, res.Assigned, res.Skipped)
	return nil
}
