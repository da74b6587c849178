package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecommerce-admin/internal/config"
	"ecommerce-admin/internal/handler"
	infraRepo "ecommerce-admin/internal/infra/repository"
	"ecommerce-admin/internal/middleware"
	"ecommerce-admin/internal/usecase"
	"ecommerce-admin/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// New はrepository/usecase/handlerを組み立ててechoを返す
func New(cfg config.Config, log *logrus.Logger, gdb *gorm.DB) *echo.Echo {
	//Repository（GORM実装）
	storeRepo := infraRepo.NewStoreGormRepository(gdb)
	productRepo := infraRepo.NewProductGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	seq := infraRepo.NewOrderNumberGormSequence(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb, seq)

	//Usecase
	checkoutUC := usecase.NewCheckoutUsecase(txm, storeRepo, productRepo, seq, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, log)
	productUC := usecase.NewProductUsecase(productRepo, txm, log)
	salesUC := usecase.NewSalesUsecase(orderRepo)
	feedUC := usecase.NewOrderFeedUsecase(orderRepo)
	storeUC := usecase.NewStoreUsecase(storeRepo, txm, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	RegisterRoutes(e, cfg, storeRepo, Handlers{
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		Sales:        handler.NewSalesHandler(salesUC),
		OrderStream:  handler.NewOrderStreamHandler(feedUC, cfg.OrderStreamInterval, log),
		Store:        handler.NewStoreHandler(storeUC),
	})
	return e
}

// ctx が終わるまで待ってからshutdownする
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
