package server

import (
	"net/http"

	"ecommerce-admin/internal/config"
	"ecommerce-admin/internal/handler"
	"ecommerce-admin/internal/middleware"
	"ecommerce-admin/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Checkout     *handler.CheckoutHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	AdminOrder   *handler.AdminOrderHandler
	Sales        *handler.SalesHandler
	OrderStream  *handler.OrderStreamHandler
	Store        *handler.StoreHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, stores repository.StoreRepository, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//公開（ストアフロント）
	h.Checkout.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Store.RegisterRoutes(e)

	//管理画面（店舗オーナーのみ）
	admin := e.Group("/api/:storeId", middleware.AuthJWT(cfg), middleware.StoreOwnerGuard(stores))
	h.AdminProduct.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
	h.Sales.RegisterRoutes(admin)
	h.Store.RegisterAdminRoutes(admin)

	//EventSourceはヘッダを付けられないのでquery tokenも許す
	h.OrderStream.RegisterRoutes(e,
		middleware.AuthJWT(cfg, middleware.AllowQueryToken()),
		middleware.StoreOwnerGuard(stores),
	)
}
