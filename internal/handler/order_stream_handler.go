package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ecommerce-admin/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// 新着注文を Server-Sent Events で流す
type OrderStreamHandler struct {
	uc       *usecase.OrderFeedUsecase
	interval time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewOrderStreamHandler(uc *usecase.OrderFeedUsecase, interval time.Duration, log logrus.FieldLogger) *OrderStreamHandler {
	return &OrderStreamHandler{uc: uc, interval: interval, log: log, now: time.Now}
}

// 認証はルート側で付ける（?token= を許すため）
func (h *OrderStreamHandler) RegisterRoutes(e *echo.Echo, m ...echo.MiddlewareFunc) {
	e.GET("/api/:storeId/orders/stream", h.stream, m...)
}

func (h *OrderStreamHandler) stream(c echo.Context) error {
	store, ok, err := guardedStore(c)
	if !ok {
		return err
	}
	storeID := store.ID
	ctx := c.Request().Context()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(res, ":ok\n\n"); err != nil {
		return nil
	}
	res.Flush()

	//接続した時点より後の注文だけ流す
	mark := usecase.FeedMark{At: h.now()}
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		orders, next, err := h.uc.Poll(ctx, storeID, mark)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.log.WithError(err).WithField("store_id", storeID).Warn("order stream poll")
			continue
		}
		mark = next

		for _, o := range orders {
			b, err := json.Marshal(o)
			if err != nil {
				h.log.WithError(err).WithField("order_id", o.ID).Warn("order stream encode")
				continue
			}
			if _, err := fmt.Fprintf(res, "data: %s\n\n", b); err != nil {
				return nil
			}
		}
		if len(orders) > 0 {
			res.Flush()
		}
	}
}
