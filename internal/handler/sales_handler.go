package handler

import (
	"net/http"
	"strings"
	"time"

	"ecommerce-admin/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SalesHandler struct {
	uc *usecase.SalesUsecase
}

func NewSalesHandler(uc *usecase.SalesUsecase) *SalesHandler {
	return &SalesHandler{uc: uc}
}

func (h *SalesHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/sales/summary", h.summary)
}

func (h *SalesHandler) summary(c echo.Context) error {
	from, ok := parseDateParam(c.QueryParam("from"), false)
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := parseDateParam(c.QueryParam("to"), true)
	if !ok {
		return badRequest(c, "invalid to")
	}

	store, ok, err := guardedStore(c)
	if !ok {
		return err
	}

	out, err := h.uc.MonthlySummary(c.Request().Context(), store.ID, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// RFC3339 か YYYY-MM-DD。日付だけのときの to はその日の終わり。
func parseDateParam(s string, endOfDay bool) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}
