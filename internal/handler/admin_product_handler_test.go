package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ecommerce-admin/internal/handler"
	"ecommerce-admin/internal/logger"
	"ecommerce-admin/internal/usecase"
	"ecommerce-admin/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// バリデーションで落ちるのでusecaseの依存は使われない
func serveAdminProduct(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = validator.New()
	uc := usecase.NewProductUsecase(nil, nil, logger.Discard())
	handler.NewAdminProductHandler(uc).RegisterRoutes(e.Group("/api/:storeId"))

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminProductHandler_ToggleValidation(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "broken json", body: `{`, wantMsg: "invalid body"},
		{name: "missing isArchived", body: `{"isFeatured":true}`, wantMsg: "isArchived required"},
		{name: "missing isFeatured", body: `{"isArchived":false}`, wantMsg: "isFeatured required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveAdminProduct(t, http.MethodPatch, "/api/s1/products/p1/toggle", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			res := decodeErr(t, rec)
			assert.Equal(t, tc.wantMsg, res.Error)
			assert.Equal(t, usecase.CodeInvalidRequest, res.Code)
		})
	}
}

func TestAdminProductHandler_QuantityValidation(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "missing quantity", body: `{"reason":"recount"}`, wantMsg: "quantity required"},
		{name: "negative", body: `{"quantity":-1,"reason":"recount"}`, wantMsg: "quantity must be >= 0"},
		{name: "blank reason", body: `{"quantity":3,"reason":"   "}`, wantMsg: "reason required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveAdminProduct(t, http.MethodPut, "/api/s1/products/p1/quantity", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.wantMsg, decodeErr(t, rec).Error)
		})
	}
}

// バリデーションは通るがユーザーがいない
func TestAdminProductHandler_NoUser(t *testing.T) {
	rec := serveAdminProduct(t, http.MethodPatch, "/api/s1/products/p1/toggle", `{"isFeatured":true,"isArchived":false}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
