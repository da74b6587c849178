package handler

import (
	"net/http"

	"ecommerce-admin/internal/domain/model"
	"ecommerce-admin/internal/middleware"

	"github.com/labstack/echo/v4"
)

// StoreOwnerGuard が入れた店舗を取り出す。ガードを通っていなければ403を書く。
func guardedStore(c echo.Context) (model.Store, bool, error) {
	s, ok := middleware.StoreFrom(c)
	if !ok {
		return model.Store{}, false, c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}
	return s, true, nil
}
