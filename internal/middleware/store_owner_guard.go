package middleware

import (
	"errors"
	"net/http"
	"strings"

	"ecommerce-admin/internal/domain/model"
	"ecommerce-admin/internal/repository"

	"github.com/labstack/echo/v4"
)

// :storeId の店舗がログインユーザーのものか確認する。
// 店舗がなければ404、他人の店舗なら403。
func StoreOwnerGuard(stores repository.StoreRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := UserIDFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			storeID := strings.TrimSpace(c.Param("storeId"))
			if storeID == "" {
				return c.JSON(http.StatusBadRequest, errorJSON("storeId required"))
			}

			store, err := stores.FindByID(c.Request().Context(), storeID)
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, errorJSON("store not found"))
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("db error"))
			}

			if store.UserID != userID {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			c.Set(CtxStoreKey, store)
			return next(c)
		}
	}
}

func StoreFrom(c echo.Context) (model.Store, bool) {
	s, ok := c.Get(CtxStoreKey).(model.Store)
	return s, ok
}
