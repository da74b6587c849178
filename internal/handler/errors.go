package handler

import (
	"net/http"

	"ecommerce-admin/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	OK     bool                 `json:"ok"`
	Error  string               `json:"error"`
	Code   string               `json:"code,omitempty"`
	Failed []usecase.FailedItem `json:"failed,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{
			Error:  he.Message,
			Code:   he.Code,
			Failed: he.Failed,
		})
	}

	//500
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: usecase.CodeInvalidRequest})
}
