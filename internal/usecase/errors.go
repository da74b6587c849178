package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// 呼び出し側は errors.Is でこれらを見分ける
var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrStoreNotFound          = errors.New("store not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrPaymentMethodInactive  = errors.New("payment method inactive")
	ErrShippingMethodInactive = errors.New("shipping method inactive")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrAllocation             = errors.New("order number allocation failed")
)

// レスポンスの code
const (
	CodeInvalidRequest         = "invalid_request"
	CodeStoreNotFound          = "store_not_found"
	CodeProductNotFound        = "product_not_found"
	CodePaymentMethodInactive  = "payment_method_inactive"
	CodeShippingMethodInactive = "shipping_method_inactive"
	CodeInsufficientStock      = "insufficient_stock"
	CodeAllocationError        = "allocation_error"
)

type FailedReason string

const (
	FailedNotFound     FailedReason = "not_found"
	FailedInsufficient FailedReason = "insufficient"
)

// checkoutで失敗した明細1件
type FailedItem struct {
	Reason             FailedReason `json:"reason"`
	RequestedProductID string       `json:"requestedProductId"`
	RequestedName      *string      `json:"requestedName"`
	ResolvedProductID  *string      `json:"resolvedProductId,omitempty"`
	Available          int64        `json:"available"`
	StoreID            string       `json:"storeId"`
}

type HTTPError struct {
	Status  int
	Message string
	Code    string
	Failed  []FailedItem
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func newCodedError(status int, code string, message string, err error) *HTTPError {
	return &HTTPError{
		Status:  status,
		Message: message,
		Code:    code,
		Err:     err,
	}
}

func invalidRequest(message string) error {
	return newCodedError(http.StatusBadRequest, CodeInvalidRequest, message, ErrInvalidRequest)
}

func dbError(err error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Err: err}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
