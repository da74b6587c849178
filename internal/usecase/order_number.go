package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	repo "ecommerce-admin/internal/repository"
)

// 注文番号シーケンスの失敗。errors.Is(err, ErrAllocation) で判定できる。
type AllocationError struct {
	Op  string
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("order number %s: %v", e.Op, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocation
}

func ensureSequence(ctx context.Context, seq repo.OrderNumberSequence) error {
	if err := seq.Ensure(ctx); err != nil {
		return &AllocationError{Op: "ensure", Err: err}
	}
	return nil
}

// 値はDBから毎回もらう（アプリ側で持たない）
func reserveOrderNumber(ctx context.Context, seq repo.OrderNumberSequence) (int64, error) {
	n, err := seq.Next(ctx)
	if err != nil {
		return 0, &AllocationError{Op: "next", Err: err}
	}
	return n, nil
}

func allocationHTTPError(err error) error {
	var ae *AllocationError
	if !errors.As(err, &ae) {
		ae = &AllocationError{Op: "next", Err: err}
	}
	return newCodedError(http.StatusInternalServerError, CodeAllocationError, "could not allocate order number", ae)
}
