package apperr

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed or missing caller input.
// It is not retryable until the caller fixes the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("验证失败: %s", e.Reason)
	}
	return fmt.Sprintf("字段 %s 验证失败: %s", e.Field, e.Reason)
}

// NotFoundError covers both a genuinely absent entity and an entity
// owned by another user. The two cases are deliberately
// indistinguishable so that callers cannot probe ownership.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("找不到%s: %s", e.Resource, e.ID)
}

// AlreadyOwnedError is returned when purchasing an item whose
// isOwned flag has already been flipped.
type AlreadyOwnedError struct {
	ItemID string
}

func (e *AlreadyOwnedError) Error() string {
	return fmt.Sprintf("商品已被拥有: %s", e.ItemID)
}

// InsufficientFundsError is returned by the ledger when a debit would
// drive the balance negative. State is left unchanged.
type InsufficientFundsError struct {
	Balance  int
	Required int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("积分不足: 当前 %d, 需要 %d", e.Balance, e.Required)
}

// ConflictError wraps transient store-level contention (busy database,
// serialization failure) that survived the bounded retry loop. Safe for
// the caller to retry the whole request.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("事务冲突，请重试: %v", e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// --- 便捷判断函数 ---

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsAlreadyOwned(err error) bool {
	var target *AlreadyOwnedError
	return errors.As(err, &target)
}

func IsInsufficientFunds(err error) bool {
	var target *InsufficientFundsError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
