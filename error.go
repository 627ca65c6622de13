package corebank

import (
	"errors"
	"fmt"
)

var (
	ErrInternalServer = errors.New("internal server error")

	// ErrSameAccount rejects a transfer whose source and destination
	// are the same account.
	ErrSameAccount = errors.New("source and destination are the same account")

	// ErrForbidden signals the caller does not own the source account.
	ErrForbidden = errors.New("account not owned by caller")

	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrInvalidPin = errors.New("transaction PIN mismatch")

	// ErrConflict signals a conditional balance update touched a number of
	// rows other than one. The enclosing transaction must be rolled back.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrDuplicateAccount surfaces a unique violation on the account number
	// column; account creation retries generation on it.
	ErrDuplicateAccount = errors.New("account number already taken")
)

type ErrBadRequest struct {
	Fields map[string]string `json:"fields"`
}

func (e ErrBadRequest) Error() string {
	return fmt.Sprintf("missing/invalid params: %v", e.Fields)
}

type ErrNotFound struct {
	Number int64 `json:"account"`
}

func (e ErrNotFound) Error() string {
	return "account not found"
}
