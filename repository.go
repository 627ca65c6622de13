package corebank

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateAccountReq struct {
	Owner   snowflake.ID
	PinHash string
}

type Repository interface {
	FindByNumber(ctx context.Context, number int64) (*Account, error)
	FindByOwner(ctx context.Context, owner snowflake.ID) (*Account, error)
	CreateAccount(ctx context.Context, number int64, req CreateAccountReq) (*Account, error)
	AccountEntries(ctx context.Context, number int64) ([]Entry, error)
	// WithinTx runs fn inside a single transaction. A non-nil error from fn
	// rolls everything back; rollback is also guaranteed on panic.
	WithinTx(ctx context.Context, fn func(tx BalanceTx) error) error
}

// BalanceTx is the mutation surface available inside a repository
// transaction. Balance updates condition on the balance the caller read:
// a concurrently-applied change makes the write match zero rows, so the
// affected-row count doubles as a lost-update detector. Callers must abort
// on anything other than one.
type BalanceTx interface {
	UpdateOwnerBalance(ctx context.Context, owner snowflake.ID, old, balance decimal.Decimal) (int64, error)
	UpdateAccountBalance(ctx context.Context, number int64, old, balance decimal.Decimal) (int64, error)
	RecordEntry(ctx context.Context, e Entry) error
}
