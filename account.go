package corebank

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Account is a user-owned balance row. Number and Owner are immutable once
// assigned; Balance never goes below zero on a committed operation.
type Account struct {
	Number    int64           `json:"number"`
	Owner     snowflake.ID    `json:"owner"`
	Balance   decimal.Decimal `json:"balance"`
	PinHash   string          `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}

const (
	EntryDebit  = "debit"
	EntryCredit = "credit"
)

// Entry is one leg of a fund movement, written in the same transaction as
// the balance update it mirrors.
type Entry struct {
	ID           snowflake.ID    `json:"id"`
	Account      int64           `json:"account"`
	Typ          string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty int64           `json:"counterparty,omitempty"`
	BankName     string          `json:"bank_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

const acctNumSuffixDigits = 100_000_000

// NewAccountNumber draws a ten-digit account number: the configured
// two-digit prefix followed by a uniformly random eight-digit suffix.
// Uniqueness is enforced by the accounts table; callers retry on
// ErrDuplicateAccount.
func NewAccountNumber(prefix int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(acctNumSuffixDigits))
	if err != nil {
		return 0, err
	}
	return prefix*acctNumSuffixDigits + n.Int64(), nil
}
