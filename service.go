package corebank

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type OpenAccountReq struct {
	Owner snowflake.ID `json:"-"`
	Pin   string       `json:"transaction_pin"`
}

type DepositReq struct {
	UserID         snowflake.ID    `json:"-"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"-"`
}

type WithdrawReq struct {
	UserID         snowflake.ID    `json:"-"`
	Source         int64           `json:"source"`
	Amount         decimal.Decimal `json:"amount"`
	Destination    int64           `json:"destination"`
	BankName       string          `json:"destinationBankName"`
	Pin            string          `json:"transaction_pin"`
	IdempotencyKey string          `json:"-"`
}

type TransferReq struct {
	UserID         snowflake.ID    `json:"-"`
	Source         int64           `json:"source"`
	Destination    int64           `json:"destination"`
	Amount         decimal.Decimal `json:"amount"`
	Pin            string          `json:"transaction_pin"`
	IdempotencyKey string          `json:"-"`
}

type BalanceReq struct {
	UserID snowflake.ID
}

type StatementReq struct {
	UserID snowflake.ID
	Number int64
}

type DepositResp struct {
	Success bool            `json:"success"`
	Balance decimal.Decimal `json:"balance"`
	Owner   snowflake.ID    `json:"owner"`
}

// WithdrawResp records destination and bank name for the external payout;
// neither is a mutated account in this core.
type WithdrawResp struct {
	Success     bool            `json:"success"`
	Source      int64           `json:"source"`
	Destination int64           `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	BankName    string          `json:"destinationBankName"`
}

type TransferResp struct {
	Success     bool            `json:"success"`
	Source      int64           `json:"source"`
	Destination int64           `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
}

type Service interface {
	CreateAccount(ctx context.Context, req OpenAccountReq) (*Account, error)
	Deposit(ctx context.Context, req DepositReq) (*DepositResp, error)
	Withdraw(ctx context.Context, req WithdrawReq) (*WithdrawResp, error)
	Transfer(ctx context.Context, req TransferReq) (*TransferResp, error)
	Balance(ctx context.Context, req BalanceReq) (*decimal.Decimal, error)
	Statement(ctx context.Context, w io.Writer, req StatementReq) error
}

// acctNumMaxRetries bounds account-number regeneration on unique-violation.
const acctNumMaxRetries = 3

func NewService(repo Repository, cache IdempotencyCache, prefix int64, log *zerolog.Logger) (*serviceImpl, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}
	return &serviceImpl{
		repo:   repo,
		cache:  cache,
		node:   node,
		prefix: prefix,
		log:    log,
	}, nil
}

type serviceImpl struct {
	repo   Repository
	cache  IdempotencyCache
	node   *snowflake.Node
	prefix int64
	log    *zerolog.Logger
}

var (
	_ Service = (*serviceImpl)(nil)
)

func (s *serviceImpl) CreateAccount(ctx context.Context, req OpenAccountReq) (*Account, error) {
	if len(req.Pin) < PinMinLen {
		return nil, ErrBadRequest{Fields: map[string]string{"transaction_pin": "must be at least 4 characters"}}
	}
	hash, err := HashPin(req.Pin)
	if err != nil {
		s.log.Err(err).Str("method", "create_account").Msg("PIN hashing failed")
		return nil, ErrInternalServer
	}
	for i := 0; i < acctNumMaxRetries; i++ {
		num, err := NewAccountNumber(s.prefix)
		if err != nil {
			s.log.Err(err).Str("method", "create_account").Msg("account number generation failed")
			return nil, ErrInternalServer
		}
		acct, err := s.repo.CreateAccount(ctx, num, CreateAccountReq{Owner: req.Owner, PinHash: hash})
		if errors.Is(err, ErrDuplicateAccount) {
			continue
		}
		return acct, err
	}
	return nil, ErrInternalServer
}

func (s *serviceImpl) Deposit(ctx context.Context, req DepositReq) (*DepositResp, error) {
	if resp, ok := replay[DepositResp](s.cache, req.UserID, req.IdempotencyKey); ok {
		return resp, nil
	}
	if !req.Amount.IsPositive() {
		return nil, ErrBadRequest{Fields: map[string]string{"amount": "must be greater than zero"}}
	}
	acct, err := s.repo.FindByOwner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	newBal := acct.Balance.Add(req.Amount)
	err = s.repo.WithinTx(ctx, func(tx BalanceTx) error {
		n, err := tx.UpdateOwnerBalance(ctx, req.UserID, acct.Balance, newBal)
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrConflict
		}
		return tx.RecordEntry(ctx, Entry{
			ID:      s.node.Generate(),
			Account: acct.Number,
			Typ:     EntryCredit,
			Amount:  req.Amount,
		})
	})
	if err != nil {
		return nil, err
	}
	resp := &DepositResp{Success: true, Balance: newBal, Owner: req.UserID}
	s.remember(req.UserID, req.IdempotencyKey, resp)
	return resp, nil
}

// Withdraw checks run in a fixed order so clients see a deterministic error
// when several preconditions fail at once: schema, account existence,
// sufficient funds, then PIN. The PIN is verified before any transaction
// opens; a rejected withdrawal never touches the store.
func (s *serviceImpl) Withdraw(ctx context.Context, req WithdrawReq) (*WithdrawResp, error) {
	if resp, ok := replay[WithdrawResp](s.cache, req.UserID, req.IdempotencyKey); ok {
		return resp, nil
	}
	fields := make(map[string]string)
	if req.Source == 0 {
		fields["source"] = "required"
	}
	if !req.Amount.IsPositive() {
		fields["amount"] = "must be greater than zero"
	}
	if len(req.Pin) < PinMinLen {
		fields["transaction_pin"] = "must be at least 4 characters"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}
	acct, err := s.repo.FindByNumber(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	if acct.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}
	if err := s.verifyPin(req.Pin, acct, "withdraw"); err != nil {
		return nil, err
	}
	newBal := acct.Balance.Sub(req.Amount)
	err = s.repo.WithinTx(ctx, func(tx BalanceTx) error {
		n, err := tx.UpdateAccountBalance(ctx, req.Source, acct.Balance, newBal)
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrConflict
		}
		return tx.RecordEntry(ctx, Entry{
			ID:           s.node.Generate(),
			Account:      req.Source,
			Typ:          EntryDebit,
			Amount:       req.Amount,
			Counterparty: req.Destination,
			BankName:     req.BankName,
		})
	})
	if err != nil {
		return nil, err
	}
	resp := &WithdrawResp{
		Success:     true,
		Source:      req.Source,
		Destination: req.Destination,
		Amount:      req.Amount,
		BankName:    req.BankName,
	}
	s.remember(req.UserID, req.IdempotencyKey, resp)
	return resp, nil
}

// Transfer check order: schema, same-account, existence of both accounts,
// amount positivity, ownership, sufficient funds, PIN. Both legs run inside
// one transaction; a failure on either side rolls back the whole movement.
func (s *serviceImpl) Transfer(ctx context.Context, req TransferReq) (*TransferResp, error) {
	if resp, ok := replay[TransferResp](s.cache, req.UserID, req.IdempotencyKey); ok {
		return resp, nil
	}
	fields := make(map[string]string)
	if req.Source == 0 {
		fields["source"] = "required"
	}
	if req.Destination == 0 {
		fields["destination"] = "required"
	}
	if len(req.Pin) < PinMinLen {
		fields["transaction_pin"] = "must be at least 4 characters"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}
	if req.Source == req.Destination {
		return nil, ErrSameAccount
	}
	src, err := s.repo.FindByNumber(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	dst, err := s.repo.FindByNumber(ctx, req.Destination)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, ErrBadRequest{Fields: map[string]string{"amount": "must be greater than zero"}}
	}
	if src.Owner != req.UserID {
		return nil, ErrForbidden
	}
	if src.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}
	if err := s.verifyPin(req.Pin, src, "transfer"); err != nil {
		return nil, err
	}
	err = s.repo.WithinTx(ctx, func(tx BalanceTx) error {
		n, err := tx.UpdateAccountBalance(ctx, src.Number, src.Balance, src.Balance.Sub(req.Amount))
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrConflict
		}
		n, err = tx.UpdateAccountBalance(ctx, dst.Number, dst.Balance, dst.Balance.Add(req.Amount))
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrConflict
		}
		if err = tx.RecordEntry(ctx, Entry{
			ID:           s.node.Generate(),
			Account:      src.Number,
			Typ:          EntryDebit,
			Amount:       req.Amount,
			Counterparty: dst.Number,
		}); err != nil {
			return err
		}
		return tx.RecordEntry(ctx, Entry{
			ID:           s.node.Generate(),
			Account:      dst.Number,
			Typ:          EntryCredit,
			Amount:       req.Amount,
			Counterparty: src.Number,
		})
	})
	if err != nil {
		return nil, err
	}
	resp := &TransferResp{
		Success:     true,
		Source:      req.Source,
		Destination: req.Destination,
		Amount:      req.Amount,
	}
	s.remember(req.UserID, req.IdempotencyKey, resp)
	return resp, nil
}

func (s *serviceImpl) Balance(ctx context.Context, req BalanceReq) (*decimal.Decimal, error) {
	acct, err := s.repo.FindByOwner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &acct.Balance, nil
}

func (s *serviceImpl) Statement(ctx context.Context, w io.Writer, req StatementReq) error {
	acct, err := s.repo.FindByNumber(ctx, req.Number)
	if err != nil {
		return err
	}
	if acct.Owner != req.UserID {
		return ErrForbidden
	}
	entries, err := s.repo.AccountEntries(ctx, req.Number)
	if err != nil {
		return err
	}
	return writeStatement(w, acct, entries)
}

func (s *serviceImpl) verifyPin(pin string, acct *Account, method string) error {
	ok, err := VerifyPin(pin, acct.PinHash)
	if err != nil {
		s.log.Err(err).Str("method", method).Int64("account", acct.Number).Msg("PIN verification failed")
		return ErrInternalServer
	}
	if !ok {
		return ErrInvalidPin
	}
	return nil
}

// replay returns the cached response for (user, key), if any. A hit
// short-circuits the whole operation: no balance mutation, no PIN check.
func replay[T any](cache IdempotencyCache, user snowflake.ID, key string) (*T, bool) {
	if cache == nil || key == "" {
		return nil, false
	}
	raw, ok := cache.Get(user, key)
	if !ok {
		return nil, false
	}
	var resp T
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// remember caches only successful responses; a failed request sharing a key
// with a later retry executes fresh.
func (s *serviceImpl) remember(user snowflake.ID, key string, resp any) {
	if s.cache == nil || key == "" {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		s.log.Err(err).Msg("idempotency record marshalling failed")
		return
	}
	s.cache.Put(user, key, raw)
}
