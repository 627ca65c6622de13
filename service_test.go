package corebank_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/okonkwo/corebank"
	"github.com/okonkwo/corebank/mocks"
)

const testAcctPrefix = int64(21)

func mustHashPin(t *testing.T, pin string) string {
	t.Helper()
	hash, err := corebank.HashPin(pin)
	require.NoError(t, err)
	return hash
}

func newTestService(t *testing.T, repo corebank.Repository) *serviceFixture {
	t.Helper()
	log := zerolog.Nop()
	cache := corebank.NewMemoryIdempotencyCache(0)
	svc, err := corebank.NewService(repo, cache, testAcctPrefix, &log)
	require.NoError(t, err)
	return &serviceFixture{svc: svc}
}

type serviceFixture struct {
	svc corebank.Service
}

// passthroughTx makes the mocked repository run the transactional closure
// against the given BalanceTx, the way the Postgres endpoint would.
func passthroughTx(repo *mocks.MockRepository, tx corebank.BalanceTx) *gomock.Call {
	return repo.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(corebank.BalanceTx) error) error {
			return fn(tx)
		})
}

func TestDeposit(t *testing.T) {
	owner := snowflake.ParseInt64(7241407009730334720)

	t.Run("adds the amount to the owner balance and records a credit entry", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		tx := mocks.NewMockBalanceTx(ctrl)
		fx := newTestService(tt, repo)

		acct := &corebank.Account{Number: 2112345678, Owner: owner, Balance: decimal.NewFromInt(100)}
		repo.EXPECT().FindByOwner(gomock.Any(), owner).Return(acct, nil)
		passthroughTx(repo, tx)
		tx.EXPECT().
			UpdateOwnerBalance(gomock.Any(), owner, decimal.NewFromInt(100), decimal.NewFromInt(130)).
			Return(int64(1), nil)
		tx.EXPECT().
			RecordEntry(gomock.Any(), gomock.AssignableToTypeOf(corebank.Entry{})).
			DoAndReturn(func(_ context.Context, e corebank.Entry) error {
				as.Equal(corebank.EntryCredit, e.Typ)
				as.Equal(acct.Number, e.Account)
				as.True(e.Amount.Equal(decimal.NewFromInt(30)))
				return nil
			})

		resp, err := fx.svc.Deposit(context.Background(), corebank.DepositReq{
			UserID: owner,
			Amount: decimal.NewFromInt(30),
		})
		reqrd.NoError(err)
		as.True(resp.Success)
		as.True(resp.Balance.Equal(decimal.NewFromInt(130)))
		as.Equal(owner, resp.Owner)
	})

	t.Run("rejects a non-positive amount before touching the store", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		for _, amt := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
			_, err := fx.svc.Deposit(context.Background(), corebank.DepositReq{UserID: owner, Amount: amt})
			as.ErrorAs(err, &corebank.ErrBadRequest{})
		}
	})

	t.Run("returns ErrNotFound when the caller has no account", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		repo.EXPECT().FindByOwner(gomock.Any(), owner).Return(nil, corebank.ErrNotFound{})
		_, err := fx.svc.Deposit(context.Background(), corebank.DepositReq{
			UserID: owner,
			Amount: decimal.NewFromInt(30),
		})
		as.ErrorAs(err, &corebank.ErrNotFound{})
	})

	t.Run("treats an affected-row count other than one as a hard conflict", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		tx := mocks.NewMockBalanceTx(ctrl)
		fx := newTestService(tt, repo)

		acct := &corebank.Account{Number: 2112345678, Owner: owner, Balance: decimal.Zero}
		repo.EXPECT().FindByOwner(gomock.Any(), owner).Return(acct, nil)
		passthroughTx(repo, tx)
		tx.EXPECT().
			UpdateOwnerBalance(gomock.Any(), owner, gomock.Any(), gomock.Any()).
			Return(int64(0), nil)

		_, err := fx.svc.Deposit(context.Background(), corebank.DepositReq{
			UserID: owner,
			Amount: decimal.NewFromInt(10),
		})
		as.ErrorIs(err, corebank.ErrConflict)
	})

	t.Run("never loses one of two concurrent deposits", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		log := zerolog.Nop()

		store := &condStore{acct: corebank.Account{Number: 2112345678, Owner: owner, Balance: decimal.Zero}}
		store.barrier.Add(2)
		svc, err := corebank.NewService(store, corebank.NewMemoryIdempotencyCache(0), testAcctPrefix, &log)
		reqrd.NoError(err)

		// both depositors read a zero balance before either one writes
		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			go func() {
				_, err := svc.Deposit(context.Background(), corebank.DepositReq{
					UserID: owner,
					Amount: decimal.NewFromInt(10),
				})
				errs <- err
			}()
		}
		first, second := <-errs, <-errs

		// exactly one lands; the stale writer gets a conflict, not a silent
		// overwrite
		if first == nil {
			as.ErrorIs(second, corebank.ErrConflict)
		} else {
			as.ErrorIs(first, corebank.ErrConflict)
			as.NoError(second)
		}
		as.True(store.balance().Equal(decimal.NewFromInt(10)))

		// retrying the conflicted deposit with a fresh read lands on 20
		_, err = svc.Deposit(context.Background(), corebank.DepositReq{
			UserID: owner,
			Amount: decimal.NewFromInt(10),
		})
		reqrd.NoError(err)
		as.True(store.balance().Equal(decimal.NewFromInt(20)))
	})

	t.Run("replays the cached response without re-executing", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		tx := mocks.NewMockBalanceTx(ctrl)
		fx := newTestService(tt, repo)

		acct := &corebank.Account{Number: 2112345678, Owner: owner, Balance: decimal.Zero}
		repo.EXPECT().FindByOwner(gomock.Any(), owner).Return(acct, nil).Times(1)
		passthroughTx(repo, tx).Times(1)
		tx.EXPECT().UpdateOwnerBalance(gomock.Any(), owner, gomock.Any(), gomock.Any()).Return(int64(1), nil).Times(1)
		tx.EXPECT().RecordEntry(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		req := corebank.DepositReq{
			UserID:         owner,
			Amount:         decimal.NewFromInt(10),
			IdempotencyKey: uuid.NewString(),
		}
		first, err := fx.svc.Deposit(context.Background(), req)
		reqrd.NoError(err)
		second, err := fx.svc.Deposit(context.Background(), req)
		reqrd.NoError(err)

		fbits, err := json.Marshal(first)
		reqrd.NoError(err)
		sbits, err := json.Marshal(second)
		reqrd.NoError(err)
		as.Equal(fbits, sbits)
	})

	t.Run("does not cache failed operations", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		key := uuid.NewString()
		repo.EXPECT().FindByOwner(gomock.Any(), owner).Return(nil, corebank.ErrNotFound{}).Times(2)
		req := corebank.DepositReq{UserID: owner, Amount: decimal.NewFromInt(10), IdempotencyKey: key}
		_, err := fx.svc.Deposit(context.Background(), req)
		as.Error(err)
		// retry with the same key executes fresh
		_, err = fx.svc.Deposit(context.Background(), req)
		as.Error(err)
	})
}

func TestWithdraw(t *testing.T) {
	owner := snowflake.ParseInt64(7241407009730334720)
	const source = int64(2112345678)
	const destination = int64(9876543210)
	pin := "4321"

	valid := func(hash string) (*corebank.Account, corebank.WithdrawReq) {
		acct := &corebank.Account{
			Number:  source,
			Owner:   owner,
			Balance: decimal.NewFromInt(500),
			PinHash: hash,
		}
		req := corebank.WithdrawReq{
			UserID:      owner,
			Source:      source,
			Amount:      decimal.NewFromInt(200),
			Destination: destination,
			BankName:    "First National",
			Pin:         pin,
		}
		return acct, req
	}

	t.Run("debits the source and records the external payout", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		tx := mocks.NewMockBalanceTx(ctrl)
		fx := newTestService(tt, repo)

		acct, req := valid(mustHashPin(tt, pin))
		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(acct, nil)
		passthroughTx(repo, tx)
		tx.EXPECT().
			UpdateAccountBalance(gomock.Any(), source, decimal.NewFromInt(500), decimal.NewFromInt(300)).
			Return(int64(1), nil)
		tx.EXPECT().
			RecordEntry(gomock.Any(), gomock.AssignableToTypeOf(corebank.Entry{})).
			DoAndReturn(func(_ context.Context, e corebank.Entry) error {
				as.Equal(corebank.EntryDebit, e.Typ)
				as.Equal(destination, e.Counterparty)
				as.Equal("First National", e.BankName)
				return nil
			})

		resp, err := fx.svc.Withdraw(context.Background(), req)
		reqrd.NoError(err)
		as.True(resp.Success)
		as.Equal(source, resp.Source)
		as.Equal(destination, resp.Destination)
		as.Equal("First National", resp.BankName)
	})

	t.Run("rejects a short PIN at schema validation", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		_, req := valid("")
		req.Pin = "99"
		_, err := fx.svc.Withdraw(context.Background(), req)
		as.ErrorAs(err, &corebank.ErrBadRequest{})
	})

	t.Run("returns ErrInsufficientFunds before verifying the PIN", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		// a PIN hash that would fail verification; funds are checked first
		acct, req := valid(mustHashPin(tt, "0000"))
		acct.Balance = decimal.NewFromInt(10)
		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(acct, nil)
		_, err := fx.svc.Withdraw(context.Background(), req)
		as.ErrorIs(err, corebank.ErrInsufficientFunds)
	})

	t.Run("rejects a wrong PIN without opening a transaction", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		acct, req := valid(mustHashPin(tt, "0000"))
		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(acct, nil)
		_, err := fx.svc.Withdraw(context.Background(), req)
		as.ErrorIs(err, corebank.ErrInvalidPin)
	})
}

func TestTransfer(t *testing.T) {
	owner := snowflake.ParseInt64(7241407009730334720)
	stranger := snowflake.ParseInt64(7241301734201495552)
	const source = int64(2112345678)
	const destination = int64(2187654321)
	pin := "4321"

	accounts := func(tt *testing.T, srcBal, dstBal int64) (*corebank.Account, *corebank.Account) {
		return &corebank.Account{
				Number:  source,
				Owner:   owner,
				Balance: decimal.NewFromInt(srcBal),
				PinHash: mustHashPin(tt, pin),
			}, &corebank.Account{
				Number:  destination,
				Owner:   stranger,
				Balance: decimal.NewFromInt(dstBal),
			}
	}

	validReq := corebank.TransferReq{
		UserID:      owner,
		Source:      source,
		Destination: destination,
		Amount:      decimal.NewFromInt(30),
		Pin:         pin,
	}

	t.Run("moves the amount atomically and records both entries", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		tx := mocks.NewMockBalanceTx(ctrl)
		fx := newTestService(tt, repo)

		src, dst := accounts(tt, 100, 50)
		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(src, nil)
		repo.EXPECT().FindByNumber(gomock.Any(), destination).Return(dst, nil)
		passthroughTx(repo, tx)
		tx.EXPECT().
			UpdateAccountBalance(gomock.Any(), source, decimal.NewFromInt(100), decimal.NewFromInt(70)).
			Return(int64(1), nil)
		tx.EXPECT().
			UpdateAccountBalance(gomock.Any(), destination, decimal.NewFromInt(50), decimal.NewFromInt(80)).
			Return(int64(1), nil)
		tx.EXPECT().RecordEntry(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		resp, err := fx.svc.Transfer(context.Background(), validReq)
		reqrd.NoError(err)
		as.True(resp.Success)
		as.Equal(source, resp.Source)
		as.Equal(destination, resp.Destination)
	})

	t.Run("rejects source == destination before touching the store", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		req := validReq
		req.Destination = source
		_, err := fx.svc.Transfer(context.Background(), req)
		as.ErrorIs(err, corebank.ErrSameAccount)
	})

	t.Run("checks existence of both accounts before amount positivity", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(nil, corebank.ErrNotFound{Number: source})
		req := validReq
		req.Amount = decimal.Zero
		_, err := fx.svc.Transfer(context.Background(), req)
		as.ErrorAs(err, &corebank.ErrNotFound{})
	})

	t.Run("rejects a non-positive amount once both accounts exist", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		src, dst := accounts(tt, 100, 50)
		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(src, nil)
		repo.EXPECT().FindByNumber(gomock.Any(), destination).Return(dst, nil)
		req := validReq
		req.Amount = decimal.NewFromInt(-1)
		_, err := fx.svc.Transfer(context.Background(), req)
		as.ErrorAs(err, &corebank.ErrBadRequest{})
	})

	t.Run("forbids transfers from an account the caller does not own", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		src, dst := accounts(tt, 100, 50)
		src.Owner = stranger
		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(src, nil)
		repo.EXPECT().FindByNumber(gomock.Any(), destination).Return(dst, nil)
		_, err := fx.svc.Transfer(context.Background(), validReq)
		as.ErrorIs(err, corebank.ErrForbidden)
	})

	t.Run("rejects a wrong PIN before the transaction opens", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		src, dst := accounts(tt, 100, 50)
		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(src, nil)
		repo.EXPECT().FindByNumber(gomock.Any(), destination).Return(dst, nil)
		req := validReq
		req.Pin = "9999"
		_, err := fx.svc.Transfer(context.Background(), req)
		as.ErrorIs(err, corebank.ErrInvalidPin)
	})

	t.Run("rolls the whole movement back when the credit leg fails", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		tx := mocks.NewMockBalanceTx(ctrl)
		fx := newTestService(tt, repo)

		src, dst := accounts(tt, 100, 50)
		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(src, nil)
		repo.EXPECT().FindByNumber(gomock.Any(), destination).Return(dst, nil)
		// the repository rolls back when fn errs; returning fn's error here
		// mirrors that contract
		passthroughTx(repo, tx)
		tx.EXPECT().
			UpdateAccountBalance(gomock.Any(), source, decimal.NewFromInt(100), decimal.NewFromInt(70)).
			Return(int64(1), nil)
		tx.EXPECT().
			UpdateAccountBalance(gomock.Any(), destination, gomock.Any(), gomock.Any()).
			Return(int64(0), nil)

		_, err := fx.svc.Transfer(context.Background(), validReq)
		as.ErrorIs(err, corebank.ErrConflict)
	})

	t.Run("returns ErrInsufficientFunds when the source balance is short", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		src, dst := accounts(tt, 10, 50)
		repo.EXPECT().FindByNumber(gomock.Any(), source).Return(src, nil)
		repo.EXPECT().FindByNumber(gomock.Any(), destination).Return(dst, nil)
		_, err := fx.svc.Transfer(context.Background(), validReq)
		as.ErrorIs(err, corebank.ErrInsufficientFunds)
	})
}

func TestCreateAccount(t *testing.T) {
	owner := snowflake.ParseInt64(7241407009730334720)

	t.Run("generates a prefixed ten-digit account number", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		repo.EXPECT().
			CreateAccount(gomock.Any(), gomock.Any(), gomock.AssignableToTypeOf(corebank.CreateAccountReq{})).
			DoAndReturn(func(_ context.Context, num int64, req corebank.CreateAccountReq) (*corebank.Account, error) {
				as.GreaterOrEqual(num, testAcctPrefix*100_000_000)
				as.Less(num, (testAcctPrefix+1)*100_000_000)
				ok, err := corebank.VerifyPin("4321", req.PinHash)
				reqrd.NoError(err)
				as.True(ok)
				return &corebank.Account{Number: num, Owner: req.Owner, Balance: decimal.Zero}, nil
			})

		acct, err := fx.svc.CreateAccount(context.Background(), corebank.OpenAccountReq{Owner: owner, Pin: "4321"})
		reqrd.NoError(err)
		as.Equal(owner, acct.Owner)
	})

	t.Run("retries generation on a duplicate account number", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		gomock.InOrder(
			repo.EXPECT().
				CreateAccount(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, corebank.ErrDuplicateAccount),
			repo.EXPECT().
				CreateAccount(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(&corebank.Account{Number: 2100000001, Owner: owner}, nil),
		)

		acct, err := fx.svc.CreateAccount(context.Background(), corebank.OpenAccountReq{Owner: owner, Pin: "4321"})
		reqrd.NoError(err)
		as.Equal(int64(2100000001), acct.Number)
	})

	t.Run("gives up after a bounded number of collisions", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		repo.EXPECT().
			CreateAccount(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, corebank.ErrDuplicateAccount).
			Times(3)

		_, err := fx.svc.CreateAccount(context.Background(), corebank.OpenAccountReq{Owner: owner, Pin: "4321"})
		as.ErrorIs(err, corebank.ErrInternalServer)
	})

	t.Run("rejects a PIN shorter than four characters", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		repo := mocks.NewMockRepository(ctrl)
		fx := newTestService(tt, repo)

		_, err := fx.svc.CreateAccount(context.Background(), corebank.OpenAccountReq{Owner: owner, Pin: "123"})
		as.ErrorAs(err, &corebank.ErrBadRequest{})
	})
}

// condStore is a single-account in-memory Repository with the same
// conditional-write semantics as the Postgres endpoint: a balance update
// matches only while the stored balance still equals the one the caller
// read. Its barrier holds the first two readers until both have observed
// the same balance, forcing their writes to race at the conditional
// update.
type condStore struct {
	mu      sync.Mutex
	acct    corebank.Account
	reads   atomic.Int32
	barrier sync.WaitGroup
}

func (s *condStore) balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acct.Balance
}

func (s *condStore) FindByOwner(_ context.Context, owner snowflake.ID) (*corebank.Account, error) {
	if owner != s.acct.Owner {
		return nil, corebank.ErrNotFound{}
	}
	s.mu.Lock()
	cp := s.acct
	s.mu.Unlock()
	if s.reads.Add(1) <= 2 {
		s.barrier.Done()
		s.barrier.Wait()
	}
	return &cp, nil
}

func (s *condStore) FindByNumber(_ context.Context, number int64) (*corebank.Account, error) {
	if number != s.acct.Number {
		return nil, corebank.ErrNotFound{Number: number}
	}
	s.mu.Lock()
	cp := s.acct
	s.mu.Unlock()
	return &cp, nil
}

func (s *condStore) CreateAccount(context.Context, int64, corebank.CreateAccountReq) (*corebank.Account, error) {
	return nil, corebank.ErrInternalServer
}

func (s *condStore) AccountEntries(context.Context, int64) ([]corebank.Entry, error) {
	return nil, nil
}

func (s *condStore) WithinTx(_ context.Context, fn func(corebank.BalanceTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&condStoreTx{s: s})
}

// condStoreTx runs under the store mutex held by WithinTx.
type condStoreTx struct {
	s *condStore
}

func (t *condStoreTx) UpdateOwnerBalance(_ context.Context, owner snowflake.ID, old, balance decimal.Decimal) (int64, error) {
	if owner != t.s.acct.Owner || !t.s.acct.Balance.Equal(old) {
		return 0, nil
	}
	t.s.acct.Balance = balance
	return 1, nil
}

func (t *condStoreTx) UpdateAccountBalance(_ context.Context, number int64, old, balance decimal.Decimal) (int64, error) {
	if number != t.s.acct.Number || !t.s.acct.Balance.Equal(old) {
		return 0, nil
	}
	t.s.acct.Balance = balance
	return 1, nil
}

func (t *condStoreTx) RecordEntry(context.Context, corebank.Entry) error {
	return nil
}
