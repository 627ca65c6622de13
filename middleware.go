package corebank

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
)

type Middleware func(Service) Service

//
// Instrumentation middleware
//

type instrumentMiddleware struct {
	next Service
	m    *Metrics
}

var (
	_ Service = (*instrumentMiddleware)(nil)
)

func NewInstrumentMiddleware(m *Metrics) Middleware {
	return func(next Service) Service {
		return &instrumentMiddleware{
			next: next,
			m:    m,
		}
	}
}

func (im *instrumentMiddleware) CreateAccount(ctx context.Context, req OpenAccountReq) (acct *Account, err error) {
	start := time.Now()
	defer func() { im.m.observe("create_account", start, err) }()
	return im.next.CreateAccount(ctx, req)
}

func (im *instrumentMiddleware) Deposit(ctx context.Context, req DepositReq) (resp *DepositResp, err error) {
	start := time.Now()
	defer func() { im.m.observe("deposit", start, err) }()
	return im.next.Deposit(ctx, req)
}

func (im *instrumentMiddleware) Withdraw(ctx context.Context, req WithdrawReq) (resp *WithdrawResp, err error) {
	start := time.Now()
	defer func() { im.m.observe("withdraw", start, err) }()
	return im.next.Withdraw(ctx, req)
}

func (im *instrumentMiddleware) Transfer(ctx context.Context, req TransferReq) (resp *TransferResp, err error) {
	start := time.Now()
	defer func() { im.m.observe("transfer", start, err) }()
	return im.next.Transfer(ctx, req)
}

func (im *instrumentMiddleware) Balance(ctx context.Context, req BalanceReq) (bal *decimal.Decimal, err error) {
	start := time.Now()
	defer func() { im.m.observe("balance", start, err) }()
	return im.next.Balance(ctx, req)
}

func (im *instrumentMiddleware) Statement(ctx context.Context, w io.Writer, req StatementReq) (err error) {
	start := time.Now()
	defer func() { im.m.observe("statement", start, err) }()
	return im.next.Statement(ctx, w, req)
}

//
// Rate limiting middlewares
//

// limitMiddleware sheds load by bounding in-flight requests per operation
// with a weighted semaphore and an acquisition timeout. Limits are static;
// tune per deployment.
type limitMiddleware struct {
	next    Service
	limits  *ServiceLimits
	timeout time.Duration
}

var (
	_ Service = (*limitMiddleware)(nil)
)

type ServiceLimits struct {
	CreateAccount *semaphore.Weighted
	Deposit       *semaphore.Weighted
	Withdraw      *semaphore.Weighted
	Transfer      *semaphore.Weighted
	Balance       *semaphore.Weighted
	Statement     *semaphore.Weighted
}

const defaultAcquireTimeout = 3 * time.Second

func NewLimitMiddleware(limits *ServiceLimits) Middleware {
	return func(next Service) Service {
		return &limitMiddleware{
			next:    next,
			limits:  limits,
			timeout: defaultAcquireTimeout,
		}
	}
}

func (l *limitMiddleware) acquire(ctx context.Context, sem *semaphore.Weighted) (func(), error) {
	actx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	if err := sem.Acquire(actx, 1); err != nil {
		return nil, ErrInternalServer
	}
	return func() { sem.Release(1) }, nil
}

func (l *limitMiddleware) CreateAccount(ctx context.Context, req OpenAccountReq) (*Account, error) {
	release, err := l.acquire(ctx, l.limits.CreateAccount)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.CreateAccount(ctx, req)
}

func (l *limitMiddleware) Deposit(ctx context.Context, req DepositReq) (*DepositResp, error) {
	release, err := l.acquire(ctx, l.limits.Deposit)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Deposit(ctx, req)
}

func (l *limitMiddleware) Withdraw(ctx context.Context, req WithdrawReq) (*WithdrawResp, error) {
	release, err := l.acquire(ctx, l.limits.Withdraw)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Withdraw(ctx, req)
}

func (l *limitMiddleware) Transfer(ctx context.Context, req TransferReq) (*TransferResp, error) {
	release, err := l.acquire(ctx, l.limits.Transfer)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Transfer(ctx, req)
}

func (l *limitMiddleware) Balance(ctx context.Context, req BalanceReq) (*decimal.Decimal, error) {
	release, err := l.acquire(ctx, l.limits.Balance)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Balance(ctx, req)
}

func (l *limitMiddleware) Statement(ctx context.Context, w io.Writer, req StatementReq) error {
	release, err := l.acquire(ctx, l.limits.Statement)
	if err != nil {
		return err
	}
	defer release()
	return l.next.Statement(ctx, w, req)
}

type ServiceBreaker struct {
	CreateAccount *gobreaker.TwoStepCircuitBreaker[*Account]
	Deposit       *gobreaker.TwoStepCircuitBreaker[*DepositResp]
	Withdraw      *gobreaker.TwoStepCircuitBreaker[*WithdrawResp]
	Transfer      *gobreaker.TwoStepCircuitBreaker[*TransferResp]
	Balance       *gobreaker.TwoStepCircuitBreaker[*decimal.Decimal]
	Statement     *gobreaker.TwoStepCircuitBreaker[interface{}]
}

// circuitBreakMiddleware trips per-operation breakers on internal failures
// only; business-rule rejections (bad amount, wrong PIN, insufficient funds)
// never count against the breaker.
type circuitBreakMiddleware struct {
	next  Service
	brkrs *ServiceBreaker
}

var (
	_ Service = (*circuitBreakMiddleware)(nil)
)

func NewCircuitBreakMiddleware(brkrs *ServiceBreaker) Middleware {
	return func(next Service) Service {
		return &circuitBreakMiddleware{
			next:  next,
			brkrs: brkrs,
		}
	}
}

func breakerSuccess(err error) bool {
	return err == nil || !errors.Is(err, ErrInternalServer)
}

func (c *circuitBreakMiddleware) CreateAccount(ctx context.Context, req OpenAccountReq) (*Account, error) {
	done, err := c.brkrs.CreateAccount.Allow()
	if err != nil {
		return nil, ErrInternalServer
	}
	acct, err := c.next.CreateAccount(ctx, req)
	done(breakerSuccess(err))
	return acct, err
}

func (c *circuitBreakMiddleware) Deposit(ctx context.Context, req DepositReq) (*DepositResp, error) {
	done, err := c.brkrs.Deposit.Allow()
	if err != nil {
		return nil, ErrInternalServer
	}
	resp, err := c.next.Deposit(ctx, req)
	done(breakerSuccess(err))
	return resp, err
}

func (c *circuitBreakMiddleware) Withdraw(ctx context.Context, req WithdrawReq) (*WithdrawResp, error) {
	done, err := c.brkrs.Withdraw.Allow()
	if err != nil {
		return nil, ErrInternalServer
	}
	resp, err := c.next.Withdraw(ctx, req)
	done(breakerSuccess(err))
	return resp, err
}

func (c *circuitBreakMiddleware) Transfer(ctx context.Context, req TransferReq) (*TransferResp, error) {
	done, err := c.brkrs.Transfer.Allow()
	if err != nil {
		return nil, ErrInternalServer
	}
	resp, err := c.next.Transfer(ctx, req)
	done(breakerSuccess(err))
	return resp, err
}

func (c *circuitBreakMiddleware) Balance(ctx context.Context, req BalanceReq) (*decimal.Decimal, error) {
	done, err := c.brkrs.Balance.Allow()
	if err != nil {
		return nil, ErrInternalServer
	}
	bal, err := c.next.Balance(ctx, req)
	done(breakerSuccess(err))
	return bal, err
}

func (c *circuitBreakMiddleware) Statement(ctx context.Context, w io.Writer, req StatementReq) error {
	done, err := c.brkrs.Statement.Allow()
	if err != nil {
		return ErrInternalServer
	}
	serr := c.next.Statement(ctx, w, req)
	done(breakerSuccess(serr))
	return serr
}
