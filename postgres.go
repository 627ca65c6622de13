package corebank

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	pgSelectAcctByNumberSQL = `
		SELECT number, owner_id, balance, pin_hash, created_at
		FROM accounts
		WHERE number = $1;
	`

	pgSelectAcctByOwnerSQL = `
		SELECT number, owner_id, balance, pin_hash, created_at
		FROM accounts
		WHERE owner_id = $1;
	`

	pgInsertAcctSQL = `
		INSERT INTO accounts (number, owner_id, balance, pin_hash)
		VALUES ($1, $2, 0, $3)
		RETURNING number, owner_id, balance, pin_hash, created_at;
	`

	pgUpdateOwnerBalanceSQL = `
		UPDATE accounts
		SET balance = $1
		WHERE owner_id = $2
		AND balance = $3;
	`

	pgUpdateAcctBalanceSQL = `
		UPDATE accounts
		SET balance = $1
		WHERE number = $2
		AND balance = $3;
	`

	pgInsertEntrySQL = `
		INSERT INTO entries (id, account, typ, amount, counterparty, bank_name)
		VALUES ($1, $2, $3, $4, $5, $6);
	`

	pgSelectEntriesSQL = `
		SELECT id, account, typ, amount, counterparty, bank_name, created_at
		FROM entries
		WHERE account = $1
		ORDER BY created_at, id;
	`
)

const pgUniqueViolationCode = "23505"

type PostgresEndpoint struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

var (
	_ Repository = (*PostgresEndpoint)(nil)
)

func NewPostgresEndpoint(connStr string, log *zerolog.Logger) (*PostgresEndpoint, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	if err = pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	endpt := &PostgresEndpoint{
		pool: pool,
		log:  log,
	}
	return endpt, err
}

func (pg *PostgresEndpoint) FindByNumber(ctx context.Context, number int64) (*Account, error) {
	row := pg.pool.QueryRow(ctx, pgSelectAcctByNumberSQL, number)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound{Number: number}
		}
		return nil, err
	}
	return acct, nil
}

func (pg *PostgresEndpoint) FindByOwner(ctx context.Context, owner snowflake.ID) (*Account, error) {
	row := pg.pool.QueryRow(ctx, pgSelectAcctByOwnerSQL, owner.Int64())
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound{}
		}
		return nil, err
	}
	return acct, nil
}

func (pg *PostgresEndpoint) CreateAccount(ctx context.Context, number int64, req CreateAccountReq) (*Account, error) {
	row := pg.pool.QueryRow(ctx, pgInsertAcctSQL, number, req.Owner.Int64(), req.PinHash)
	acct, err := scanAccount(row)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == pgUniqueViolationCode {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}
	return acct, nil
}

func (pg *PostgresEndpoint) AccountEntries(ctx context.Context, number int64) ([]Entry, error) {
	rows, err := pg.pool.Query(ctx, pgSelectEntriesSQL, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e            Entry
			id           int64
			counterparty *int64
			bankName     *string
		)
		if err = rows.Scan(&id, &e.Account, &e.Typ, &e.Amount, &counterparty, &bankName, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ID = snowflake.ParseInt64(id)
		if counterparty != nil {
			e.Counterparty = *counterparty
		}
		if bankName != nil {
			e.BankName = *bankName
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (pg *PostgresEndpoint) WithinTx(ctx context.Context, fn func(tx BalanceTx) error) error {
	conn, err := pg.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
				pg.log.Err(rerr).Msg("transaction rollback fail on panic")
			}
			panic(p)
		}
	}()

	if err = fn(&pgBalanceTx{tx: tx}); err != nil {
		if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
			pg.log.Err(rerr).Msg("transaction rollback fail")
		}
		return err
	}
	return tx.Commit(ctx)
}

type pgBalanceTx struct {
	tx pgx.Tx
}

var (
	_ BalanceTx = (*pgBalanceTx)(nil)
)

func (t *pgBalanceTx) UpdateOwnerBalance(ctx context.Context, owner snowflake.ID, old, balance decimal.Decimal) (int64, error) {
	ct, err := t.tx.Exec(ctx, pgUpdateOwnerBalanceSQL, balance, owner.Int64(), old)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (t *pgBalanceTx) UpdateAccountBalance(ctx context.Context, number int64, old, balance decimal.Decimal) (int64, error) {
	ct, err := t.tx.Exec(ctx, pgUpdateAcctBalanceSQL, balance, number, old)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (t *pgBalanceTx) RecordEntry(ctx context.Context, e Entry) error {
	var counterparty *int64
	if e.Counterparty != 0 {
		c := e.Counterparty
		counterparty = &c
	}
	var bankName *string
	if e.BankName != "" {
		b := e.BankName
		bankName = &b
	}
	_, err := t.tx.Exec(ctx, pgInsertEntrySQL, e.ID.Int64(), e.Account, e.Typ, e.Amount, counterparty, bankName)
	return err
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		acct  Account
		owner int64
	)
	if err := row.Scan(&acct.Number, &owner, &acct.Balance, &acct.PinHash, &acct.CreatedAt); err != nil {
		return nil, err
	}
	acct.Owner = snowflake.ParseInt64(owner)
	return &acct, nil
}
