package corebank

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LocalHelper wires a direct pgx connection for local development and
// integration tests: schema setup, teardown, and account seeding.
type LocalHelper struct {
	Conn *pgx.Conn
}

func NewLocalHelper(cfg *Config) (*LocalHelper, error) {
	conn, err := pgx.Connect(context.Background(), cfg.Database.ConnectionString)
	if err != nil {
		return nil, err
	}
	return &LocalHelper{Conn: conn}, nil
}

func (lh *LocalHelper) InitDB() (func(), error) {
	initSQLpath := filepath.Join("testdata", "init_db.sql")
	bits, err := os.ReadFile(initSQLpath)
	if err != nil {
		return nil, err
	}
	if _, err = lh.Conn.Exec(context.Background(), string(bits)); err != nil {
		return nil, err
	}
	return lh.teardownDB(), err
}

// SeedAccount inserts an account row directly, hashing the given PIN.
func (lh *LocalHelper) SeedAccount(number int64, owner snowflake.ID, balance decimal.Decimal, pin string) error {
	hash, err := HashPin(pin)
	if err != nil {
		return err
	}
	sql := `
	INSERT INTO accounts (number, owner_id, balance, pin_hash)
	VALUES ($1, $2, $3, $4);
	`
	_, err = lh.Conn.Exec(context.Background(), sql, number, owner.Int64(), balance, hash)
	return err
}

func (lh *LocalHelper) teardownDB() func() {
	return func() {
		defer lh.Conn.Close(context.Background())

		tearSQLpath := filepath.Join("testdata", "teardown_db.sql")
		bits, err := os.ReadFile(tearSQLpath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "DB cleanup read teardown sql: %s", err.Error())
			return
		}
		if _, err = lh.Conn.Exec(context.Background(), string(bits)); err != nil {
			fmt.Fprintf(os.Stderr, "DB cleanup exec teardown sql: %s", err.Error())
			return
		}
	}
}
