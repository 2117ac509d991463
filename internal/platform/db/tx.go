package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// RunInTx starts a transaction and runs fn. nil commits, an error (or a
// panic) rolls back before it propagates.
func RunInTx(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTxx(ctx, txOptions(db.DriverName()))
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func txOptions(driver string) *sql.TxOptions {
	if driver == "mysql" {
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	// go-sqlite3 only supports the default level
	return nil
}

// ForUpdate returns the row-lock suffix for the connection's dialect. SQLite
// has none; its transactions already hold the write lock.
func ForUpdate(q DBTX) string {
	if q.DriverName() == "mysql" {
		return " FOR UPDATE"
	}
	return ""
}

// IsDuplicateKey reports unique-constraint violations from either driver.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
