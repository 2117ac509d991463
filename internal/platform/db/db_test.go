package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/db/dbtest"
)

func Test_DSN(t *testing.T) {
	mysqlDSN := db.DSN(config.DatabaseConfig{
		Driver: config.DriverMySQL, Host: "db", Port: 3306, Username: "lib", Password: "pw", DBName: "library_repository",
	})
	assert.Equal(t, "lib:pw@tcp(db:3306)/library_repository?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC", mysqlDSN)

	sqliteDSN := db.DSN(config.DatabaseConfig{Driver: config.DriverSQLite, Path: "data/library.db"})
	assert.Contains(t, sqliteDSN, "file:data/library.db?")
	assert.Contains(t, sqliteDSN, "_txlock=immediate")
}

func Test_Migrate_IsRepeatable(t *testing.T) {
	conn := dbtest.Open(t)

	require.NoError(t, db.Migrate(context.Background(), conn))
}

func Test_RunInTx_CommitsOnSuccess(t *testing.T) {
	conn := dbtest.Open(t)
	bookID := dbtest.SeedBook(t, conn, "The Left Hand of Darkness", "9780441478125", 2, 2)

	err := db.RunInTx(context.Background(), conn, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `UPDATE books SET available_copies = available_copies - 1 WHERE id = ?`, bookID)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 1, dbtest.AvailableCopies(t, conn, bookID))
}

func Test_RunInTx_RollsBackOnError(t *testing.T) {
	conn := dbtest.Open(t)
	bookID := dbtest.SeedBook(t, conn, "The Dispossessed", "9780061054884", 2, 2)
	boom := errors.New("boom")

	err := db.RunInTx(context.Background(), conn, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE books SET available_copies = 0 WHERE id = ?`, bookID); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, dbtest.AvailableCopies(t, conn, bookID))
}

func Test_RunInTx_RollsBackOnPanic(t *testing.T) {
	conn := dbtest.Open(t)
	bookID := dbtest.SeedBook(t, conn, "Lathe of Heaven", "9780060512750", 3, 3)

	assert.Panics(t, func() {
		_ = db.RunInTx(context.Background(), conn, func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, `UPDATE books SET available_copies = 1 WHERE id = ?`, bookID)
			panic("unexpected")
		})
	})
	assert.Equal(t, 3, dbtest.AvailableCopies(t, conn, bookID))
}

func Test_CheckConstraint_GuardsCopyCounts(t *testing.T) {
	conn := dbtest.Open(t)
	bookID := dbtest.SeedBook(t, conn, "Rocannon's World", "9780060955076", 1, 1)

	_, err := conn.Exec(`UPDATE books SET available_copies = 2 WHERE id = ?`, bookID)
	assert.Error(t, err)

	_, err = conn.Exec(`UPDATE books SET available_copies = -1 WHERE id = ?`, bookID)
	assert.Error(t, err)
}

func Test_IsDuplicateKey(t *testing.T) {
	conn := dbtest.Open(t)
	dbtest.SeedUser(t, conn, "ged", false)

	_, err := conn.Exec(
		`INSERT INTO users (surname, firstname, username, password_hash, display_name, is_admin, created_at)
		 VALUES ('a', 'b', 'ged', 'x', 'ged', 0, ?)`, time.Now().UTC())

	require.Error(t, err)
	assert.True(t, db.IsDuplicateKey(err))
	assert.False(t, db.IsDuplicateKey(errors.New("other")))
}

func Test_ForUpdate(t *testing.T) {
	conn := dbtest.Open(t)

	assert.Equal(t, "", db.ForUpdate(conn))
}
