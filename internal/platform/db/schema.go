package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	surname        VARCHAR(50)  NOT NULL,
	firstname      VARCHAR(50)  NOT NULL,
	middle_initial CHAR(1)      NULL,
	username       VARCHAR(30)  NOT NULL,
	password_hash  VARCHAR(255) NOT NULL,
	display_name   VARCHAR(100) NOT NULL,
	is_admin       TINYINT(1)   NOT NULL DEFAULT 0,
	created_at     DATETIME(6)  NOT NULL,
	UNIQUE KEY uq_users_username (username)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS books (
	id                   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	author               VARCHAR(255) NOT NULL,
	title                VARCHAR(255) NOT NULL,
	publication          VARCHAR(255) NOT NULL,
	copyright_year       INT          NOT NULL,
	physical_description VARCHAR(500) NOT NULL,
	series               VARCHAR(255) NULL,
	isbn                 VARCHAR(20)  NOT NULL,
	subject              VARCHAR(255) NOT NULL,
	call_number          VARCHAR(50)  NOT NULL,
	accession_number     VARCHAR(50)  NOT NULL,
	location             VARCHAR(100) NOT NULL,
	total_copies         INT          NOT NULL DEFAULT 1,
	available_copies     INT          NOT NULL DEFAULT 1,
	created_at           DATETIME(6)  NOT NULL,
	updated_at           DATETIME(6)  NOT NULL,
	KEY idx_books_isbn (isbn),
	KEY idx_books_title (title),
	CONSTRAINT chk_books_copies CHECK (total_copies >= 1 AND available_copies >= 0 AND available_copies <= total_copies)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS borrowings (
	id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	reference     CHAR(26)        NOT NULL,
	user_id       BIGINT UNSIGNED NOT NULL,
	book_id       BIGINT UNSIGNED NOT NULL,
	borrowed_date DATETIME(6)     NOT NULL,
	due_date      DATETIME(6)     NOT NULL,
	returned_date DATETIME(6)     NULL,
	status        ENUM('borrowed','overdue','returned') NOT NULL DEFAULT 'borrowed',
	notes         TEXT            NULL,
	UNIQUE KEY uq_borrowings_reference (reference),
	KEY idx_borrowings_user_status (user_id, status),
	KEY idx_borrowings_book_status (book_id, status),
	KEY idx_borrowings_borrowed_date (borrowed_date),
	CONSTRAINT fk_borrowings_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
	CONSTRAINT fk_borrowings_book FOREIGN KEY (book_id) REFERENCES books (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	surname        TEXT     NOT NULL,
	firstname      TEXT     NOT NULL,
	middle_initial TEXT     NULL,
	username       TEXT     NOT NULL UNIQUE,
	password_hash  TEXT     NOT NULL,
	display_name   TEXT     NOT NULL,
	is_admin       BOOLEAN  NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS books (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	author               TEXT     NOT NULL,
	title                TEXT     NOT NULL,
	publication          TEXT     NOT NULL,
	copyright_year       INTEGER  NOT NULL,
	physical_description TEXT     NOT NULL,
	series               TEXT     NULL,
	isbn                 TEXT     NOT NULL,
	subject              TEXT     NOT NULL,
	call_number          TEXT     NOT NULL,
	accession_number     TEXT     NOT NULL,
	location             TEXT     NOT NULL,
	total_copies         INTEGER  NOT NULL DEFAULT 1,
	available_copies     INTEGER  NOT NULL DEFAULT 1,
	created_at           DATETIME NOT NULL,
	updated_at           DATETIME NOT NULL,
	CHECK (total_copies >= 1 AND available_copies >= 0 AND available_copies <= total_copies)
)`,
	`CREATE INDEX IF NOT EXISTS idx_books_isbn ON books (isbn)`,
	`CREATE INDEX IF NOT EXISTS idx_books_title ON books (title)`,

	`CREATE TABLE IF NOT EXISTS borrowings (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	reference     TEXT     NOT NULL UNIQUE,
	user_id       INTEGER  NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	book_id       INTEGER  NOT NULL REFERENCES books (id) ON DELETE CASCADE,
	borrowed_date DATETIME NOT NULL,
	due_date      DATETIME NOT NULL,
	returned_date DATETIME NULL,
	status        TEXT     NOT NULL DEFAULT 'borrowed' CHECK (status IN ('borrowed','overdue','returned')),
	notes         TEXT     NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_borrowings_user_status ON borrowings (user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_borrowings_book_status ON borrowings (book_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_borrowings_borrowed_date ON borrowings (borrowed_date)`,
}

// Migrate creates the users, books and borrowings tables if missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts := mysqlSchema
	if db.DriverName() == "sqlite3" {
		stmts = sqliteSchema
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate (statement %d): %w", i+1, err)
		}
	}
	return nil
}
