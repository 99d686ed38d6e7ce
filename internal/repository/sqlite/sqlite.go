// Package sqlite implements the relational repositories (users,
// sessions, subscriptions) on SQLite.
//
// We use modernc.org/sqlite rather than mattn/go-sqlite3: it is a pure
// Go translation of the SQLite sources, so no CGo and no C toolchain,
// and cross-compilation just works. The driver registers itself with
// database/sql under the name "sqlite" via its init function, which is
// why the import below is blank.
//
// Use ":memory:" as the path for a throwaway database — the repository
// tests rely on that.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces for users, sessions, and subscriptions. It is created once
// at startup by the server and shared by every request — sql.DB is a
// pool, not a single connection, so this is safe for concurrent use.
type DB struct {
	conn *sql.DB
}

// New opens the database, verifies the connection, applies pragmas,
// and runs migrations. Callers own the returned DB and must Close it.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection only. SQLite serializes writes anyway, the
	// pragmas below are per-connection, and each ":memory:" connection
	// would otherwise be a separate empty database.
	conn.SetMaxOpenConns(1)

	// sql.Open is lazy; Ping forces a real connection so a bad path
	// surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — required
	// for a server where concurrent requests share the pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. sessions.user_id and
	// subscriptions.user_id reference users(id), so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. The server defers this during
// graceful shutdown so WAL content is flushed before exit.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent, so it runs unconditionally at every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	// The UNIQUE index makes (user_id, topic) a true set: saving an
	// already-present pair is ignored rather than duplicated, and the
	// reported insert counts stay honest.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS subscriptions (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			topic   TEXT NOT NULL,
			UNIQUE (user_id, topic)
		);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id ON subscriptions(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating subscriptions table: %w", err)
	}

	return nil
}
