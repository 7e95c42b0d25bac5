package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// connParams are applied by the driver to every pooled connection.
// foreign_keys and busy_timeout are per-connection settings in SQLite, so
// running them once with Exec would only configure whichever connection
// happened to serve it.
//
// _txlock=immediate takes the write lock at BEGIN. The journal appends in
// transactions while history and server requests read, and a deferred
// transaction that upgrades from read to write can fail with SQLITE_BUSY
// instead of waiting out busy_timeout.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
	"_txlock":       {"immediate"},
}

// maxConns allows one writer (the engine goroutine's journal) plus readers
// (history, replay, the runs API). WAL lets readers proceed during a write.
const maxConns = 4

// migration upgrades a database from version-1 to version.
type migration struct {
	version int
	name    string
	up      func(tx *sql.Tx) error
}

// migrations run in order on databases whose user_version is older.
// New databases get the tables from schema.sql and then every migration.
var migrations = []migration{
	{version: 1, name: "index events by kind", up: func(tx *sql.Tx) error {
		// Summary counts (solved, rejected) filter by kind within a run.
		_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_events_run_kind ON events(run_id, kind)`)
		return err
	}},
}

// currentSchemaVersion is the version a fully migrated database reports.
var currentSchemaVersion = migrations[len(migrations)-1].version

// Store is the durable game journal.
type Store struct {
	db *sql.DB
}

// Open creates or opens the journal database at path, then brings its
// schema up to date. Opening an up-to-date database changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sql.Open is lazy; Ping surfaces a bad path now.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return migrate(db)
}

// migrate applies each pending migration in its own transaction together
// with the user_version bump, so a failed step leaves the version behind
// and is retried on the next Open.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		version = m.version
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() // No-op if committed

	if err := m.up(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return tx.Commit()
}

// verifyPragma checks that a pragma is set to the expected value on one
// connection from the pool. Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
