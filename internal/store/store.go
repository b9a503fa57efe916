package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// timeLayout is fixed width and always UTC so text comparison in SQL matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath, creates the schema
// and seeds the default services on first run.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	n, err := s.seedDefaultServices()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("seed services: %w", err)
	}
	if n > 0 {
		log.Infof("Seeded %d default services", n)
	}
	log.Debugf("Opened database %v", dbPath)
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS services (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL UNIQUE,
		hourly_rate  TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS time_entries (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		service_id  INTEGER NOT NULL REFERENCES services(id) ON DELETE CASCADE,
		start_time  TEXT NOT NULL,
		end_time    TEXT,
		notes       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		CHECK (end_time IS NULL OR end_time > start_time)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_service ON time_entries(service_id);
	CREATE INDEX IF NOT EXISTS idx_entries_start   ON time_entries(start_time);

	-- At most one running entry.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_running
		ON time_entries(coalesce(end_time, '')) WHERE end_time IS NULL;

	CREATE TABLE IF NOT EXISTS invoices (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_number  TEXT NOT NULL UNIQUE,
		client_name     TEXT NOT NULL DEFAULT '',
		period_start    TEXT NOT NULL,
		period_end      TEXT NOT NULL,
		total_amount    TEXT NOT NULL,
		notes           TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

type defaultService struct {
	name        string
	rate        int64
	description string
}

var defaultServices = []defaultService{
	{"Consulenza Software", 35, "Consulenza generale su sviluppo software"},
	{"Consulenza AI", 45, "Consulenza su intelligenza artificiale e ML"},
	{"Progettazione e Sviluppo SW", 40, "Progettazione e sviluppo di soluzioni software"},
	{"Progettazione e Sviluppo AI", 50, "Progettazione e sviluppo di soluzioni AI"},
	{"Analisi Dati", 38, "Analisi e visualizzazione dati"},
	{"Data Engineering", 42, "Data engineering e preprocessing"},
}

// seedDefaultServices inserts the default services when the services table is
// empty and returns how many were inserted.
func (s *Store) seedDefaultServices() (int, error) {
	inserted := 0
	err := s.withTx(func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM services`).Scan(&count); err != nil {
			return fmt.Errorf("count services: %w", err)
		}
		if count > 0 {
			return nil
		}
		now := formatTime(time.Now())
		for _, d := range defaultServices {
			_, err := tx.Exec(
				`INSERT INTO services (name, hourly_rate, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
				d.name, decimal.NewFromInt(d.rate).String(), d.description, now, now,
			)
			if err != nil {
				return fmt.Errorf("insert service %q: %w", d.name, err)
			}
			inserted++
		}
		return nil
	})
	return inserted, err
}

// withTx runs fn inside a transaction, committing when fn returns nil.
// fn must only use tx: the pool holds a single connection.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t.Local()
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
