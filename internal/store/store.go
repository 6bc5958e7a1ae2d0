package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the durable local store: mirrored service catalog, bookings
// (authoritative or pending-sync), the sync queue, profiles and preferences.
type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS services (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT,
            service_type TEXT NOT NULL,
            duration_minutes INTEGER NOT NULL DEFAULT 0,
            price INTEGER NOT NULL DEFAULT 0,
            currency TEXT,
            category TEXT,
            capacity INTEGER NOT NULL DEFAULT 0,
            deposit_policy TEXT,
            active BOOLEAN NOT NULL DEFAULT 1,
            tags TEXT,
            metadata TEXT,
            created_at DATETIME,
            updated_at DATETIME
        )`,

		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            service_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            client_name TEXT,
            client_phone TEXT,
            client_email TEXT,
            date DATETIME NOT NULL,
            start_time TEXT,
            end_time TEXT,
            amount INTEGER NOT NULL DEFAULT 0,
            currency TEXT,
            deposit INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'pending',
            payment_status TEXT,
            external_booking_id TEXT,
            external_source TEXT,
            synced BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            entity_type TEXT NOT NULL,
            entity_id TEXT NOT NULL,
            operation TEXT NOT NULL,
            payload TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            scheduled_at DATETIME NOT NULL,
            processed_at DATETIME
        )`,

		`CREATE TABLE IF NOT EXISTS profiles (
            user_id TEXT PRIMARY KEY,
            name TEXT,
            phone TEXT,
            email TEXT,
            preferences TEXT,
            updated_at DATETIME
        )`,

		`CREATE TABLE IF NOT EXISTS user_preferences (
            user_id TEXT NOT NULL,
            key TEXT NOT NULL,
            value TEXT,
            updated_at DATETIME,
            PRIMARY KEY (user_id, key)
        )`,

		`CREATE INDEX IF NOT EXISTS idx_services_type ON services(service_type)`,
		`CREATE INDEX IF NOT EXISTS idx_services_active ON services(active)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_service_id ON bookings(service_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_synced ON bookings(synced)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date)`,

		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_scheduled_at ON sync_queue(scheduled_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %v", query, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
