package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// postgresConn is the part of *sql.DB the journal setup needs.
type postgresConn interface {
	PingContext(ctx context.Context) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Close() error
}

var journalSchema = []string{
	`CREATE TABLE IF NOT EXISTS device_events (
		id BIGSERIAL PRIMARY KEY,
		device_id VARCHAR(64) NOT NULL,
		event_type VARCHAR(32) NOT NULL,
		category VARCHAR(16),
		item_count INTEGER NOT NULL DEFAULT 0,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_device_events_device_id ON device_events(device_id)`,
	`CREATE INDEX IF NOT EXISTS idx_device_events_occurred_at ON device_events(occurred_at)`,
}

// ConnectPostgres connects the event journal database and creates its tables.
// PostgresDB is only set once the journal is usable.
func ConnectPostgres(postgresURI string) error {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := preparePostgres(context.Background(), db); err != nil {
		return err
	}
	PostgresDB = db
	return nil
}

// preparePostgres pings conn and creates the journal tables, closing conn on failure.
func preparePostgres(ctx context.Context, conn postgresConn) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return err
	}
	log.Println("✅ Connected to PostgreSQL")

	for _, query := range journalSchema {
		if _, err := conn.ExecContext(ctx, query); err != nil {
			conn.Close()
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
