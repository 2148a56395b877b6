package events

import (
	"context"
	"database/sql"
)

// PostgresJournal records one row per event in the device_events table.
// Payloads are not stored; the journal answers "what happened when", not "what was sent".
type PostgresJournal struct {
	db *sql.DB
}

func NewPostgresJournal(db *sql.DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

const insertEventSQL = `
	INSERT INTO device_events (device_id, event_type, category, item_count, occurred_at)
	VALUES ($1, $2, $3, $4, $5)
`

func (j *PostgresJournal) Publish(ctx context.Context, e Event) error {
	var category sql.NullString
	if e.Category != "" {
		category = sql.NullString{String: string(e.Category), Valid: true}
	}
	_, err := j.db.ExecContext(ctx, insertEventSQL, e.DeviceID, string(e.Type), category, e.Count, e.At.UTC())
	return err
}
