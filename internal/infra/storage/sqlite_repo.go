package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payload := string(event.Payload)
	if payload == "" {
		payload = "null"
	}

	query := `
		INSERT INTO events (id, timestamp, virtual_time, event_type, subject_id, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.VirtualTime, event.EventType,
		event.SubjectID, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var payloadStr string
		err := rows.Scan(&e.ID, &e.Timestamp, &e.VirtualTime, &e.EventType, &e.SubjectID, &payloadStr)
		if err != nil {
			return nil, err
		}
		e.Payload = json.RawMessage(payloadStr)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetAll(ctx context.Context) ([]StoredEvent, error) {
	query := `SELECT id, timestamp, virtual_time, event_type, subject_id, payload FROM events ORDER BY virtual_time ASC, timestamp ASC`
	return r.getMany(ctx, query)
}

func (r *SQLiteEventRepository) GetBySubjectID(ctx context.Context, subjectID string) ([]StoredEvent, error) {
	query := `SELECT id, timestamp, virtual_time, event_type, subject_id, payload FROM events WHERE subject_id = ? ORDER BY virtual_time ASC, timestamp ASC`
	return r.getMany(ctx, query, subjectID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, eventType string) ([]StoredEvent, error) {
	query := `SELECT id, timestamp, virtual_time, event_type, subject_id, payload FROM events WHERE event_type = ? ORDER BY virtual_time ASC, timestamp ASC`
	return r.getMany(ctx, query, eventType)
}

func (r *SQLiteEventRepository) GetSince(ctx context.Context, virtualTime float64) ([]StoredEvent, error) {
	query := `SELECT id, timestamp, virtual_time, event_type, subject_id, payload FROM events WHERE virtual_time >= ? ORDER BY virtual_time ASC, timestamp ASC`
	return r.getMany(ctx, query, virtualTime)
}

// ---------------------------------------------------------
// SQLiteSnapshotRepository
// ---------------------------------------------------------

type SQLiteSnapshotRepository struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

func (r *SQLiteSnapshotRepository) Upsert(ctx context.Context, snapshot PatronSnapshot) error {
	query := `
		INSERT INTO patrons (patron_id, name, archetype, fullness, energy, mood, stomach_load, virtual_time, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(patron_id) DO UPDATE SET
			name=excluded.name,
			archetype=excluded.archetype,
			fullness=excluded.fullness,
			energy=excluded.energy,
			mood=excluded.mood,
			stomach_load=excluded.stomach_load,
			virtual_time=excluded.virtual_time,
			last_updated=excluded.last_updated
	`
	_, err := r.db.ExecContext(ctx, query,
		snapshot.PatronID, snapshot.Name, snapshot.Archetype,
		snapshot.Fullness, snapshot.Energy, snapshot.Mood,
		snapshot.StomachLoad, snapshot.VirtualTime, time.Now(),
	)
	return err
}

func (r *SQLiteSnapshotRepository) GetByPatronID(ctx context.Context, patronID string) (*PatronSnapshot, error) {
	query := `SELECT patron_id, name, archetype, fullness, energy, mood, stomach_load, virtual_time, last_updated FROM patrons WHERE patron_id = ?`
	var p PatronSnapshot
	err := r.db.QueryRowContext(ctx, query, patronID).Scan(
		&p.PatronID, &p.Name, &p.Archetype, &p.Fullness, &p.Energy, &p.Mood,
		&p.StomachLoad, &p.VirtualTime, &p.LastUpdated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteSnapshotRepository) GetAll(ctx context.Context) ([]PatronSnapshot, error) {
	query := `SELECT patron_id, name, archetype, fullness, energy, mood, stomach_load, virtual_time, last_updated FROM patrons`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []PatronSnapshot
	for rows.Next() {
		var p PatronSnapshot
		if err := rows.Scan(&p.PatronID, &p.Name, &p.Archetype, &p.Fullness, &p.Energy, &p.Mood, &p.StomachLoad, &p.VirtualTime, &p.LastUpdated); err != nil {
			return nil, err
		}
		snaps = append(snaps, p)
	}
	return snaps, rows.Err()
}
