package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/eventscope/eventscope/internal/models"
)

// InsertEvent persists an event and returns inserted=false when it is a duplicate.
//
// Duplicate detection is enforced by the primary key on event_id, which is
// compatible with retries and re-submitted files.
func (p *PostgresStore) InsertEvent(ctx context.Context, ev *models.Event) (bool, error) {
	if ev.EventID == "" || ev.EventName == "" {
		return false, errors.New("eventID/eventName required")
	}

	meta := ev.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return false, err
	}

	// RETURNING 1 only when inserted; duplicates return no rows.
	var one int
	err = p.pool.QueryRow(ctx, `
		INSERT INTO events(event_id, event_name, description, start_date, end_date,
		                   duration_minutes, parent_event_id, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING 1
	`, ev.EventID, ev.EventName, ev.Description, ev.StartDate, ev.EndDate,
		ev.DurationMinutes, ev.ParentEventID, metaJSON).Scan(&one)

	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// GetEvent fetches one event by id. Returns ErrNotFound when no row matches.
func (p *PostgresStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT event_id, event_name, COALESCE(description, ''), start_date, end_date,
		       duration_minutes, parent_event_id, metadata
		FROM events
		WHERE event_id = $1
	`, eventID)

	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ev, err
}

// ListChildren returns the events whose parent_event_id equals parentID,
// ordered by ascending start time. Used for hierarchy and path adjacency.
func (p *PostgresStore) ListChildren(ctx context.Context, parentID string) ([]models.Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT event_id, event_name, COALESCE(description, ''), start_date, end_date,
		       duration_minutes, parent_event_id, metadata
		FROM events
		WHERE parent_event_id = $1
		ORDER BY start_date
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListContained returns the events fully contained in [from, to], ordered by
// ascending start time. Used by the temporal analytics window reads.
func (p *PostgresStore) ListContained(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT event_id, event_name, COALESCE(description, ''), start_date, end_date,
		       duration_minutes, parent_event_id, metadata
		FROM events
		WHERE start_date >= $1 AND end_date <= $2
		ORDER BY start_date
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// scanEvent decodes one event row, including the jsonb metadata bag.
func scanEvent(row pgx.Row) (*models.Event, error) {
	var (
		ev       models.Event
		metaJSON []byte
	)
	err := row.Scan(&ev.EventID, &ev.EventName, &ev.Description, &ev.StartDate,
		&ev.EndDate, &ev.DurationMinutes, &ev.ParentEventID, &metaJSON)
	if err != nil {
		return nil, err
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &ev.Metadata); err != nil {
			return nil, err
		}
	}
	ev.StartDate = ev.StartDate.UTC()
	ev.EndDate = ev.EndDate.UTC()
	return &ev, nil
}

func collectEvents(rows pgx.Rows) ([]models.Event, error) {
	var out []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}
