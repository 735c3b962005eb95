package models

import "time"

// Event is one historical record with a time interval and an optional
// parent link. Events are created in bulk by the ingestion worker and are
// never updated or deleted afterwards.
type Event struct {
	EventID         string         `json:"event_id"`
	EventName       string         `json:"event_name"`
	Description     string         `json:"description,omitempty"`
	StartDate       time.Time      `json:"start_date"`
	EndDate         time.Time      `json:"end_date"`
	DurationMinutes int64          `json:"duration_minutes"`
	ParentEventID   *string        `json:"parent_event_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// DurationMinutes returns the ceiling of end-start in whole minutes.
// It is recomputed at write time and never trusted from input.
func DurationMinutes(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	mins := int64(d / time.Minute)
	if d%time.Minute != 0 {
		mins++
	}
	return mins
}
