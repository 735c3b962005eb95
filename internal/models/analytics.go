package models

import "time"

// TreeNode is one node of a reconstructed event hierarchy. Children are
// ordered by ascending start time.
type TreeNode struct {
	Event
	Children []*TreeNode `json:"children"`
}

// OverlapGroup pairs two events whose intervals intersect together with the
// intersection interval.
type OverlapGroup struct {
	FirstEvent   Event     `json:"first_event"`
	SecondEvent  Event     `json:"second_event"`
	OverlapStart time.Time `json:"overlap_start"`
	OverlapEnd   time.Time `json:"overlap_end"`
}

// Gap is a positive-duration interval between the end of one event and the
// start of the next, under start-time ordering.
type Gap struct {
	BeforeEventID   string `json:"before_event_id"`
	BeforeEventName string `json:"before_event_name"`
	AfterEventID    string `json:"after_event_id"`
	AfterEventName  string `json:"after_event_name"`
	GapMinutes      int64  `json:"gap_minutes"`
}

// GapReport lists every gap found in a window, sorted descending by
// duration, and the single largest one. Both are empty when no positive
// gaps exist.
type GapReport struct {
	LargestGap *Gap  `json:"largest_gap,omitempty"`
	AllGaps    []Gap `json:"all_gaps"`
}

// PathResult is the shortest parent/child path between two events,
// inclusive of both endpoints.
type PathResult struct {
	Path                 []Event `json:"path"`
	TotalDurationMinutes int64   `json:"total_duration_minutes"`
}
