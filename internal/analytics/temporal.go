package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/eventscope/eventscope/internal/models"
	"github.com/eventscope/eventscope/internal/store"
)

// maxPathHops bounds the breadth-first path search. Paths needing more hops
// are abandoned and reported as not found.
const maxPathHops = 10

// FindOverlaps returns one group per unordered pair of events fully
// contained in [from, to] whose intervals intersect, together with the
// intersection interval.
func (a *Analyzer) FindOverlaps(ctx context.Context, from, to time.Time) ([]models.OverlapGroup, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: window start must be before window end", ErrValidation)
	}

	events, err := a.source.ListContained(ctx, from, to)
	if err != nil {
		return nil, err
	}

	groups := []models.OverlapGroup{}
	seen := map[string]bool{}
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			first, second := events[i], events[j]
			if first.StartDate.After(second.EndDate) || first.EndDate.Before(second.StartDate) {
				continue
			}

			key := pairKey(first.EventID, second.EventID)
			if seen[key] {
				continue
			}
			seen[key] = true

			groups = append(groups, models.OverlapGroup{
				FirstEvent:   first,
				SecondEvent:  second,
				OverlapStart: laterOf(first.StartDate, second.StartDate),
				OverlapEnd:   earlierOf(first.EndDate, second.EndDate),
			})
		}
	}
	return groups, nil
}

// FindGaps reports every positive gap between consecutive events (by start
// time) fully contained in [from, to], sorted descending by duration, along
// with the single largest. An empty window yields an empty report, not an
// error.
func (a *Analyzer) FindGaps(ctx context.Context, from, to time.Time) (*models.GapReport, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: window start must be before window end", ErrValidation)
	}

	events, err := a.source.ListContained(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})

	gaps := []models.Gap{}
	for i := 1; i < len(events); i++ {
		prev, cur := events[i-1], events[i]
		if !cur.StartDate.After(prev.EndDate) {
			continue
		}
		gaps = append(gaps, models.Gap{
			BeforeEventID:   prev.EventID,
			BeforeEventName: prev.EventName,
			AfterEventID:    cur.EventID,
			AfterEventName:  cur.EventName,
			GapMinutes:      models.DurationMinutes(prev.EndDate, cur.StartDate),
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].GapMinutes > gaps[j].GapMinutes
	})

	report := &models.GapReport{AllGaps: gaps}
	if len(gaps) > 0 {
		largest := gaps[0]
		report.LargestGap = &largest
	}
	return report, nil
}

// FindPath finds the shortest parent/child path between two distinct events
// via breadth-first search over the undirected parent-pointer graph. Each
// explored path is simple (no event revisited), which also guards against
// cyclic parent data; paths beyond maxPathHops are abandoned.
func (a *Analyzer) FindPath(ctx context.Context, sourceID, targetID string) (*models.PathResult, error) {
	if sourceID == "" || targetID == "" {
		return nil, fmt.Errorf("%w: source and target ids are required", ErrValidation)
	}
	if sourceID == targetID {
		return nil, fmt.Errorf("%w: source and target must differ", ErrValidation)
	}

	// Cache events as they are fetched; also verifies both endpoints exist.
	cache := map[string]*models.Event{}
	for _, id := range []string{sourceID, targetID} {
		if _, err := a.cachedEvent(ctx, cache, id); err != nil {
			return nil, err
		}
	}

	queue := [][]string{{sourceID}}
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		last := path[len(path)-1]
		if last == targetID {
			return a.expandPath(ctx, cache, path)
		}
		if len(path)-1 >= maxPathHops {
			continue
		}

		neighbors, err := a.neighbors(ctx, cache, last)
		if err != nil {
			return nil, err
		}
		for _, next := range neighbors {
			if onPath(path, next) {
				continue
			}
			extended := make([]string, len(path), len(path)+1)
			copy(extended, path)
			queue = append(queue, append(extended, next))
		}
	}

	return nil, fmt.Errorf("%w: %s to %s within %d hops", ErrNoPath, sourceID, targetID, maxPathHops)
}

// neighbors returns the ids adjacent to eventID: its parent and its children.
func (a *Analyzer) neighbors(ctx context.Context, cache map[string]*models.Event, eventID string) ([]string, error) {
	ev, err := a.cachedEvent(ctx, cache, eventID)
	if err != nil {
		return nil, err
	}

	var out []string
	if ev.ParentEventID != nil && *ev.ParentEventID != "" {
		// Dangling parent references are tolerated, not traversed.
		if _, err := a.cachedEvent(ctx, cache, *ev.ParentEventID); err == nil {
			out = append(out, *ev.ParentEventID)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	children, err := a.source.ListChildren(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		child := children[i]
		cache[child.EventID] = &child
		out = append(out, child.EventID)
	}
	return out, nil
}

// cachedEvent fetches an event through the cache, mapping missing rows to
// ErrNotFound.
func (a *Analyzer) cachedEvent(ctx context.Context, cache map[string]*models.Event, eventID string) (*models.Event, error) {
	if ev, ok := cache[eventID]; ok {
		return ev, nil
	}
	ev, err := a.source.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, eventID)
		}
		return nil, err
	}
	cache[eventID] = ev
	return ev, nil
}

// expandPath resolves a path of ids into full event records and sums their
// durations over every member, endpoints included.
func (a *Analyzer) expandPath(ctx context.Context, cache map[string]*models.Event, ids []string) (*models.PathResult, error) {
	result := &models.PathResult{Path: make([]models.Event, 0, len(ids))}
	for _, id := range ids {
		ev, err := a.cachedEvent(ctx, cache, id)
		if err != nil {
			return nil, err
		}
		result.Path = append(result.Path, *ev)
		result.TotalDurationMinutes += ev.DurationMinutes
	}
	return result, nil
}

// onPath reports whether id already appears on the current path.
func onPath(path []string, id string) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
