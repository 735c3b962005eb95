// Package analytics answers hierarchical and temporal queries over the
// ingested event set. All operations are read-only and safe to run
// concurrently with ingestion.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventscope/eventscope/internal/models"
	"github.com/eventscope/eventscope/internal/store"
)

// EventSource is what the analytics engine needs from the event store.
type EventSource interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListChildren(ctx context.Context, parentID string) ([]models.Event, error)
	ListContained(ctx context.Context, from, to time.Time) ([]models.Event, error)
}

// Analyzer runs hierarchy and temporal queries against an event source.
type Analyzer struct {
	source EventSource
}

// New creates an analyzer over the given event source.
func New(source EventSource) *Analyzer {
	return &Analyzer{source: source}
}

// BuildTree reconstructs the hierarchy rooted at rootID by expanding child
// links breadth-first. Children are ordered by ascending start time. A
// visited set guards against parent pointers that form cycles; an event
// whose parent lies outside the reachable set is simply not attached.
func (a *Analyzer) BuildTree(ctx context.Context, rootID string) (*models.TreeNode, error) {
	rootEvent, err := a.source.GetEvent(ctx, rootID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rootID)
		}
		return nil, err
	}

	root := &models.TreeNode{Event: *rootEvent, Children: []*models.TreeNode{}}
	visited := map[string]bool{rootID: true}

	queue := []*models.TreeNode{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		children, err := a.source.ListChildren(ctx, node.EventID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if visited[child.EventID] {
				continue
			}
			visited[child.EventID] = true

			childNode := &models.TreeNode{Event: child, Children: []*models.TreeNode{}}
			node.Children = append(node.Children, childNode)
			queue = append(queue, childNode)
		}
	}

	return root, nil
}
