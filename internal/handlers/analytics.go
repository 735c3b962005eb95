package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventscope/eventscope/internal/analytics"
)

// parseRFC3339 parses an RFC3339 timestamp and normalizes it to UTC.
func parseRFC3339(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// RegisterAnalyticsRoutes registers the query-path endpoints.
//
// GET /events/:id/tree                      — hierarchy rooted at an event
// GET /analytics/overlaps?from=...&to=...   — intersecting pairs in a window
// GET /analytics/gaps?from=...&to=...       — largest temporal gaps in a window
// GET /analytics/path?source=...&target=... — shortest parent/child path
func RegisterAnalyticsRoutes(r gin.IRoutes, az *analytics.Analyzer) {
	r.GET("/events/:id/tree", func(c *gin.Context) {
		tree, err := az.BuildTree(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAnalyticsError(c, err)
			return
		}
		c.JSON(http.StatusOK, tree)
	})

	r.GET("/analytics/overlaps", func(c *gin.Context) {
		from, to, ok := windowParams(c)
		if !ok {
			return
		}
		groups, err := az.FindOverlaps(c.Request.Context(), from, to)
		if err != nil {
			respondAnalyticsError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"overlaps": groups, "count": len(groups)})
	})

	r.GET("/analytics/gaps", func(c *gin.Context) {
		from, to, ok := windowParams(c)
		if !ok {
			return
		}
		report, err := az.FindGaps(c.Request.Context(), from, to)
		if err != nil {
			respondAnalyticsError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	})

	r.GET("/analytics/path", func(c *gin.Context) {
		result, err := az.FindPath(c.Request.Context(), c.Query("source"), c.Query("target"))
		if err != nil {
			respondAnalyticsError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

// windowParams reads and validates the from/to query bounds. On failure it
// writes the 400 response itself and returns ok=false.
func windowParams(c *gin.Context) (time.Time, time.Time, bool) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return time.Time{}, time.Time{}, false
	}

	from, err := parseRFC3339(fromStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
		return time.Time{}, time.Time{}, false
	}
	to, err := parseRFC3339(toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// respondAnalyticsError maps the analytics error taxonomy onto HTTP codes:
// validation failures are 400, missing events and absent paths are 404,
// anything else is a 500.
func respondAnalyticsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, analytics.ErrNotFound), errors.Is(err, analytics.ErrNoPath):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
	}
}
