package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventscope/eventscope/internal/store"
)

// RegisterJobRoutes registers the ingestion-trigger endpoints.
//
// POST /jobs
//   - Accepts one multipart file field named "file"
//   - Stages the upload under uploadDir and creates a PENDING job; a worker
//     claims the job, ingests the file and deletes it
//   - Returns 202: ingestion is asynchronous, poll GET /jobs/:id
//
// GET /jobs/:id
//   - Returns the job record with the latest committed progress
func RegisterJobRoutes(r gin.IRoutes, st *store.PostgresStore, uploadDir string) {
	r.POST("/jobs", func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' required"})
			return
		}

		// Staged under a fresh name so concurrent uploads of the same
		// filename never collide.
		dst := filepath.Join(uploadDir, uuid.New().String()+filepath.Ext(fileHeader.Filename))
		if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
			return
		}

		job, err := st.CreateJob(c.Request.Context(), dst)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
			return
		}

		c.JSON(http.StatusAccepted, job)
	})

	r.GET("/jobs/:id", func(c *gin.Context) {
		id := c.Param("id")
		// The job_id column is a UUID; reject garbage before it reaches
		// Postgres as a type error.
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}

		job, err := st.GetJob(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}
		c.JSON(http.StatusOK, job)
	})
}
