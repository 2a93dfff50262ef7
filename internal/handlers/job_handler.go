package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"finara/internal/models"
	"finara/internal/scheduler"
)

// JobRunner triggers and reports on the background jobs.
type JobRunner interface {
	RunNow(ctx context.Context, name string) (*scheduler.Run, error)
	States() ([]models.JobState, error)
}

// JobHandler exposes the pipeline job endpoints.
type JobHandler struct {
	runner JobRunner
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(runner JobRunner) *JobHandler {
	return &JobHandler{runner: runner}
}

// RunJob executes a job synchronously and returns its result counts. The run
// is detached from request cancellation so a dropped client cannot abort a
// half-sent batch.
// @Summary     Run a job
// @Description Run monthly-reports or recurring-transactions now (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Param       name      path   string true "Job name"
// @Success     200 {object} scheduler.Run
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Unknown job"
// @Failure     409 {object} ErrorResponse "Job already running"
// @Failure     500 {object} ErrorResponse "Job failed"
// @Router      /pipeline/jobs/{name}/run [post]
func (h *JobHandler) RunJob(c *gin.Context) {
	run, err := h.runner.RunNow(context.WithoutCancel(c.Request.Context()), c.Param("name"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run})
}

// ListJobs returns the persisted state of every registered job.
// @Summary     List jobs
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {array} models.JobState
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /pipeline/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	states, err := h.runner.States()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": states})
}
