package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parcelhub/backend/internal/infrastructure/scheduler"
	"github.com/parcelhub/backend/internal/interfaces/http/dto"
)

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// JobLister exposes the maintenance scheduler's run history
type JobLister interface {
	Runs() []scheduler.JobRun
}

// SystemHandler serves health, readiness and build information
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	version   string
	checks    []ReadinessCheck
	jobs      JobLister
}

// NewSystemHandler creates a new SystemHandler. jobs may be nil when the scheduler is disabled.
func NewSystemHandler(version string, jobs JobLister, checks ...ReadinessCheck) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		version:   version,
		checks:    checks,
		jobs:      jobs,
	}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"ParcelHub Ledger API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns the service version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "ParcelHub Ledger API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Health is the liveness probe
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadinessResponse lists the outcome of every readiness check
type ReadinessResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks"`
}

// Ready runs every readiness check with a short timeout and answers 503 if any fails
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			resp.Checks[check.Name] = err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	c.JSON(status, resp)
}

// JobRunResponse is one maintenance job's last run
// @name HandlerJobRunResponse
type JobRunResponse struct {
	Name        string     `json:"name" example:"outbox.purge_sent"`
	Schedule    string     `json:"schedule" example:"@every 1h"`
	Status      string     `json:"status" example:"SUCCESS"`
	Affected    int64      `json:"affected"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty"`
}

// ListJobs godoc
// @ID           listSystemJobs
// @Summary      List maintenance jobs
// @Description  Last run of the outbox purge and dead-entry requeue jobs
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[[]JobRunResponse]
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/jobs [get]
func (h *SystemHandler) ListJobs(c *gin.Context) {
	if h.jobs == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Scheduler is disabled")
		return
	}
	runs := h.jobs.Runs()
	out := make([]JobRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, JobRunResponse{
			Name:        r.Name,
			Schedule:    r.Schedule,
			Status:      string(r.Status),
			Affected:    r.Affected,
			Error:       r.Error,
			StartedAt:   r.StartedAt,
			CompletedAt: r.CompletedAt,
			NextRunAt:   r.NextRunAt,
		})
	}
	h.Success(c, out)
}

// RegisterRoutes mounts the authenticated system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	system.GET("/info", h.GetSystemInfo)
	system.GET("/ping", h.Ping)
	system.GET("/jobs", h.ListJobs)
}
