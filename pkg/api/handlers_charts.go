package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
	"github.com/r3d91ll/tempchart/pkg/pipeline"
)

const (
	// maxTrackedJobs bounds the job table; the oldest finished jobs go first.
	maxTrackedJobs = 64
	// maxPendingRuns bounds submitted runs that have not finished yet.
	// Further POSTs are answered with 429.
	maxPendingRuns = 8
)

// Job states reported by GET /api/charts/:id.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// ChartRunner is the part of *pipeline.Pipeline the chart handlers need.
type ChartRunner interface {
	Submit(ctx context.Context) (uuid.UUID, <-chan pipeline.Result)
	LastSuccessful() (pipeline.Result, bool)
}

// JobResponse is the JSON representation of a submitted run.
type JobResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submittedAt"`
	Format      string `json:"format,omitempty"`
	Location    string `json:"location,omitempty"`
	Size        int    `json:"size,omitempty"`
	DurationMs  int64  `json:"durationMs,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorCode   string `json:"errorCode,omitempty"`
}

// ChartHandler handles chart generation requests. Runs outlive the request
// that submitted them, so they use the handler's base context.
type ChartHandler struct {
	runner ChartRunner
	ctx    context.Context

	mu      sync.RWMutex
	jobs    map[uuid.UUID]*JobResponse
	order   []uuid.UUID
	pending int
}

// NewChartHandler creates a ChartHandler. Canceling ctx cancels runs that
// are still in flight.
func NewChartHandler(ctx context.Context, runner ChartRunner) *ChartHandler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ChartHandler{
		runner: runner,
		ctx:    ctx,
		jobs:   make(map[uuid.UUID]*JobResponse),
	}
}

// RegisterRoutes registers the chart API routes on the router.
func (h *ChartHandler) RegisterRoutes(router *Router) {
	router.POST("/api/charts", h.CreateChart)
	// latest must precede :id, routes match in registration order
	router.GET("/api/charts/latest", h.LatestChart)
	router.GET("/api/charts/:id", h.GetChart)
}

// CreateChart handles POST /api/charts. It starts a run and answers 202
// with the job ID; completion is reported over the websocket and by
// GET /api/charts/:id.
func (h *ChartHandler) CreateChart(w http.ResponseWriter, r *http.Request) {
	if !h.reserve() {
		w.Header().Set("Retry-After", "5")
		WriteError(w, http.StatusTooManyRequests, "too_many_runs",
			"Too many chart runs are pending; retry later")
		return
	}
	id, results := h.runner.Submit(h.ctx)

	job := &JobResponse{
		ID:          id.String(),
		Status:      JobRunning,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}
	h.track(id, job)

	go func() {
		defer h.release()
		for res := range results {
			h.complete(id, res)
		}
	}()

	w.Header().Set("Location", "/api/charts/"+id.String())
	WriteJSON(w, http.StatusAccepted, h.snapshot(id))
}

// GetChart handles GET /api/charts/:id.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(PathParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "Chart ID must be a UUID")
		return
	}

	job := h.snapshot(id)
	if job == nil {
		WriteError(w, http.StatusNotFound, "not_found", "No chart with ID "+id.String())
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// LatestChart handles GET /api/charts/latest by serving the bytes of the
// most recent successful run.
func (h *ChartHandler) LatestChart(w http.ResponseWriter, r *http.Request) {
	res, ok := h.runner.LastSuccessful()
	if !ok || len(res.Data) == 0 {
		WriteError(w, http.StatusNotFound, "no_chart", "No chart has been generated yet")
		return
	}
	w.Header().Set("X-Chart-ID", res.ID.String())
	WriteBytes(w, res.ContentType, "chart"+res.Format.Ext(), res.Data)
}

func (h *ChartHandler) track(id uuid.UUID, job *JobResponse) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.jobs[id] = job
	h.order = append(h.order, id)

	excess := len(h.order) - maxTrackedJobs
	if excess <= 0 {
		return
	}
	kept := h.order[:0]
	for _, jid := range h.order {
		if excess > 0 && h.jobs[jid].Status != JobRunning {
			delete(h.jobs, jid)
			excess--
			continue
		}
		kept = append(kept, jid)
	}
	h.order = kept
}

// reserve claims a pending-run slot.
func (h *ChartHandler) reserve() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pending >= maxPendingRuns {
		return false
	}
	h.pending++
	return true
}

func (h *ChartHandler) release() {
	h.mu.Lock()
	h.pending--
	h.mu.Unlock()
}

func (h *ChartHandler) complete(id uuid.UUID, res pipeline.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	job, ok := h.jobs[id]
	if !ok {
		return
	}
	job.Format = string(res.Format)
	job.Location = res.Location
	job.Size = res.Size
	job.DurationMs = res.Duration.Milliseconds()
	if res.Err != nil {
		job.Status = JobFailed
		job.Error = res.Err.Error()
		if ce, ok := cerrors.AsChartError(res.Err); ok {
			job.ErrorCode = ce.Code
		}
		return
	}
	job.Status = JobCompleted
}

// snapshot returns a copy of the job, or nil if it is unknown.
func (h *ChartHandler) snapshot(id uuid.UUID) *JobResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	job, ok := h.jobs[id]
	if !ok {
		return nil
	}
	cp := *job
	return &cp
}
