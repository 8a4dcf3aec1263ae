package api

import (
	"net/http"
	"time"

	"github.com/r3d91ll/tempchart/pkg/chart"
	"github.com/r3d91ll/tempchart/pkg/config"
)

// SystemHandler serves health and configuration endpoints.
type SystemHandler struct {
	version string
	started time.Time
	config  *config.Config
}

// NewSystemHandler creates a SystemHandler reporting cfg. A nil cfg uses
// the defaults.
func NewSystemHandler(version string, cfg *config.Config) *SystemHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &SystemHandler{
		version: version,
		started: time.Now(),
		config:  cfg,
	}
}

// RegisterRoutes registers the system API routes on the router.
func (h *SystemHandler) RegisterRoutes(router *Router) {
	router.GET("/api/health", h.Health)
	router.GET("/api/config", h.GetConfig)
}

// -----------------------------------------------------------------------------
// API Response Types
// -----------------------------------------------------------------------------

// HealthResponse is the JSON response of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ConfigResponse is the JSON view of the running configuration. Storage
// credentials are never echoed back.
type ConfigResponse struct {
	Chart    ChartResponse    `json:"chart"`
	Output   OutputResponse   `json:"output"`
	Storage  StorageResponse  `json:"storage"`
	Schedule ScheduleResponse `json:"schedule"`
}

// ChartResponse holds the resolved chart settings and page size.
type ChartResponse struct {
	Preset     string       `json:"preset"`
	Settings   chart.Config `json:"settings"`
	PageWidth  float64      `json:"pageWidth"`
	PageHeight float64      `json:"pageHeight"`
}

// OutputResponse is the JSON representation of the output settings.
type OutputResponse struct {
	Format   string `json:"format"`
	Root     string `json:"root,omitempty"`
	Dir      string `json:"dir"`
	BaseName string `json:"baseName"`
}

// StorageResponse is the JSON representation of the object storage settings.
type StorageResponse struct {
	Enabled        bool   `json:"enabled"`
	Endpoint       string `json:"endpoint,omitempty"`
	Bucket         string `json:"bucket,omitempty"`
	Region         string `json:"region,omitempty"`
	Prefix         string `json:"prefix,omitempty"`
	HasCredentials bool   `json:"hasCredentials"`
}

// ScheduleResponse is the JSON representation of the schedule settings.
type ScheduleResponse struct {
	Enabled bool   `json:"enabled"`
	Every   string `json:"every,omitempty"`
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// Health handles GET /api/health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, &HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// GetConfig handles GET /api/config.
func (h *SystemHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	resp, err := configToResponse(h.config)
	if err != nil {
		WriteChartError(w, http.StatusInternalServerError, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func configToResponse(cfg *config.Config) (*ConfigResponse, error) {
	settings, err := cfg.ChartSettings()
	if err != nil {
		return nil, err
	}

	resp := &ConfigResponse{
		Chart: ChartResponse{
			Preset:     cfg.Chart.Preset,
			Settings:   settings,
			PageWidth:  settings.PageWidth,
			PageHeight: settings.PageHeight(),
		},
		Output: OutputResponse{
			Format:   cfg.Output.Format,
			Root:     cfg.Output.Root,
			Dir:      cfg.Output.Dir,
			BaseName: cfg.Output.BaseName,
		},
		Storage: StorageResponse{
			Enabled:        cfg.Storage.Enabled,
			Endpoint:       cfg.Storage.Endpoint,
			Bucket:         cfg.Storage.Bucket,
			Region:         cfg.Storage.Region,
			Prefix:         cfg.Storage.Prefix,
			HasCredentials: cfg.Storage.AccessKey != "" && cfg.Storage.SecretKey != "",
		},
		Schedule: ScheduleResponse{
			Enabled: cfg.Schedule.Enabled,
		},
	}
	if cfg.Schedule.Enabled {
		resp.Schedule.Every = cfg.Schedule.Every.String()
	}
	return resp, nil
}
