package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3d91ll/tempchart/pkg/chart"
	"github.com/r3d91ll/tempchart/pkg/config"
	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
	"github.com/r3d91ll/tempchart/pkg/export"
	"github.com/r3d91ll/tempchart/pkg/output"
	"github.com/r3d91ll/tempchart/pkg/pipeline"
)

// envelope mirrors APIResponse with the payload left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func memorySink() output.Sink {
	return output.SinkFunc(func(ctx context.Context, a output.Artifact) (string, error) {
		return "mem://" + a.Name, nil
	})
}

func newTestPipeline(t *testing.T, sink output.Sink, notifier pipeline.Notifier) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Options{
		Config:   chart.DefaultConfig(),
		Format:   export.FormatSVG,
		Sink:     sink,
		Notifier: notifier,
		Source:   chart.NewSequenceSource(36.4, 36.9),
	})
	require.NoError(t, err)
	return p
}

// newTestServer wires the same routes as the serve command.
func newTestServer(t *testing.T, p *pipeline.Pipeline, hub *Hub) *httptest.Server {
	t.Helper()
	srv := NewServer(&ServerConfig{EnableLogging: false})
	NewSystemHandler("test", config.Default()).RegisterRoutes(srv.Router())
	NewChartHandler(context.Background(), p).RegisterRoutes(srv.Router())
	if hub != nil {
		NewWebSocketHandler(hub).RegisterRoutes(srv.Router())
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// -----------------------------------------------------------------------------
// Router
// -----------------------------------------------------------------------------

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern, path string
		ok            bool
		id            string
	}{
		{"/api/charts/:id", "/api/charts/abc", true, "abc"},
		{"/api/charts/:id", "/api/charts/abc/", true, "abc"},
		{"/api/charts/:id", "/api/charts", false, ""},
		{"/api/health", "/api/healthz", false, ""},
		{"/api/health", "/api/health", true, ""},
	}
	for _, tt := range tests {
		params, ok := compilePattern(tt.pattern).match(strings.Split(strings.Trim(tt.path, "/"), "/"))
		assert.Equal(t, tt.ok, ok, "%s vs %s", tt.pattern, tt.path)
		if tt.id != "" {
			assert.Equal(t, tt.id, params["id"])
		}
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	rt := NewRouter()
	rt.GET("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, "pong")
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
	env := decodeEnvelope(t, rec.Body)
	assert.False(t, env.Success)
	assert.Equal(t, "method_not_allowed", env.Error.Code)

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pong", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeEnvelope(t, rec.Body).Error.Code)

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":"pong"}`, rec.Body.String())
}

func TestRouter_PathParam(t *testing.T) {
	rt := NewRouter()
	var got string
	rt.GET("/api/charts/:id", func(w http.ResponseWriter, r *http.Request) {
		got = PathParam(r, "id")
	})
	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/charts/42", nil))
	assert.Equal(t, "42", got)
	assert.Empty(t, PathParam(httptest.NewRequest(http.MethodGet, "/", nil), "id"))
}

func TestWriteChartError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteChartError(rec, http.StatusBadRequest, cerrors.Chart(cerrors.ErrChartUnknownPreset, "unknown preset"))
	env := decodeEnvelope(t, rec.Body)
	assert.Equal(t, strings.ToLower(cerrors.ErrChartUnknownPreset), env.Error.Code)
	assert.Equal(t, "unknown preset", env.Error.Message)

	rec = httptest.NewRecorder()
	WriteChartError(rec, http.StatusInternalServerError, errors.New("boom"))
	env = decodeEnvelope(t, rec.Body)
	assert.Equal(t, "internal_error", env.Error.Code)
	assert.Equal(t, "boom", env.Error.Message)
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, strings.ToLower(cerrors.ErrInternalPanic), decodeEnvelope(t, rec.Body).Error.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-7")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-7", rec.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/charts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/charts", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestContentTypeMiddleware(t *testing.T) {
	h := ContentTypeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/charts", strings.NewReader("days=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/charts", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code, "empty bodies pass")
}

func TestOriginSet(t *testing.T) {
	set := newOriginSet([]string{"http://a.example"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, set.checkRequest(req), "same-origin requests carry no Origin")
	req.Header.Set("Origin", "http://a.example")
	assert.True(t, set.checkRequest(req))
	req.Header.Set("Origin", "http://b.example")
	assert.False(t, set.checkRequest(req))

	assert.True(t, newOriginSet([]string{"*"}).checkRequest(req))
}

func TestRequestIDFrom(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}), RequestIDMiddleware, LoggingMiddleware)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), seen)
	assert.Empty(t, RequestIDFrom(context.Background()))
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	ts := newTestServer(t, newTestPipeline(t, memorySink(), nil), nil)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp.Body).Data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestGetConfig_RedactsCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = config.StorageConfig{
		Enabled:   true,
		Endpoint:  "minio:9000",
		Bucket:    "charts",
		AccessKey: "AKIAEXAMPLE",
		SecretKey: "s3cr3t",
	}

	rt := NewRouter()
	NewSystemHandler("test", cfg).RegisterRoutes(rt)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "AKIAEXAMPLE")
	assert.NotContains(t, body, "s3cr3t")

	var got ConfigResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, strings.NewReader(body)).Data, &got))
	assert.True(t, got.Storage.HasCredentials)
	assert.Equal(t, "wide", got.Chart.Preset)
	assert.Equal(t, 2300.0, got.Chart.PageWidth)
	assert.Equal(t, 1320.0, got.Chart.PageHeight)
	assert.Equal(t, 30, got.Chart.Settings.DayCount)
}

func TestCreateChart_CompletesAndServesLatest(t *testing.T) {
	ts := newTestServer(t, newTestPipeline(t, memorySink(), nil), nil)

	resp, err := http.Get(ts.URL + "/api/charts/latest")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(ts.URL+"/api/charts", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var job JobResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp.Body).Data, &job))
	resp.Body.Close()
	assert.Equal(t, JobRunning, job.Status)
	assert.Equal(t, "/api/charts/"+job.ID, resp.Header.Get("Location"))

	require.Eventually(t, func() bool {
		r, err := http.Get(ts.URL + "/api/charts/" + job.ID)
		if err != nil {
			return false
		}
		defer r.Body.Close()
		var j JobResponse
		if json.Unmarshal(decodeEnvelope(t, r.Body).Data, &j) != nil {
			return false
		}
		job = j
		return j.Status != JobRunning
	}, 10*time.Second, 20*time.Millisecond)

	assert.Equal(t, JobCompleted, job.Status)
	assert.Equal(t, "mem://test.svg", job.Location)
	assert.Equal(t, "svg", job.Format)
	assert.Greater(t, job.Size, 0)

	resp, err = http.Get(ts.URL + "/api/charts/latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, job.ID, resp.Header.Get("X-Chart-ID"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="chart.svg"`)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Len(t, data, job.Size)
	assert.Contains(t, string(data), "<svg")
}

func TestCreateChart_ReportsFailure(t *testing.T) {
	sink := output.SinkFunc(func(ctx context.Context, a output.Artifact) (string, error) {
		return "", cerrors.IOWrap(errors.New("disk full"), cerrors.ErrOutputWriteFailed, "failed to write chart")
	})
	p := newTestPipeline(t, sink, nil)
	h := NewChartHandler(context.Background(), p)
	rt := NewRouter()
	h.RegisterRoutes(rt)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/charts", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var job JobResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec.Body).Data, &job))
	id := uuid.MustParse(job.ID)

	require.Eventually(t, func() bool {
		j := h.snapshot(id)
		return j != nil && j.Status == JobFailed
	}, 10*time.Second, 10*time.Millisecond)

	j := h.snapshot(id)
	assert.Equal(t, cerrors.ErrOutputWriteFailed, j.ErrorCode)
	assert.Contains(t, j.Error, "disk full")

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "failed runs are never served")
}

func TestGetChart_BadAndUnknownIDs(t *testing.T) {
	rt := NewRouter()
	NewChartHandler(context.Background(), newTestPipeline(t, memorySink(), nil)).RegisterRoutes(rt)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", decodeEnvelope(t, rec.Body).Error.Code)

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrack_PrunesFinishedJobs(t *testing.T) {
	h := NewChartHandler(context.Background(), nil)
	first := uuid.New()
	h.track(first, &JobResponse{ID: first.String(), Status: JobCompleted})
	for i := 0; i < maxTrackedJobs; i++ {
		id := uuid.New()
		h.track(id, &JobResponse{ID: id.String(), Status: JobCompleted})
	}
	assert.Nil(t, h.snapshot(first))
	assert.Len(t, h.order, maxTrackedJobs)
}

func TestTrack_PrunesPastRunningJobs(t *testing.T) {
	h := NewChartHandler(context.Background(), nil)
	running := uuid.New()
	h.track(running, &JobResponse{ID: running.String(), Status: JobRunning})
	finished := uuid.New()
	h.track(finished, &JobResponse{ID: finished.String(), Status: JobFailed})
	for i := 0; i < maxTrackedJobs; i++ {
		id := uuid.New()
		h.track(id, &JobResponse{ID: id.String(), Status: JobCompleted})
	}

	assert.NotNil(t, h.snapshot(running), "running job must survive pruning")
	assert.Nil(t, h.snapshot(finished))
	assert.Len(t, h.order, maxTrackedJobs)
	assert.Len(t, h.jobs, maxTrackedJobs)
	assert.Equal(t, running, h.order[0])
}

// heldRunner hands out runs that finish only once release is closed.
type heldRunner struct {
	release chan struct{}
}

func (r *heldRunner) Submit(ctx context.Context) (uuid.UUID, <-chan pipeline.Result) {
	id := uuid.New()
	ch := make(chan pipeline.Result, 1)
	go func() {
		defer close(ch)
		select {
		case <-r.release:
		case <-ctx.Done():
		}
		ch <- pipeline.Result{ID: id}
	}()
	return id, ch
}

func (r *heldRunner) LastSuccessful() (pipeline.Result, bool) {
	return pipeline.Result{}, false
}

func TestCreateChart_RejectsWhenSaturated(t *testing.T) {
	runner := &heldRunner{release: make(chan struct{})}
	h := NewChartHandler(context.Background(), runner)

	post := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.CreateChart(rec, httptest.NewRequest(http.MethodPost, "/api/charts", nil))
		return rec
	}

	for i := 0; i < maxPendingRuns; i++ {
		require.Equal(t, http.StatusAccepted, post().Code, "run %d", i)
	}

	rec := post()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	env := decodeEnvelope(t, rec.Body)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "too_many_runs", env.Error.Code)
	h.mu.RLock()
	assert.Len(t, h.jobs, maxPendingRuns, "rejected POST must not be tracked")
	h.mu.RUnlock()

	close(runner.release)
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return h.pending == 0
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, http.StatusAccepted, post().Code)
}

// -----------------------------------------------------------------------------
// WebSocket
// -----------------------------------------------------------------------------

func dialWS(t *testing.T, ts *httptest.Server, hub *Hub) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 5*time.Second, 5*time.Millisecond)
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_StreamsChartEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	ts := newTestServer(t, newTestPipeline(t, memorySink(), hub), hub)
	conn := dialWS(t, ts, hub)

	resp, err := http.Post(ts.URL+"/api/charts", "application/json", nil)
	require.NoError(t, err)
	var job JobResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp.Body).Data, &job))
	resp.Body.Close()

	started := readWS(t, conn)
	assert.Equal(t, EventTypeChartStarted, started.Type)
	completed := readWS(t, conn)
	assert.Equal(t, EventTypeChartCompleted, completed.Type)

	data, ok := completed.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, job.ID, data["id"])
	assert.Equal(t, "mem://test.svg", data["location"])
	assert.Equal(t, "svg", data["format"])
}

func TestWebSocket_PingAndUnknownType(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	ts := newTestServer(t, newTestPipeline(t, memorySink(), nil), hub)
	conn := dialWS(t, ts, hub)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: EventTypePing}))
	assert.Equal(t, EventTypePong, readWS(t, conn).Type)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "subscribe"}))
	msg := readWS(t, conn)
	assert.Equal(t, EventTypeError, msg.Type)
	assert.Equal(t, "unknown_type", msg.Data.(map[string]interface{})["code"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = readWS(t, conn)
	assert.Equal(t, "invalid_json", msg.Data.(map[string]interface{})["code"])
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ts := newTestServer(t, newTestPipeline(t, memorySink(), nil), hub)
	conn := dialWS(t, ts, hub)

	hub.Stop()
	hub.Stop()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection should be closed by the hub")

	// Notify after stop must not block.
	done := make(chan struct{})
	go func() {
		hub.Notify(pipeline.Event{Kind: pipeline.EventStarted})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked after Stop")
	}
}

func TestHub_ReplaysLastOutcome(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	id := uuid.New()
	hub.Notify(pipeline.Event{Kind: pipeline.EventCompleted, Result: pipeline.Result{ID: id, Format: export.FormatPDF}})
	require.Eventually(t, func() bool { return hub.Retained() != nil }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(pipeline.Event{Kind: pipeline.EventStarted, Result: pipeline.Result{ID: uuid.New()}})

	ts := newTestServer(t, newTestPipeline(t, memorySink(), nil), hub)
	conn := dialWS(t, ts, hub)

	msg := readWS(t, conn)
	assert.Equal(t, EventTypeChartCompleted, msg.Type, "started events are not replayed")
	assert.Equal(t, id.String(), msg.Data.(map[string]interface{})["id"])
}

func TestNewChartEventData(t *testing.T) {
	id := uuid.New()
	d := NewChartEventData(pipeline.Result{
		ID:       id,
		Format:   export.FormatPDF,
		Duration: 1500 * time.Millisecond,
		Err:      cerrors.IOWrap(errors.New("read-only"), cerrors.ErrOutputDirCreateFailed, "failed to create output directory"),
	})
	assert.Equal(t, id.String(), d.ID)
	assert.Equal(t, "pdf", d.Format)
	assert.Equal(t, int64(1500), d.DurationMs)
	assert.Equal(t, cerrors.ErrOutputDirCreateFailed, d.ErrorCode)
}

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

func TestServer_StartFailsOnBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := NewServer(&ServerConfig{Host: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port})
	err = srv.Start()
	require.Error(t, err)
	assert.True(t, cerrors.IsCode(err, cerrors.ErrServerStartFailed))
	assert.False(t, srv.IsRunning())
}

func TestServer_StartAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	srv := NewServer(&ServerConfig{Host: "127.0.0.1", Port: port})
	NewSystemHandler("test", nil).RegisterRoutes(srv.Router())
	require.NoError(t, srv.Start())
	assert.True(t, srv.IsRunning())
	assert.True(t, cerrors.IsCode(srv.Start(), cerrors.ErrServerStartFailed), "second start")

	resp, err := http.Get("http://" + srv.Address() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.False(t, srv.IsRunning())
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(config.ServerConfig{Host: "0.0.0.0", Port: 9090, CORSOrigins: []string{"*"}})
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.EnableLogging)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)

	cfg = FromSettings(config.ServerConfig{})
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8081, cfg.Port)
}

func TestDefaultServerConfig(t *testing.T) {
	srv := NewServer(nil)
	assert.Equal(t, "localhost:8081", srv.Address())
	assert.Equal(t, 15*time.Second, srv.Config().ReadTimeout)
}
