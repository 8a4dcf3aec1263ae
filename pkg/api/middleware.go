package api

import (
	"bufio"
	"context"
	"log"
	"mime"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps handler so that the first middleware sees the request first.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// originSet is the allow-list shared by CORS and websocket upgrades.
// "*" admits every origin.
type originSet struct {
	any     bool
	origins map[string]bool
}

func newOriginSet(list []string) originSet {
	set := originSet{origins: make(map[string]bool, len(list))}
	for _, o := range list {
		if o == "*" {
			set.any = true
		}
		set.origins[o] = true
	}
	return set
}

func (s originSet) allows(origin string) bool {
	return s.any || s.origins[origin]
}

// checkRequest admits requests without an Origin header, which browsers
// omit for same-origin requests.
func (s originSet) checkRequest(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.allows(origin)
}

// CORSMiddleware answers preflight requests and sets CORS headers for the
// allowed origins. The chart headers are exposed so a browser client can
// read the run ID of GET /api/charts/latest.
func CORSMiddleware(allowedOrigins []string) Middleware {
	set := newOriginSet(allowedOrigins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")
			if origin := r.Header.Get("Origin"); origin != "" && set.allows(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				h.Set("Access-Control-Expose-Headers", "Location, X-Chart-ID, X-Request-ID")
				h.Set("Access-Control-Max-Age", "600")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type requestIDKey struct{}

// RequestIDMiddleware tags each request with an ID, reusing one set by an
// upstream proxy, and echoes it in X-Request-ID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the request ID stored by RequestIDMiddleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the status and size of a response. It forwards
// Hijack so websocket upgrades still work behind the logger.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := rec.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// LoggingMiddleware logs one line per request:
// [api] METHOD /path status latency bytes id=<request id>
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[api] %s %s %d %s %dB id=%s",
			r.Method, r.URL.Path, rec.status, roundLatency(time.Since(start)), rec.bytes, RequestIDFrom(r.Context()))
	})
}

func roundLatency(d time.Duration) time.Duration {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond)
	case d < time.Second:
		return d.Round(time.Millisecond)
	default:
		return d.Round(10 * time.Millisecond)
	}
}

// RecoveryMiddleware turns a handler panic into a 500 INTERNAL_PANIC
// response and logs the stack.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				id := RequestIDFrom(r.Context())
				log.Printf("[api] panic serving %s %s id=%s: %v\n%s", r.Method, r.URL.Path, id, p, debug.Stack())
				WriteChartError(w, http.StatusInternalServerError,
					cerrors.New(cerrors.ErrInternalPanic, cerrors.CategoryInternal, "an unexpected error occurred").
						WithContext("request_id", id))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ContentTypeMiddleware rejects POST bodies that are not JSON. Bodiless
// POSTs, like the one that triggers a chart run, pass.
func ContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.ContentLength > 0 {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				WriteError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
