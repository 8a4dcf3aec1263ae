package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError is the error half of the envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes data in a success envelope when status is 2xx.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, APIResponse{Error: &APIError{Code: code, Message: message}})
}

// WriteChartError writes err as an error envelope, using the lower-cased
// ChartError code when err carries one.
func WriteChartError(w http.ResponseWriter, status int, err error) {
	code := "internal_error"
	msg := err.Error()
	if ce, ok := cerrors.AsChartError(err); ok {
		code = strings.ToLower(ce.Code)
		msg = ce.Message
	}
	WriteError(w, status, code, msg)
}

func writeEnvelope(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[api] failed to encode response: %v", err)
	}
}

// WriteBytes writes a raw body such as a rendered chart. name, when set,
// becomes the inline filename.
func WriteBytes(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
