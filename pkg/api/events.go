package api

import (
	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
	"github.com/r3d91ll/tempchart/pkg/pipeline"
)

// Websocket message types. The chart_* types are the pipeline event kinds.
const (
	EventTypeChartStarted   = string(pipeline.EventStarted)
	EventTypeChartCompleted = string(pipeline.EventCompleted)
	EventTypeChartFailed    = string(pipeline.EventFailed)
	EventTypePing           = "ping"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// WSMessage is the JSON document carried by each websocket frame.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// ChartEventData is the payload of chart_* messages.
type ChartEventData struct {
	ID         string `json:"id"`
	Format     string `json:"format"`
	Location   string `json:"location,omitempty"`
	Size       int    `json:"size,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
	ErrorCode  string `json:"errorCode,omitempty"`
}

// NewChartEventData converts a run result into an event payload.
func NewChartEventData(r pipeline.Result) *ChartEventData {
	d := &ChartEventData{
		ID:         r.ID.String(),
		Format:     string(r.Format),
		Location:   r.Location,
		Size:       r.Size,
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		d.Error = r.Err.Error()
		if ce, ok := cerrors.AsChartError(r.Err); ok {
			d.ErrorCode = ce.Code
		}
	}
	return d
}

func errorMessage(code, message string) *WSMessage {
	return &WSMessage{
		Type:      EventTypeError,
		Data:      map[string]string{"code": code, "message": message},
		Timestamp: timestamp(),
	}
}
