// Package output delivers encoded chart documents to their destination:
// the local downloads folder, an S3-compatible bucket, or both.
package output

import (
	"context"
)

// Artifact is one encoded document ready to be written.
type Artifact struct {
	// Name is the file or object name, including extension.
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (a Artifact) Size() int { return len(a.Data) }

// Sink stores an artifact and reports where it went.
type Sink interface {
	Write(ctx context.Context, a Artifact) (location string, err error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, a Artifact) (string, error)

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, a Artifact) (string, error) {
	return f(ctx, a)
}

// MultiSink writes to each sink in order. The first error stops the fan-out;
// on success the first sink's location is reported.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, a Artifact) (string, error) {
	var first string
	for i, s := range m {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		loc, err := s.Write(ctx, a)
		if err != nil {
			return "", err
		}
		if i == 0 {
			first = loc
		}
	}
	return first, nil
}
