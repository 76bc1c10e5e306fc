// Package history keeps a log of completed question analyses and fans each
// record out to the configured sinks.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Record describes one analyzed question image.
type Record struct {
	ID           uuid.UUID `json:"id"`
	ImagePath    string    `json:"image_path"`
	ImageDigest  string    `json:"image_digest"`
	ExamType     string    `json:"exam_type"`
	Subject      string    `json:"subject"`
	Topic        string    `json:"topic"`
	Matched      bool      `json:"matched"`
	Importance   string    `json:"importance"`
	ReportPath   string    `json:"report_path,omitempty"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the fields every sink relies on.
func (r Record) Validate() error {
	if r.ID == uuid.Nil {
		return errors.New("record id is required")
	}
	if r.ImagePath == "" {
		return errors.New("record image path is required")
	}
	return nil
}

// Recorder receives completed analyses.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// Lister returns the most recent records, newest first.
type Lister interface {
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, rec Record) error

func (f RecorderFunc) Record(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}

type namedRecorder struct {
	name string
	Recorder
}

// Multi delivers every record to each registered recorder in order. A failing
// recorder does not stop delivery to the others.
type Multi struct {
	recorders []namedRecorder
}

// NewMulti creates an empty fan-out.
func NewMulti() *Multi {
	return &Multi{}
}

// Add registers a recorder under name. Nil recorders are ignored.
func (m *Multi) Add(name string, r Recorder) {
	if r == nil {
		return
	}
	m.recorders = append(m.recorders, namedRecorder{name: name, Recorder: r})
}

// Len returns the number of registered recorders.
func (m *Multi) Len() int {
	return len(m.recorders)
}

func (m *Multi) Record(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	var errs []error
	for _, r := range m.recorders {
		if err := r.Record(ctx, rec); err != nil {
			slog.Warn("history recorder failed",
				"recorder", r.name,
				"record_id", rec.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", r.name, err))
		}
	}
	return errors.Join(errs...)
}
