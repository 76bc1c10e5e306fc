package ingest

import (
	"fmt"
	"time"

	"github.com/p-n-ai/exam-coach/internal/analysis"
)

// Status is the final state of one image event.
type Status int

const (
	StatusSucceeded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind names the pipeline stage that failed.
type Kind int

const (
	KindImageRead Kind = iota
	KindAIService
	KindReportWrite
)

func (k Kind) String() string {
	switch k {
	case KindImageRead:
		return "image_read"
	case KindAIService:
		return "ai_service"
	case KindReportWrite:
		return "report_write"
	default:
		return "unknown"
	}
}

// StageError is a failure attributed to one pipeline stage.
type StageError struct {
	Kind Kind
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Outcome reports what happened to one image event.
type Outcome struct {
	Path       string
	Status     Status
	Err        *StageError
	ReportPath string
	Match      analysis.TopicMatch
	Elapsed    time.Duration
}

func failed(path string, kind Kind, err error) Outcome {
	return Outcome{Path: path, Status: StatusFailed, Err: &StageError{Kind: kind, Err: err}}
}
