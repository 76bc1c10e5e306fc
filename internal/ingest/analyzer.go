package ingest

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/exam-coach/internal/ai"
	"github.com/p-n-ai/exam-coach/internal/analysis"
	"github.com/p-n-ai/exam-coach/internal/curriculum"
	"github.com/p-n-ai/exam-coach/internal/history"
)

// Analyzer runs one image through the whole pipeline.
type Analyzer struct {
	provider ai.Provider
	matcher  *analysis.Matcher
	composer *analysis.Composer
	reports  *ReportWriter
	seen     SeenSet
	recorder history.Recorder
	now      func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSeenSet replaces the default in-memory dedup set.
func WithSeenSet(s SeenSet) Option {
	return func(a *Analyzer) {
		a.seen = s
	}
}

// WithRecorder sends a history record for every written report.
func WithRecorder(r history.Recorder) Option {
	return func(a *Analyzer) {
		a.recorder = r
	}
}

// WithCatalog sets the advice catalog used in reports.
func WithCatalog(c *analysis.Catalog) Option {
	return func(a *Analyzer) {
		a.composer = analysis.NewComposer(c)
	}
}

// WithClock overrides time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer wires the pipeline stages together.
func NewAnalyzer(provider ai.Provider, store *curriculum.Store, reports *ReportWriter, opts ...Option) *Analyzer {
	a := &Analyzer{
		provider: provider,
		matcher:  analysis.NewMatcher(store),
		composer: analysis.NewComposer(nil),
		reports:  reports,
		seen:     NewMemorySeen(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle analyzes the image at path. It never panics on bad input; every
// failure is reported through the returned Outcome and logged. A path is
// marked seen before analysis, so a failed image is not retried.
func (a *Analyzer) Handle(ctx context.Context, path string) Outcome {
	start := a.now()

	fresh, err := a.seen.MarkSeen(ctx, path)
	if err != nil {
		slog.Warn("seen set unavailable, analyzing anyway", "path", path, "error", err)
		fresh = true
	}
	if !fresh {
		slog.Debug("image already analyzed", "path", path)
		return Outcome{Path: path, Status: StatusSkipped}
	}

	out, rec := a.analyze(ctx, path, start)
	out.Elapsed = a.now().Sub(start)

	if out.Err != nil {
		slog.Error("analysis failed",
			"path", path,
			"stage", out.Err.Kind.String(),
			"error", out.Err.Err,
			"elapsed", out.Elapsed,
		)
		return out
	}

	slog.Info("analysis completed",
		"path", path,
		"exam_type", out.Match.ExamType,
		"subject", out.Match.Subject,
		"topic", out.Match.TopicName,
		"matched", out.Match.Matched(),
		"report", out.ReportPath,
		"elapsed", out.Elapsed,
	)

	if a.recorder != nil {
		if err := a.recorder.Record(ctx, rec); err != nil {
			slog.Warn("recording analysis failed", "path", path, "error", err)
		}
	}
	return out
}

func (a *Analyzer) analyze(ctx context.Context, path string, start time.Time) (Outcome, history.Record) {
	data, mimeType, err := readImage(path)
	if err != nil {
		return failed(path, KindImageRead, err), history.Record{}
	}

	resp, err := a.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{ai.UserMessage(analysis.Prompt, ai.Image{MIMEType: mimeType, Data: data})},
	})
	if err != nil {
		return failed(path, KindAIService, err), history.Record{}
	}

	match := a.matcher.Match(analysis.ParseResponse(resp.Content))
	report := a.composer.Compose(analysis.ReportInput{
		RawText: resp.Content,
		Match:   match,
		Source:  filepath.Base(path),
		Time:    start,
	})

	reportPath, err := a.reports.Write(ReportFileName(match.Subject, match.TopicName, start), report)
	if err != nil {
		out := failed(path, KindReportWrite, err)
		out.Match = match
		return out, history.Record{}
	}

	digest := blake2b.Sum256(data)
	importance := curriculum.ImportanceNormal
	if match.Record != nil {
		importance = match.Record.Importance
	}
	rec := history.Record{
		ID:           uuid.New(),
		ImagePath:    path,
		ImageDigest:  hex.EncodeToString(digest[:]),
		ExamType:     string(match.ExamType),
		Subject:      match.Subject,
		Topic:        match.TopicName,
		Matched:      match.Matched(),
		Importance:   importance.String(),
		ReportPath:   reportPath,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		CreatedAt:    start,
	}

	return Outcome{
		Path:       path,
		Status:     StatusSucceeded,
		ReportPath: reportPath,
		Match:      match,
	}, rec
}

// readImage loads path and checks that it decodes as JPEG or PNG.
func readImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image %s: %w", filepath.Base(path), err)
	}
	return data, "image/" + format, nil
}
