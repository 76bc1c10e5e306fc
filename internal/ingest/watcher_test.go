package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/p-n-ai/exam-coach/internal/ai"
	"github.com/p-n-ai/exam-coach/internal/ingest"
)

func TestIsImage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"q.png", true},
		{"q.JPG", true},
		{"dir/q.jpeg", true},
		{"q.gif", false},
		{"q.png.tmp", false},
		{"notes.txt", false},
		{"png", false},
	}
	for _, tt := range tests {
		if got := ingest.IsImage(tt.path); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

type collector struct {
	mu    sync.Mutex
	paths []string
	ch    chan string
}

func newCollector() *collector {
	return &collector{ch: make(chan string, 16)}
}

func (c *collector) handle(_ context.Context, path string) {
	c.mu.Lock()
	c.paths = append(c.paths, path)
	c.mu.Unlock()
	c.ch <- path
}

func (c *collector) wait(t *testing.T) string {
	t.Helper()
	select {
	case p := <-c.ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a delivered path")
		return ""
	}
}

func startWatcher(t *testing.T, dir string, settle time.Duration, handle ingest.Handler) context.CancelFunc {
	t.Helper()
	w, err := ingest.NewWatcher(dir, settle)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, handle)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return cancel
}

func TestWatcher_DeliversSettledImages(t *testing.T) {
	dir := t.TempDir()
	c := newCollector()
	startWatcher(t, dir, 50*time.Millisecond, c.handle)

	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	img := filepath.Join(dir, "q1.png")
	writePNG(t, img)

	if got := c.wait(t); got != img {
		t.Errorf("delivered %q, want %q", got, img)
	}

	select {
	case extra := <-c.ch:
		t.Errorf("unexpected delivery %q", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_SettleDelay(t *testing.T) {
	dir := t.TempDir()
	c := newCollector()
	settle := 300 * time.Millisecond
	startWatcher(t, dir, settle, c.handle)

	img := filepath.Join(dir, "slow.jpg")
	start := time.Now()
	f, err := os.Create(img)
	if err != nil {
		t.Fatal(err)
	}
	// Keep writing so the timer restarts.
	for range 3 {
		time.Sleep(100 * time.Millisecond)
		f.Write([]byte{0xff})
	}
	f.Close()
	lastWrite := time.Now()

	c.wait(t)
	if elapsed := time.Since(lastWrite); elapsed < settle-50*time.Millisecond {
		t.Errorf("delivered %s after the last write, want at least %s", elapsed, settle)
	}
	if time.Since(start) < 300*time.Millisecond+settle-50*time.Millisecond {
		t.Error("delivered before writes stopped")
	}
}

func TestWatcher_RemovedBeforeSettling(t *testing.T) {
	dir := t.TempDir()
	c := newCollector()
	startWatcher(t, dir, 200*time.Millisecond, c.handle)

	img := filepath.Join(dir, "temp.png")
	writePNG(t, img)
	os.Remove(img)

	select {
	case p := <-c.ch:
		t.Errorf("removed file delivered: %q", p)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_Dir(t *testing.T) {
	dir := t.TempDir()
	w, err := ingest.NewWatcher(dir, time.Second)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()
	if w.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", w.Dir(), dir)
	}
}

func TestWatcher_NewWatcherMissingDir(t *testing.T) {
	if _, err := ingest.NewWatcher(filepath.Join(t.TempDir(), "missing"), time.Second); err == nil {
		t.Fatal("NewWatcher() on a missing directory should fail")
	}
}

func TestWatcher_WithAnalyzerWritesOneReport(t *testing.T) {
	dir := t.TempDir()
	watchDir := filepath.Join(dir, "soru_resimleri")
	reportDir := filepath.Join(dir, "raporlar")
	os.MkdirAll(watchDir, 0o755)

	mock := ai.NewMockProvider(lgsReply)
	analyzer := ingest.NewAnalyzer(mock, testStore(), ingest.NewReportWriter(reportDir))

	outcomes := make(chan ingest.Outcome, 4)
	startWatcher(t, watchDir, 50*time.Millisecond, func(ctx context.Context, path string) {
		outcomes <- analyzer.Handle(ctx, path)
	})

	img := filepath.Join(watchDir, "q1.png")
	writePNG(t, img)

	select {
	case out := <-outcomes:
		if out.Status != ingest.StatusSucceeded {
			t.Fatalf("Status = %s, err = %v", out.Status, out.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for analysis")
	}

	// Rewriting the same path is a second event for an already-seen path.
	writePNG(t, img)
	select {
	case out := <-outcomes:
		if out.Status != ingest.StatusSkipped {
			t.Errorf("second Status = %s, want skipped", out.Status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for second event")
	}

	if mock.Calls() != 1 {
		t.Errorf("AI called %d times, want 1", mock.Calls())
	}
	if reports := listReports(t, reportDir); len(reports) != 1 {
		t.Errorf("got %d reports, want 1: %v", len(reports), reports)
	}
}

// gatedProvider blocks in Complete until released or until its context ends.
type gatedProvider struct {
	started chan struct{}
	release chan struct{}
}

func (p *gatedProvider) Complete(ctx context.Context, _ ai.CompletionRequest) (ai.CompletionResponse, error) {
	close(p.started)
	select {
	case <-p.release:
		return ai.CompletionResponse{Content: lgsReply, Model: "gated"}, nil
	case <-ctx.Done():
		return ai.CompletionResponse{}, ctx.Err()
	}
}

func (p *gatedProvider) HealthCheck(context.Context) error { return nil }

func TestWatcher_ShutdownLetsInFlightAnalysisFinish(t *testing.T) {
	dir := t.TempDir()
	watchDir := filepath.Join(dir, "soru_resimleri")
	reportDir := filepath.Join(dir, "raporlar")
	os.MkdirAll(watchDir, 0o755)

	provider := &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
	analyzer := ingest.NewAnalyzer(provider, testStore(), ingest.NewReportWriter(reportDir))

	outcomes := make(chan ingest.Outcome, 1)
	cancel := startWatcher(t, watchDir, 50*time.Millisecond, func(ctx context.Context, path string) {
		outcomes <- analyzer.Handle(ctx, path)
	})

	writePNG(t, filepath.Join(watchDir, "q1.png"))

	select {
	case <-provider.started:
	case <-time.After(5 * time.Second):
		t.Fatal("analysis never reached the AI provider")
	}

	// Shutdown arrives while the AI call is still running.
	cancel()
	time.Sleep(100 * time.Millisecond)
	close(provider.release)

	select {
	case out := <-outcomes:
		if out.Status != ingest.StatusSucceeded {
			t.Fatalf("Status = %s, err = %v; in-flight analysis should complete", out.Status, out.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the in-flight analysis")
	}
	if reports := listReports(t, reportDir); len(reports) != 1 {
		t.Errorf("got %d reports, want 1: %v", len(reports), reports)
	}
}
