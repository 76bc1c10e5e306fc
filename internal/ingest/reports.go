package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/p-n-ai/exam-coach/internal/curriculum"
)

const maxTopicRunes = 20

// ReportWriter stores report text files in one directory.
type ReportWriter struct {
	dir string
}

// NewReportWriter creates a writer for dir. The directory is created on
// demand.
func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir}
}

// Dir returns the output directory.
func (w *ReportWriter) Dir() string {
	return w.dir
}

// ReportFileName builds report_<YYYYMMDD_HHMMSS>_<subject>_<topic>.txt with
// spaces turned into underscores and the topic cut to 20 characters.
func ReportFileName(subject, topic string, t time.Time) string {
	if subject == "" {
		subject = curriculum.Unknown
	}
	if topic == "" {
		topic = curriculum.Unknown
	}
	topic = sanitize(topic)
	if r := []rune(topic); len(r) > maxTopicRunes {
		topic = string(r[:maxTopicRunes])
	}
	return fmt.Sprintf("report_%s_%s_%s.txt", t.Format("20060102_150405"), sanitize(subject), topic)
}

var unsafeName = strings.NewReplacer(
	" ", "_",
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

func sanitize(s string) string {
	return unsafeName.Replace(strings.TrimSpace(s))
}

// writeContent is replaced in tests to simulate a failing disk.
var writeContent = io.WriteString

// Write stores content under name and returns the full path. A name already
// present gets a numeric suffix instead of being overwritten.
func (w *ReportWriter) Write(name, content string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	path := filepath.Join(w.dir, name)
	for i := 2; ; i++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			path = filepath.Join(w.dir, fmt.Sprintf("%s_%d%s", base, i, ext))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create report: %w", err)
		}
		if _, err := writeContent(f, content); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("write report: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("close report: %w", err)
		}
		return path, nil
	}
}
