package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// WorkbookSheet is the sheet the index rows are written to.
const WorkbookSheet = "Analyses"

var workbookHeader = []any{
	"Date", "Image", "Exam", "Subject", "Topic", "Matched", "Importance", "Report", "Model", "Digest",
}

// Workbook appends one row per analysis to an .xlsx index next to the reports.
type Workbook struct {
	path string
	mu   sync.Mutex
}

// NewWorkbook creates a recorder writing to path. The file is created on the
// first record.
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// Path returns the workbook location.
func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) Record(_ context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(WorkbookSheet)
	if err != nil {
		return fmt.Errorf("read workbook rows: %w", err)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}

	matched := "no"
	if rec.Matched {
		matched = "yes"
	}
	row := []any{
		rec.CreatedAt.Format("2006-01-02 15:04:05"),
		baseName(rec.ImagePath),
		rec.ExamType,
		rec.Subject,
		rec.Topic,
		matched,
		rec.Importance,
		baseName(rec.ReportPath),
		rec.Model,
		rec.ImageDigest,
	}
	if err := f.SetSheetRow(WorkbookSheet, cell, &row); err != nil {
		return fmt.Errorf("write workbook row: %w", err)
	}

	ext := filepath.Ext(w.path)
	tmpPath := strings.TrimSuffix(w.path, ext) + ".tmp" + ext
	if err := f.SaveAs(tmpPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

// open loads the existing workbook or starts a new one with a header row.
func (w *Workbook) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.path)
	if err == nil {
		if idx, _ := f.GetSheetIndex(WorkbookSheet); idx < 0 {
			f.Close()
			return nil, fmt.Errorf("workbook %s has no %q sheet", w.path, WorkbookSheet)
		}
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	f = excelize.NewFile()
	if err := f.SetSheetName("Sheet1", WorkbookSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("name workbook sheet: %w", err)
	}
	if err := f.SetSheetRow(WorkbookSheet, "A1", &workbookHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook header: %w", err)
	}
	if err := f.SetPanes(WorkbookSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freeze workbook header: %w", err)
	}
	return f, nil
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
