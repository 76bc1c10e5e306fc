package history_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/exam-coach/internal/history"
)

func newRecord(image string) history.Record {
	return history.Record{
		ID:          uuid.New(),
		ImagePath:   image,
		ImageDigest: "abc123",
		ExamType:    "LGS",
		Subject:     "Matematik",
		Topic:       "Üslü İfadeler",
		Matched:     true,
		Importance:  "Critical",
		ReportPath:  "raporlar/report_20250314_092653_Matematik_Üslü İfadeler.txt",
		Model:       "gemini-2.5-flash",
		CreatedAt:   time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*history.Record)
		wantErr bool
	}{
		{"valid", func(*history.Record) {}, false},
		{"missing id", func(r *history.Record) { r.ID = uuid.Nil }, true},
		{"missing image", func(r *history.Record) { r.ImagePath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecord("q.png")
			tt.mutate(&rec)
			if err := rec.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryStore_Recent(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore(3)

	for i := range 5 {
		if err := store.Record(ctx, newRecord(fmt.Sprintf("q%d.png", i))); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want capacity 3", store.Len())
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 || got[0].ImagePath != "q4.png" || got[1].ImagePath != "q3.png" {
		t.Errorf("Recent(2) = %v, want q4, q3", paths(got))
	}

	all, _ := store.Recent(ctx, 0)
	if len(all) != 3 || all[2].ImagePath != "q2.png" {
		t.Errorf("Recent(0) = %v, want q4, q3, q2", paths(all))
	}
}

func TestMemoryStore_RejectsInvalid(t *testing.T) {
	store := history.NewMemoryStore(0)
	if err := store.Record(context.Background(), history.Record{}); err == nil {
		t.Fatal("Record() should reject an empty record")
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestMulti_FanOut(t *testing.T) {
	ctx := context.Background()
	first := history.NewMemoryStore(10)
	second := history.NewMemoryStore(10)
	boom := errors.New("disk full")

	multi := history.NewMulti()
	multi.Add("first", first)
	multi.Add("failing", history.RecorderFunc(func(context.Context, history.Record) error { return boom }))
	multi.Add("second", second)
	multi.Add("nil", nil)

	if multi.Len() != 3 {
		t.Errorf("Len() = %d, want 3", multi.Len())
	}

	err := multi.Record(ctx, newRecord("q.png"))
	if !errors.Is(err, boom) {
		t.Errorf("Record() error = %v, want it to wrap %v", err, boom)
	}
	if first.Len() != 1 || second.Len() != 1 {
		t.Errorf("delivery = %d/%d, want 1/1 despite the failing recorder", first.Len(), second.Len())
	}
}

func TestMulti_Empty(t *testing.T) {
	if err := history.NewMulti().Record(context.Background(), newRecord("q.png")); err != nil {
		t.Errorf("Record() on empty fan-out error = %v", err)
	}
}

func paths(recs []history.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ImagePath
	}
	return out
}
