package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/exam-coach/internal/history"
	"github.com/p-n-ai/exam-coach/internal/platform/database"
)

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := history.NewPostgresStore(nil); err == nil {
		t.Fatal("NewPostgresStore(nil) should fail")
	}
}

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("coach"),
		postgres.WithUsername("coach"),
		postgres.WithPassword("coach"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := database.New(ctx, url, 4, 1)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// Migrations are idempotent.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	store, err := history.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	older := newRecord("q1.png")
	older.CreatedAt = time.Now().Add(-time.Hour).UTC().Truncate(time.Microsecond)
	newer := newRecord("q2.png")
	newer.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	newer.ReportPath = ""
	newer.InputTokens = 258
	newer.OutputTokens = 12

	for _, rec := range []history.Record{older, newer} {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	// Duplicate IDs are ignored.
	if err := store.Record(ctx, older); err != nil {
		t.Fatalf("duplicate Record() error = %v", err)
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent() returned %d records, want 2", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Errorf("Recent() order = %v", paths(got))
	}
	if got[0].ReportPath != "" || got[0].InputTokens != 258 || got[0].OutputTokens != 12 {
		t.Errorf("newer record = %+v", got[0])
	}
	if got[1].Topic != "Üslü İfadeler" || !got[1].Matched || got[1].Model != "gemini-2.5-flash" {
		t.Errorf("older record = %+v", got[1])
	}
	if !got[1].CreatedAt.Equal(older.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got[1].CreatedAt, older.CreatedAt)
	}
}
