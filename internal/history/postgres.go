package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore persists records in the analyses table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store. The schema is expected
// to be migrated already.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Record(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, image_path, image_digest, exam_type, subject, topic,
		                       matched, importance, report_path, model, input_tokens, output_tokens, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID,
		rec.ImagePath,
		rec.ImageDigest,
		rec.ExamType,
		rec.Subject,
		rec.Topic,
		rec.Matched,
		rec.Importance,
		nullIfEmpty(rec.ReportPath),
		nullIfEmpty(rec.Model),
		nullIfZero(rec.InputTokens),
		nullIfZero(rec.OutputTokens),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if limit <= 0 {
		limit = DefaultMemoryCapacity
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, image_path, image_digest, exam_type, subject, topic, matched, importance,
		        report_path, model, input_tokens, output_tokens, created_at
		 FROM analyses
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var reportPath, model *string
		var inputTokens, outputTokens *int
		if err := rows.Scan(
			&rec.ID,
			&rec.ImagePath,
			&rec.ImageDigest,
			&rec.ExamType,
			&rec.Subject,
			&rec.Topic,
			&rec.Matched,
			&rec.Importance,
			&reportPath,
			&model,
			&inputTokens,
			&outputTokens,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		if reportPath != nil {
			rec.ReportPath = *reportPath
		}
		if model != nil {
			rec.Model = *model
		}
		if inputTokens != nil {
			rec.InputTokens = *inputTokens
		}
		if outputTokens != nil {
			rec.OutputTokens = *outputTokens
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

func nullIfZero(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
