package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store keeping each authoring
// document as a JSONB column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed course store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveCourse(ctx context.Context, id string, doc map[string]any) error {
	if id == "" {
		return fmt.Errorf("course id is required")
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal course document: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO courses (id, document, updated_at)
		 VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		id, string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCourse(ctx context.Context, id string) (*StoredCourse, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		payload   []byte
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT document, updated_at FROM courses WHERE id = $1`,
		id,
	).Scan(&payload, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("course not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select course: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal course document: %w", err)
	}
	return &StoredCourse{ID: id, Document: doc, UpdatedAt: updatedAt}, nil
}

func (s *PostgresStore) ListCourseIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT id FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan course id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) DeleteCourse(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("course not found: %s", id)
	}
	return nil
}
