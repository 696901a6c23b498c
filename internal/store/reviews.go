package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reviewRepo struct {
	pool *pgxpool.Pool
}

func (r *reviewRepo) Create(ctx context.Context, rev *Review) error {
	if rev.ID == uuid.Nil {
		rev.ID = uuid.New()
	}
	rev.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO reviews (id, author, rating, text, approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, pgUUID(rev.ID), rev.Author, rev.Rating, rev.Text, rev.Approved, pgTime(rev.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: failed to insert review: %w", err)
	}
	return nil
}

func (r *reviewRepo) ListApproved(ctx context.Context) ([]Review, error) {
	return r.list(ctx, `
		SELECT id, author, rating, text, approved, created_at
		FROM reviews WHERE approved ORDER BY created_at DESC
	`)
}

func (r *reviewRepo) ListAll(ctx context.Context) ([]Review, error) {
	return r.list(ctx, `
		SELECT id, author, rating, text, approved, created_at
		FROM reviews ORDER BY created_at DESC
	`)
}

func (r *reviewRepo) list(ctx context.Context, query string) ([]Review, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list reviews: %w", err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rev Review
		var id pgtype.UUID
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&id, &rev.Author, &rev.Rating, &rev.Text, &rev.Approved, &createdAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan review: %w", err)
		}
		rev.ID = uuid.UUID(id.Bytes)
		rev.CreatedAt = createdAt.Time
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (r *reviewRepo) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reviews SET approved = $2 WHERE id = $1`, pgUUID(id), approved)
	if err != nil {
		return fmt.Errorf("store: failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, pgUUID(id))
	if err != nil {
		return fmt.Errorf("store: failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
