package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contentRepo struct {
	pool *pgxpool.Pool
}

func (r *contentRepo) Get(ctx context.Context, section string) (*ContentSection, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, section, title, body, extra, updated_at
		FROM content_sections
		WHERE section = $1
	`, section)

	var c ContentSection
	var id pgtype.UUID
	var updatedAt pgtype.Timestamptz
	if err := row.Scan(&id, &c.Section, &c.Title, &c.Body, &c.Extra, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: failed to scan content section: %w", err)
	}
	c.ID = uuid.UUID(id.Bytes)
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

func (r *contentRepo) List(ctx context.Context) ([]ContentSection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, section, title, body, extra, updated_at
		FROM content_sections
		ORDER BY section ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list content sections: %w", err)
	}
	defer rows.Close()

	var out []ContentSection
	for rows.Next() {
		var c ContentSection
		var id pgtype.UUID
		var updatedAt pgtype.Timestamptz
		if err := rows.Scan(&id, &c.Section, &c.Title, &c.Body, &c.Extra, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan content section: %w", err)
		}
		c.ID = uuid.UUID(id.Bytes)
		c.UpdatedAt = updatedAt.Time
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contentRepo) Upsert(ctx context.Context, c *ContentSection) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.UpdatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO content_sections (id, section, title, body, extra, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (section) DO UPDATE
		SET title = EXCLUDED.title, body = EXCLUDED.body, extra = EXCLUDED.extra, updated_at = EXCLUDED.updated_at
	`, pgUUID(c.ID), c.Section, c.Title, c.Body, c.Extra, pgTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: failed to upsert content section: %w", err)
	}
	return nil
}
