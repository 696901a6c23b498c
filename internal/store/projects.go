package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type projectRepo struct {
	pool *pgxpool.Pool
}

func (r *projectRepo) Create(ctx context.Context, p *Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO projects (id, title, description, image_url, project_url, tags, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, pgUUID(p.ID), p.Title, p.Description, p.ImageURL, p.ProjectURL, p.Tags, p.Position, pgTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: failed to insert project: %w", err)
	}
	return nil
}

func (r *projectRepo) List(ctx context.Context) ([]Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, description, image_url, project_url, tags, position, created_at
		FROM projects
		ORDER BY position ASC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		var id pgtype.UUID
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&id, &p.Title, &p.Description, &p.ImageURL, &p.ProjectURL, &p.Tags, &p.Position, &createdAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan project: %w", err)
		}
		p.ID = uuid.UUID(id.Bytes)
		p.CreatedAt = createdAt.Time
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *projectRepo) Update(ctx context.Context, p *Project) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET title = $2, description = $3, image_url = $4, project_url = $5, tags = $6, position = $7
		WHERE id = $1
	`, pgUUID(p.ID), p.Title, p.Description, p.ImageURL, p.ProjectURL, p.Tags, p.Position)
	if err != nil {
		return fmt.Errorf("store: failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, pgUUID(id))
	if err != nil {
		return fmt.Errorf("store: failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
