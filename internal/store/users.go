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

type userRepo struct {
	pool *pgxpool.Pool
}

func (r *userRepo) Create(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = "user"
	}
	p.CreatedAt = time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (id, email, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pgUUID(p.ID), p.Email, p.DisplayName, p.PasswordHash, pgTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: failed to insert profile: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
	`, pgUUID(p.ID), p.Role)
	if err != nil {
		return fmt.Errorf("store: failed to insert user role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: failed to commit profile: %w", err)
	}
	return nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT p.id, p.email, p.display_name, p.password_hash, r.role, p.created_at
		FROM profiles p
		JOIN user_roles r ON r.user_id = p.id
		WHERE p.email = $1
	`, email)

	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *userRepo) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.email, p.display_name, p.password_hash, r.role, p.created_at
		FROM profiles p
		JOIN user_roles r ON r.user_id = p.id
		ORDER BY p.created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *userRepo) SetRole(ctx context.Context, id uuid.UUID, role string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_roles SET role = $2 WHERE user_id = $1
	`, pgUUID(id), role)
	if err != nil {
		return fmt.Errorf("store: failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	var id pgtype.UUID
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&id, &p.Email, &p.DisplayName, &p.PasswordHash, &p.Role, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: failed to scan profile: %w", err)
	}
	p.ID = uuid.UUID(id.Bytes)
	p.CreatedAt = createdAt.Time
	return &p, nil
}
