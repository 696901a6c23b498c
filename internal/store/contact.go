package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contactRepo struct {
	pool *pgxpool.Pool
}

func (r *contactRepo) Create(ctx context.Context, m *ContactMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pgUUID(m.ID), m.Name, m.Email, m.Message, pgTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: failed to insert contact message: %w", err)
	}
	return nil
}

func (r *contactRepo) List(ctx context.Context) ([]ContactMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list contact messages: %w", err)
	}
	defer rows.Close()

	var out []ContactMessage
	for rows.Next() {
		var m ContactMessage
		var id pgtype.UUID
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&id, &m.Name, &m.Email, &m.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan contact message: %w", err)
		}
		m.ID = uuid.UUID(id.Bytes)
		m.CreatedAt = createdAt.Time
		out = append(out, m)
	}
	return out, rows.Err()
}
