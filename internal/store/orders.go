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

type orderRepo struct {
	pool *pgxpool.Pool
}

func (r *orderRepo) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (id, client_name, client_email, service, details, budget, payment_proof_path, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		pgUUID(o.ID), o.ClientName, o.ClientEmail, o.Service, o.Details,
		o.Budget, o.PaymentProofPath, string(o.Status), pgTime(o.CreatedAt), pgTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("store: failed to insert order: %w", err)
	}
	return nil
}

func (r *orderRepo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_name, client_email, service, details, budget, payment_proof_path, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *orderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, client_name, client_email, service, details, budget, payment_proof_path, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, pgUUID(id))

	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now() WHERE id = $1
	`, pgUUID(id), string(status))
	if err != nil {
		return fmt.Errorf("store: failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var id pgtype.UUID
	var status string
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(
		&id, &o.ClientName, &o.ClientEmail, &o.Service, &o.Details,
		&o.Budget, &o.PaymentProofPath, &status, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: failed to scan order: %w", err)
	}
	o.ID = uuid.UUID(id.Bytes)
	o.Status = OrderStatus(status)
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time
	return &o, nil
}
