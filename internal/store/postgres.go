package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Store bundles the table repositories over one connection pool.
type Store struct {
	Orders   OrderRepo
	Reviews  ReviewRepo
	Projects ProjectRepo
	Content  ContentRepo
	Contact  ContactRepo
	Users    UserRepo
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Orders:   &orderRepo{pool: pool},
		Reviews:  &reviewRepo{pool: pool},
		Projects: &projectRepo{pool: pool},
		Content:  &contentRepo{pool: pool},
		Contact:  &contactRepo{pool: pool},
		Users:    &userRepo{pool: pool},
	}
}

// Connect opens and pings a pgx pool.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping failed: %w", err)
	}
	return pool, nil
}

// Migrate runs the goose migrations in dir against the database.
func Migrate(url, dir string) error {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("store: failed to open migration connection: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("store: failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("store: migrations failed: %w", err)
	}
	return nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
