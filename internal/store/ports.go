package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

type OrderRepo interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}

type ReviewRepo interface {
	Create(ctx context.Context, r *Review) error
	ListApproved(ctx context.Context) ([]Review, error)
	ListAll(ctx context.Context) ([]Review, error)
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProjectRepo interface {
	Create(ctx context.Context, p *Project) error
	List(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ContentRepo interface {
	Get(ctx context.Context, section string) (*ContentSection, error)
	List(ctx context.Context) ([]ContentSection, error)
	Upsert(ctx context.Context, c *ContentSection) error
}

type ContactRepo interface {
	Create(ctx context.Context, m *ContactMessage) error
	List(ctx context.Context) ([]ContactMessage, error)
}

type UserRepo interface {
	Create(ctx context.Context, p *Profile) error
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	SetRole(ctx context.Context, id uuid.UUID, role string) error
}
