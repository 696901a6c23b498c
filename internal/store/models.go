package store

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks manual payment review.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderRejected  OrderStatus = "rejected"
)

// Order is a service order submitted through the intake form, with the
// uploaded payment proof stored on disk.
type Order struct {
	ID               uuid.UUID   `json:"id"`
	ClientName       string      `json:"client_name"`
	ClientEmail      string      `json:"client_email"`
	Service          string      `json:"service"`
	Details          string      `json:"details,omitempty"`
	Budget           string      `json:"budget,omitempty"`
	PaymentProofPath string      `json:"payment_proof_path,omitempty"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Review is a testimonial; it stays hidden until approved.
type Review struct {
	ID        uuid.UUID `json:"id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"` // 1..5
	Text      string    `json:"text"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is a portfolio entry.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	ProjectURL  string    `json:"project_url,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContentSection is database-driven page content (hero, about, services...),
// keyed by section name.
type ContentSection struct {
	ID        uuid.UUID `json:"id"`
	Section   string    `json:"section"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Extra     []byte    `json:"extra,omitempty"` // free-form JSON per section
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactMessage is a plain contact-form submission.
type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is a back-office user together with their role row.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
