package domain

import (
	"context"
	"time"
)

// Client represents a billing party. The hourly rate is stored in integer
// cents so invoice totals never accumulate floating-point drift.
type Client struct {
	ID              string    `json:"id"`
	OwnerID         int64     `json:"-"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	HourlyRateCents int64     `json:"hourlyRateCents"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ClientRepository is the port for client persistence. Every operation is
// scoped to an owner; a client belonging to another user is treated as
// nonexistent.
type ClientRepository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, ownerID int64, id string) (*Client, error)
	List(ctx context.Context, ownerID int64) ([]Client, error)
	Update(ctx context.Context, c *Client) (bool, error)
	Delete(ctx context.Context, ownerID int64, id string) (bool, error)
}
