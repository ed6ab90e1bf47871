package domain

import (
	"context"
	"time"
)

// InvoiceStatus is the payment state of an invoice. The only transition is
// a free toggle between Pending and Paid; there is no terminal state.
type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "Pending"
	StatusPaid    InvoiceStatus = "Paid"
)

// Valid reports whether the status is one of the enumerated values.
func (st InvoiceStatus) Valid() bool {
	return st == StatusPending || st == StatusPaid
}

// Invoice is an immutable-membership snapshot of work sessions plus totals
// frozen at creation time. Only Status may change afterwards; SessionIDs,
// TotalHours and TotalAmountCents are write-once.
type Invoice struct {
	ID               string        `json:"id"`
	OwnerID          int64         `json:"-"`
	ClientID         string        `json:"clientId"`
	SessionIDs       []string      `json:"sessions"`
	TotalHours       float64       `json:"totalHours"`
	TotalAmountCents int64         `json:"totalAmountCents"`
	Status           InvoiceStatus `json:"status"`
	IssuedAt         time.Time     `json:"issuedAt"`
}

// InvoiceRepository is the port for invoice persistence.
//
// Create must reject an invoice whose SessionIDs overlap any existing
// invoice's membership, returning ErrAlreadyInvoiced. The check and the
// insert happen atomically in the adapter, so two concurrent creations over
// overlapping sessions cannot both succeed even if both passed service-level
// validation against a stale read.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, ownerID int64, id string) (*Invoice, error)
	List(ctx context.Context, ownerID int64) ([]Invoice, error)
	UpdateStatus(ctx context.Context, ownerID int64, id string, status InvoiceStatus) (bool, error)
	Delete(ctx context.Context, ownerID int64, id string) (bool, error)
	CountByClient(ctx context.Context, ownerID int64, clientID string) (int, error)
}
