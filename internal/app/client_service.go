package app

import (
	"context"
	"errors"
	"time"

	"timeledger/internal/domain"

	"github.com/google/uuid"
)

// ClientService encapsulates client-registry use cases.
type ClientService struct {
	clients  domain.ClientRepository
	sessions domain.WorkSessionRepository
	invoices domain.InvoiceRepository
}

// NewClientService creates a ClientService backed by the given repositories.
// The session and invoice repositories are consulted on delete to keep
// references from dangling.
func NewClientService(clients domain.ClientRepository, sessions domain.WorkSessionRepository, invoices domain.InvoiceRepository) *ClientService {
	return &ClientService{clients: clients, sessions: sessions, invoices: invoices}
}

// Create validates and stores a new client.
func (s *ClientService) Create(ctx context.Context, ownerID int64, name, email string, rateCents int64, notes string) (*domain.Client, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if rateCents < 0 {
		return nil, errors.New("hourly rate cannot be negative")
	}

	c := &domain.Client{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Name:            name,
		Email:           email,
		HourlyRateCents: rateCents,
		Notes:           notes,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all clients for the owner.
func (s *ClientService) List(ctx context.Context, ownerID int64) ([]domain.Client, error) {
	return s.clients.List(ctx, ownerID)
}

// Update replaces a client's attributes.
func (s *ClientService) Update(ctx context.Context, ownerID int64, id, name, email string, rateCents int64, notes string) (*domain.Client, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if rateCents < 0 {
		return nil, errors.New("hourly rate cannot be negative")
	}

	c, err := s.clients.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}

	c.Name = name
	c.Email = email
	c.HourlyRateCents = rateCents
	c.Notes = notes

	found, err := s.clients.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Delete removes a client. A client still referenced by sessions or
// invoices cannot be deleted; this keeps invoice snapshots resolvable.
func (s *ClientService) Delete(ctx context.Context, ownerID int64, id string) error {
	c, err := s.clients.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}

	sessionRefs, err := s.sessions.CountByClient(ctx, ownerID, id)
	if err != nil {
		return err
	}
	invoiceRefs, err := s.invoices.CountByClient(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if sessionRefs > 0 || invoiceRefs > 0 {
		return domain.ErrClientInUse
	}

	found, err := s.clients.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}
