package app

import (
	"context"
	"sync"
	"time"

	"timeledger/internal/domain"

	"github.com/google/uuid"
)

// BillingService owns the invoice lifecycle: partitioning sessions into
// billable and invoiced, creating invoices with frozen totals, toggling
// payment status, and deletion.
//
// Invoice creation is serialized per owner so that two concurrent requests
// selecting overlapping sessions cannot both pass validation against a stale
// read. The invoice repository additionally enforces membership uniqueness
// at write time, so the invariant holds even across processes.
type BillingService struct {
	sessions domain.WorkSessionRepository
	invoices domain.InvoiceRepository
	clients  domain.ClientRepository

	mu         sync.Mutex
	ownerLocks map[int64]*sync.Mutex
}

// NewBillingService creates a BillingService backed by the given repositories.
func NewBillingService(sessions domain.WorkSessionRepository, invoices domain.InvoiceRepository, clients domain.ClientRepository) *BillingService {
	return &BillingService{
		sessions:   sessions,
		invoices:   invoices,
		clients:    clients,
		ownerLocks: make(map[int64]*sync.Mutex),
	}
}

// ListBillable returns the owner's closed sessions not referenced by any
// invoice, optionally filtered to one client.
func (s *BillingService) ListBillable(ctx context.Context, ownerID int64, clientID string) ([]domain.WorkSession, error) {
	billable, _, err := s.partition(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return filterByClient(billable, clientID), nil
}

// ListInvoiced returns the owner's sessions already referenced by an invoice,
// optionally filtered to one client.
func (s *BillingService) ListInvoiced(ctx context.Context, ownerID int64, clientID string) ([]domain.WorkSession, error) {
	_, invoiced, err := s.partition(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return filterByClient(invoiced, clientID), nil
}

// ListInvoices returns all of the owner's invoices.
func (s *BillingService) ListInvoices(ctx context.Context, ownerID int64) ([]domain.Invoice, error) {
	return s.invoices.List(ctx, ownerID)
}

// GetInvoice returns one invoice by id.
func (s *BillingService) GetInvoice(ctx context.Context, ownerID int64, id string) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// CreateInvoice validates the selection, freezes totals at the client's
// current rate, and persists the invoice. Any validation failure aborts the
// whole request; no partial state is written.
func (s *BillingService) CreateInvoice(ctx context.Context, ownerID int64, clientID string, sessionIDs []string) (*domain.Invoice, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	sessions, err := s.validateRequest(ctx, ownerID, clientID, sessionIDs)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.GetByID(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	hours, amountCents := domain.ComputeTotals(sessions, client.HourlyRateCents)

	inv := &domain.Invoice{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		ClientID:         clientID,
		SessionIDs:       dedupe(sessionIDs),
		TotalHours:       hours,
		TotalAmountCents: amountCents,
		Status:           domain.StatusPending,
		IssuedAt:         time.Now().UTC(),
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// InvoiceDetail resolves an invoice together with its client and the sessions
// it covers, in the order they were selected.
func (s *BillingService) InvoiceDetail(ctx context.Context, ownerID int64, id string) (*domain.Invoice, *domain.Client, []domain.WorkSession, error) {
	inv, err := s.GetInvoice(ctx, ownerID, id)
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := s.clients.GetByID(ctx, ownerID, inv.ClientID)
	if err != nil {
		return nil, nil, nil, err
	}
	if client == nil {
		return nil, nil, nil, domain.ErrNotFound
	}
	sessions, err := s.sessions.GetByIDs(ctx, ownerID, inv.SessionIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	return inv, client, sessions, nil
}

// SetStatus updates only the payment status. Pending and Paid toggle freely;
// everything else on the invoice is immutable.
func (s *BillingService) SetStatus(ctx context.Context, ownerID int64, invoiceID string, status domain.InvoiceStatus) (*domain.Invoice, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	found, err := s.invoices.UpdateStatus(ctx, ownerID, invoiceID, status)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return s.GetInvoice(ctx, ownerID, invoiceID)
}

// Delete removes an invoice. Its sessions become billable again on the next
// partition, since membership is derived from invoice data rather than
// flagged on the session.
func (s *BillingService) Delete(ctx context.Context, ownerID int64, invoiceID string) error {
	found, err := s.invoices.Delete(ctx, ownerID, invoiceID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// validateRequest checks an invoice-creation request against the owner's
// current sessions and invoices, returning the resolved, client-homogeneous
// closed sessions ready for aggregation.
func (s *BillingService) validateRequest(ctx context.Context, ownerID int64, clientID string, sessionIDs []string) ([]domain.WorkSession, error) {
	if clientID == "" {
		return nil, domain.ErrMissingClient
	}
	sessionIDs = dedupe(sessionIDs)
	if len(sessionIDs) == 0 {
		return nil, domain.ErrEmptySelection
	}

	sessions, err := s.sessions.GetByIDs(ctx, ownerID, sessionIDs)
	if err != nil {
		return nil, err
	}
	if len(sessions) != len(sessionIDs) {
		return nil, domain.ErrUnknownSession
	}

	existing, err := s.invoices.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	taken := domain.InvoicedSessionIDs(existing)
	for _, id := range sessionIDs {
		if _, ok := taken[id]; ok {
			return nil, domain.ErrAlreadyInvoiced
		}
	}

	for _, sess := range sessions {
		if sess.ClientID != clientID {
			return nil, domain.ErrClientMismatch
		}
	}
	for _, sess := range sessions {
		if !sess.Closed() {
			return nil, domain.ErrOpenSession
		}
	}
	return sessions, nil
}

func (s *BillingService) ownerLock(ownerID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.ownerLocks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.ownerLocks[ownerID] = lock
	}
	return lock
}

func filterByClient(sessions []domain.WorkSession, clientID string) []domain.WorkSession {
	if clientID == "" {
		return sessions
	}
	out := make([]domain.WorkSession, 0, len(sessions))
	for _, s := range sessions {
		if s.ClientID == clientID {
			out = append(out, s)
		}
	}
	return out
}

func (s *BillingService) partition(ctx context.Context, ownerID int64) (billable, invoiced []domain.WorkSession, err error) {
	sessions, err := s.sessions.List(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	invoices, err := s.invoices.List(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	billable, invoiced = domain.PartitionSessions(sessions, invoices)
	return billable, invoiced, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
