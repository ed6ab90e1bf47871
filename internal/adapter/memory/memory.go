// Package memory implements the domain repositories in memory for
// development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"timeledger/internal/domain"
)

// DB is the shared in-memory store. Individual repositories are typed views
// over it, all serialized by one mutex; invoice creation checks membership
// uniqueness and inserts under that same lock, so the no-double-billing
// invariant holds under concurrent writers.
type DB struct {
	mu           sync.Mutex
	users        []*domain.User
	authSessions map[string]*domain.AuthSession
	clients      map[string]domain.Client
	work         map[string]domain.WorkSession
	invoices     map[string]domain.Invoice

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		authSessions: make(map[string]*domain.AuthSession),
		clients:      make(map[string]domain.Client),
		work:         make(map[string]domain.WorkSession),
		invoices:     make(map[string]domain.Invoice),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*UserRepo)(nil)
var _ domain.AuthSessionRepository = (*AuthSessionRepo)(nil)
var _ domain.ClientRepository = (*ClientRepo)(nil)
var _ domain.WorkSessionRepository = (*WorkSessionRepo)(nil)
var _ domain.InvoiceRepository = (*InvoiceRepo)(nil)

// --- UserRepository ---

// UserRepo implements user persistence.
type UserRepo struct{ db *DB }

// Users returns the user repository view.
func (db *DB) Users() *UserRepo { return &UserRepo{db: db} }

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// GetByVerifyToken retrieves a user by verification token.
func (r *UserRepo) GetByVerifyToken(ctx context.Context, token string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.VerifyToken != "" && u.VerifyToken == token {
			return u, nil
		}
	}
	return nil, nil
}

// Create stores a new user and assigns its ID.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return errors.New("email already registered")
		}
	}

	r.db.userIDCounter++
	u.ID = r.db.userIDCounter
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.db.users = append(r.db.users, u)
	return nil
}

// MarkVerified flags the user as verified and clears the token.
func (r *UserRepo) MarkVerified(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.ID == id {
			u.Verified = true
			u.VerifyToken = ""
			u.VerifyExpiry = time.Time{}
			return nil
		}
	}
	return domain.ErrNotFound
}

// --- AuthSessionRepository ---

// AuthSessionRepo implements login-session persistence.
type AuthSessionRepo struct{ db *DB }

// AuthSessions returns the login-session repository view.
func (db *DB) AuthSessions() *AuthSessionRepo { return &AuthSessionRepo{db: db} }

// Create stores a new login session.
func (r *AuthSessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.authSessions[token] = &domain.AuthSession{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a login session by token.
func (r *AuthSessionRepo) GetByToken(ctx context.Context, token string) (*domain.AuthSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.authSessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete removes a login session.
func (r *AuthSessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.authSessions, token)
	return nil
}

// DeleteExpired removes all expired login sessions.
func (r *AuthSessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.authSessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.authSessions, k)
		}
	}
	return nil
}

// --- ClientRepository ---

// ClientRepo implements client persistence.
type ClientRepo struct{ db *DB }

// Clients returns the client repository view.
func (db *DB) Clients() *ClientRepo { return &ClientRepo{db: db} }

// Create stores a new client.
func (r *ClientRepo) Create(ctx context.Context, c *domain.Client) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.clients[c.ID] = *c
	return nil
}

// GetByID retrieves an owner's client by ID.
func (r *ClientRepo) GetByID(ctx context.Context, ownerID int64, id string) (*domain.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if c, ok := r.db.clients[id]; ok && c.OwnerID == ownerID {
		out := c
		return &out, nil
	}
	return nil, nil
}

// List returns all of an owner's clients, newest first.
func (r *ClientRepo) List(ctx context.Context, ownerID int64) ([]domain.Client, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Client, 0)
	for _, c := range r.db.clients {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces a client record.
func (r *ClientRepo) Update(ctx context.Context, c *domain.Client) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.clients[c.ID]
	if !ok || existing.OwnerID != c.OwnerID {
		return false, nil
	}
	r.db.clients[c.ID] = *c
	return true, nil
}

// Delete removes an owner's client by ID.
func (r *ClientRepo) Delete(ctx context.Context, ownerID int64, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if c, ok := r.db.clients[id]; ok && c.OwnerID == ownerID {
		delete(r.db.clients, id)
		return true, nil
	}
	return false, nil
}

// --- WorkSessionRepository ---

// WorkSessionRepo implements work-session persistence.
type WorkSessionRepo struct{ db *DB }

// WorkSessions returns the work-session repository view.
func (db *DB) WorkSessions() *WorkSessionRepo { return &WorkSessionRepo{db: db} }

// Create stores a new work session.
func (r *WorkSessionRepo) Create(ctx context.Context, s *domain.WorkSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.work[s.ID] = *s
	return nil
}

// GetByID retrieves an owner's session by ID.
func (r *WorkSessionRepo) GetByID(ctx context.Context, ownerID int64, id string) (*domain.WorkSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.work[id]; ok && s.OwnerID == ownerID {
		out := s
		return &out, nil
	}
	return nil, nil
}

// GetByIDs resolves each ID to an owner's session, preserving request order.
// IDs that do not resolve are simply absent from the result.
func (r *WorkSessionRepo) GetByIDs(ctx context.Context, ownerID int64, ids []string) ([]domain.WorkSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.WorkSession, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.db.work[id]; ok && s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

// List returns all of an owner's sessions, newest start first.
func (r *WorkSessionRepo) List(ctx context.Context, ownerID int64) ([]domain.WorkSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.WorkSession, 0)
	for _, s := range r.db.work {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

// FindOpen returns the owner's running session, or nil.
func (r *WorkSessionRepo) FindOpen(ctx context.Context, ownerID int64) (*domain.WorkSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, s := range r.db.work {
		if s.OwnerID == ownerID && s.TotalHours == nil {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

// Update replaces a session record.
func (r *WorkSessionRepo) Update(ctx context.Context, s *domain.WorkSession) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.work[s.ID]
	if !ok || existing.OwnerID != s.OwnerID {
		return false, nil
	}
	r.db.work[s.ID] = *s
	return true, nil
}

// Delete removes an owner's session by ID.
func (r *WorkSessionRepo) Delete(ctx context.Context, ownerID int64, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.work[id]; ok && s.OwnerID == ownerID {
		delete(r.db.work, id)
		return true, nil
	}
	return false, nil
}

// CountByClient counts an owner's sessions referencing the client.
func (r *WorkSessionRepo) CountByClient(ctx context.Context, ownerID int64, clientID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := 0
	for _, s := range r.db.work {
		if s.OwnerID == ownerID && s.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

// --- InvoiceRepository ---

// InvoiceRepo implements invoice persistence.
type InvoiceRepo struct{ db *DB }

// Invoices returns the invoice repository view.
func (db *DB) Invoices() *InvoiceRepo { return &InvoiceRepo{db: db} }

// Create stores a new invoice. The membership-uniqueness check and the
// insert run under the store's single lock, mirroring the transactional
// guard of the Postgres adapter.
func (r *InvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.invoices {
		for _, taken := range existing.SessionIDs {
			for _, id := range inv.SessionIDs {
				if id == taken {
					return domain.ErrAlreadyInvoiced
				}
			}
		}
	}

	stored := *inv
	stored.SessionIDs = append([]string(nil), inv.SessionIDs...)
	r.db.invoices[inv.ID] = stored
	return nil
}

// GetByID retrieves an owner's invoice by ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, ownerID int64, id string) (*domain.Invoice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if inv, ok := r.db.invoices[id]; ok && inv.OwnerID == ownerID {
		out := inv
		out.SessionIDs = append([]string(nil), inv.SessionIDs...)
		return &out, nil
	}
	return nil, nil
}

// List returns all of an owner's invoices, newest first.
func (r *InvoiceRepo) List(ctx context.Context, ownerID int64) ([]domain.Invoice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Invoice, 0)
	for _, inv := range r.db.invoices {
		if inv.OwnerID == ownerID {
			cp := inv
			cp.SessionIDs = append([]string(nil), inv.SessionIDs...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return out, nil
}

// UpdateStatus sets only the status field.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, ownerID int64, id string, status domain.InvoiceStatus) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	inv, ok := r.db.invoices[id]
	if !ok || inv.OwnerID != ownerID {
		return false, nil
	}
	inv.Status = status
	r.db.invoices[id] = inv
	return true, nil
}

// Delete removes an owner's invoice by ID.
func (r *InvoiceRepo) Delete(ctx context.Context, ownerID int64, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if inv, ok := r.db.invoices[id]; ok && inv.OwnerID == ownerID {
		delete(r.db.invoices, id)
		return true, nil
	}
	return false, nil
}

// CountByClient counts an owner's invoices referencing the client.
func (r *InvoiceRepo) CountByClient(ctx context.Context, ownerID int64, clientID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := 0
	for _, inv := range r.db.invoices {
		if inv.OwnerID == ownerID && inv.ClientID == clientID {
			n++
		}
	}
	return n, nil
}
