package postgres

import (
	"context"
	"database/sql"

	"timeledger/internal/domain"
)

// ClientRepo implements client persistence.
type ClientRepo struct {
	db *DB
}

// NewClientRepo wraps a DB as a ClientRepository.
func NewClientRepo(db *DB) *ClientRepo {
	return &ClientRepo{db: db}
}

// Create stores a new client.
func (r *ClientRepo) Create(ctx context.Context, c *domain.Client) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO clients (id, owner_id, name, email, hourly_rate_cents, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.OwnerID, c.Name, c.Email, c.HourlyRateCents, c.Notes, c.CreatedAt,
	)
	return err
}

// GetByID retrieves an owner's client by ID.
func (r *ClientRepo) GetByID(ctx context.Context, ownerID int64, id string) (*domain.Client, error) {
	var c domain.Client
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT id, owner_id, name, email, hourly_rate_cents, notes, created_at
		 FROM clients WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.HourlyRateCents, &c.Notes, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all of an owner's clients, newest first.
func (r *ClientRepo) List(ctx context.Context, ownerID int64) ([]domain.Client, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, owner_id, name, email, hourly_rate_cents, notes, created_at
		 FROM clients WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Client, 0)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.HourlyRateCents, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update replaces a client's mutable attributes.
func (r *ClientRepo) Update(ctx context.Context, c *domain.Client) (bool, error) {
	res, err := r.db.sql.ExecContext(ctx,
		`UPDATE clients SET name = $1, email = $2, hourly_rate_cents = $3, notes = $4
		 WHERE id = $5 AND owner_id = $6`,
		c.Name, c.Email, c.HourlyRateCents, c.Notes, c.ID, c.OwnerID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes an owner's client by ID.
func (r *ClientRepo) Delete(ctx context.Context, ownerID int64, id string) (bool, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM clients WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
