package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"timeledger/internal/domain"

	"github.com/lib/pq"
)

// InvoiceRepo implements invoice persistence.
type InvoiceRepo struct {
	db *DB
}

// NewInvoiceRepo wraps a DB as an InvoiceRepository.
func NewInvoiceRepo(db *DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

const pqUniqueViolation = "23505"

// Create stores the invoice and its session membership in one transaction.
// The UNIQUE constraint on invoice_sessions.session_id rejects any session
// that already belongs to another invoice, which closes the check-then-act
// window between validation and insert.
func (r *InvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO invoices (id, owner_id, client_id, total_hours, total_amount_cents, status, issued_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inv.ID, inv.OwnerID, inv.ClientID, inv.TotalHours, inv.TotalAmountCents, inv.Status, inv.IssuedAt,
	)
	if err != nil {
		return err
	}

	for i, sessionID := range inv.SessionIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO invoice_sessions (invoice_id, session_id, position) VALUES ($1, $2, $3)",
			inv.ID, sessionID, i,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
				return domain.ErrAlreadyInvoiced
			}
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves an owner's invoice by ID, including its membership.
func (r *InvoiceRepo) GetByID(ctx context.Context, ownerID int64, id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT id, owner_id, client_id, total_hours, total_amount_cents, status, issued_at
		 FROM invoices WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&inv.ID, &inv.OwnerID, &inv.ClientID, &inv.TotalHours, &inv.TotalAmountCents, &inv.Status, &inv.IssuedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	inv.SessionIDs, err = r.sessionIDs(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns all of an owner's invoices with membership, newest first.
func (r *InvoiceRepo) List(ctx context.Context, ownerID int64) ([]domain.Invoice, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, owner_id, client_id, total_hours, total_amount_cents, status, issued_at
		 FROM invoices WHERE owner_id = $1 ORDER BY issued_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Invoice, 0)
	index := make(map[string]int)
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(&inv.ID, &inv.OwnerID, &inv.ClientID, &inv.TotalHours, &inv.TotalAmountCents, &inv.Status, &inv.IssuedAt); err != nil {
			return nil, err
		}
		index[inv.ID] = len(out)
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	memberRows, err := r.db.sql.QueryContext(ctx,
		`SELECT m.invoice_id, m.session_id
		 FROM invoice_sessions m
		 JOIN invoices i ON i.id = m.invoice_id
		 WHERE i.owner_id = $1
		 ORDER BY m.invoice_id, m.position`, ownerID)
	if err != nil {
		return nil, err
	}
	defer memberRows.Close() //nolint:errcheck

	for memberRows.Next() {
		var invoiceID, sessionID string
		if err := memberRows.Scan(&invoiceID, &sessionID); err != nil {
			return nil, err
		}
		if i, ok := index[invoiceID]; ok {
			out[i].SessionIDs = append(out[i].SessionIDs, sessionID)
		}
	}
	return out, memberRows.Err()
}

// UpdateStatus sets only the status field.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, ownerID int64, id string, status domain.InvoiceStatus) (bool, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE invoices SET status = $1 WHERE id = $2 AND owner_id = $3",
		status, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes an owner's invoice; membership rows cascade.
func (r *InvoiceRepo) Delete(ctx context.Context, ownerID int64, id string) (bool, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM invoices WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountByClient counts an owner's invoices referencing the client.
func (r *InvoiceRepo) CountByClient(ctx context.Context, ownerID int64, clientID string) (int, error) {
	var n int
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM invoices WHERE owner_id = $1 AND client_id = $2",
		ownerID, clientID,
	).Scan(&n)
	return n, err
}

func (r *InvoiceRepo) sessionIDs(ctx context.Context, invoiceID string) ([]string, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT session_id FROM invoice_sessions WHERE invoice_id = $1 ORDER BY position", invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoice %s membership: %w", invoiceID, err)
	}
	return ids, nil
}
