package postgres

import (
	"context"
	"database/sql"

	"timeledger/internal/domain"

	"github.com/lib/pq"
)

// WorkSessionRepo implements work-session persistence.
type WorkSessionRepo struct {
	db *DB
}

// NewWorkSessionRepo wraps a DB as a WorkSessionRepository.
func NewWorkSessionRepo(db *DB) *WorkSessionRepo {
	return &WorkSessionRepo{db: db}
}

const workColumns = "id, owner_id, client_id, start_time, end_time, total_hours, is_manual, tag, notes, created_at"

func scanWorkSession(scan func(dest ...any) error) (*domain.WorkSession, error) {
	var (
		s     domain.WorkSession
		end   sql.NullTime
		hours sql.NullFloat64
	)
	err := scan(&s.ID, &s.OwnerID, &s.ClientID, &s.StartTime, &end, &hours, &s.IsManual, &s.Tag, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		s.EndTime = &t
	}
	if hours.Valid {
		h := hours.Float64
		s.TotalHours = &h
	}
	return &s, nil
}

// Create stores a new work session.
func (r *WorkSessionRepo) Create(ctx context.Context, s *domain.WorkSession) error {
	var (
		end   any
		hours any
	)
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if s.TotalHours != nil {
		hours = *s.TotalHours
	}
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO work_sessions (id, owner_id, client_id, start_time, end_time, total_hours, is_manual, tag, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.OwnerID, s.ClientID, s.StartTime, end, hours, s.IsManual, s.Tag, s.Notes, s.CreatedAt,
	)
	return err
}

// GetByID retrieves an owner's session by ID.
func (r *WorkSessionRepo) GetByID(ctx context.Context, ownerID int64, id string) (*domain.WorkSession, error) {
	row := r.db.sql.QueryRowContext(ctx,
		"SELECT "+workColumns+" FROM work_sessions WHERE id = $1 AND owner_id = $2", id, ownerID)
	s, err := scanWorkSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// GetByIDs resolves each ID to an owner's session, preserving request order.
// IDs that do not resolve are simply absent from the result.
func (r *WorkSessionRepo) GetByIDs(ctx context.Context, ownerID int64, ids []string) ([]domain.WorkSession, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+workColumns+" FROM work_sessions WHERE owner_id = $1 AND id = ANY($2)",
		ownerID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	byID := make(map[string]domain.WorkSession, len(ids))
	for rows.Next() {
		s, err := scanWorkSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[s.ID] = *s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.WorkSession, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// List returns all of an owner's sessions, newest start first.
func (r *WorkSessionRepo) List(ctx context.Context, ownerID int64) ([]domain.WorkSession, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+workColumns+" FROM work_sessions WHERE owner_id = $1 ORDER BY start_time DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.WorkSession, 0)
	for rows.Next() {
		s, err := scanWorkSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// FindOpen returns the owner's running session, or nil.
func (r *WorkSessionRepo) FindOpen(ctx context.Context, ownerID int64) (*domain.WorkSession, error) {
	row := r.db.sql.QueryRowContext(ctx,
		"SELECT "+workColumns+" FROM work_sessions WHERE owner_id = $1 AND total_hours IS NULL ORDER BY start_time DESC LIMIT 1",
		ownerID)
	s, err := scanWorkSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// Update replaces a session's mutable fields.
func (r *WorkSessionRepo) Update(ctx context.Context, s *domain.WorkSession) (bool, error) {
	var (
		end   any
		hours any
	)
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if s.TotalHours != nil {
		hours = *s.TotalHours
	}
	res, err := r.db.sql.ExecContext(ctx,
		`UPDATE work_sessions SET end_time = $1, total_hours = $2, tag = $3, notes = $4
		 WHERE id = $5 AND owner_id = $6`,
		end, hours, s.Tag, s.Notes, s.ID, s.OwnerID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes an owner's session by ID.
func (r *WorkSessionRepo) Delete(ctx context.Context, ownerID int64, id string) (bool, error) {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM work_sessions WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountByClient counts an owner's sessions referencing the client.
func (r *WorkSessionRepo) CountByClient(ctx context.Context, ownerID int64, clientID string) (int, error) {
	var n int
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM work_sessions WHERE owner_id = $1 AND client_id = $2",
		ownerID, clientID,
	).Scan(&n)
	return n, err
}
