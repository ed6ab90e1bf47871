package postgres

import (
	"context"
	"database/sql"
	"time"

	"timeledger/internal/domain"
)

// UserRepo implements user persistence.
type UserRepo struct {
	db *DB
}

// NewUserRepo wraps a DB as a UserRepository.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = "id, name, email, password_hash, verified, verify_token, verify_expiry, created_at"

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Verified, &u.VerifyToken, &u.VerifyExpiry, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// GetByVerifyToken retrieves a user by verification token.
func (r *UserRepo) GetByVerifyToken(ctx context.Context, token string) (*domain.User, error) {
	return scanUser(r.db.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE verify_token = $1 AND verify_token <> ''", token))
}

// Create stores a new user and assigns its ID.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return r.db.sql.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, verified, verify_token, verify_expiry, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.Verified, u.VerifyToken, u.VerifyExpiry, u.CreatedAt,
	).Scan(&u.ID)
}

// MarkVerified flags the user as verified and clears the token.
func (r *UserRepo) MarkVerified(ctx context.Context, id int64) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE users SET verified = TRUE, verify_token = '', verify_expiry = 'epoch' WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AuthSessionRepo implements login-session persistence.
type AuthSessionRepo struct {
	db *DB
}

// NewAuthSessionRepo wraps a DB as an AuthSessionRepository.
func NewAuthSessionRepo(db *DB) *AuthSessionRepo {
	return &AuthSessionRepo{db: db}
}

// Create stores a new login session.
func (r *AuthSessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO auth_sessions (token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)",
		token, userID, expiresAt, time.Now().UTC(),
	)
	return err
}

// GetByToken retrieves a login session by token.
func (r *AuthSessionRepo) GetByToken(ctx context.Context, token string) (*domain.AuthSession, error) {
	var s domain.AuthSession
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT token, user_id, expires_at, created_at FROM auth_sessions WHERE token = $1",
		token,
	).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a login session.
func (r *AuthSessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM auth_sessions WHERE token = $1", token)
	return err
}

// DeleteExpired removes all expired login sessions.
func (r *AuthSessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM auth_sessions WHERE expires_at < $1", time.Now())
	return err
}
