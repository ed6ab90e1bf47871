// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"timeledger/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates that an account with this email already exists.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrNotVerified indicates a login attempt before email verification.
	ErrNotVerified = errors.New("please verify your email before logging in")
	// ErrInvalidVerifyToken indicates an unknown or expired verification token.
	ErrInvalidVerifyToken = errors.New("invalid or expired verification token")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

const (
	sessionTTL = 24 * time.Hour
	verifyTTL  = 24 * time.Hour
)

// Mailer is the outbound port for transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AuthService handles registration, email verification and session management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.AuthSessionRepository
	mailer   Mailer
	baseURL  string
}

// NewAuthService creates a new authentication service. baseURL is the public
// URL the verification link points at.
func NewAuthService(users domain.UserRepository, sessions domain.AuthSessionRepository, mailer Mailer, baseURL string) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		baseURL:  baseURL,
	}
}

// Register creates an unverified account and sends a verification mail. The
// user cannot log in until VerifyEmail succeeds.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	if name == "" || email == "" {
		return errors.New("name and email are required")
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	token, err := generateVerifyToken()
	if err != nil {
		return err
	}

	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		VerifyToken:  token,
		VerifyExpiry: time.Now().Add(verifyTTL),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}

	body := fmt.Sprintf("Hi %s,\n\nPlease verify your email:\n%s/verify-email/%s\n", name, s.baseURL, token)
	return s.mailer.Send(ctx, email, "Verify your account", body)
}

// VerifyEmail marks the account behind the token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidVerifyToken
	}
	user, err := s.users.GetByVerifyToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil || time.Now().After(user.VerifyExpiry) {
		return ErrInvalidVerifyToken
	}
	return s.users.MarkVerified(ctx, user.ID)
}

// Login authenticates a verified user and creates a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return "", ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if !user.Verified {
		return "", ErrNotVerified
	}

	return s.createSession(ctx, user.ID)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession resolves a session token to its user.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// LoginWithSSOUser creates a session for a user authenticated by the identity
// provider, auto-provisioning a verified account on first login. SSO users
// have no local password.
func (s *AuthService) LoginWithSSOUser(ctx context.Context, email, name string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		user = &domain.User{Name: name, Email: email, Verified: true}
		if err := s.users.Create(ctx, user); err != nil {
			// Retry the lookup in case a concurrent callback created the
			// account first (unique constraint on email).
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil {
				return "", err
			}
			if user == nil {
				return "", ErrUserNotFound
			}
		}
	}

	return s.createSession(ctx, user.ID)
}

func (s *AuthService) createSession(ctx context.Context, userID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, userID, token, time.Now().Add(sessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func generateVerifyToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
