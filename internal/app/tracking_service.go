package app

import (
	"context"
	"errors"
	"math"
	"time"

	"timeledger/internal/domain"

	"github.com/google/uuid"
)

// ErrAlreadyStopped indicates a stop request for a session that is not running.
var ErrAlreadyStopped = errors.New("session is not running")

// TrackingService encapsulates work-session use cases: the live timer,
// manual entries, and session edits.
type TrackingService struct {
	sessions domain.WorkSessionRepository
	clients  domain.ClientRepository
}

// NewTrackingService creates a TrackingService backed by the given repositories.
func NewTrackingService(sessions domain.WorkSessionRepository, clients domain.ClientRepository) *TrackingService {
	return &TrackingService{sessions: sessions, clients: clients}
}

// StartTimer opens a new timer-derived session. At most one session may be
// open per owner at a time.
func (s *TrackingService) StartTimer(ctx context.Context, ownerID int64, clientID, tag string) (*domain.WorkSession, error) {
	if clientID == "" {
		return nil, domain.ErrMissingClient
	}
	client, err := s.clients.GetByID(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	open, err := s.sessions.FindOpen(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, domain.ErrTimerRunning
	}

	sess := &domain.WorkSession{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ClientID:  clientID,
		StartTime: time.Now().UTC(),
		Tag:       tag,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// StopTimer closes a running session, computing its hours from the elapsed
// time rounded to two decimals.
func (s *TrackingService) StopTimer(ctx context.Context, ownerID int64, sessionID string) (*domain.WorkSession, error) {
	sess, err := s.sessions.GetByID(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrNotFound
	}
	if sess.Closed() {
		return nil, ErrAlreadyStopped
	}

	end := time.Now().UTC()
	hours := roundHours(end.Sub(sess.StartTime).Hours())
	sess.EndTime = &end
	sess.TotalHours = &hours

	found, err := s.sessions.Update(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// LogManual records a hand-entered session. The entry is created closed,
// with an end time synthesized from the start plus the declared hours so the
// record stays consistent with timer-derived sessions.
func (s *TrackingService) LogManual(ctx context.Context, ownerID int64, clientID, tag, notes string, hours float64, startedAt time.Time) (*domain.WorkSession, error) {
	if clientID == "" {
		return nil, domain.ErrMissingClient
	}
	if hours <= 0 {
		return nil, errors.New("totalHours must be greater than zero")
	}
	client, err := s.clients.GetByID(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	end := startedAt.Add(time.Duration(hours * float64(time.Hour)))
	hours = roundHours(hours)

	sess := &domain.WorkSession{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		ClientID:   clientID,
		StartTime:  startedAt,
		EndTime:    &end,
		TotalHours: &hours,
		IsManual:   true,
		Tag:        tag,
		Notes:      notes,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Update edits a session's descriptive fields. Time range and hours are not
// editable after the fact.
func (s *TrackingService) Update(ctx context.Context, ownerID int64, sessionID, tag, notes string) (*domain.WorkSession, error) {
	sess, err := s.sessions.GetByID(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrNotFound
	}

	sess.Tag = tag
	sess.Notes = notes

	found, err := s.sessions.Update(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// Delete removes a session.
func (s *TrackingService) Delete(ctx context.Context, ownerID int64, sessionID string) error {
	found, err := s.sessions.Delete(ctx, ownerID, sessionID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// List returns all sessions for the owner, newest first.
func (s *TrackingService) List(ctx context.Context, ownerID int64) ([]domain.WorkSession, error) {
	return s.sessions.List(ctx, ownerID)
}

// Current returns the owner's open session, or nil when no timer is running.
func (s *TrackingService) Current(ctx context.Context, ownerID int64) (*domain.WorkSession, error) {
	return s.sessions.FindOpen(ctx, ownerID)
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
