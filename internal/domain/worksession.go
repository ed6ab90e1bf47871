package domain

import (
	"context"
	"time"
)

// WorkSession is a recorded interval of billable work for one client.
//
// A session with a nil EndTime (and therefore nil TotalHours) is open: the
// timer is still running. Only closed sessions are eligible for billing.
// Manual entries are created closed, with hours supplied directly and
// EndTime synthesized as StartTime + hours.
type WorkSession struct {
	ID         string     `json:"id"`
	OwnerID    int64      `json:"-"`
	ClientID   string     `json:"clientId"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	TotalHours *float64   `json:"totalHours,omitempty"`
	IsManual   bool       `json:"isManual"`
	Tag        string     `json:"tag,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Closed reports whether the session has finished and carries billable hours.
func (s *WorkSession) Closed() bool {
	return s.TotalHours != nil
}

// Hours returns the session's hours, or 0 for an open session.
func (s *WorkSession) Hours() float64 {
	if s.TotalHours == nil {
		return 0
	}
	return *s.TotalHours
}

// WorkSessionRepository is the port for work-session persistence, scoped to
// an owner like ClientRepository.
type WorkSessionRepository interface {
	Create(ctx context.Context, s *WorkSession) error
	GetByID(ctx context.Context, ownerID int64, id string) (*WorkSession, error)
	GetByIDs(ctx context.Context, ownerID int64, ids []string) ([]WorkSession, error)
	List(ctx context.Context, ownerID int64) ([]WorkSession, error)
	FindOpen(ctx context.Context, ownerID int64) (*WorkSession, error)
	Update(ctx context.Context, s *WorkSession) (bool, error)
	Delete(ctx context.Context, ownerID int64, id string) (bool, error)
	CountByClient(ctx context.Context, ownerID int64, clientID string) (int, error)
}
