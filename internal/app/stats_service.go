package app

import (
	"context"
	"time"

	"timeledger/internal/domain"
)

// StatsService produces the dashboard aggregates: per-day tracked hours and
// an overall billing summary.
type StatsService struct {
	sessions domain.WorkSessionRepository
	invoices domain.InvoiceRepository
}

// NewStatsService creates a StatsService backed by the given repositories.
func NewStatsService(sessions domain.WorkSessionRepository, invoices domain.InvoiceRepository) *StatsService {
	return &StatsService{sessions: sessions, invoices: invoices}
}

// DayPoint is a single data point returned by GetDaily.
type DayPoint struct {
	Day      string  `json:"day"`
	Hours    float64 `json:"hours"`
	Sessions int     `json:"sessions"`
}

// Summary is the overall billing position for an owner.
type Summary struct {
	TotalHours       float64 `json:"totalHours"`
	BillableHours    float64 `json:"billableHours"`
	InvoicedHours    float64 `json:"invoicedHours"`
	OutstandingCents int64   `json:"outstandingCents"`
	PaidCents        int64   `json:"paidCents"`
}

// GetDaily returns tracked hours bucketed by local calendar day for the last
// days days, oldest first.
func (s *StatsService) GetDaily(ctx context.Context, ownerID int64, days int) ([]DayPoint, error) {
	if days > 366 {
		days = 366
	}

	sessions, err := s.sessions.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		hours float64
		count int
	}
	byDay := make(map[string]bucket)
	for _, sess := range sessions {
		if !sess.Closed() {
			continue
		}
		day := sess.StartTime.In(time.Local).Format("2006-01-02")
		b := byDay[day]
		b.hours += sess.Hours()
		b.count++
		byDay[day] = b
	}

	today := time.Now().In(time.Local)
	points := make([]DayPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		b := byDay[day]
		points = append(points, DayPoint{Day: day, Hours: b.hours, Sessions: b.count})
	}
	return points, nil
}

// GetSummary returns the owner's total, billable and invoiced hours plus the
// outstanding (pending) and paid invoice amounts.
func (s *StatsService) GetSummary(ctx context.Context, ownerID int64) (*Summary, error) {
	sessions, err := s.sessions.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	billable, invoiced := domain.PartitionSessions(sessions, invoices)

	sum := &Summary{}
	for _, sess := range billable {
		sum.BillableHours += sess.Hours()
	}
	for _, sess := range invoiced {
		sum.InvoicedHours += sess.Hours()
	}
	sum.TotalHours = sum.BillableHours + sum.InvoicedHours

	for _, inv := range invoices {
		switch inv.Status {
		case domain.StatusPaid:
			sum.PaidCents += inv.TotalAmountCents
		default:
			sum.OutstandingCents += inv.TotalAmountCents
		}
	}
	return sum, nil
}
