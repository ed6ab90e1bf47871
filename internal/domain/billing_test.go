package domain_test

import (
	"testing"

	"timeledger/internal/domain"
)

func hoursPtr(h float64) *float64 { return &h }

func closedSession(id, clientID string, hours float64) domain.WorkSession {
	return domain.WorkSession{ID: id, ClientID: clientID, TotalHours: hoursPtr(hours)}
}

func TestPartitionSessions(t *testing.T) {
	sessions := []domain.WorkSession{
		closedSession("s1", "c1", 2.0),
		closedSession("s2", "c1", 1.5),
		closedSession("s3", "c2", 3.25),
		{ID: "s4", ClientID: "c1"}, // open, no hours
	}
	invoices := []domain.Invoice{
		{ID: "i1", SessionIDs: []string{"s2"}},
	}

	billable, invoiced := domain.PartitionSessions(sessions, invoices)

	if len(billable) != 2 {
		t.Fatalf("expected 2 billable, got %d", len(billable))
	}
	if len(invoiced) != 1 || invoiced[0].ID != "s2" {
		t.Fatalf("expected invoiced=[s2], got %v", invoiced)
	}

	// Totality and disjointness over the closed sessions.
	seen := map[string]int{}
	for _, s := range billable {
		seen[s.ID]++
	}
	for _, s := range invoiced {
		seen[s.ID]++
	}
	for _, id := range []string{"s1", "s2", "s3"} {
		if seen[id] != 1 {
			t.Errorf("closed session %s appeared %d times across buckets", id, seen[id])
		}
	}
	if seen["s4"] != 0 {
		t.Error("open session s4 must not appear in either bucket")
	}
}

func TestPartitionSessions_NoInvoices(t *testing.T) {
	sessions := []domain.WorkSession{closedSession("s1", "c1", 1)}
	billable, invoiced := domain.PartitionSessions(sessions, nil)
	if len(billable) != 1 || len(invoiced) != 0 {
		t.Fatalf("expected all billable, got billable=%d invoiced=%d", len(billable), len(invoiced))
	}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name      string
		hours     []float64
		rateCents int64
		wantHours float64
		wantCents int64
	}{
		{"typical set", []float64{2.0, 1.5, 3.25}, 5000, 6.75, 33750},
		{"empty set", nil, 5000, 0, 0},
		{"zero rate", []float64{4.0}, 0, 4.0, 0},
		{"fractional cents round", []float64{0.333}, 10000, 0.333, 3330},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sessions := make([]domain.WorkSession, 0, len(tc.hours))
			for i, h := range tc.hours {
				sessions = append(sessions, closedSession(string(rune('a'+i)), "c1", h))
			}
			hours, cents := domain.ComputeTotals(sessions, tc.rateCents)
			if hours != tc.wantHours || cents != tc.wantCents {
				t.Errorf("ComputeTotals = (%v, %d); want (%v, %d)",
					hours, cents, tc.wantHours, tc.wantCents)
			}
		})
	}
}

func TestComputeTotals_OpenSessionCountsZero(t *testing.T) {
	sessions := []domain.WorkSession{
		closedSession("s1", "c1", 2.0),
		{ID: "s2", ClientID: "c1"},
	}
	hours, cents := domain.ComputeTotals(sessions, 5000)
	if hours != 2.0 || cents != 10000 {
		t.Fatalf("ComputeTotals = (%v, %d); want (2.0, 10000)", hours, cents)
	}
}
