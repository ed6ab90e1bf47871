package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"timeledger/internal/domain"
)

func TestRenderInvoice(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	hours := 2.0

	inv := &domain.Invoice{
		ID:               "inv-1",
		ClientID:         "c-1",
		SessionIDs:       []string{"s-1"},
		TotalHours:       2,
		TotalAmountCents: 17000,
		Status:           domain.StatusPending,
		IssuedAt:         time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
	}
	client := &domain.Client{ID: "c-1", Name: "Acme & Sons", Email: "billing@acme.test", HourlyRateCents: 8500}
	sessions := []domain.WorkSession{
		{ID: "s-1", ClientID: "c-1", StartTime: start, EndTime: &end, TotalHours: &hours, Tag: "API work"},
	}

	var buf bytes.Buffer
	if err := NewInvoiceRenderer().Render(&buf, inv, client, sessions); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Invoice inv-1",
		"Acme &amp; Sons",
		"billing@acme.test",
		"API work",
		"$85.00/hr",
		"Total $170.00",
		"Pending",
		"March 11, 2026",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{17050, "$170.50"},
		{-2500, "-$25.00"},
	}
	for _, tc := range cases {
		if got := formatCents(tc.cents); got != tc.want {
			t.Errorf("formatCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
