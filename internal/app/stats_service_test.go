package app

import (
	"context"
	"testing"
	"time"

	"timeledger/internal/adapter/memory"
	"timeledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_GetSummary(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	clients := NewClientService(db.Clients(), db.WorkSessions(), db.Invoices())
	tracking := NewTrackingService(db.WorkSessions(), db.Clients())
	billing := NewBillingService(db.WorkSessions(), db.Invoices(), db.Clients())
	svc := NewStatsService(db.WorkSessions(), db.Invoices())

	client, err := clients.Create(ctx, testOwner, "Acme", "", 5000, "")
	require.NoError(t, err)

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	billed, err := tracking.LogManual(ctx, testOwner, client.ID, "", "", 2, base)
	require.NoError(t, err)
	paid, err := tracking.LogManual(ctx, testOwner, client.ID, "", "", 3, base.Add(24*time.Hour))
	require.NoError(t, err)
	_, err = tracking.LogManual(ctx, testOwner, client.ID, "", "", 1.5, base.Add(48*time.Hour))
	require.NoError(t, err)

	_, err = billing.CreateInvoice(ctx, testOwner, client.ID, []string{billed.ID})
	require.NoError(t, err)
	paidInv, err := billing.CreateInvoice(ctx, testOwner, client.ID, []string{paid.ID})
	require.NoError(t, err)
	_, err = billing.SetStatus(ctx, testOwner, paidInv.ID, domain.StatusPaid)
	require.NoError(t, err)

	sum, err := svc.GetSummary(ctx, testOwner)
	require.NoError(t, err)

	assert.InDelta(t, 6.5, sum.TotalHours, 1e-9)
	assert.InDelta(t, 1.5, sum.BillableHours, 1e-9)
	assert.InDelta(t, 5, sum.InvoicedHours, 1e-9)
	assert.Equal(t, int64(10000), sum.OutstandingCents)
	assert.Equal(t, int64(15000), sum.PaidCents)
}

func TestStatsService_GetDaily(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	clients := NewClientService(db.Clients(), db.WorkSessions(), db.Invoices())
	tracking := NewTrackingService(db.WorkSessions(), db.Clients())
	svc := NewStatsService(db.WorkSessions(), db.Invoices())

	client, err := clients.Create(ctx, testOwner, "Acme", "", 5000, "")
	require.NoError(t, err)

	today := time.Now().In(time.Local)
	yesterday := today.AddDate(0, 0, -1)

	_, err = tracking.LogManual(ctx, testOwner, client.ID, "", "", 2, today.Add(-6*time.Hour))
	require.NoError(t, err)
	_, err = tracking.LogManual(ctx, testOwner, client.ID, "", "", 1, yesterday.Add(-6*time.Hour))
	require.NoError(t, err)

	// An open timer contributes nothing until stopped.
	_, err = tracking.StartTimer(ctx, testOwner, client.ID, "")
	require.NoError(t, err)

	points, err := svc.GetDaily(ctx, testOwner, 7)
	require.NoError(t, err)
	require.Len(t, points, 7)

	// Oldest first, ending today.
	assert.Equal(t, today.Format("2006-01-02"), points[6].Day)

	var totalHours float64
	var totalSessions int
	for _, p := range points {
		totalHours += p.Hours
		totalSessions += p.Sessions
	}
	assert.InDelta(t, 3, totalHours, 1e-9)
	assert.Equal(t, 2, totalSessions)
}
