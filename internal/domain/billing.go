package domain

import "math"

// InvoicedSessionIDs flattens the membership arrays of all invoices into a
// session-id set. Membership is derived from live invoice data rather than a
// flag on the session, so deleting an invoice makes its sessions billable
// again with no extra bookkeeping.
func InvoicedSessionIDs(invoices []Invoice) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, inv := range invoices {
		for _, id := range inv.SessionIDs {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// PartitionSessions classifies closed sessions as billable (not referenced
// by any invoice) or invoiced. The partition is total and disjoint over the
// closed sessions; open sessions fall into neither bucket.
func PartitionSessions(sessions []WorkSession, invoices []Invoice) (billable, invoiced []WorkSession) {
	taken := InvoicedSessionIDs(invoices)
	for _, s := range sessions {
		if !s.Closed() {
			continue
		}
		if _, ok := taken[s.ID]; ok {
			invoiced = append(invoiced, s)
		} else {
			billable = append(billable, s)
		}
	}
	return billable, invoiced
}

// ComputeTotals sums hours over the given sessions and prices them at the
// given rate. Sessions without hours count as 0. An empty set yields zeros.
// Rounding to whole cents happens exactly once, here; totals are frozen into
// the invoice and never recomputed.
func ComputeTotals(sessions []WorkSession, rateCents int64) (hours float64, amountCents int64) {
	for _, s := range sessions {
		hours += s.Hours()
	}
	amountCents = int64(math.Round(hours * float64(rateCents)))
	return hours, amountCents
}
