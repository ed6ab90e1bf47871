package memory

import (
	"context"
	"testing"
	"time"

	"timeledger/internal/domain"
)

func TestUserRepo_CreateAssignsIDs(t *testing.T) {
	ctx := context.Background()
	db := New()
	users := db.Users()

	u1 := &domain.User{Name: "Ada", Email: "ada@example.com"}
	u2 := &domain.User{Name: "Grace", Email: "grace@example.com"}

	if err := users.Create(ctx, u1); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := users.Create(ctx, u2); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u1.ID == 0 || u2.ID == u1.ID {
		t.Errorf("expected distinct non-zero IDs, got %d and %d", u1.ID, u2.ID)
	}

	dup := &domain.User{Name: "Ada Again", Email: "ada@example.com"}
	if err := users.Create(ctx, dup); err == nil {
		t.Error("expected duplicate email to be rejected")
	}

	got, err := users.GetByEmail(ctx, "ada@example.com")
	if err != nil || got == nil || got.ID != u1.ID {
		t.Errorf("GetByEmail = %v, %v", got, err)
	}
}

func TestAuthSessionRepo_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	db := New()
	sessions := db.AuthSessions()

	_ = sessions.Create(ctx, 1, "live", time.Now().Add(time.Hour))
	_ = sessions.Create(ctx, 1, "dead", time.Now().Add(-time.Hour))

	if err := sessions.DeleteExpired(ctx); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}

	if s, _ := sessions.GetByToken(ctx, "live"); s == nil {
		t.Error("live session should survive")
	}
	if s, _ := sessions.GetByToken(ctx, "dead"); s != nil {
		t.Error("expired session should be gone")
	}
}

func TestInvoiceRepo_CreateRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	db := New()
	invoices := db.Invoices()

	first := &domain.Invoice{ID: "inv-1", OwnerID: 1, ClientID: "c-1", SessionIDs: []string{"s-1", "s-2"}, IssuedAt: time.Now()}
	if err := invoices.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	overlap := &domain.Invoice{ID: "inv-2", OwnerID: 1, ClientID: "c-1", SessionIDs: []string{"s-2", "s-3"}, IssuedAt: time.Now()}
	if err := invoices.Create(ctx, overlap); err != domain.ErrAlreadyInvoiced {
		t.Errorf("expected ErrAlreadyInvoiced, got %v", err)
	}

	disjoint := &domain.Invoice{ID: "inv-3", OwnerID: 1, ClientID: "c-1", SessionIDs: []string{"s-3"}, IssuedAt: time.Now()}
	if err := invoices.Create(ctx, disjoint); err != nil {
		t.Errorf("disjoint selection should insert, got %v", err)
	}
}

func TestInvoiceRepo_CopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := New()
	invoices := db.Invoices()

	inv := &domain.Invoice{ID: "inv-1", OwnerID: 1, SessionIDs: []string{"s-1"}, IssuedAt: time.Now()}
	if err := invoices.Create(ctx, inv); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := invoices.GetByID(ctx, 1, "inv-1")
	if err != nil || got == nil {
		t.Fatalf("GetByID = %v, %v", got, err)
	}
	got.SessionIDs[0] = "mutated"

	again, _ := invoices.GetByID(ctx, 1, "inv-1")
	if again.SessionIDs[0] != "s-1" {
		t.Error("stored invoice was mutated through a returned copy")
	}
}

func TestWorkSessionRepo_GetByIDsPreservesOrder(t *testing.T) {
	ctx := context.Background()
	db := New()
	work := db.WorkSessions()

	now := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		if err := work.Create(ctx, &domain.WorkSession{ID: id, OwnerID: 1, ClientID: "c-1", StartTime: now}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := work.GetByIDs(ctx, 1, []string{"c", "a", "missing"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "a" {
		t.Errorf("unexpected result order: %+v", got)
	}
}

func TestWorkSessionRepo_FindOpen(t *testing.T) {
	ctx := context.Background()
	db := New()
	work := db.WorkSessions()

	hours := 2.0
	end := time.Now()
	_ = work.Create(ctx, &domain.WorkSession{ID: "closed", OwnerID: 1, StartTime: end.Add(-2 * time.Hour), EndTime: &end, TotalHours: &hours})

	open, err := work.FindOpen(ctx, 1)
	if err != nil || open != nil {
		t.Fatalf("expected no open session, got %v, %v", open, err)
	}

	_ = work.Create(ctx, &domain.WorkSession{ID: "running", OwnerID: 1, StartTime: time.Now()})
	open, err = work.FindOpen(ctx, 1)
	if err != nil || open == nil || open.ID != "running" {
		t.Fatalf("expected running session, got %v, %v", open, err)
	}

	// Other owners never see it.
	open, _ = work.FindOpen(ctx, 2)
	if open != nil {
		t.Error("open session leaked across owners")
	}
}

func TestClientRepo_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	db := New()
	clients := db.Clients()

	_ = clients.Create(ctx, &domain.Client{ID: "c-1", OwnerID: 1, Name: "Acme", CreatedAt: time.Now()})

	if got, _ := clients.GetByID(ctx, 2, "c-1"); got != nil {
		t.Error("client visible to wrong owner")
	}
	if found, _ := clients.Delete(ctx, 2, "c-1"); found {
		t.Error("client deletable by wrong owner")
	}
	if got, _ := clients.GetByID(ctx, 1, "c-1"); got == nil {
		t.Error("client missing for its owner")
	}
}
