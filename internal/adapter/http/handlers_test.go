package adapthttp_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	adapthttp "timeledger/internal/adapter/http"
	"timeledger/internal/adapter/memory"
	"timeledger/internal/app"
	"timeledger/internal/export"
)

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := memory.New()
	authSvc := app.NewAuthService(db.Users(), db.AuthSessions(), app.NewLogMailer(slog.Default()), "http://localhost")
	clientSvc := app.NewClientService(db.Clients(), db.WorkSessions(), db.Invoices())
	trackingSvc := app.NewTrackingService(db.WorkSessions(), db.Clients())
	billingSvc := app.NewBillingService(db.WorkSessions(), db.Invoices(), db.Clients())
	statsSvc := app.NewStatsService(db.WorkSessions(), db.Invoices())

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := adapthttp.New(authSvc, clientSvc, trackingSvc, billingSvc, statsSvc,
		export.NewInvoiceRenderer(), slog.Default(), webDir).WithoutAuth(1)
	return httptest.NewServer(srv.Handler())
}

func doJSON(t *testing.T, method, url string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	var l []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return l
}

func createClient(t *testing.T, ts *httptest.Server, rate float64) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/clients", map[string]any{
		"name":       "Acme",
		"email":      "billing@acme.test",
		"hourlyRate": rate,
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create client: expected 201, got %d", resp.StatusCode)
	}
	return decodeBody(t, resp)["id"].(string)
}

func logSession(t *testing.T, ts *httptest.Server, clientID string, hours float64, start time.Time) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/work/manual", map[string]any{
		"clientId":  clientID,
		"hours":     hours,
		"startedAt": start.Format(time.RFC3339),
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("log session: expected 201, got %d", resp.StatusCode)
	}
	return decodeBody(t, resp)["id"].(string)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestClientCRUD(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	id := createClient(t, ts, 85)

	resp, err := http.Get(ts.URL + "/api/clients")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	list := decodeList(t, resp)
	if len(list) != 1 || list[0]["id"] != id {
		t.Fatalf("unexpected client list: %v", list)
	}
	if list[0]["hourlyRateCents"] != float64(8500) {
		t.Errorf("expected rate 8500 cents, got %v", list[0]["hourlyRateCents"])
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/clients/"+id, map[string]any{
		"name":       "Acme Corp",
		"hourlyRate": 90,
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	if got := decodeBody(t, resp)["name"]; got != "Acme Corp" {
		t.Errorf("expected updated name, got %v", got)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/clients/"+id, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
}

func TestCreateClient_Invalid(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/clients", map[string]any{
		"name":       "",
		"hourlyRate": 85,
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteClient_InUse(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	id := createClient(t, ts, 85)
	logSession(t, ts, id, 2, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/clients/"+id, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestTimerEndpoints(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	clientID := createClient(t, ts, 85)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/work/start", map[string]any{"clientId": clientID})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", resp.StatusCode)
	}
	sessID := decodeBody(t, resp)["id"].(string)

	// Second start conflicts with the running timer.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/work/start", map[string]any{"clientId": clientID})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second start: expected 409, got %d", resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/api/work/current")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if got := decodeBody(t, resp)["id"]; got != sessID {
		t.Errorf("current: expected %s, got %v", sessID, got)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/work/stop/"+sessID, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d", resp.StatusCode)
	}
	stopped := decodeBody(t, resp)
	if stopped["endTime"] == nil {
		t.Error("stopped session should carry an end time")
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	clientID := createClient(t, ts, 50)
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	s1 := logSession(t, ts, clientID, 2, base)
	s2 := logSession(t, ts, clientID, 1.5, base.Add(24*time.Hour))

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/invoices", map[string]any{
		"clientId": clientID,
		"sessions": []string{s1, s2},
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create invoice: expected 201, got %d", resp.StatusCode)
	}
	inv := decodeBody(t, resp)
	if inv["totalAmountCents"] != float64(17500) {
		t.Errorf("expected total 17500 cents, got %v", inv["totalAmountCents"])
	}
	invID := inv["id"].(string)

	// The sessions moved from billable to invoiced.
	resp, err := http.Get(ts.URL + "/api/invoices/billable")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if billable := decodeList(t, resp); len(billable) != 0 {
		t.Errorf("expected no billable sessions, got %d", len(billable))
	}

	resp, err = http.Get(ts.URL + "/api/invoices/invoiced")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if invoiced := decodeList(t, resp); len(invoiced) != 2 {
		t.Errorf("expected 2 invoiced sessions, got %d", len(invoiced))
	}

	// Double-billing is rejected.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/invoices", map[string]any{
		"clientId": clientID,
		"sessions": []string{s1},
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double billing: expected 409, got %d", resp.StatusCode)
	}

	// Status toggles.
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/invoices/"+invID+"/status", map[string]any{"status": "Paid"})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set status: expected 200, got %d", resp.StatusCode)
	}
	if got := decodeBody(t, resp)["status"]; got != "Paid" {
		t.Errorf("expected Paid, got %v", got)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/invoices/"+invID+"/status", map[string]any{"status": "Overdue"})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", resp.StatusCode)
	}

	// Deleting frees the sessions again.
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/invoices/"+invID, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/invoices/billable")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if billable := decodeList(t, resp); len(billable) != 2 {
		t.Errorf("expected 2 billable sessions after delete, got %d", len(billable))
	}
}

func TestExportInvoice(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	clientID := createClient(t, ts, 50)
	sessID := logSession(t, ts, clientID, 2, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/invoices", map[string]any{
		"clientId": clientID,
		"sessions": []string{sessID},
	})
	defer resp.Body.Close() //nolint:errcheck
	invID := decodeBody(t, resp)["id"].(string)

	resp, err := http.Get(fmt.Sprintf("%s/api/invoices/%s/export", ts.URL, invID))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %s", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Total $100.00") {
		t.Errorf("export missing total: %s", body)
	}
}

func TestStatsSummary(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	clientID := createClient(t, ts, 50)
	logSession(t, ts, clientID, 2, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))

	resp, err := http.Get(ts.URL + "/api/stats/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["billableHours"] != float64(2) {
		t.Errorf("expected 2 billable hours, got %v", body["billableHours"])
	}
}

func TestUnknownInvoiceReturns404(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/invoices/nope", nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSPAFallback(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/some/app/route")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<html>") {
		t.Errorf("expected index.html fallback, got %s", body)
	}
}
