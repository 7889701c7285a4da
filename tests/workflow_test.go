package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/notify"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/photoref"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store/memory"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
	"github.com/gatehouse-io/gatehouse/internal/httpapi"
)

// fixture is the whole server stood up over in-memory stores, with a
// controllable clock shared by every service.
type fixture struct {
	ts      *httptest.Server
	capture *notify.Capture
	now     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	ledger := service.NewApprovalLedger(memory.NewApprovalStore(), 0, clock)
	grants := service.NewPreApprovalRegistry(memory.NewPreApprovalStore(), clock)
	visits := service.NewVisitTracker(memory.NewActiveVisitStore(), memory.NewVisitHistoryStore(), clock)
	capture := notify.NewCapture()
	photos := &photoref.Resolver{BaseURL: "https://res.cloudinary.com/demo/image/upload"}

	coordinator := service.NewCoordinator(
		ledger, grants, visits, capture, photos,
		service.CoordinatorConfig{HostPrefix: "+91"},
		log.New(io.Discard, "", 0),
		clock,
	)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:      log.New(io.Discard, "", 0),
		Addr:        ":0",
		Coordinator: coordinator,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{ts: ts, capture: capture, now: &now}
}

func (f *fixture) postJSON(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.ts.URL+path, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	return resp
}

func (f *fixture) webhook(t *testing.T, form url.Values) {
	t.Helper()
	resp, err := http.PostForm(f.ts.URL+"/v1/webhook/inbound", form)
	if err != nil {
		t.Fatalf("post webhook: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook: expected 200, got %d", resp.StatusCode)
	}
}

func (f *fixture) getJSON(t *testing.T, path string, v any) {
	t.Helper()
	resp, err := http.Get(f.ts.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: expected 200, got %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

// Gate device registers a visitor, the host approves over the message
// channel, the visitor is admitted, checks out, and lands in history.
func TestApprovalVisitLifecycle(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/v1/visits",
		`{"request_id":"req-42","visitor_name":"Ravi Kumar","visitor_phone":"9876543210","host_contact":"9000000001","gate_time":"09:00 AM"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", resp.StatusCode)
	}

	var status types.StatusResponse
	f.getJSON(t, "/v1/visits/req-42/status", &status)
	if status.Status != types.StatusPending {
		t.Fatalf("expected PENDING before decision, got %s", status.Status)
	}

	f.webhook(t, url.Values{
		"ButtonPayload": {"APPROVE_req-42"},
		"From":          {"+919000000001"},
	})

	f.getJSON(t, "/v1/visits/req-42/status", &status)
	if status.Status != types.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", status.Status)
	}

	var active []types.ActiveVisitView
	f.getJSON(t, "/v1/active-visits", &active)
	if len(active) != 1 || active[0].VisitType != types.VisitTypeApproval {
		t.Fatalf("expected one APPROVAL visit, got %+v", active)
	}

	coResp := f.postJSON(t, "/v1/checkout", `{"visitor_phone":"9876543210"}`)
	var checkout types.CheckoutResponse
	json.NewDecoder(coResp.Body).Decode(&checkout)
	coResp.Body.Close()
	if !checkout.Success {
		t.Fatalf("checkout failed: %+v", checkout)
	}

	f.getJSON(t, "/v1/active-visits", &active)
	if len(active) != 0 {
		t.Errorf("expected nobody active after checkout, got %+v", active)
	}

	var history []types.HistoryEntryView
	f.getJSON(t, "/v1/history", &history)
	if len(history) != 1 || history[0].VisitorName != "Ravi Kumar" {
		t.Fatalf("expected Ravi in history, got %+v", history)
	}
}

// A grant made through the chat channel admits the visitor at the gate
// while the window is open, idempotently.
func TestPreApprovalLifecycle(t *testing.T) {
	f := newFixture(t)

	f.webhook(t, url.Values{
		"Body": {"PREAPPROVE Meera 9811111111 08:30-10:30"},
		"From": {"+919000000001"},
	})

	// Resident got the acknowledgement.
	sent := f.capture.Messages()
	if len(sent) != 1 || sent[0].To != "+919000000001" {
		t.Fatalf("expected 1 ack to the resident, got %+v", sent)
	}

	var lookup types.PreApprovalLookupResponse
	f.getJSON(t, "/v1/preapprovals/9811111111", &lookup)
	if !lookup.Valid || lookup.Name != "Meera" {
		t.Fatalf("expected valid grant for Meera, got %+v", lookup)
	}

	// Looking up again while already inside stays valid and does not
	// duplicate the active visit.
	f.getJSON(t, "/v1/preapprovals/9811111111", &lookup)
	if !lookup.Valid {
		t.Fatalf("second lookup should stay valid, got %+v", lookup)
	}

	var active []types.ActiveVisitView
	f.getJSON(t, "/v1/active-visits", &active)
	if len(active) != 1 || active[0].VisitType != types.VisitTypePreApproved {
		t.Fatalf("expected one PRE-APPROVED visit, got %+v", active)
	}

	// Outside the window the same grant refuses entry.
	*f.now = time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	f.postJSON(t, "/v1/checkout", `{"visitor_phone":"9811111111"}`).Body.Close()
	f.getJSON(t, "/v1/preapprovals/9811111111", &lookup)
	if lookup.Valid {
		t.Fatalf("expected invalid outside window, got %+v", lookup)
	}
}

// An unanswered request expires; a decision arriving after the fact does
// not admit anyone.
func TestExpiryBlocksLateApproval(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/v1/visits",
		`{"request_id":"req-late","visitor_name":"Sam","visitor_phone":"9822222222","host_contact":"9000000001"}`)
	resp.Body.Close()

	*f.now = f.now.Add(61 * time.Second)

	f.webhook(t, url.Values{
		"Body": {"APPROVE req-late"},
		"From": {"+919000000001"},
	})

	var status types.StatusResponse
	f.getJSON(t, "/v1/visits/req-late/status", &status)
	if status.Status != types.StatusExpired {
		t.Fatalf("expected EXPIRED, got %s", status.Status)
	}

	var active []types.ActiveVisitView
	f.getJSON(t, "/v1/active-visits", &active)
	if len(active) != 0 {
		t.Errorf("expired request must not admit: %+v", active)
	}
}
