package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/services"
)

func fixedNow() time.Time { return time.Date(2023, 10, 19, 9, 30, 0, 0, time.UTC) }

func newTestServer(t *testing.T, opts Options) (*Server, *services.LedgerService) {
	t.Helper()
	svc := services.NewLedgerService(memory.New(core.Records{}), nil, nil)
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	srv := NewServer(":0", svc, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, svc
}

func do(t *testing.T, srv *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	failing, _ := newTestServer(t, Options{Health: func(context.Context) error { return errors.New("database is locked") }})
	rr := do(t, failing, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing storage status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "database is locked") {
		t.Errorf("readyz body = %s", rr.Body.String())
	}
}

func TestCreateRecordsAndSummarize(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	steps := []struct {
		path, contentType, body string
	}{
		{"/api/incomes", "application/json", `{"source":"Salary","amount":"1200.00","date":"2023-10-01","frequency":"monthly"}`},
		{"/api/recurring-expenses", "application/json", `{"description":"Rent","amount":500,"frequency":"monthly","start_date":"2023-01-31","tags":["home","housing"]}`},
		{"/api/recurring-expenses", "application/x-www-form-urlencoded", "description=Internet&amount=51,25&frequency=monthly&start_date=2023-09-05&tags=utility,home"},
		{"/api/occasional-expenses", "application/x-www-form-urlencoded", "description=Movie+night&amount=20&date=2023-10-14&tags=fun"},
	}
	for _, st := range steps {
		rr := do(t, srv, http.MethodPost, st.path, st.contentType, st.body)
		if rr.Code != http.StatusCreated {
			t.Fatalf("POST %s status=%d body=%s", st.path, rr.Code, rr.Body.String())
		}
		if created := decode[createdView](t, rr); created.ID == "" {
			t.Fatalf("POST %s returned no id", st.path)
		}
	}

	rr := do(t, srv, http.MethodGet, "/api/summary?year=2023&month=10", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[summaryView](t, rr)
	if got.TotalIncome != "1200.00" || got.TotalRecurringExpense != "551.25" || got.TotalOccasionalExpense != "20.00" || got.NetBalance != "628.75" {
		t.Errorf("summary = %+v", got)
	}
	if got.Window.Label != "October 2023" || got.Window.Start.String() != "2023-10-01" {
		t.Errorf("window = %+v", got.Window)
	}
	wantTags := map[string]string{"fun": "20.00", "home": "551.25", "housing": "500.00", "utility": "51.25"}
	if len(got.TagTotals) != len(wantTags) {
		t.Fatalf("tag totals = %+v", got.TagTotals)
	}
	for _, tv := range got.TagTotals {
		if wantTags[tv.Tag] != tv.Amount {
			t.Errorf("tag %s = %s, want %s", tv.Tag, tv.Amount, wantTags[tv.Tag])
		}
	}
}

func TestSummaryDefaultsToCurrentMonthAndCaches(t *testing.T) {
	srv, svc := newTestServer(t, Options{})
	if _, err := svc.AddOccasionalExpense(context.Background(), core.OccasionalExpense{
		Description: "Coffee", Amount: core.NewMoney(3, 0), Date: core.NewDate(2023, 10, 2),
	}); err != nil {
		t.Fatal(err)
	}

	first := decode[summaryView](t, do(t, srv, http.MethodGet, "/api/summary", "", ""))
	if first.Window.Label != "October 2023" || first.TotalOccasionalExpense != "3.00" {
		t.Fatalf("summary = %+v", first)
	}

	// Written behind the server's back: the cached summary is still served.
	if _, err := svc.AddOccasionalExpense(context.Background(), core.OccasionalExpense{
		Description: "Tea", Amount: core.NewMoney(2, 0), Date: core.NewDate(2023, 10, 3),
	}); err != nil {
		t.Fatal(err)
	}
	cached := decode[summaryView](t, do(t, srv, http.MethodGet, "/api/summary", "", ""))
	if cached.TotalOccasionalExpense != "3.00" {
		t.Fatalf("expected cached summary, got %+v", cached)
	}

	// A write through the API invalidates the cache.
	rr := do(t, srv, http.MethodPost, "/api/occasional-expenses", "application/json", `{"description":"Cake","amount":"4.50","date":"2023-10-04"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST status=%d body=%s", rr.Code, rr.Body.String())
	}
	fresh := decode[summaryView](t, do(t, srv, http.MethodGet, "/api/summary", "", ""))
	if fresh.TotalOccasionalExpense != "9.50" {
		t.Errorf("summary after write = %+v", fresh)
	}
	if srv.summaryCache.Stats().Hits == 0 {
		t.Error("expected at least one cache hit")
	}
}

func TestSummaryRejectsBadWindows(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	for _, q := range []string{
		"?year=2023&month=13",
		"?from=2023-10-31&to=2023-10-01",
		"?from=2023-10-01",
		"?from=yesterday&to=2023-10-01",
	} {
		rr := do(t, srv, http.MethodGet, "/api/summary"+q, "", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("GET /api/summary%s status=%d, want 400", q, rr.Code)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	tests := []struct {
		name, path, body string
		want             int
	}{
		{"bad amount", "/api/occasional-expenses", `{"description":"x","amount":"abc"}`, http.StatusUnprocessableEntity},
		{"negative amount", "/api/occasional-expenses", `{"description":"x","amount":"-5"}`, http.StatusUnprocessableEntity},
		{"missing description", "/api/occasional-expenses", `{"amount":"1.23"}`, http.StatusUnprocessableEntity},
		{"bad date", "/api/incomes", `{"source":"Gift","amount":"10","date":"2023-02-30"}`, http.StatusUnprocessableEntity},
		{"unknown frequency", "/api/incomes", `{"source":"Gift","amount":"10","frequency":"fortnightly"}`, http.StatusUnprocessableEntity},
		{"recurring once", "/api/recurring-expenses", `{"description":"Gym","amount":"10","frequency":"once"}`, http.StatusUnprocessableEntity},
		{"broken json", "/api/incomes", `{"source":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, tt.path, "application/json", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status=%d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}

	rr := do(t, srv, http.MethodGet, "/api/incomes", "", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/incomes status=%d, want 405", rr.Code)
	}
}

func TestOccurrencesAndWorkbook(t *testing.T) {
	srv, svc := newTestServer(t, Options{})
	ctx := context.Background()
	if _, err := svc.AddIncome(ctx, core.Income{Source: "Part-time job", Amount: core.NewMoney(200, 0), Date: core.NewDate(2023, 10, 6), Frequency: core.FrequencyWeekly}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddOccasionalExpense(ctx, core.OccasionalExpense{Description: "Biology textbook", Amount: core.NewMoney(75, 50), Date: core.NewDate(2023, 10, 15)}); err != nil {
		t.Fatal(err)
	}

	rr := do(t, srv, http.MethodGet, "/api/occurrences?from=2023-10-01&to=2023-10-15", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("occurrences status=%d", rr.Code)
	}
	listing := decode[listingView](t, rr)
	if len(listing.Occurrences) != 2 || listing.Occurrences[1].Date.String() != "2023-10-13" {
		t.Errorf("occurrences = %+v", listing.Occurrences)
	}
	if len(listing.OccasionalExpenses) != 1 || listing.OccasionalExpenses[0].Amount != "75.50" {
		t.Errorf("occasional = %+v", listing.OccasionalExpenses)
	}
	if listing.RecurringExpenses == nil {
		t.Error("recurring_expenses should encode as an empty list")
	}

	rr = do(t, srv, http.MethodGet, "/api/summary.xlsx?year=2023&month=10", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("workbook status=%d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "summary-2023-10.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 3 {
		t.Errorf("sheets = %v", sheets)
	}
}

func TestSecurityHeadersAndRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimit: 2})

	rr := do(t, srv, http.MethodGet, "/api/summary", "", "")
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "X-Request-ID"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}

	body := `{"description":"Snack","amount":"1","date":"2023-10-01"}`
	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPost, "/api/occasional-expenses", "application/json", body); rr.Code != http.StatusCreated {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr = do(t, srv, http.MethodPost, "/api/occasional-expenses", "application/json", body)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if srv.security.snapshot().RateLimitHits != 1 {
		t.Errorf("rate limit hits = %d", srv.security.snapshot().RateLimitHits)
	}
}
