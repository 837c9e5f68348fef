package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/rate-impact/internal/engine"
	"github.com/iwvelando/rate-impact/internal/lead"
	"github.com/iwvelando/rate-impact/internal/presets"
	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/mathutil"
	"go.uber.org/zap"
)

type stubCRM struct {
	calls atomic.Int32
	err   error
}

func (s *stubCRM) CreateLead(ctx context.Context, rec lead.Record) (string, error) {
	s.calls.Add(1)
	return "crm-1", s.err
}

type stubNotifier struct {
	calls atomic.Int32
}

func (s *stubNotifier) Notify(ctx context.Context, rec lead.Record) error {
	s.calls.Add(1)
	return nil
}

func newTestHandler(opts Options) http.Handler {
	return NewHandler(zap.NewNop(), constants.DefaultMaxBodySizeBytes, "test", opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandleProjectDefaults(t *testing.T) {
	rr := do(t, newTestHandler(Options{}), http.MethodPost, "/api/project", `{}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp projectResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	totals := resp.Result.Nominal.Totals
	if !mathutil.WithinTolerance(totals.Before, 49900, 1e-6) || !mathutil.WithinTolerance(totals.After, 46500, 1e-6) {
		t.Errorf("unexpected totals %+v", totals)
	}
	if resp.Result.Shock.Bps != -50 {
		t.Errorf("expected -50 bps, got %d", resp.Result.Shock.Bps)
	}
	if !strings.Contains(resp.Summary, "reduce your annual income by $3,400") {
		t.Errorf("unexpected summary %q", resp.Summary)
	}

	u, err := url.Parse(resp.BookingURL)
	if err != nil {
		t.Fatalf("invalid booking url %q: %v", resp.BookingURL, err)
	}
	if u.Query().Get("delta_bps") != "-50" || u.Query().Get("est_delta_income") != "-3400" {
		t.Errorf("unexpected booking url %q", resp.BookingURL)
	}
}

func TestHandleProjectScenarioAndPreset(t *testing.T) {
	body := `{
		"region": "fl",
		"applyPreset": true,
		"scenario": {"selector": "custom", "customBps": "abc", "showReal": true, "cpi": 0.025},
		"holdings": {"cds": [], "heloc": {"included": true, "balance": 100000, "margin": 0.01}}
	}`
	rr := do(t, newTestHandler(Options{}), http.MethodPost, "/api/project", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp projectResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result.Shock.Bps != 0 {
		t.Errorf("non-numeric custom bps should coerce to 0, got %d", resp.Result.Shock.Bps)
	}
	if resp.Result.Real == nil {
		t.Fatal("expected a real view")
	}
	var mm, heloc *engine.Line
	for i := range resp.Result.Nominal.Lines {
		line := &resp.Result.Nominal.Lines[i]
		switch line.Class {
		case engine.ClassMoneyMarket:
			mm = line
		case engine.ClassHELOC:
			heloc = line
		case engine.ClassCD:
			t.Errorf("expected no CD rows, got %+v", line)
		}
	}
	if mm == nil || !mathutil.WithinTolerance(mm.Before, 250000*0.0455, 1e-6) {
		t.Errorf("expected Florida money market APY to be applied, got %+v", mm)
	}
	if heloc == nil || !mathutil.WithinTolerance(heloc.Before, -4000, 1e-6) {
		t.Errorf("unexpected HELOC line %+v", heloc)
	}
}

func TestHandleProjectErrors(t *testing.T) {
	h := NewHandler(zap.NewNop(), 256, "test", Options{})

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{name: "method not allowed", method: http.MethodGet, status: http.StatusMethodNotAllowed},
		{name: "malformed json", method: http.MethodPost, body: `{"holdings":`, status: http.StatusBadRequest},
		{name: "wrong shape", method: http.MethodPost, body: `{"holdings": 5}`, status: http.StatusBadRequest},
		{name: "unknown region", method: http.MethodPost, body: `{"region": "ZZ", "applyPreset": true}`, status: http.StatusBadRequest},
		{name: "too large", method: http.MethodPost, body: `{"region": "` + strings.Repeat("x", 512) + `"}`, status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, "/api/project", tt.body)
			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleCompare(t *testing.T) {
	rr := do(t, newTestHandler(Options{}), http.MethodPost, "/api/compare", `{"scenario": {"selector": "35"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp compareResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []int{-25, -50, -100, 35}
	if len(resp.Results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(resp.Results))
	}
	for i, bps := range want {
		if resp.Results[i].Result.Shock.Bps != bps {
			t.Errorf("result %d: expected %d bps, got %d", i, bps, resp.Results[i].Result.Shock.Bps)
		}
		if resp.Results[i].Summary == "" {
			t.Errorf("result %d has no summary", i)
		}
	}
}

func TestHandlePresets(t *testing.T) {
	h := newTestHandler(Options{})

	rr := do(t, h, http.MethodGet, "/api/presets", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var list struct {
		Presets []presets.Preset `json:"presets"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Presets) == 0 {
		t.Fatal("expected presets")
	}

	rr = do(t, h, http.MethodGet, "/api/presets/fl", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var fl presets.Preset
	if err := json.Unmarshal(rr.Body.Bytes(), &fl); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if fl.Region != "FL" || fl.MMAPY != 0.0455 {
		t.Errorf("unexpected preset %+v", fl)
	}

	rr = do(t, h, http.MethodGet, "/api/presets/ZZ", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleLeads(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		crmErr    error
		status    int
		wantOK    bool
		wantCalls int32
		wantCRM   string
	}{
		{
			name:      "missing email",
			body:      `{"name": "Jane Doe", "email": ""}`,
			status:    http.StatusBadRequest,
			wantCalls: 0,
		},
		{
			name:      "malformed body",
			body:      `{"name": `,
			status:    http.StatusInternalServerError,
			wantCalls: 0,
		},
		{
			name:      "accepted",
			body:      `{"name": "Jane Doe", "email": "jane@example.com", "state": "FL", "leadConsent": true, "delta_bps": -50, "est_delta_income": "-3400.4"}`,
			status:    http.StatusOK,
			wantOK:    true,
			wantCalls: 1,
			wantCRM:   lead.StatusOK,
		},
		{
			name:      "crm failure still ok",
			body:      `{"name": "Jane Doe", "email": "jane@example.com"}`,
			crmErr:    errors.New("crm down"),
			status:    http.StatusOK,
			wantOK:    true,
			wantCalls: 1,
			wantCRM:   lead.StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crm := &stubCRM{err: tt.crmErr}
			notifier := &stubNotifier{}
			h := newTestHandler(Options{Leads: lead.NewSubmitter(crm, notifier, zap.NewNop())})

			rr := do(t, h, http.MethodPost, "/api/leads", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}

			var resp leadResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.OK != tt.wantOK {
				t.Errorf("expected ok=%v, got %+v", tt.wantOK, resp)
			}
			if crm.calls.Load() != tt.wantCalls || notifier.calls.Load() != tt.wantCalls {
				t.Errorf("expected %d calls each, got crm=%d notifier=%d", tt.wantCalls, crm.calls.Load(), notifier.calls.Load())
			}
			if tt.wantOK {
				if resp.ID == "" || resp.CRM == nil || resp.CRM.Status != tt.wantCRM {
					t.Errorf("unexpected lead response %+v", resp)
				}
				if resp.Notification == nil || resp.Notification.Status != lead.StatusOK {
					t.Errorf("unexpected notification attempt %+v", resp.Notification)
				}
			}
			if tt.status == http.StatusBadRequest && resp.Error != "name and email required" {
				t.Errorf("unexpected error message %q", resp.Error)
			}
		})
	}
}

func TestLeadInputCoercion(t *testing.T) {
	in := leadInput(map[string]interface{}{
		"name":             "Jane",
		"phone":            5551234.0,
		"leadConsent":      "yes",
		"delta_bps":        "-100",
		"est_delta_income": 12.5,
		"utm_source":       "newsletter",
	})
	if in.Phone != "5.551234e+06" && in.Phone != "5551234" {
		t.Errorf("unexpected phone %q", in.Phone)
	}
	if !in.ConsentGranted || in.DeltaBps != -100 || in.EstimatedDeltaIncome != 12.5 {
		t.Errorf("unexpected input %+v", in)
	}
	if in.Attribution.Source != "newsletter" || in.Attribution.Medium != "" {
		t.Errorf("unexpected attribution %+v", in.Attribution)
	}
}

func TestLeadInputSaturatesBps(t *testing.T) {
	tests := map[string]int{
		"1e30":  math.MaxInt,
		"-1e30": math.MinInt,
	}
	for raw, expected := range tests {
		var body map[string]interface{}
		if err := json.Unmarshal([]byte(`{"delta_bps": `+raw+`}`), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if got := leadInput(body).DeltaBps; got != expected {
			t.Errorf("delta_bps %s = %d, expected %d", raw, got, expected)
		}
	}
}

// cancelAwareCRM fails if the context it receives is cancelled before the
// CRM has had a chance to respond.
type cancelAwareCRM struct {
	started chan struct{}
	release chan struct{}
}

func (c *cancelAwareCRM) CreateLead(ctx context.Context, rec lead.Record) (string, error) {
	close(c.started)
	select {
	case <-c.release:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(5 * time.Second):
		return "", errors.New("crm was never released")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "crm-1", nil
}

func TestHandleLeadsSurvivesClientDisconnect(t *testing.T) {
	crm := &cancelAwareCRM{started: make(chan struct{}), release: make(chan struct{})}
	h := newTestHandler(Options{Leads: lead.NewSubmitter(crm, &stubNotifier{}, zap.NewNop())})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"name": "Jane Doe", "email": "jane@example.com"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(rr, req)
	}()

	<-crm.started
	cancel()
	close(crm.release)
	<-done

	var resp leadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rr.Code != http.StatusOK || resp.CRM == nil || resp.CRM.Status != lead.StatusOK {
		t.Errorf("expected crm hand-off to finish after disconnect, got %d %+v", rr.Code, resp.CRM)
	}
}

func TestHandleVersion(t *testing.T) {
	rr := do(t, newTestHandler(Options{}), http.MethodGet, "/api/version", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "test" {
		t.Errorf("unexpected version %q", resp["version"])
	}
}

func TestCORSOrigins(t *testing.T) {
	h := newTestHandler(Options{CORSOrigins: []string{"https://rates.example.com"}})

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{name: "allowed origin", origin: "https://rates.example.com", want: "https://rates.example.com"},
		{name: "foreign origin", origin: "https://other.example.com", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("expected allow origin %q, got %q", tt.want, got)
			}
		})
	}
}
