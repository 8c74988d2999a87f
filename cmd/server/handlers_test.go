package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/o.rides/internal/booking"
	"github.com/Simplici0/o.rides/internal/db"
	"github.com/Simplici0/o.rides/internal/fare"
	"github.com/Simplici0/o.rides/internal/migrations"
	"github.com/Simplici0/o.rides/internal/seed"
)

var handlerTestNow = time.Date(2026, 4, 14, 6, 0, 0, 0, time.UTC)

const (
	testAdminEmail    = "admin@orides.co.uk"
	testAdminPassword = "correct horse"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pricing := fare.DefaultConfig()
	if _, err := seed.Run(context.Background(), database, seed.Config{
		AdminEmail:    testAdminEmail,
		AdminPassword: testAdminPassword,
		Pricing:       pricing,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	calc, err := fare.NewCalculator(pricing)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	svc := booking.NewService(booking.NewStore(database), calc, nil).
		WithClock(func() time.Time { return handlerTestNow })

	return &server{
		auth:     newAuthService(database, "test-secret"),
		bookings: svc,
		log:      zap.NewNop(),
	}
}

func serve(t *testing.T, h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()

	form := url.Values{"email": {testAdminEmail}, "password": {testAdminPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected login status 204, got %d: %s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("login did not set %s cookie", sessionCookieName)
	return nil
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response body %q: %v", rr.Body.String(), err)
	}
	return out
}

const peakImmediateBody = `{
	"passenger_name": "Ada Lovelace",
	"pickup_address": "1 Marylebone Rd",
	"dropoff_address": "St Thomas' Hospital",
	"features": ["wheelchair-ramp", " "],
	"support_workers": 1,
	"distance_miles": 10,
	"duration_minutes": 60,
	"pickup_time": "2026-04-14T07:00:00Z"
}`

func TestQuoteEndpointPricesWithoutStoring(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()

	rr := serve(t, h, http.MethodPost, "/api/quotes", peakImmediateBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	body := decodeBody(t, rr)
	if body["display_total"] != "£95.74" {
		t.Fatalf("expected display total £95.74, got %v", body["display_total"])
	}

	bd := body["breakdown"].(map[string]any)
	if bd["estimated_total"] != "95.7375" {
		t.Fatalf("expected exact estimate 95.7375, got %v", bd["estimated_total"])
	}
	if bd["actual_total"] != nil {
		t.Fatalf("expected actual_total null on a quote, got %v", bd["actual_total"])
	}
	if typ := bd["booking_type"].(map[string]any)["type"]; typ != "immediate" {
		t.Fatalf("expected immediate booking, got %v", typ)
	}

	items, err := srv.bookings.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected quote not to be stored, got %d bookings", len(items))
	}
}

func TestQuoteEndpointRejectsBadRequests(t *testing.T) {
	h := newTestServer(t).routes()

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ``},
		{name: "malformed json", body: `{"distance_miles":`},
		{name: "unknown field", body: `{"pickup_time":"2026-04-14T09:00:00Z","fare":1}`},
		{name: "missing pickup", body: `{"distance_miles": 3, "duration_minutes": 20}`},
		{name: "bad timestamp", body: `{"pickup_time":"tomorrow at nine"}`},
		{name: "negative distance", body: `{"pickup_time":"2026-04-14T09:00:00Z","distance_miles":-1,"duration_minutes":20}`},
		{name: "too many workers", body: `{"pickup_time":"2026-04-14T09:00:00Z","distance_miles":1,"duration_minutes":20,"support_workers":5}`},
		{name: "pickup too soon", body: `{"pickup_time":"2026-04-14T06:10:00Z","distance_miles":1,"duration_minutes":20}`},
		{name: "pickup too far out", body: `{"pickup_time":"2026-05-14T06:00:00Z","distance_miles":1,"duration_minutes":20}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, h, http.MethodPost, "/api/quotes", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if msg, _ := decodeBody(t, rr)["error"].(string); msg == "" {
				t.Fatalf("expected an error message, got %s", rr.Body.String())
			}
		})
	}
}

func TestBookingLifecycle(t *testing.T) {
	h := newTestServer(t).routes()

	rr := serve(t, h, http.MethodPost, "/api/bookings", peakImmediateBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	id, _ := decodeBody(t, rr)["id"].(string)
	if id == "" {
		t.Fatalf("expected booking id in response: %s", rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/api/bookings/"+id {
		t.Fatalf("unexpected Location header %q", loc)
	}

	rr = serve(t, h, http.MethodGet, "/api/bookings/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	got := decodeBody(t, rr)
	if got["status"] != "booked" || got["passenger_name"] != "Ada Lovelace" {
		t.Fatalf("unexpected booking: %v", got)
	}
	if summary := got["summary"].(map[string]any); summary["is_estimated"] != true {
		t.Fatalf("expected estimated summary before completion, got %v", summary)
	}

	rr = serve(t, h, http.MethodGet, "/api/bookings/"+id+"/receipt", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected receipt status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", rr.Header().Get("Content-Type"))
	}
	if strings.Contains(rr.Body.String(), "Actual total") {
		t.Fatalf("receipt for an open booking must not show an actual total:\n%s", rr.Body.String())
	}

	completeBody := `{"actual_duration_minutes": 90, "trip_end": "2026-04-14T08:30:00Z"}`
	rr = serve(t, h, http.MethodPost, "/api/bookings/"+id+"/complete", completeBody)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}

	session := login(t, h)
	rr = serve(t, h, http.MethodPost, "/api/bookings/"+id+"/complete", completeBody, session)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	completed := decodeBody(t, rr)
	if completed["status"] != "completed" || completed["display_total"] != "£130.24" {
		t.Fatalf("unexpected completed booking: status=%v total=%v", completed["status"], completed["display_total"])
	}

	rr = serve(t, h, http.MethodGet, "/api/bookings/"+id+"/receipt", "")
	receipt := rr.Body.String()
	for _, expected := range []string{"Estimated total", "£95.74", "Actual total", "£130.24", "+£34.50", "Support workers (1 x 2h @ £20.00)"} {
		if !strings.Contains(receipt, expected) {
			t.Fatalf("expected receipt to contain %q, got:\n%s", expected, receipt)
		}
	}

	rr = serve(t, h, http.MethodPost, "/api/bookings/"+id+"/complete", completeBody, session)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second completion, got %d", rr.Code)
	}
}

func TestAdminBookingsRequiresSessionAndFilters(t *testing.T) {
	h := newTestServer(t).routes()

	for _, body := range []string{
		peakImmediateBody,
		`{"passenger_name":"Grace Hopper","pickup_time":"2026-04-15T10:00:00Z","distance_miles":4,"duration_minutes":25}`,
	} {
		if rr := serve(t, h, http.MethodPost, "/api/bookings", body); rr.Code != http.StatusCreated {
			t.Fatalf("create booking: status %d: %s", rr.Code, rr.Body.String())
		}
	}

	if rr := serve(t, h, http.MethodGet, "/admin/bookings", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}

	session := login(t, h)

	rr := serve(t, h, http.MethodGet, "/admin/bookings", "", session)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if list := decodeBody(t, rr)["bookings"].([]any); len(list) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(list))
	}

	rr = serve(t, h, http.MethodGet, "/admin/bookings?q=grace", "", session)
	list := decodeBody(t, rr)["bookings"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["passenger_name"] != "Grace Hopper" {
		t.Fatalf("expected only Grace Hopper, got %v", list)
	}
}

func TestHandleGetBookingUnknownIDReturnsNotFound(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/missing", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	srv.handleGetBooking(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h := newTestServer(t).routes()

	form := url.Values{"email": {testAdminEmail}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatalf("expected no session cookie on failed login")
	}
}

func TestRatesAndHealth(t *testing.T) {
	h := newTestServer(t).routes()

	if rr := serve(t, h, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}

	rr := serve(t, h, http.MethodGet, "/api/rates", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected rates 200, got %d", rr.Code)
	}
	rates := decodeBody(t, rr)
	if rates["base_fare"] != "8.5" || rates["peak_multiplier"] != "1.15" {
		t.Fatalf("unexpected rates: %v", rates)
	}
	if features := rates["vehicle_features"].([]any); len(features) != 6 {
		t.Fatalf("expected 6 vehicle features, got %d", len(features))
	}
}
