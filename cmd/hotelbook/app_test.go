package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	gin "github.com/gin-gonic/gin"

	"hotelbook/internal/domain/shared/daterange"
	"hotelbook/internal/infra/config"
	ginserver "hotelbook/internal/infra/http/gin"
	"hotelbook/internal/infra/obs"
)

const (
	adminEmail    = "admin@hotelbook.test"
	adminPassword = "admin-password"
	parisHotel    = "hotel-paris-centre"
	lyonHotel     = "hotel-lyon-part-dieu"
	parisRoom101  = "room-paris-101"
	parisRoom102  = "room-paris-102"
	lyonRoom201   = "room-lyon-201"
)

const testFixtures = `[
  {"id": "hotel-paris-centre", "name": "Paris Centre", "city": "Paris", "category": 4,
   "rooms": [
     {"id": "room-paris-101", "number": "101", "capacity": 2, "price": 140},
     {"id": "room-paris-102", "number": "102", "capacity": 1, "price": 95}
   ]},
  {"id": "hotel-lyon-part-dieu", "name": "Lyon Part-Dieu", "city": "Lyon", "category": 3,
   "rooms": [
     {"id": "room-lyon-201", "number": "201", "capacity": 2, "price": 110}
   ]}
]`

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Default()
	cfg.Env = "test"
	cfg.JWTSecret = "test-secret"
	cfg.RateLimitRPS = 0
	cfg.AdminEmail = adminEmail
	cfg.AdminPassword = adminPassword
	cfg.AdminPhone = "+33100000000"
	if mutate != nil {
		mutate(&cfg)
	}

	app, err := buildApplication(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("buildApplication: %v", err)
	}
	t.Cleanup(func() { app.close(context.Background()) })

	path := filepath.Join(t.TempDir(), "hotels.json")
	if err := os.WriteFile(path, []byte(testFixtures), 0o600); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}
	if err := app.loadHotelFixtures(context.Background(), path); err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	return &testServer{
		t:      t,
		router: ginserver.NewRouter(obs.Middleware{Logger: logger}, app.health, app.handlers),
	}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", rec.Code, want, rec.Body.String())
	}
}

type authBody struct {
	Token  string `json:"token"`
	Client struct {
		ID    string   `json:"id"`
		Roles []string `json:"roles"`
	} `json:"client"`
}

type errorBody struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	RoomNumber string `json:"room_number"`
}

type availabilityBody struct {
	Available bool `json:"available"`
}

type refBody struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

func (s *testServer) register(name, email, phone string) authBody {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"phone":    phone,
		"password": "correct-horse",
	})
	expectStatus(s.t, rec, http.StatusCreated)
	return decode[authBody](s.t, rec)
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	expectStatus(s.t, rec, http.StatusOK)
	return decode[authBody](s.t, rec).Token
}

func (s *testServer) book(token, hotelID string, rooms []string, in, out string, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(http.MethodPost, "/api/v1/reservations", token, map[string]any{
		"hotel_id":  hotelID,
		"room_ids":  rooms,
		"check_in":  in,
		"check_out": out,
	}, headers...)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	expectStatus(t, srv.do(http.MethodGet, "/livez", "", nil), http.StatusOK)
	expectStatus(t, srv.do(http.MethodGet, "/readyz", "", nil), http.StatusOK)
}

func TestRegisterLoginAndMe(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.register("Alice", "alice@example.com", "+33611111111")
	if alice.Token == "" || alice.Client.ID == "" {
		t.Fatalf("unexpected register response: %+v", alice)
	}

	token := srv.login("ALICE@example.com", "correct-horse")
	rec := srv.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	expectStatus(t, rec, http.StatusOK)
	me := decode[struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}](t, rec)
	if me.ID != alice.Client.ID || me.Email != "alice@example.com" {
		t.Fatalf("me = %+v", me)
	}

	rec = srv.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong-password"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = srv.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Alice Again", "email": "alice@example.com", "phone": "+33622222222", "password": "correct-horse",
	})
	expectStatus(t, rec, http.StatusConflict)

	expectStatus(t, srv.do(http.MethodGet, "/api/v1/auth/me", "", nil), http.StatusUnauthorized)
	expectStatus(t, srv.do(http.MethodGet, "/api/v1/auth/me", "not-a-token", nil), http.StatusUnauthorized)
}

func TestBookingConflictsAndCancel(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.register("Alice", "alice@example.com", "+33611111111")
	bob := srv.register("Bob", "bob@example.com", "+33622222222")

	rec := srv.book(alice.Token, parisHotel, []string{parisRoom101}, "2030-06-01", "2030-06-05")
	expectStatus(t, rec, http.StatusCreated)
	booked := decode[refBody](t, rec)
	if booked.ID == "" || booked.Code == "" {
		t.Fatalf("reservation ref = %+v", booked)
	}

	rec = srv.do(http.MethodGet, "/api/v1/reservations/"+booked.ID, alice.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	view := decode[struct {
		Nights int `json:"nights"`
		Rooms  []struct {
			Number string `json:"number"`
		} `json:"rooms"`
	}](t, rec)
	if view.Nights != 4 || len(view.Rooms) != 1 || view.Rooms[0].Number != "101" {
		t.Fatalf("reservation view = %+v", view)
	}

	rec = srv.do(http.MethodGet, "/api/v1/rooms/"+parisRoom101+"/availability?check_in=2030-06-03&check_out=2030-06-04", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if decode[availabilityBody](t, rec).Available {
		t.Fatal("room 101 should be unavailable")
	}

	// Checking in on another stay's checkout day conflicts under the inclusive policy.
	rec = srv.book(bob.Token, parisHotel, []string{parisRoom102, parisRoom101}, "2030-06-05", "2030-06-07")
	expectStatus(t, rec, http.StatusConflict)
	conflict := decode[errorBody](t, rec)
	if conflict.Kind != "RoomUnavailable" || conflict.RoomNumber != "101" {
		t.Fatalf("conflict body = %+v", conflict)
	}

	// Nothing was booked for room 102 by the rejected request.
	rec = srv.do(http.MethodGet, "/api/v1/rooms/"+parisRoom102+"/availability?check_in=2030-06-05&check_out=2030-06-07", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !decode[availabilityBody](t, rec).Available {
		t.Fatal("room 102 should still be free")
	}

	expectStatus(t, srv.do(http.MethodGet, "/api/v1/reservations/"+booked.ID, bob.Token, nil), http.StatusForbidden)
	expectStatus(t, srv.do(http.MethodDelete, "/api/v1/reservations/"+booked.ID, bob.Token, nil), http.StatusForbidden)
	expectStatus(t, srv.do(http.MethodDelete, "/api/v1/reservations/"+booked.ID, alice.Token, nil), http.StatusOK)
	expectStatus(t, srv.do(http.MethodGet, "/api/v1/reservations/"+booked.ID, alice.Token, nil), http.StatusNotFound)

	rec = srv.book(bob.Token, parisHotel, []string{parisRoom101}, "2030-06-05", "2030-06-07")
	expectStatus(t, rec, http.StatusCreated)
}

func TestBookingValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.register("Alice", "alice@example.com", "+33611111111")

	cases := []struct {
		name   string
		hotel  string
		rooms  []string
		in     string
		out    string
		status int
		kind   string
	}{
		{"unknown hotel", "hotel-missing", []string{parisRoom101}, "2030-01-01", "2030-01-03", http.StatusNotFound, "InvalidReference"},
		{"no rooms", parisHotel, nil, "2030-01-01", "2030-01-03", http.StatusBadRequest, "NoRoomsSelected"},
		{"room of another hotel", parisHotel, []string{lyonRoom201}, "2030-01-01", "2030-01-03", http.StatusBadRequest, "RoomHotelMismatch"},
		{"checkout before checkin", parisHotel, []string{parisRoom101}, "2030-01-03", "2030-01-01", http.StatusBadRequest, "InvalidDateRange"},
		{"same day", parisHotel, []string{parisRoom101}, "2030-01-03", "2030-01-03", http.StatusBadRequest, "InvalidDateRange"},
		{"unparseable date", parisHotel, []string{parisRoom101}, "tomorrow", "2030-01-03", http.StatusBadRequest, "InvalidDateRange"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.book(alice.Token, tc.hotel, tc.rooms, tc.in, tc.out)
			expectStatus(t, rec, tc.status)
			if got := decode[errorBody](t, rec).Kind; got != tc.kind {
				t.Fatalf("kind = %q, want %q", got, tc.kind)
			}
		})
	}

	expectStatus(t, srv.book("", parisHotel, []string{parisRoom101}, "2030-01-01", "2030-01-03"), http.StatusUnauthorized)
}

func TestIdempotentBooking(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.register("Alice", "alice@example.com", "+33611111111")

	first := srv.book(alice.Token, lyonHotel, []string{lyonRoom201}, "2030-03-01", "2030-03-04", "Idempotency-Key", "retry-1")
	expectStatus(t, first, http.StatusCreated)
	second := srv.book(alice.Token, lyonHotel, []string{lyonRoom201}, "2030-03-01", "2030-03-04", "Idempotency-Key", "retry-1")
	expectStatus(t, second, http.StatusCreated)

	a, b := decode[refBody](t, first), decode[refBody](t, second)
	if a.ID != b.ID || a.Code != b.Code {
		t.Fatalf("replayed reservation differs: %+v vs %+v", a, b)
	}

	rec := srv.do(http.MethodGet, "/api/v1/me/reservations", alice.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	mine := decode[struct {
		Items []refBody `json:"items"`
	}](t, rec)
	if n := len(mine.Items); n != 1 {
		t.Fatalf("reservations = %d, want 1", n)
	}
}

func TestStrictPolicyAllowsBackToBack(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.OverlapPolicy = daterange.Strict
	})
	alice := srv.register("Alice", "alice@example.com", "+33611111111")
	expectStatus(t, srv.book(alice.Token, parisHotel, []string{parisRoom101}, "2030-06-01", "2030-06-05"), http.StatusCreated)
	expectStatus(t, srv.book(alice.Token, parisHotel, []string{parisRoom101}, "2030-06-05", "2030-06-07"), http.StatusCreated)
	expectStatus(t, srv.book(alice.Token, parisHotel, []string{parisRoom101}, "2030-06-04", "2030-06-06"), http.StatusConflict)
}

func TestCommentsOnReservation(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.register("Alice", "alice@example.com", "+33611111111")
	bob := srv.register("Bob", "bob@example.com", "+33622222222")

	rec := srv.book(alice.Token, parisHotel, []string{parisRoom101}, "2030-06-01", "2030-06-05")
	expectStatus(t, rec, http.StatusCreated)
	booked := decode[refBody](t, rec)

	path := "/api/v1/reservations/" + booked.ID + "/comments"
	expectStatus(t, srv.do(http.MethodPost, path, alice.Token, map[string]string{"content": "Lovely view"}), http.StatusCreated)
	expectStatus(t, srv.do(http.MethodPost, path, alice.Token, map[string]string{"content": "   "}), http.StatusBadRequest)
	expectStatus(t, srv.do(http.MethodPost, path, bob.Token, map[string]string{"content": "Not mine"}), http.StatusForbidden)

	rec = srv.do(http.MethodGet, "/api/v1/rooms/"+parisRoom101+"/comments", "", nil)
	expectStatus(t, rec, http.StatusOK)
	comments := decode[struct {
		Items []struct {
			Content    string `json:"content"`
			AuthorName string `json:"author_name"`
		} `json:"items"`
	}](t, rec)
	if len(comments.Items) != 1 || comments.Items[0].Content != "Lovely view" || comments.Items[0].AuthorName != "Alice" {
		t.Fatalf("room comments = %+v", comments)
	}
}

func TestAdminRoutes(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.register("Alice", "alice@example.com", "+33611111111")
	admin := srv.login(adminEmail, adminPassword)

	expectStatus(t, srv.do(http.MethodGet, "/api/v1/admin/clients", "", nil), http.StatusUnauthorized)
	expectStatus(t, srv.do(http.MethodGet, "/api/v1/admin/clients", alice.Token, nil), http.StatusForbidden)

	rec := srv.do(http.MethodPost, "/api/v1/admin/hotels", admin, map[string]any{"name": "Nice Plage", "city": "Nice", "category": 5})
	expectStatus(t, rec, http.StatusCreated)
	hotel := decode[struct {
		ID string `json:"id"`
	}](t, rec)

	rec = srv.do(http.MethodPost, "/api/v1/admin/hotels/"+hotel.ID+"/rooms", admin, map[string]any{"number": "1", "capacity": 2, "price": 180})
	expectStatus(t, rec, http.StatusCreated)
	room := decode[struct {
		ID string `json:"id"`
	}](t, rec)
	rec = srv.do(http.MethodPost, "/api/v1/admin/hotels/"+hotel.ID+"/rooms", admin, map[string]any{"number": "1", "capacity": 2, "price": 180})
	expectStatus(t, rec, http.StatusConflict)

	rec = srv.do(http.MethodPost, "/api/v1/admin/hotels", admin, map[string]any{"name": "Bad", "category": 9})
	expectStatus(t, rec, http.StatusBadRequest)

	// Admin books on behalf of Alice.
	rec = srv.do(http.MethodPost, "/api/v1/reservations", admin, map[string]any{
		"hotel_id":  hotel.ID,
		"client_id": alice.Client.ID,
		"room_ids":  []string{room.ID},
		"check_in":  "2030-07-01",
		"check_out": "2030-07-03",
	})
	expectStatus(t, rec, http.StatusCreated)

	expectStatus(t, srv.do(http.MethodDelete, "/api/v1/admin/rooms/"+room.ID, admin, nil), http.StatusConflict)

	rec = srv.do(http.MethodGet, "/api/v1/admin/reservations?hotel_id="+hotel.ID, admin, nil)
	expectStatus(t, rec, http.StatusOK)
	list := decode[struct {
		Items []struct {
			ClientID string `json:"client_id"`
		} `json:"items"`
	}](t, rec)
	if len(list.Items) != 1 || list.Items[0].ClientID != alice.Client.ID {
		t.Fatalf("admin reservations = %+v", list)
	}

	rec = srv.do(http.MethodDelete, "/api/v1/admin/clients/"+alice.Client.ID, admin, nil)
	expectStatus(t, rec, http.StatusOK)
	deleted := decode[struct {
		ReservationsRemoved int `json:"reservations_removed"`
	}](t, rec)
	if deleted.ReservationsRemoved != 1 {
		t.Fatalf("reservations removed = %d, want 1", deleted.ReservationsRemoved)
	}

	expectStatus(t, srv.do(http.MethodDelete, "/api/v1/admin/rooms/"+room.ID, admin, nil), http.StatusOK)
	expectStatus(t, srv.do(http.MethodPost, "/api/v1/admin/reservations/export", admin, nil), http.StatusServiceUnavailable)
}

func TestHotelSearchWithAvailability(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.register("Alice", "alice@example.com", "+33611111111")
	expectStatus(t, srv.book(alice.Token, lyonHotel, []string{lyonRoom201}, "2030-08-01", "2030-08-03"), http.StatusCreated)

	type searchBody struct {
		Items []struct {
			ID        string `json:"id"`
			Available *bool  `json:"available"`
		} `json:"items"`
	}

	rec := srv.do(http.MethodGet, "/api/v1/hotels?q=lyon&check_in=2030-08-01&check_out=2030-08-02", "", nil)
	expectStatus(t, rec, http.StatusOK)
	booked := decode[searchBody](t, rec)
	if len(booked.Items) != 0 {
		t.Fatalf("fully booked lyon must be left out: %+v", booked)
	}

	rec = srv.do(http.MethodGet, "/api/v1/hotels?q=lyon&check_in=2030-08-05&check_out=2030-08-06", "", nil)
	expectStatus(t, rec, http.StatusOK)
	free := decode[searchBody](t, rec)
	if len(free.Items) != 1 || free.Items[0].ID != lyonHotel {
		t.Fatalf("search = %+v", free)
	}
	if free.Items[0].Available == nil || !*free.Items[0].Available {
		t.Fatalf("lyon should be available: %+v", free.Items[0])
	}

	rec = srv.do(http.MethodGet, "/api/v1/hotels?q=lyon", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if all := decode[searchBody](t, rec); len(all.Items) != 1 || all.Items[0].Available != nil {
		t.Fatalf("search without range = %+v", all)
	}

	rec = srv.do(http.MethodGet, "/api/v1/hotels/"+parisHotel, "", nil)
	expectStatus(t, rec, http.StatusOK)
	details := decode[struct {
		Rooms []struct {
			Number string `json:"number"`
		} `json:"rooms"`
	}](t, rec)
	if len(details.Rooms) != 2 {
		t.Fatalf("paris rooms = %+v", details.Rooms)
	}

	expectStatus(t, srv.do(http.MethodGet, "/api/v1/hotels/hotel-missing", "", nil), http.StatusNotFound)
	expectStatus(t, srv.do(http.MethodGet, "/api/v1/hotels?skip=abc", "", nil), http.StatusBadRequest)
}

func TestRateLimitedLogin(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimitRPS = 0.001
		cfg.RateLimitBurst = 1
	})
	body := map[string]string{"email": "nobody@example.com", "password": "whatever-pass"}
	expectStatus(t, srv.do(http.MethodPost, "/api/v1/auth/login", "", body), http.StatusUnauthorized)
	rec := srv.do(http.MethodPost, "/api/v1/auth/login", "", body)
	expectStatus(t, rec, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}
