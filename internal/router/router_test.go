package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/storage/memory"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

const (
	staffEmail = "staff@hotel.local"
	staffPass  = "front-desk"
	jwtSecret  = "router-test"
)

type api struct {
	t     *testing.T
	e     *echo.Echo
	token string
}

func newAPI(t *testing.T, authEnabled bool) *api {
	t.Helper()
	return newAPIWith(t, Options{AuthEnabled: authEnabled, JWTSecret: jwtSecret})
}

// newCachedAPI serves reads through the Redis response cache, backed by an
// in-process Redis.
func newCachedAPI(t *testing.T) *api {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return newAPIWith(t, Options{
		Cache: config.CacheConfig{
			Enabled:     true,
			Methods:     map[string]bool{http.MethodGet: true},
			TTL:         time.Minute,
			KeyStrategy: "route_query",
			Prefix:      "test:cache",
		},
		Redis: rdb,
	})
}

func newAPIWith(t *testing.T, o Options) *api {
	t.Helper()
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)

	db, err := memory.New(memory.Config{L: l})
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(service.Deps{
		Tx:           db,
		Rooms:        memory.NewRoomRepo(db),
		Guests:       memory.NewGuestRepo(db),
		Reservations: memory.NewReservationRepo(db),
		Payments:     memory.NewPaymentRepo(db),
		Logger:       l,
	})
	hash, err := utils.HashPassword(staffPass, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	o.Log = l

	e := echo.New()
	e.Validator = handler.NewValidator()
	RegisterRoutes(e,
		handler.NewHandler(svc, l),
		handler.NewAuthHandler(handler.StaffAccount{Email: staffEmail, PasswordHash: hash}, jwtSecret, 5, l),
		o,
	)
	return &api{t: t, e: e}
}

func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if a.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// expect asserts the status and decodes the body into out when non-nil.
func (a *api) expect(rec *httptest.ResponseRecorder, status int, out any) {
	a.t.Helper()
	if rec.Code != status {
		a.t.Fatalf("status = %d, want %d; body %s", rec.Code, status, rec.Body)
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("decode %s: %v", rec.Body, err)
		}
	}
}

func (a *api) login() {
	a.t.Helper()
	var resp struct {
		Role   string `json:"role"`
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	a.expect(a.do(http.MethodPost, "/v1/auth/login", map[string]string{"email": "Staff@Hotel.local", "password": staffPass}), http.StatusOK, &resp)
	if resp.Role != "STAFF" || resp.Access.Token == "" {
		a.t.Fatalf("login response %+v", resp)
	}
	a.token = resp.Access.Token
}

func TestHealthz(t *testing.T) {
	a := newAPI(t, true)
	var body map[string]string
	a.expect(a.do(http.MethodGet, "/healthz", nil), http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestAuthGuardsRoutes(t *testing.T) {
	a := newAPI(t, true)
	a.expect(a.do(http.MethodGet, "/v1/rooms", nil), http.StatusUnauthorized, nil)
	a.expect(a.do(http.MethodPost, "/v1/rooms", map[string]any{"number": "1"}), http.StatusUnauthorized, nil)
	a.expect(a.do(http.MethodPost, "/v1/auth/login", map[string]string{"email": staffEmail, "password": "nope"}), http.StatusUnauthorized, nil)
	a.expect(a.do(http.MethodPost, "/v1/auth/login", map[string]string{"email": staffEmail}), http.StatusBadRequest, nil)

	a.login()
	var rooms []map[string]any
	a.expect(a.do(http.MethodGet, "/v1/rooms", nil), http.StatusOK, &rooms)
	if rooms == nil || len(rooms) != 0 {
		t.Fatalf("rooms = %v, want empty list", rooms)
	}
}

func TestAuthDisabledOpensEverything(t *testing.T) {
	a := newAPI(t, false)
	a.expect(a.do(http.MethodPost, "/v1/rooms", map[string]any{"number": "7", "room_type": "single", "price_per_night": 40}), http.StatusCreated, nil)
}

type roomResp struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Capacity    int    `json:"capacity"`
	IsAvailable bool   `json:"is_available"`
}

type idResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestBookingFlow(t *testing.T) {
	a := newAPI(t, true)
	a.login()

	var room roomResp
	a.expect(a.do(http.MethodPost, "/v1/rooms", map[string]any{"number": "101", "room_type": "double", "price_per_night": 100}), http.StatusCreated, &room)
	if !room.IsAvailable || room.Capacity != 2 {
		t.Fatalf("room = %+v", room)
	}
	a.expect(a.do(http.MethodPost, "/v1/rooms", map[string]any{"number": "101", "room_type": "suite", "price_per_night": 300}), http.StatusConflict, nil)

	var guest idResp
	a.expect(a.do(http.MethodPost, "/v1/guests", map[string]any{"name": "Ann Lee", "email": "ann@example.com", "phone": "555"}), http.StatusCreated, &guest)
	a.expect(a.do(http.MethodPost, "/v1/guests", map[string]any{"name": "Ann Two", "email": "ANN@example.com"}), http.StatusConflict, nil)

	book := map[string]any{"guest_id": guest.ID, "room_id": room.ID, "check_in_date": "2024-05-01", "check_out_date": "2024-05-05"}
	var res idResp
	a.expect(a.do(http.MethodPost, "/v1/reservations", book), http.StatusCreated, &res)
	if res.Status != "pending" {
		t.Fatalf("reservation = %+v", res)
	}
	a.expect(a.do(http.MethodPost, "/v1/reservations", book), http.StatusConflict, nil)

	var avail []roomResp
	a.expect(a.do(http.MethodGet, "/v1/rooms?available=true", nil), http.StatusOK, &avail)
	if len(avail) != 0 {
		t.Fatalf("available rooms = %+v", avail)
	}

	var pay struct {
		Status     string `json:"status"`
		CardNumber string `json:"card_number"`
	}
	a.expect(a.do(http.MethodPost, "/v1/payments", map[string]any{
		"reservation_id": res.ID, "amount": 150, "payment_type": "Card", "card_number": "4111111111111111",
	}), http.StatusCreated, &pay)
	if pay.Status != "partial" || pay.CardNumber != "****1111" {
		t.Fatalf("payment = %+v", pay)
	}

	var bal service.Balance
	a.expect(a.do(http.MethodGet, "/v1/reservations/"+res.ID+"/balance", nil), http.StatusOK, &bal)
	if bal.TotalCost != 400 || bal.Paid != 150 || bal.Remaining != 250 || bal.State != service.BalanceOutstanding {
		t.Fatalf("balance = %+v", bal)
	}

	a.expect(a.do(http.MethodPost, "/v1/reservations/"+res.ID+"/confirm", nil), http.StatusOK, nil)
	a.expect(a.do(http.MethodPost, "/v1/reservations/"+res.ID+"/cancel", nil), http.StatusOK, &res)
	if res.Status != "cancelled" {
		t.Fatalf("status after cancel = %s", res.Status)
	}
	a.expect(a.do(http.MethodPost, "/v1/reservations/"+res.ID+"/cancel", nil), http.StatusConflict, nil)

	a.expect(a.do(http.MethodGet, "/v1/rooms/"+room.ID, nil), http.StatusOK, &room)
	if !room.IsAvailable {
		t.Fatal("cancel did not free the room")
	}

	a.expect(a.do(http.MethodDelete, "/v1/guests/"+guest.ID, nil), http.StatusNoContent, nil)
	var list []struct {
		GuestName  string `json:"guest_name"`
		RoomNumber string `json:"room_number"`
	}
	a.expect(a.do(http.MethodGet, "/v1/reservations", nil), http.StatusOK, &list)
	if len(list) != 1 || list[0].GuestName != "Unknown" || list[0].RoomNumber != "101" {
		t.Fatalf("reservations = %+v", list)
	}

	a.expect(a.do(http.MethodDelete, "/v1/reservations/"+res.ID, nil), http.StatusNoContent, nil)
	var payments []any
	a.expect(a.do(http.MethodGet, "/v1/payments", nil), http.StatusOK, &payments)
	if len(payments) != 0 {
		t.Fatalf("payments survived reservation delete: %v", payments)
	}
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t, false)

	rec := a.do(http.MethodPost, "/v1/rooms", map[string]any{"room_type": "single", "price_per_night": 10})
	a.expect(rec, http.StatusBadRequest, nil)
	if !strings.Contains(rec.Body.String(), "number is required") {
		t.Errorf("body = %s", rec.Body)
	}

	a.expect(a.do(http.MethodPost, "/v1/rooms", map[string]any{"number": "1", "room_type": "single", "price_per_night": -1}), http.StatusBadRequest, nil)
	a.expect(a.do(http.MethodGet, "/v1/rooms/missing", nil), http.StatusNotFound, nil)
	a.expect(a.do(http.MethodGet, "/v1/rooms?available=maybe", nil), http.StatusBadRequest, nil)

	var room roomResp
	a.expect(a.do(http.MethodPost, "/v1/rooms", map[string]any{"number": "2", "room_type": "single", "price_per_night": 50}), http.StatusCreated, &room)
	a.expect(a.do(http.MethodPost, "/v1/reservations", map[string]any{
		"guest_id": "ghost", "room_id": room.ID, "check_in_date": "2024-05-01", "check_out_date": "2024-05-02",
	}), http.StatusNotFound, nil)
	a.expect(a.do(http.MethodPost, "/v1/reservations", map[string]any{
		"guest_id": "ghost", "room_id": room.ID, "check_in_date": "2024-05-03", "check_out_date": "2024-05-02",
	}), http.StatusBadRequest, nil)

	a.expect(a.do(http.MethodPost, "/v1/payments", map[string]any{"reservation_id": "none", "amount": 5}), http.StatusNotFound, nil)

	var guest, res idResp
	a.expect(a.do(http.MethodPost, "/v1/guests", map[string]any{"name": "Bo", "email": "bo@example.com"}), http.StatusCreated, &guest)
	a.expect(a.do(http.MethodPost, "/v1/guests", map[string]any{"name": "Cy", "email": "not-an-email"}), http.StatusBadRequest, nil)
	a.expect(a.do(http.MethodPost, "/v1/reservations", map[string]any{
		"guest_id": guest.ID, "room_id": room.ID, "check_in_date": "2024-05-01", "check_out_date": "2024-05-02",
	}), http.StatusCreated, &res)
	rec = a.do(http.MethodPost, "/v1/payments", map[string]any{"reservation_id": res.ID, "amount": -5})
	a.expect(rec, http.StatusBadRequest, nil)
	if !strings.Contains(rec.Body.String(), "negative") {
		t.Errorf("body = %s", rec.Body)
	}

	var fixed struct {
		Corrected []any `json:"corrected"`
	}
	a.expect(a.do(http.MethodPost, "/v1/admin/reconcile", nil), http.StatusOK, &fixed)
	if fixed.Corrected == nil || len(fixed.Corrected) != 0 {
		t.Fatalf("corrected = %v", fixed.Corrected)
	}
}

func TestBalanceBypassesResponseCache(t *testing.T) {
	a := newCachedAPI(t)

	var room roomResp
	var guest, res idResp
	a.expect(a.do(http.MethodPost, "/v1/rooms", map[string]any{"number": "5", "room_type": "double", "price_per_night": 100}), http.StatusCreated, &room)
	a.expect(a.do(http.MethodPost, "/v1/guests", map[string]any{"name": "Di", "email": "di@example.com"}), http.StatusCreated, &guest)
	a.expect(a.do(http.MethodPost, "/v1/reservations", map[string]any{
		"guest_id": guest.ID, "room_id": room.ID, "check_in_date": "2024-05-01", "check_out_date": "2024-05-03",
	}), http.StatusCreated, &res)

	// Ordinary reads are cached.
	a.expect(a.do(http.MethodGet, "/v1/rooms", nil), http.StatusOK, nil)
	if rec := a.do(http.MethodGet, "/v1/rooms", nil); rec.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second room list X-Cache = %q, want HIT", rec.Header().Get("X-Cache"))
	}

	path := "/v1/reservations/" + res.ID + "/balance"
	for i := 0; i < 2; i++ {
		rec := a.do(http.MethodGet, path, nil)
		a.expect(rec, http.StatusOK, nil)
		if got := rec.Header().Get("X-Cache"); got != "" {
			t.Fatalf("balance read %d X-Cache = %q, want no cache header", i, got)
		}
	}

	a.expect(a.do(http.MethodPost, "/v1/payments", map[string]any{"reservation_id": res.ID, "amount": 50}), http.StatusCreated, nil)
	var bal service.Balance
	a.expect(a.do(http.MethodGet, path, nil), http.StatusOK, &bal)
	if bal.Paid != 50 || bal.Remaining != 150 {
		t.Fatalf("balance after payment = %+v", bal)
	}
}
