package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/storage/memory"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// failingReserve wraps a room repository and fails every Reserve call.
type failingReserve struct {
	*memory.RoomRepo
}

func (failingReserve) Reserve(context.Context, string) error {
	return errors.New("disk full")
}

type fixture struct {
	svc    *service.Service
	db     *memory.DB
	events *recordingPublisher
}

func newFixture(t *testing.T, opts ...func(*service.Deps)) *fixture {
	t.Helper()
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	db, err := memory.New(memory.Config{L: l})
	if err != nil {
		t.Fatal(err)
	}
	events := &recordingPublisher{}
	deps := service.Deps{
		Tx:           db,
		Rooms:        memory.NewRoomRepo(db),
		Guests:       memory.NewGuestRepo(db),
		Reservations: memory.NewReservationRepo(db),
		Payments:     memory.NewPaymentRepo(db),
		Events:       events,
		Logger:       l,
	}
	for _, o := range opts {
		o(&deps)
	}
	return &fixture{svc: service.New(deps), db: db, events: events}
}

func (f *fixture) room(t *testing.T, number string, price float64) *model.Room {
	t.Helper()
	r, err := f.svc.AddRoom(context.Background(), service.RoomInput{Number: number, Type: "double", PricePerNight: price, Capacity: 2})
	if err != nil {
		t.Fatalf("AddRoom: %v", err)
	}
	return r
}

func (f *fixture) guest(t *testing.T, email string) *model.Guest {
	t.Helper()
	g, err := f.svc.AddGuest(context.Background(), "Guest "+email, email, "555-0100")
	if err != nil {
		t.Fatalf("AddGuest: %v", err)
	}
	return g
}

func (f *fixture) available(t *testing.T, roomID string) bool {
	t.Helper()
	r, err := f.svc.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	return r.IsAvailable
}

func TestRoomLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	if !f.available(t, room.ID) {
		t.Fatal("new room must be available")
	}

	if _, err := f.svc.AddRoom(ctx, service.RoomInput{Number: "101", Type: "suite", PricePerNight: 10}); !errors.Is(err, model.ErrDuplicateKey) {
		t.Fatalf("duplicate number err = %v", err)
	}

	typ := "suite"
	updated, err := f.svc.UpdateRoom(ctx, room.ID, model.RoomPatch{Type: &typ})
	if err != nil {
		t.Fatalf("UpdateRoom: %v", err)
	}
	if updated.Type != "suite" || updated.Number != "101" || updated.PricePerNight != 100 {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}

	other := f.room(t, "102", 80)
	num := "101"
	if _, err := f.svc.UpdateRoom(ctx, other.ID, model.RoomPatch{Number: &num}); !errors.Is(err, model.ErrDuplicateKey) {
		t.Fatalf("renumber onto existing err = %v", err)
	}
	if _, err := f.svc.UpdateRoom(ctx, "missing", model.RoomPatch{Type: &typ}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}

	if err := f.svc.DeleteRoom(ctx, other.ID); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if err := f.svc.DeleteRoom(ctx, other.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("delete twice err = %v", err)
	}
}

func TestGuestLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.guest(t, "ann@example.com")

	if _, err := f.svc.AddGuest(ctx, "Other", "ann@example.com", "1"); !errors.Is(err, model.ErrDuplicateKey) {
		t.Fatalf("duplicate email err = %v", err)
	}
	if _, err := f.svc.AddGuest(ctx, "Bad", "no-at-sign", "1"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("bad email err = %v", err)
	}

	phone := "  777 "
	got, err := f.svc.UpdateGuest(ctx, g.ID, model.GuestPatch{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateGuest: %v", err)
	}
	if got.Phone != "777" || got.Email != "ann@example.com" {
		t.Fatalf("unexpected guest %+v", got)
	}

	b := f.guest(t, "bob@example.com")
	email := "ann@example.com"
	if _, err := f.svc.UpdateGuest(ctx, b.ID, model.GuestPatch{Email: &email}); !errors.Is(err, model.ErrDuplicateKey) {
		t.Fatalf("email collision err = %v", err)
	}
	if err := f.svc.DeleteGuest(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("delete missing err = %v", err)
	}
}

func TestReservationTogglesAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")

	res, err := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-05")
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if res.Status != model.StatusPending {
		t.Fatalf("status = %s", res.Status)
	}
	if f.available(t, room.ID) {
		t.Fatal("room must be unavailable after reservation")
	}

	if _, err := f.svc.CancelReservation(ctx, res.ID); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	if !f.available(t, room.ID) {
		t.Fatal("room must be available after cancel")
	}
	if _, err := f.svc.CancelReservation(ctx, res.ID); !errors.Is(err, model.ErrInvalidState) {
		t.Fatalf("second cancel err = %v", err)
	}

	res2, err := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-06-01", "2024-06-02")
	if err != nil {
		t.Fatalf("rebook: %v", err)
	}
	if err := f.svc.DeleteReservation(ctx, res2.ID); err != nil {
		t.Fatalf("DeleteReservation: %v", err)
	}
	if !f.available(t, room.ID) {
		t.Fatal("room must be available after delete")
	}
	if err := f.svc.DeleteReservation(ctx, res2.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("delete twice err = %v", err)
	}

	want := []string{queue.ReservationCreated, queue.ReservationCancelled, queue.ReservationCreated, queue.ReservationDeleted}
	got := f.events.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestReleaseKeepsRoomHeldByAnotherReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "102", 80)
	g := f.guest(t, "bo@example.com")

	first, err := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-03")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CancelReservation(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-06-01", "2024-06-03")
	if err != nil {
		t.Fatal(err)
	}

	// Deleting the cancelled booking must not free the room the second one holds.
	if err := f.svc.DeleteReservation(ctx, first.ID); err != nil {
		t.Fatalf("DeleteReservation: %v", err)
	}
	if f.available(t, room.ID) {
		t.Fatal("room freed while another reservation holds it")
	}
	if _, err := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-07-01", "2024-07-02"); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("third booking err = %v, want ErrConflict", err)
	}

	if _, err := f.svc.CancelReservation(ctx, second.ID); err != nil {
		t.Fatal(err)
	}
	if !f.available(t, room.ID) {
		t.Fatal("room must be available once no active reservation holds it")
	}
}

func TestCreateReservationFailedCommitLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hotel.json")
	f := newFixture(t, func(d *service.Deps) {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		db, err := memory.New(memory.Config{Path: path, L: l})
		if err != nil {
			t.Fatal(err)
		}
		d.Tx = db
		d.Rooms = memory.NewRoomRepo(db)
		d.Guests = memory.NewGuestRepo(db)
		d.Reservations = memory.NewReservationRepo(db)
		d.Payments = memory.NewPaymentRepo(db)
	})
	room := f.room(t, "103", 120)
	g := f.guest(t, "cy@example.com")

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(path, "blocker"), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-02"); err == nil {
		t.Fatal("CreateReservation succeeded although the snapshot could not be written")
	}
	if !f.available(t, room.ID) {
		t.Fatal("room stayed reserved after failed commit")
	}
	all, err := f.svc.ListReservations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("reservations after failed commit: %+v", all)
	}
	if n := len(f.events.types()); n != 0 {
		t.Fatalf("%d events published for a failed booking", n)
	}
}

func TestCreateReservationFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")

	for _, d := range [][2]string{{"2024-05-05", "2024-05-05"}, {"2024-05-05", "2024-05-01"}, {"yesterday", "2024-05-01"}} {
		if _, err := f.svc.CreateReservation(ctx, g.ID, room.ID, d[0], d[1]); !errors.Is(err, model.ErrValidation) {
			t.Errorf("dates %v: err = %v, want ErrValidation", d, err)
		}
	}
	if !f.available(t, room.ID) {
		t.Fatal("failed validation must not take the room")
	}

	if _, err := f.svc.CreateReservation(ctx, g.ID, "missing", "2024-05-01", "2024-05-02"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("missing room err = %v", err)
	}
	if _, err := f.svc.CreateReservation(ctx, "missing", room.ID, "2024-05-01", "2024-05-02"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("missing guest err = %v", err)
	}

	if _, err := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-02"); err != nil {
		t.Fatal(err)
	}
	other := f.guest(t, "bob@example.com")
	if _, err := f.svc.CreateReservation(ctx, other.ID, room.ID, "2024-07-01", "2024-07-02"); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("double booking err = %v, want ErrConflict", err)
	}
}

func TestCreateReservationRollsBackWhenRoomUpdateFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(d *service.Deps) {
		d.Rooms = failingReserve{RoomRepo: d.Rooms.(*memory.RoomRepo)}
	})
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")

	if _, err := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-02"); err == nil {
		t.Fatal("expected error")
	}
	all, err := f.svc.ListReservations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("reservation persisted despite failed room update: %+v", all)
	}
	if !f.available(t, room.ID) {
		t.Fatal("room must still be available")
	}
	if len(f.events.types()) != 0 {
		t.Fatalf("events published for a rolled back change: %v", f.events.types())
	}
}

func TestConcurrentReservationsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)

	const n = 6
	guests := make([]*model.Guest, n)
	for i := range guests {
		guests[i] = f.guest(t, string(rune('a'+i))+"@example.com")
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateReservation(ctx, guests[i].ID, room.ID, "2024-05-01", "2024-05-03")
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else if !errors.Is(err, model.ErrConflict) {
			t.Fatalf("unexpected error %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("%d reservations succeeded, want 1", won)
	}
	all, _ := f.svc.ListReservations(ctx)
	if len(all) != 1 {
		t.Fatalf("stored %d reservations, want 1", len(all))
	}
}

func TestUpdateReservationRevalidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")
	res, _ := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-05")

	in := "2024-05-06"
	if _, err := f.svc.UpdateReservation(ctx, res.ID, &in, nil); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	out := "2024-05-08"
	got, err := f.svc.UpdateReservation(ctx, res.ID, nil, &out)
	if err != nil {
		t.Fatalf("UpdateReservation: %v", err)
	}
	if got.CheckInDate != "2024-05-01" || got.CheckOutDate != "2024-05-08" {
		t.Fatalf("unexpected dates %+v", got)
	}
	if _, err := f.svc.UpdateReservation(ctx, "missing", nil, &out); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestConfirmReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")
	res, _ := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-05")

	got, err := f.svc.ConfirmReservation(ctx, res.ID)
	if err != nil || got.Status != model.StatusConfirmed {
		t.Fatalf("confirm: %+v, %v", got, err)
	}
	if _, err := f.svc.ConfirmReservation(ctx, res.ID); !errors.Is(err, model.ErrInvalidState) {
		t.Fatalf("confirm twice err = %v", err)
	}
	if _, err := f.svc.CancelReservation(ctx, res.ID); err != nil {
		t.Fatalf("cancel confirmed: %v", err)
	}
}

func TestPaymentCompleteness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")

	// 4 nights at 100 => 400
	full, _ := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-05")
	p, err := f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: full.ID, Amount: 400, Type: "cash"})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if p.Status != model.PaymentCompleted {
		t.Fatalf("status = %s, want completed", p.Status)
	}

	room2 := f.room(t, "102", 100)
	split, _ := f.svc.CreateReservation(ctx, g.ID, room2.ID, "2024-05-01", "2024-05-05")
	first, err := f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: split.ID, Amount: 150, Type: "card", CardNumber: "4111111111111111"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Status != model.PaymentPartial {
		t.Fatalf("first status = %s, want partial", first.Status)
	}
	second, err := f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: split.ID, Amount: 250, Type: "wire"})
	if err != nil {
		t.Fatal(err)
	}
	if second.Status != model.PaymentCompleted {
		t.Fatalf("second status = %s, want completed", second.Status)
	}
	if second.Type() != model.PaymentGeneric {
		t.Fatalf("second type = %s, want generic", second.Type())
	}
	stored, err := f.svc.GetPayment(ctx, first.ID)
	if err != nil || stored.Status != model.PaymentPartial {
		t.Fatalf("first payment changed: %+v, %v", stored, err)
	}
	if stored.MaskedCardNumber() != "****1111" {
		t.Fatalf("masked = %q", stored.MaskedCardNumber())
	}

	b, err := f.svc.Balance(ctx, split.ID)
	if err != nil {
		t.Fatal(err)
	}
	if b.TotalCost != 400 || b.Paid != 400 || b.Remaining != 0 || b.State != service.BalanceSettled || b.Nights != 4 {
		t.Fatalf("balance = %+v", b)
	}
}

func TestPaymentValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")
	res, _ := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-03")

	for _, amount := range []float64{0, -5} {
		if _, err := f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: res.ID, Amount: amount, Type: "cash"}); !errors.Is(err, model.ErrValidation) {
			t.Errorf("amount %v: err = %v", amount, err)
		}
	}
	if _, err := f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: res.ID, Amount: 10, Type: "card", CardNumber: "4111"}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("short card err = %v", err)
	}
	if _, err := f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: "missing", Amount: 10, Type: "cash"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("missing reservation err = %v", err)
	}
	list, _ := f.svc.ListReservationPayments(ctx, res.ID)
	if len(list) != 0 {
		t.Fatalf("rejected payments were stored: %+v", list)
	}
}

func TestPaymentNeedsRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")
	res, _ := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-03")
	_, _ = f.svc.CancelReservation(ctx, res.ID)
	if err := f.svc.DeleteRoom(ctx, room.ID); err != nil {
		t.Fatalf("delete room after cancel: %v", err)
	}
	if _, err := f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: res.ID, Amount: 10, Type: "cash"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBalanceStates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 50)
	g := f.guest(t, "ann@example.com")
	res, _ := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-03")

	b, _ := f.svc.Balance(ctx, res.ID)
	if b.State != service.BalanceOutstanding || b.Remaining != 100 {
		t.Fatalf("balance before payment = %+v", b)
	}
	_, _ = f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: res.ID, Amount: 130, Type: "cash"})
	b, _ = f.svc.Balance(ctx, res.ID)
	if b.State != service.BalanceOverpaid || b.Remaining != -30 {
		t.Fatalf("balance after overpay = %+v", b)
	}
}

func TestDeleteReservationRemovesPayments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")
	res, _ := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-03")
	p, _ := f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: res.ID, Amount: 50, Type: "cash"})

	if err := f.svc.DeleteReservation(ctx, res.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.GetPayment(ctx, p.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("payment survived reservation delete: %v", err)
	}
}

func TestDeletePayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")
	res, _ := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-03")
	p, _ := f.svc.ProcessPayment(ctx, service.PaymentInput{ReservationID: res.ID, Amount: 50, Type: "cash"})

	if err := f.svc.DeletePayment(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.DeletePayment(ctx, p.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	all, _ := f.svc.ListPayments(ctx)
	if len(all) != 0 {
		t.Fatalf("payments = %+v", all)
	}
}

func TestReferencedEntitiesCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")
	res, _ := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-03")

	if err := f.svc.DeleteRoom(ctx, room.ID); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("delete held room err = %v", err)
	}
	if err := f.svc.DeleteGuest(ctx, g.ID); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("delete guest with reservation err = %v", err)
	}

	_, _ = f.svc.CancelReservation(ctx, res.ID)
	if err := f.svc.DeleteGuest(ctx, g.ID); err != nil {
		t.Fatalf("delete guest after cancel: %v", err)
	}
	list, err := f.svc.ListReservations(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListReservations: %v, %v", list, err)
	}
	if list[0].GuestName != "Unknown" || list[0].RoomNumber != "101" {
		t.Fatalf("details = %+v", list[0])
	}
}

func TestReconcileAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	held := f.room(t, "101", 100)
	free := f.room(t, "102", 100)
	g := f.guest(t, "ann@example.com")
	if _, err := f.svc.CreateReservation(ctx, g.ID, held.ID, "2024-05-01", "2024-05-03"); err != nil {
		t.Fatal(err)
	}

	// Simulate a crash between writes: flip both flags behind the coordinator's back.
	rooms := memory.NewRoomRepo(f.db)
	h, _ := rooms.Get(ctx, held.ID)
	h.IsAvailable = true
	_ = rooms.Update(ctx, h)
	fr, _ := rooms.Get(ctx, free.ID)
	fr.IsAvailable = false
	_ = rooms.Update(ctx, fr)

	fixed, err := f.svc.ReconcileAvailability(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fixed) != 2 {
		t.Fatalf("corrections = %+v", fixed)
	}
	if f.available(t, held.ID) || !f.available(t, free.ID) {
		t.Fatal("reconcile did not restore availability")
	}
	again, _ := f.svc.ReconcileAvailability(ctx)
	if len(again) != 0 {
		t.Fatalf("second reconcile corrected %+v", again)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	room := f.room(t, "101", 100)
	g := f.guest(t, "ann@example.com")
	if _, err := f.svc.CreateReservation(ctx, g.ID, room.ID, "2024-05-01", "2024-05-03"); err != nil {
		t.Fatalf("CreateReservation with broken broker: %v", err)
	}
}

func TestListAvailableRooms(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.room(t, "101", 100)
	f.room(t, "102", 100)
	g := f.guest(t, "ann@example.com")
	_, _ = f.svc.CreateReservation(ctx, g.ID, a.ID, "2024-05-01", "2024-05-03")

	avail, err := f.svc.ListAvailableRooms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(avail) != 1 || avail[0].Number != "102" {
		t.Fatalf("available = %+v", avail)
	}
}
