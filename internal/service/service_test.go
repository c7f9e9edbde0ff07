package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"tutorhub-service/api"
	"tutorhub-service/internal/models"
	"tutorhub-service/internal/payment"
	"tutorhub-service/pkg/response"
)

// fakeStore keeps everything in maps so orchestration logic can be tested
// without Postgres. The slot map is keyed by (teacher, date, time), same as
// the unique constraint.
type fakeStore struct {
	slots    map[string]*models.AvailabilitySlot
	packages map[string]*models.BookingPackage
	sessions map[string]*models.PackageSession
	bookings map[string]*models.Booking
	payments map[string]*models.Payment

	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:    make(map[string]*models.AvailabilitySlot),
		packages: make(map[string]*models.BookingPackage),
		sessions: make(map[string]*models.PackageSession),
		bookings: make(map[string]*models.Booking),
		payments: make(map[string]*models.Payment),
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func slotKey(teacherID string, date time.Time, startTime string) string {
	return teacherID + "|" + date.Format("2006-01-02") + "|" + startTime
}

func (f *fakeStore) IsSlotFree(_ context.Context, teacherID string, date time.Time, startTime string) (bool, error) {
	_, taken := f.slots[slotKey(teacherID, date, startTime)]
	return !taken, nil
}

func (f *fakeStore) GetBookedTimes(_ context.Context, teacherID string, date time.Time) ([]string, error) {
	var times []string
	for _, slot := range f.slots {
		if slot.TeacherID == teacherID && slot.Date.Equal(date) {
			times = append(times, slot.StartTime)
		}
	}
	return times, nil
}

func (f *fakeStore) ReserveSlot(_ context.Context, slot *models.AvailabilitySlot) (string, error) {
	key := slotKey(slot.TeacherID, slot.Date, slot.StartTime)
	if _, taken := f.slots[key]; taken {
		return "", response.ErrSlotNotAvailable
	}
	if slot.ID == "" {
		slot.ID = f.id()
	}
	f.slots[key] = slot
	return slot.ID, nil
}

func (f *fakeStore) ReleaseSlot(_ context.Context, teacherID string, date time.Time, startTime string) error {
	delete(f.slots, slotKey(teacherID, date, startTime))
	return nil
}

func (f *fakeStore) ReleaseSlotsByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		for key, slot := range f.slots {
			if slot.ID == id {
				delete(f.slots, key)
			}
		}
	}
	return nil
}

func (f *fakeStore) CreatePackage(_ context.Context, p *models.BookingPackage) (string, error) {
	if p.ID == "" {
		p.ID = f.id()
	}
	cp := *p
	f.packages[p.ID] = &cp
	return p.ID, nil
}

func (f *fakeStore) GetPackage(_ context.Context, id string) (*models.BookingPackage, error) {
	p, ok := f.packages[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListStudentPackages(_ context.Context, studentID string) ([]*models.BookingPackage, error) {
	var out []*models.BookingPackage
	for _, p := range f.packages {
		if p.StudentID == studentID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdatePackageStatus(_ context.Context, id string, status models.PackageStatus) error {
	p, ok := f.packages[id]
	if !ok {
		return response.ErrNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeStore) UpdatePackagePayment(_ context.Context, id string, status models.PaymentStatus, orderID, paymentID *string) error {
	p, ok := f.packages[id]
	if !ok {
		return response.ErrNotFound
	}
	p.PaymentStatus = status
	if orderID != nil {
		p.RazorpayOrderID = orderID
	}
	if paymentID != nil {
		p.RazorpayPaymentID = paymentID
	}
	return nil
}

func (f *fakeStore) DeletePackage(_ context.Context, id string) error {
	delete(f.packages, id)
	return nil
}

func (f *fakeStore) CreateSession(_ context.Context, sess *models.PackageSession) (string, error) {
	if sess.ID == "" {
		sess.ID = f.id()
	}
	cp := *sess
	f.sessions[sess.ID] = &cp
	return sess.ID, nil
}

func (f *fakeStore) GetSession(_ context.Context, id string) (*models.PackageSession, error) {
	sess, ok := f.sessions[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (f *fakeStore) ListPackageSessions(_ context.Context, packageID string) ([]*models.PackageSession, error) {
	var out []*models.PackageSession
	for _, sess := range f.sessions {
		if sess.PackageID == packageID {
			cp := *sess
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListFutureScheduledSessions(_ context.Context, packageID string, from time.Time) ([]*models.PackageSession, error) {
	var out []*models.PackageSession
	for _, sess := range f.sessions {
		if sess.PackageID == packageID && sess.Status == models.SessionScheduled && !sess.ScheduledDate.Before(from) {
			cp := *sess
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) CancelFutureSessions(_ context.Context, packageID string, from time.Time) error {
	for _, sess := range f.sessions {
		if sess.PackageID == packageID && sess.Status == models.SessionScheduled && !sess.ScheduledDate.Before(from) {
			sess.Status = models.SessionCancelled
		}
	}
	return nil
}

func (f *fakeStore) UpdateSessionAttendance(_ context.Context, id string, studentJoined, teacherJoined *bool, startedAt *time.Time) error {
	sess, ok := f.sessions[id]
	if !ok {
		return response.ErrNotFound
	}
	if studentJoined != nil {
		sess.StudentJoined = *studentJoined
	}
	if teacherJoined != nil {
		sess.TeacherJoined = *teacherJoined
	}
	if sess.ActualStartTime == nil {
		sess.ActualStartTime = startedAt
	}
	return nil
}

func (f *fakeStore) CompleteSession(_ context.Context, id string, at time.Time) error {
	sess, ok := f.sessions[id]
	if !ok {
		return response.ErrNotFound
	}
	sess.Status = models.SessionCompleted
	sess.CompletedAt = &at
	sess.ActualEndTime = &at
	return nil
}

func (f *fakeStore) DeleteSessionsByPackage(_ context.Context, packageID string) error {
	for id, sess := range f.sessions {
		if sess.PackageID == packageID {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeStore) CreateBooking(_ context.Context, b *models.Booking) (string, error) {
	if b.ID == "" {
		b.ID = f.id()
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return b.ID, nil
}

func (f *fakeStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ListTeacherBookings(_ context.Context, teacherID string) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.TeacherID == teacherID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListStudentBookings(_ context.Context, studentID string) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.StudentID == studentID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, id string, status models.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return response.ErrNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeStore) UpdateBookingPayment(_ context.Context, id string, status models.BookingStatus, orderID, paymentID *string) error {
	b, ok := f.bookings[id]
	if !ok {
		return response.ErrNotFound
	}
	b.Status = status
	if orderID != nil {
		b.RazorpayOrderID = orderID
	}
	if paymentID != nil {
		b.RazorpayPaymentID = paymentID
	}
	return nil
}

func (f *fakeStore) DeleteBooking(_ context.Context, id string) error {
	delete(f.bookings, id)
	return nil
}

func (f *fakeStore) CreatePayment(_ context.Context, p *models.Payment) (string, error) {
	if p.ID == "" {
		p.ID = f.id()
	}
	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Unix(int64(f.nextID), 0)
	}
	f.payments[p.RazorpayOrderID] = &cp
	return p.ID, nil
}

func (f *fakeStore) GetPaymentByOrderID(_ context.Context, orderID string) (*models.Payment, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListUserPayments(_ context.Context, userID string) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) UpdatePaymentStatus(_ context.Context, orderID string, status models.OrderStatus, paymentID, signature *string) error {
	p, ok := f.payments[orderID]
	if !ok {
		return response.ErrNotFound
	}
	p.Status = status
	if paymentID != nil {
		p.RazorpayPaymentID = paymentID
	}
	if signature != nil {
		p.RazorpaySignature = signature
	}
	return nil
}

type fakeLocker struct {
	denied map[string]bool
	held   map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{denied: make(map[string]bool), held: make(map[string]bool)}
}

func (l *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.denied[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key string) error {
	delete(l.held, key)
	return nil
}

type fakePayments struct {
	verifyOK  bool
	orderErr  error
	lastOrder string
}

func (p *fakePayments) CreateOrder(amount float64, currency, _ string) (*payment.Order, error) {
	if p.orderErr != nil {
		return nil, p.orderErr
	}
	p.lastOrder = "order_test_1"
	return &payment.Order{ID: p.lastOrder, Amount: amount, Currency: currency}, nil
}

func (p *fakePayments) VerifySignature(_, _, _ string) bool { return p.verifyOK }

func (p *fakePayments) KeyID() string { return "rzp_test_key" }

func newTestService(store *fakeStore) (*Service, *fakeLocker, *fakePayments) {
	locker := newFakeLocker()
	payments := &fakePayments{verifyOK: true}
	svc := NewService(store, locker, payments)
	svc.now = func() time.Time {
		return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc, locker, payments
}

func weeklyPackageRequest() *api.PackageCreateRequest {
	return &api.PackageCreateRequest{
		StudentID:        "student-1",
		StudentName:      "Asha",
		TeacherID:        "teacher-1",
		TeacherName:      "Ravi",
		Subject:          "Math",
		PackageType:      "weekly",
		SelectedDays:     []string{"Mon", "Wed"},
		SameTimeDaily:    true,
		DefaultStartTime: "10:00 AM",
		PricePerClass:    600,
		StartDate:        "2024-01-01", // a Monday
	}
}

func TestCreatePackage(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	resp, err := svc.CreatePackage(context.Background(), weeklyPackageRequest())
	if err != nil {
		t.Fatalf("CreatePackage() error = %v", err)
	}

	// Mon and Wed inside a 7-day window starting Mon 2024-01-01.
	if len(resp.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(resp.Sessions))
	}
	if resp.Sessions[0].ScheduledDate != "2024-01-01" || resp.Sessions[1].ScheduledDate != "2024-01-03" {
		t.Errorf("session dates = %s, %s; want 2024-01-01, 2024-01-03",
			resp.Sessions[0].ScheduledDate, resp.Sessions[1].ScheduledDate)
	}

	if resp.Pricing.TotalClasses != 2 {
		t.Errorf("total classes = %d, want 2", resp.Pricing.TotalClasses)
	}
	if resp.Pricing.TotalPrice != 1200 {
		t.Errorf("total price = %v, want 1200", resp.Pricing.TotalPrice)
	}
	if resp.Pricing.DiscountPercent != 10 {
		t.Errorf("discount = %d%%, want 10%%", resp.Pricing.DiscountPercent)
	}
	if resp.Pricing.FinalPrice != 1080 {
		t.Errorf("final price = %v, want 1080", resp.Pricing.FinalPrice)
	}

	if resp.Package.Status != "active" || resp.Package.PaymentStatus != "pending" {
		t.Errorf("package status = %s/%s, want active/pending",
			resp.Package.Status, resp.Package.PaymentStatus)
	}
	if resp.Package.EndDate != "2024-01-08" {
		t.Errorf("end date = %s, want 2024-01-08", resp.Package.EndDate)
	}

	if len(store.slots) != 2 {
		t.Errorf("got %d reserved slots, want 2", len(store.slots))
	}
	for _, slot := range store.slots {
		if slot.BookingKind != models.BookingKindPackage {
			t.Errorf("slot booking kind = %s, want package", slot.BookingKind)
		}
		if slot.PackageSessionID == nil {
			t.Error("slot not linked to a session")
		}
	}
}

func TestCreatePackageConflictCompensates(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	// Another student already holds the Wednesday cell.
	wed := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	if _, err := store.ReserveSlot(context.Background(), &models.AvailabilitySlot{
		TeacherID: "teacher-1", Date: wed, StartTime: "10:00 AM", EndTime: "11:00 AM",
		BookedByStudentID: "student-other",
	}); err != nil {
		t.Fatalf("pre-reserve: %v", err)
	}

	_, err := svc.CreatePackage(context.Background(), weeklyPackageRequest())
	if err == nil {
		t.Fatal("CreatePackage() succeeded, want conflict")
	}
	if !errors.Is(err, response.ErrSlotNotAvailable) {
		t.Fatalf("error = %v, want ErrSlotNotAvailable", err)
	}

	var conflictErr *SlotConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("error %v does not carry conflict details", err)
	}
	if len(conflictErr.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflictErr.Conflicts))
	}
	c := conflictErr.Conflicts[0]
	if c.Slot.Date != "2024-01-03" || c.Slot.Time != "10:00 AM" {
		t.Errorf("conflict slot = %s %s, want 2024-01-03 10:00 AM", c.Slot.Date, c.Slot.Time)
	}
	if len(c.Alternatives) == 0 {
		t.Error("conflict carries no alternatives")
	}

	// Everything created before the failure must be gone.
	if len(store.packages) != 0 {
		t.Errorf("%d packages left behind after compensation", len(store.packages))
	}
	if len(store.sessions) != 0 {
		t.Errorf("%d sessions left behind after compensation", len(store.sessions))
	}
	if len(store.slots) != 1 {
		t.Errorf("got %d slots, want only the pre-existing one", len(store.slots))
	}
}

func TestCreatePackageLocked(t *testing.T) {
	store := newFakeStore()
	svc, locker, _ := newTestService(store)

	locker.denied["teacher:teacher-1:slots"] = true

	_, err := svc.CreatePackage(context.Background(), weeklyPackageRequest())
	if !errors.Is(err, response.ErrLocked) {
		t.Fatalf("error = %v, want ErrLocked", err)
	}
	if len(store.packages) != 0 {
		t.Error("package created despite denied lock")
	}
}

func TestCreatePackageNoMatchingDays(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	req := weeklyPackageRequest()
	req.PackageType = "single"
	req.SelectedDays = []string{"Tue"} // start date is a Monday

	_, err := svc.CreatePackage(context.Background(), req)
	if !errors.Is(err, response.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestCancelPackageFutureOnly(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	req := weeklyPackageRequest()
	req.StartDate = "2023-12-27" // Wed, so Wed Dec 27 and Mon Jan 1 fall in window
	resp, err := svc.CreatePackage(context.Background(), req)
	if err != nil {
		t.Fatalf("CreatePackage() error = %v", err)
	}
	if len(resp.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(resp.Sessions))
	}

	// now() is 2024-01-01: the Dec 27 session is past, Jan 1 is cancellable.
	if err := svc.CancelPackage(context.Background(), resp.Package.ID); err != nil {
		t.Fatalf("CancelPackage() error = %v", err)
	}

	pkg := store.packages[resp.Package.ID]
	if pkg.Status != models.PackageCancelled {
		t.Errorf("package status = %s, want cancelled", pkg.Status)
	}

	for _, sess := range store.sessions {
		switch sess.ScheduledDate.Format("2006-01-02") {
		case "2023-12-27":
			if sess.Status != models.SessionScheduled {
				t.Errorf("past session status = %s, want scheduled (untouched)", sess.Status)
			}
		case "2024-01-01":
			if sess.Status != models.SessionCancelled {
				t.Errorf("future session status = %s, want cancelled", sess.Status)
			}
		}
	}

	// Only the future session's slot is released.
	if len(store.slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(store.slots))
	}
	for _, slot := range store.slots {
		if got := slot.Date.Format("2006-01-02"); got != "2023-12-27" {
			t.Errorf("remaining slot date = %s, want 2023-12-27", got)
		}
	}
}

func TestCreateBooking(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	req := &api.BookingCreateRequest{
		TeacherID: "teacher-1", TeacherName: "Ravi",
		StudentID: "student-1", StudentName: "Asha", StudentEmail: "asha@example.com",
		Subject: "Physics", Date: "2024-01-05", Time: "03:00 PM", Price: 800,
	}

	resp, err := svc.CreateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	if resp.Status != "pending" {
		t.Errorf("status = %s, want pending", resp.Status)
	}

	if len(store.slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(store.slots))
	}
	for _, slot := range store.slots {
		if slot.BookingKind != models.BookingKindSingle {
			t.Errorf("booking kind = %s, want single", slot.BookingKind)
		}
		if slot.EndTime != "04:00 PM" {
			t.Errorf("end time = %s, want 04:00 PM", slot.EndTime)
		}
	}

	// Same cell again: conflict, and no orphan booking row.
	req2 := *req
	req2.StudentID = "student-2"
	req2.StudentName = "Biju"
	req2.StudentEmail = "biju@example.com"

	_, err = svc.CreateBooking(context.Background(), &req2)
	if !errors.Is(err, response.ErrSlotNotAvailable) {
		t.Fatalf("error = %v, want ErrSlotNotAvailable", err)
	}
	if len(store.bookings) != 1 {
		t.Errorf("got %d bookings, want 1", len(store.bookings))
	}
}

func TestCancelBookingReleasesSlot(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	resp, err := svc.CreateBooking(context.Background(), &api.BookingCreateRequest{
		TeacherID: "teacher-1", TeacherName: "Ravi",
		StudentID: "student-1", StudentName: "Asha", StudentEmail: "asha@example.com",
		Subject: "Physics", Date: "2024-01-05", Time: "03:00 PM", Price: 800,
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	cancelled, err := svc.CancelBooking(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("CancelBooking() error = %v", err)
	}
	if cancelled.Status != "cancelled" {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if len(store.slots) != 0 {
		t.Errorf("slot still reserved after cancellation")
	}

	// Idempotent: a second cancel neither errors nor re-releases.
	if _, err := svc.CancelBooking(context.Background(), resp.ID); err != nil {
		t.Errorf("second CancelBooking() error = %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if _, err := store.ReserveSlot(context.Background(), &models.AvailabilitySlot{
		TeacherID: "teacher-1", Date: date, StartTime: "09:00 AM", EndTime: "10:00 AM",
	}); err != nil {
		t.Fatalf("pre-reserve: %v", err)
	}

	resp, err := svc.CheckAvailability(context.Background(), &api.AvailabilityCheckRequest{
		TeacherID: "teacher-1",
		Slots: []api.SlotRequest{
			{Date: "2024-01-05", Time: "09:00 AM"},
			{Date: "2024-01-05", Time: "02:00 PM"},
		},
	})
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}

	if !resp.HasConflicts {
		t.Error("HasConflicts = false, want true")
	}
	if len(resp.Available) != 1 || resp.Available[0].Time != "02:00 PM" {
		t.Errorf("available = %v, want [02:00 PM]", resp.Available)
	}
	if len(resp.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(resp.Conflicts))
	}

	// First three common hours minus the booked 09:00 AM and the request.
	want := []string{"10:00 AM", "11:00 AM", "12:00 PM"}
	got := resp.Conflicts[0].Alternatives
	if len(got) != len(want) {
		t.Fatalf("alternatives = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("alternatives[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGetTeacherDaySlots(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	for _, hour := range []string{"09:00 AM", "03:00 PM"} {
		if _, err := store.ReserveSlot(context.Background(), &models.AvailabilitySlot{
			TeacherID: "teacher-1", Date: date, StartTime: hour, EndTime: hour,
		}); err != nil {
			t.Fatalf("pre-reserve %s: %v", hour, err)
		}
	}

	resp, err := svc.GetTeacherDaySlots(context.Background(), "teacher-1", "2024-01-05")
	if err != nil {
		t.Fatalf("GetTeacherDaySlots() error = %v", err)
	}

	if len(resp.Free) != len(commonHours)-2 {
		t.Fatalf("got %d free hours, want %d", len(resp.Free), len(commonHours)-2)
	}
	for _, hour := range resp.Free {
		if hour == "09:00 AM" || hour == "03:00 PM" {
			t.Errorf("booked hour %s listed as free", hour)
		}
	}
}

func TestSessionAttendance(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	resp, err := svc.CreatePackage(context.Background(), weeklyPackageRequest())
	if err != nil {
		t.Fatalf("CreatePackage() error = %v", err)
	}
	sessionID := resp.Sessions[0].ID

	joined := true
	sess, err := svc.UpdateSessionAttendance(context.Background(), sessionID, &api.SessionAttendanceRequest{
		StudentJoined: &joined,
	})
	if err != nil {
		t.Fatalf("UpdateSessionAttendance() error = %v", err)
	}
	if !sess.StudentJoined {
		t.Error("student_joined not recorded")
	}
	if store.sessions[sessionID].ActualStartTime == nil {
		t.Error("actual start time not stamped on first join")
	}

	sess, err = svc.UpdateSessionAttendance(context.Background(), sessionID, &api.SessionAttendanceRequest{
		Completed: true,
	})
	if err != nil {
		t.Fatalf("complete error = %v", err)
	}
	if sess.Status != "completed" {
		t.Errorf("status = %s, want completed", sess.Status)
	}
}

func TestCreateOrderForBooking(t *testing.T) {
	store := newFakeStore()
	svc, _, payments := newTestService(store)

	booking, err := svc.CreateBooking(context.Background(), &api.BookingCreateRequest{
		TeacherID: "teacher-1", TeacherName: "Ravi",
		StudentID: "student-1", StudentName: "Asha", StudentEmail: "asha@example.com",
		Subject: "Physics", Date: "2024-01-05", Time: "03:00 PM", Price: 800,
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	order, err := svc.CreateOrder(context.Background(), &api.OrderCreateRequest{
		BookingID: booking.ID, Amount: 800,
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if order.OrderID != payments.lastOrder {
		t.Errorf("order id = %s, want %s", order.OrderID, payments.lastOrder)
	}
	if order.KeyID != "rzp_test_key" {
		t.Errorf("key id = %s", order.KeyID)
	}

	p, err := store.GetPaymentByOrderID(context.Background(), order.OrderID)
	if err != nil {
		t.Fatalf("payment row missing: %v", err)
	}
	if p.UserID != "student-1" || p.Status != models.OrderCreated {
		t.Errorf("payment = %s/%s, want student-1/created", p.UserID, p.Status)
	}
}

func TestCreateOrderUpstreamFailure(t *testing.T) {
	store := newFakeStore()
	svc, _, payments := newTestService(store)
	payments.orderErr = errors.New("gateway down")

	booking, err := svc.CreateBooking(context.Background(), &api.BookingCreateRequest{
		TeacherID: "teacher-1", TeacherName: "Ravi",
		StudentID: "student-1", StudentName: "Asha", StudentEmail: "asha@example.com",
		Subject: "Physics", Date: "2024-01-05", Time: "03:00 PM", Price: 800,
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	_, err = svc.CreateOrder(context.Background(), &api.OrderCreateRequest{
		BookingID: booking.ID, Amount: 800,
	})
	if !errors.Is(err, response.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestVerifyPayment(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	booking, err := svc.CreateBooking(context.Background(), &api.BookingCreateRequest{
		TeacherID: "teacher-1", TeacherName: "Ravi",
		StudentID: "student-1", StudentName: "Asha", StudentEmail: "asha@example.com",
		Subject: "Physics", Date: "2024-01-05", Time: "03:00 PM", Price: 800,
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	order, err := svc.CreateOrder(context.Background(), &api.OrderCreateRequest{
		BookingID: booking.ID, Amount: 800,
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	err = svc.VerifyPayment(context.Background(), &api.PaymentVerifyRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
		BookingID:         booking.ID,
	})
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}

	if store.bookings[booking.ID].Status != models.BookingConfirmed {
		t.Errorf("booking status = %s, want confirmed", store.bookings[booking.ID].Status)
	}
	if store.payments[order.OrderID].Status != models.OrderPaid {
		t.Errorf("payment status = %s, want paid", store.payments[order.OrderID].Status)
	}
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	store := newFakeStore()
	svc, _, payments := newTestService(store)
	payments.verifyOK = false

	err := svc.VerifyPayment(context.Background(), &api.PaymentVerifyRequest{
		RazorpayOrderID:   "order_x",
		RazorpayPaymentID: "pay_x",
		RazorpaySignature: "bad",
		BookingID:         "booking_x",
	})
	if !errors.Is(err, response.ErrBadSignature) {
		t.Fatalf("error = %v, want ErrBadSignature", err)
	}
}

func TestPaymentFailure(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	// Single booking: failure cancels it and frees the slot.
	booking, err := svc.CreateBooking(context.Background(), &api.BookingCreateRequest{
		TeacherID: "teacher-1", TeacherName: "Ravi",
		StudentID: "student-1", StudentName: "Asha", StudentEmail: "asha@example.com",
		Subject: "Physics", Date: "2024-01-05", Time: "03:00 PM", Price: 800,
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	order, err := svc.CreateOrder(context.Background(), &api.OrderCreateRequest{
		BookingID: booking.ID, Amount: 800,
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	err = svc.HandlePaymentFailure(context.Background(), &api.PaymentFailureRequest{
		OrderID: order.OrderID, BookingID: booking.ID,
	})
	if err != nil {
		t.Fatalf("HandlePaymentFailure() error = %v", err)
	}
	if store.bookings[booking.ID].Status != models.BookingCancelled {
		t.Errorf("booking status = %s, want cancelled", store.bookings[booking.ID].Status)
	}
	if store.payments[order.OrderID].Status != models.OrderFailed {
		t.Errorf("payment status = %s, want failed", store.payments[order.OrderID].Status)
	}
	if len(store.slots) != 0 {
		t.Error("slot still reserved after payment failure")
	}

	// Package: failure marks the payment but keeps the package active.
	pkg, err := svc.CreatePackage(context.Background(), weeklyPackageRequest())
	if err != nil {
		t.Fatalf("CreatePackage() error = %v", err)
	}
	err = svc.HandlePaymentFailure(context.Background(), &api.PaymentFailureRequest{
		OrderID: "order_pkg", BookingID: pkg.Package.ID,
	})
	if err != nil {
		t.Fatalf("HandlePaymentFailure() for package error = %v", err)
	}

	stored := store.packages[pkg.Package.ID]
	if stored.Status != models.PackageActive {
		t.Errorf("package status = %s, want active", stored.Status)
	}
	if stored.PaymentStatus != models.PaymentFailed {
		t.Errorf("payment status = %s, want failed", stored.PaymentStatus)
	}
	if len(store.slots) != 2 {
		t.Errorf("got %d slots, want 2 kept reserved", len(store.slots))
	}
}

func TestCancelPackageNotActive(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	resp, err := svc.CreatePackage(context.Background(), weeklyPackageRequest())
	if err != nil {
		t.Fatalf("CreatePackage() error = %v", err)
	}

	store.packages[resp.Package.ID].Status = models.PackageCompleted

	err = svc.CancelPackage(context.Background(), resp.Package.ID)
	if !errors.Is(err, response.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}

	if store.packages[resp.Package.ID].Status != models.PackageCompleted {
		t.Errorf("package status = %s, want completed (untouched)", store.packages[resp.Package.ID].Status)
	}
	if len(store.slots) != 2 {
		t.Errorf("got %d slots, want 2 kept reserved", len(store.slots))
	}

	// An already-cancelled package is terminal too.
	store.packages[resp.Package.ID].Status = models.PackageCancelled
	err = svc.CancelPackage(context.Background(), resp.Package.ID)
	if !errors.Is(err, response.ErrConflict) {
		t.Fatalf("second cancel error = %v, want ErrConflict", err)
	}
}

func TestListUserPayments(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	var orderIDs []string
	for _, slot := range []string{"03:00 PM", "04:00 PM"} {
		booking, err := svc.CreateBooking(context.Background(), &api.BookingCreateRequest{
			TeacherID: "teacher-1", TeacherName: "Ravi",
			StudentID: "student-1", StudentName: "Asha", StudentEmail: "asha@example.com",
			Subject: "Physics", Date: "2024-01-05", Time: slot, Price: 800,
		})
		if err != nil {
			t.Fatalf("CreateBooking(%s) error = %v", slot, err)
		}
		order, err := svc.CreateOrder(context.Background(), &api.OrderCreateRequest{
			BookingID: booking.ID, Amount: 800,
		})
		if err != nil {
			t.Fatalf("CreateOrder(%s) error = %v", slot, err)
		}
		orderIDs = append(orderIDs, order.OrderID)
	}

	payments, err := svc.ListUserPayments(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("ListUserPayments() error = %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("got %d payments, want 2", len(payments))
	}

	// Newest first.
	if payments[0].RazorpayOrderID != orderIDs[1] {
		t.Errorf("payments[0].order = %s, want %s", payments[0].RazorpayOrderID, orderIDs[1])
	}
	for _, p := range payments {
		if p.UserID != "student-1" || p.Status != "created" {
			t.Errorf("payment = %s/%s, want student-1/created", p.UserID, p.Status)
		}
	}

	other, err := svc.ListUserPayments(context.Background(), "student-2")
	if err != nil {
		t.Fatalf("ListUserPayments(other) error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("got %d payments for another user, want 0", len(other))
	}
}

func TestVerifyPaymentResolvesBookingFromOrder(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	booking, err := svc.CreateBooking(context.Background(), &api.BookingCreateRequest{
		TeacherID: "teacher-1", TeacherName: "Ravi",
		StudentID: "student-1", StudentName: "Asha", StudentEmail: "asha@example.com",
		Subject: "Physics", Date: "2024-01-05", Time: "03:00 PM", Price: 800,
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	order, err := svc.CreateOrder(context.Background(), &api.OrderCreateRequest{
		BookingID: booking.ID, Amount: 800,
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	// Gateway callback without our booking id: resolved via the payment row.
	err = svc.VerifyPayment(context.Background(), &api.PaymentVerifyRequest{
		RazorpayOrderID:   order.OrderID,
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	})
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if store.bookings[booking.ID].Status != models.BookingConfirmed {
		t.Errorf("booking status = %s, want confirmed", store.bookings[booking.ID].Status)
	}

	// Unknown order with no booking id has nothing to resolve against.
	err = svc.VerifyPayment(context.Background(), &api.PaymentVerifyRequest{
		RazorpayOrderID:   "order_unknown",
		RazorpayPaymentID: "pay_2",
		RazorpaySignature: "sig",
	})
	if !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
