package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorhub-service/api"
	"tutorhub-service/internal/lock"
	"tutorhub-service/internal/models"
	"tutorhub-service/internal/payment"
	"tutorhub-service/internal/pricing"
	"tutorhub-service/internal/schedule"
	"tutorhub-service/pkg/response"
)

// commonHours is the fixed candidate set used when suggesting alternatives
// for a conflicting slot and when listing a teacher's free times for a day.
var commonHours = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
	"06:00 PM", "07:00 PM", "08:00 PM",
}

const (
	dateLayout      = "2006-01-02"
	lockTTL         = 10 * time.Second
	maxAlternatives = 3
)

type Service struct {
	store    Store
	locker   lock.Locker
	payments PaymentProvider
	now      func() time.Time
}

func NewService(store Store, locker lock.Locker, payments PaymentProvider) *Service {
	return &Service{
		store:    store,
		locker:   locker,
		payments: payments,
		now:      time.Now,
	}
}

type Store interface {
	// Availability slots
	IsSlotFree(ctx context.Context, teacherID string, date time.Time, startTime string) (bool, error)
	GetBookedTimes(ctx context.Context, teacherID string, date time.Time) ([]string, error)
	ReserveSlot(ctx context.Context, slot *models.AvailabilitySlot) (string, error)
	ReleaseSlot(ctx context.Context, teacherID string, date time.Time, startTime string) error
	ReleaseSlotsByIDs(ctx context.Context, ids []string) error

	// Booking packages
	CreatePackage(ctx context.Context, p *models.BookingPackage) (string, error)
	GetPackage(ctx context.Context, id string) (*models.BookingPackage, error)
	ListStudentPackages(ctx context.Context, studentID string) ([]*models.BookingPackage, error)
	UpdatePackageStatus(ctx context.Context, id string, status models.PackageStatus) error
	UpdatePackagePayment(ctx context.Context, id string, status models.PaymentStatus, orderID, paymentID *string) error
	DeletePackage(ctx context.Context, id string) error

	// Package sessions
	CreateSession(ctx context.Context, sess *models.PackageSession) (string, error)
	GetSession(ctx context.Context, id string) (*models.PackageSession, error)
	ListPackageSessions(ctx context.Context, packageID string) ([]*models.PackageSession, error)
	ListFutureScheduledSessions(ctx context.Context, packageID string, from time.Time) ([]*models.PackageSession, error)
	CancelFutureSessions(ctx context.Context, packageID string, from time.Time) error
	UpdateSessionAttendance(ctx context.Context, id string, studentJoined, teacherJoined *bool, startedAt *time.Time) error
	CompleteSession(ctx context.Context, id string, at time.Time) error
	DeleteSessionsByPackage(ctx context.Context, packageID string) error

	// Single-session bookings
	CreateBooking(ctx context.Context, b *models.Booking) (string, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListTeacherBookings(ctx context.Context, teacherID string) ([]*models.Booking, error)
	ListStudentBookings(ctx context.Context, studentID string) ([]*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	UpdateBookingPayment(ctx context.Context, id string, status models.BookingStatus, orderID, paymentID *string) error
	DeleteBooking(ctx context.Context, id string) error

	// Payments
	CreatePayment(ctx context.Context, p *models.Payment) (string, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	ListUserPayments(ctx context.Context, userID string) ([]*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, orderID string, status models.OrderStatus, paymentID, signature *string) error
}

type PaymentProvider interface {
	CreateOrder(amount float64, currency, receipt string) (*payment.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// SlotConflictError reports exactly which slots could not be reserved, so the
// caller can offer alternatives instead of a generic failure.
type SlotConflictError struct {
	Conflicts []api.ConflictInfo
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("%d slot(s) already booked", len(e.Conflicts))
}

func (e *SlotConflictError) Unwrap() error {
	return response.ErrSlotNotAvailable
}

// #### availability ####

func (s *Service) CheckAvailability(ctx context.Context, req *api.AvailabilityCheckRequest) (*api.AvailabilityCheckResponse, error) {
	const op = "service.CheckAvailability"

	if err := api.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, response.ErrValidation, err)
	}

	available := make([]api.SlotRequest, 0, len(req.Slots))
	conflicts := make([]api.ConflictInfo, 0)

	for _, slot := range req.Slots {
		date, err := parseDate(slot.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: bad date %q", op, response.ErrValidation, slot.Date)
		}

		free, err := s.store.IsSlotFree(ctx, req.TeacherID, date, slot.Time)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if free {
			available = append(available, slot)
			continue
		}

		alternatives, err := s.findAlternativeTimes(ctx, req.TeacherID, date, slot.Time)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		conflicts = append(conflicts, api.ConflictInfo{
			Slot:         slot,
			Reason:       "Already booked",
			Alternatives: alternatives,
		})
	}

	return &api.AvailabilityCheckResponse{
		Available:    available,
		Conflicts:    conflicts,
		HasConflicts: len(conflicts) > 0,
	}, nil
}

func (s *Service) GetTeacherDaySlots(ctx context.Context, teacherID, dateStr string) (*api.DaySlotsResponse, error) {
	const op = "service.GetTeacherDaySlots"

	date, err := parseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: bad date %q", op, response.ErrValidation, dateStr)
	}

	booked, err := s.store.GetBookedTimes(ctx, teacherID, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bookedSet := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		bookedSet[t] = struct{}{}
	}

	free := make([]string, 0, len(commonHours))
	for _, hour := range commonHours {
		if _, taken := bookedSet[hour]; !taken {
			free = append(free, hour)
		}
	}

	return &api.DaySlotsResponse{
		TeacherID: teacherID,
		Date:      dateStr,
		Free:      free,
	}, nil
}

func (s *Service) findAlternativeTimes(ctx context.Context, teacherID string, date time.Time, requestedTime string) ([]string, error) {
	booked, err := s.store.GetBookedTimes(ctx, teacherID, date)
	if err != nil {
		return nil, err
	}

	bookedSet := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		bookedSet[t] = struct{}{}
	}

	alternatives := make([]string, 0, maxAlternatives)
	for _, hour := range commonHours {
		if hour == requestedTime {
			continue
		}
		if _, taken := bookedSet[hour]; taken {
			continue
		}
		alternatives = append(alternatives, hour)
		if len(alternatives) == maxAlternatives {
			break
		}
	}

	return alternatives, nil
}

// #### package orchestration ####

// CreatePackage expands the request into concrete slots, prices them by the
// actual class count, persists the package and its sessions, then reserves
// every slot. Reservation is the authority: if any reservation hits the
// unique constraint, everything created so far is compensated away and the
// conflict is surfaced with alternatives.
func (s *Service) CreatePackage(ctx context.Context, req *api.PackageCreateRequest) (*api.PackageCreateResponse, error) {
	const op = "service.CreatePackage"

	if err := api.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, response.ErrValidation, err)
	}

	kind := models.PackageKind(req.PackageType)

	startDate := truncateToDate(s.now())
	if req.StartDate != "" {
		var err error
		startDate, err = parseDate(req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: bad start_date %q", op, response.ErrValidation, req.StartDate)
		}
	}

	endTime, err := schedule.CalculateEndTime(req.DefaultStartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: bad default_start_time %q", op, response.ErrValidation, req.DefaultStartTime)
	}

	slots := schedule.GenerateSlots(startDate, req.SelectedDays, req.DefaultStartTime, endTime, kind)
	if len(slots) == 0 {
		return nil, fmt.Errorf("%s: %w: selected days yield no classes in the package window", op, response.ErrValidation)
	}

	quote := pricing.CalculatePackagePrice(kind, req.PricePerClass, len(slots))
	endDate := startDate.AddDate(0, 0, pricing.PackageDuration(kind))

	lockKey := fmt.Sprintf("teacher:%s:slots", req.TeacherID)
	locked, err := s.locker.Lock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	pkg := &models.BookingPackage{
		StudentID:        req.StudentID,
		StudentName:      req.StudentName,
		TeacherID:        req.TeacherID,
		TeacherName:      req.TeacherName,
		Subject:          req.Subject,
		PackageKind:      kind,
		StartDate:        startDate,
		EndDate:          endDate,
		TotalClasses:     quote.TotalClasses,
		PricePerClass:    quote.BasePrice,
		TotalPrice:       quote.TotalPrice,
		DiscountPercent:  quote.DiscountPercent,
		FinalPrice:       quote.FinalPrice,
		SameTimeDaily:    req.SameTimeDaily,
		DefaultStartTime: req.DefaultStartTime,
		SelectedDays:     req.SelectedDays,
		Status:           models.PackageActive,
		PaymentStatus:    models.PaymentPending,
	}

	packageID, err := s.store.CreatePackage(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("%s: create package: %w", op, err)
	}

	sessions := make([]*models.PackageSession, 0, len(slots))
	for _, slot := range slots {
		sess := &models.PackageSession{
			PackageID:       packageID,
			StudentID:       req.StudentID,
			TeacherID:       req.TeacherID,
			ScheduledDate:   slot.Date,
			ScheduledTime:   slot.StartTime,
			DurationMinutes: schedule.SlotDurationMinutes,
			Status:          models.SessionScheduled,
		}
		if _, err := s.store.CreateSession(ctx, sess); err != nil {
			s.compensatePackage(ctx, packageID, nil)
			return nil, fmt.Errorf("%s: create session: %w", op, err)
		}
		sessions = append(sessions, sess)
	}

	reserved := make([]string, 0, len(slots))
	for i, slot := range slots {
		sessionID := sessions[i].ID
		slotID, err := s.store.ReserveSlot(ctx, &models.AvailabilitySlot{
			TeacherID:           req.TeacherID,
			Date:                slot.Date,
			StartTime:           slot.StartTime,
			EndTime:             slot.EndTime,
			BookedByStudentID:   req.StudentID,
			BookedByStudentName: req.StudentName,
			PackageSessionID:    &sessionID,
			BookingKind:         models.BookingKindPackage,
		})
		if err != nil {
			s.compensatePackage(ctx, packageID, reserved)

			if errors.Is(err, response.ErrSlotNotAvailable) {
				alternatives, altErr := s.findAlternativeTimes(ctx, req.TeacherID, slot.Date, slot.StartTime)
				if altErr != nil {
					alternatives = nil
				}
				conflictErr := &SlotConflictError{Conflicts: []api.ConflictInfo{{
					Slot: api.SlotRequest{
						Date:    slot.Date.Format(dateLayout),
						Time:    slot.StartTime,
						EndTime: slot.EndTime,
					},
					Reason:       "Already booked",
					Alternatives: alternatives,
				}}}
				return nil, fmt.Errorf("%s: %w", op, conflictErr)
			}

			return nil, fmt.Errorf("%s: reserve slot: %w", op, err)
		}
		reserved = append(reserved, slotID)
	}

	resp := &api.PackageCreateResponse{
		Package: toPackageResponse(pkg),
		Pricing: api.PricingResponse{
			BasePrice:       quote.BasePrice,
			TotalClasses:    quote.TotalClasses,
			TotalPrice:      quote.TotalPrice,
			DiscountPercent: quote.DiscountPercent,
			DiscountAmount:  quote.DiscountAmount,
			FinalPrice:      quote.FinalPrice,
		},
	}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(sess))
	}

	return resp, nil
}

// compensatePackage undoes a partially created package: reserved slots are
// released and the package with its sessions is removed. Best effort; the
// cells freed here were only ever held by this request.
func (s *Service) compensatePackage(ctx context.Context, packageID string, reservedSlotIDs []string) {
	_ = s.store.ReleaseSlotsByIDs(ctx, reservedSlotIDs)
	_ = s.store.DeleteSessionsByPackage(ctx, packageID)
	_ = s.store.DeletePackage(ctx, packageID)
}

func (s *Service) GetPackage(ctx context.Context, id string) (*api.PackageDetailResponse, error) {
	const op = "service.GetPackage"

	pkg, err := s.store.GetPackage(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sessions, err := s.store.ListPackageSessions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := &api.PackageDetailResponse{Package: toPackageResponse(pkg)}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(sess))
	}

	return resp, nil
}

func (s *Service) ListStudentPackages(ctx context.Context, studentID string) ([]api.PackageResponse, error) {
	const op = "service.ListStudentPackages"

	packages, err := s.store.ListStudentPackages(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.PackageResponse, 0, len(packages))
	for _, pkg := range packages {
		result = append(result, toPackageResponse(pkg))
	}

	return result, nil
}

// CancelPackage moves the package to cancelled and cascades to sessions that
// have not happened yet: scheduled sessions dated today or later are
// cancelled and their slots released. Past sessions stay untouched. Only an
// active package can be cancelled; completed and already-cancelled packages
// keep their terminal state.
func (s *Service) CancelPackage(ctx context.Context, id string) error {
	const op = "service.CancelPackage"

	pkg, err := s.store.GetPackage(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if pkg.Status != models.PackageActive {
		return fmt.Errorf("%s: package is %s: %w", op, pkg.Status, response.ErrConflict)
	}

	cutoff := truncateToDate(s.now())

	future, err := s.store.ListFutureScheduledSessions(ctx, id, cutoff)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.UpdatePackageStatus(ctx, id, models.PackageCancelled); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.CancelFutureSessions(ctx, id, cutoff); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, sess := range future {
		if err := s.store.ReleaseSlot(ctx, pkg.TeacherID, sess.ScheduledDate, sess.ScheduledTime); err != nil {
			return fmt.Errorf("%s: release slot: %w", op, err)
		}
	}

	return nil
}

func (s *Service) UpdatePackagePayment(ctx context.Context, id string, req *api.PackagePaymentUpdateRequest) (*api.PackageResponse, error) {
	const op = "service.UpdatePackagePayment"

	if err := api.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, response.ErrValidation, err)
	}

	var orderID, paymentID *string
	if req.RazorpayOrderID != "" {
		orderID = &req.RazorpayOrderID
	}
	if req.RazorpayPaymentID != "" {
		paymentID = &req.RazorpayPaymentID
	}

	err := s.store.UpdatePackagePayment(ctx, id, models.PaymentStatus(req.PaymentStatus), orderID, paymentID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pkg, err := s.store.GetPackage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := toPackageResponse(pkg)
	return &resp, nil
}

// #### single-session bookings ####

func (s *Service) CreateBooking(ctx context.Context, req *api.BookingCreateRequest) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	if err := api.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, response.ErrValidation, err)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: bad date %q", op, response.ErrValidation, req.Date)
	}

	endTime, err := schedule.CalculateEndTime(req.Time)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: bad time %q", op, response.ErrValidation, req.Time)
	}

	lockKey := fmt.Sprintf("slot:%s:%s:%s", req.TeacherID, req.Date, req.Time)
	locked, err := s.locker.Lock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	// Advisory pre-check; the reservation below is the authority.
	free, err := s.store.IsSlotFree(ctx, req.TeacherID, date, req.Time)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !free {
		return nil, fmt.Errorf("%s: %w", op, s.slotConflict(ctx, req.TeacherID, date, req.Date, req.Time, endTime))
	}

	booking := &models.Booking{
		TeacherID:    req.TeacherID,
		TeacherName:  req.TeacherName,
		StudentID:    req.StudentID,
		StudentName:  req.StudentName,
		StudentEmail: req.StudentEmail,
		Subject:      req.Subject,
		Date:         date,
		Time:         req.Time,
		Price:        req.Price,
		Status:       models.BookingPending,
	}

	bookingID, err := s.store.CreateBooking(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("%s: create booking: %w", op, err)
	}

	_, err = s.store.ReserveSlot(ctx, &models.AvailabilitySlot{
		TeacherID:           req.TeacherID,
		Date:                date,
		StartTime:           req.Time,
		EndTime:             endTime,
		BookedByStudentID:   req.StudentID,
		BookedByStudentName: req.StudentName,
		BookingID:           &bookingID,
		BookingKind:         models.BookingKindSingle,
	})
	if err != nil {
		_ = s.store.DeleteBooking(ctx, bookingID)

		if errors.Is(err, response.ErrSlotNotAvailable) {
			return nil, fmt.Errorf("%s: %w", op, s.slotConflict(ctx, req.TeacherID, date, req.Date, req.Time, endTime))
		}
		return nil, fmt.Errorf("%s: reserve slot: %w", op, err)
	}

	return toBookingResponse(booking), nil
}

func (s *Service) slotConflict(ctx context.Context, teacherID string, date time.Time, dateStr, startTime, endTime string) error {
	alternatives, err := s.findAlternativeTimes(ctx, teacherID, date, startTime)
	if err != nil {
		alternatives = nil
	}

	return &SlotConflictError{Conflicts: []api.ConflictInfo{{
		Slot:         api.SlotRequest{Date: dateStr, Time: startTime, EndTime: endTime},
		Reason:       "Already booked",
		Alternatives: alternatives,
	}}}
}

func (s *Service) GetBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toBookingResponse(booking), nil
}

func (s *Service) ListTeacherBookings(ctx context.Context, teacherID string) ([]api.BookingResponse, error) {
	const op = "service.ListTeacherBookings"

	bookings, err := s.store.ListTeacherBookings(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toBookingResponses(bookings), nil
}

func (s *Service) ListStudentBookings(ctx context.Context, studentID string) ([]api.BookingResponse, error) {
	const op = "service.ListStudentBookings"

	bookings, err := s.store.ListStudentBookings(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toBookingResponses(bookings), nil
}

func (s *Service) CancelBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "service.CancelBooking"

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if booking.Status == models.BookingCancelled {
		return toBookingResponse(booking), nil
	}

	if err := s.store.UpdateBookingStatus(ctx, id, models.BookingCancelled); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Free the slot
	if err := s.store.ReleaseSlot(ctx, booking.TeacherID, booking.Date, booking.Time); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetBooking(ctx, id)
}

func (s *Service) UpdateBookingStatus(ctx context.Context, id string, req *api.BookingStatusUpdateRequest) (*api.BookingResponse, error) {
	const op = "service.UpdateBookingStatus"

	if err := api.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, response.ErrValidation, err)
	}

	status := models.BookingStatus(req.Status)
	if status == models.BookingCancelled {
		return s.CancelBooking(ctx, id)
	}

	if err := s.store.UpdateBookingStatus(ctx, id, status); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetBooking(ctx, id)
}

// #### sessions ####

func (s *Service) UpdateSessionAttendance(ctx context.Context, id string, req *api.SessionAttendanceRequest) (*api.SessionResponse, error) {
	const op = "service.UpdateSessionAttendance"

	if req.StudentJoined != nil || req.TeacherJoined != nil {
		startedAt := s.now()
		err := s.store.UpdateSessionAttendance(ctx, id, req.StudentJoined, req.TeacherJoined, &startedAt)
		if err != nil {
			if errors.Is(err, response.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if req.Completed {
		if err := s.store.CompleteSession(ctx, id, s.now()); err != nil {
			if errors.Is(err, response.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := toSessionResponse(sess)
	return &resp, nil
}

// #### payments ####

// CreateOrder places a provider order for either a single booking or a
// package and records the payment row. The id is looked up as a booking
// first, then as a package, mirroring how callers address both with one id.
func (s *Service) CreateOrder(ctx context.Context, req *api.OrderCreateRequest) (*api.OrderCreateResponse, error) {
	const op = "service.CreateOrder"

	if err := api.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, response.ErrValidation, err)
	}

	var userID, userName string

	booking, err := s.store.GetBooking(ctx, req.BookingID)
	switch {
	case err == nil:
		userID = booking.StudentID
		userName = booking.StudentName
	case errors.Is(err, response.ErrNotFound):
		pkg, pkgErr := s.store.GetPackage(ctx, req.BookingID)
		if pkgErr != nil {
			if errors.Is(pkgErr, response.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, pkgErr)
		}
		userID = pkg.StudentID
		userName = pkg.StudentName
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.payments.CreateOrder(req.Amount, "INR", fmt.Sprintf("booking_%s", req.BookingID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, response.ErrUpstream, err)
	}

	_, err = s.store.CreatePayment(ctx, &models.Payment{
		UserID:          userID,
		UserName:        userName,
		BookingID:       req.BookingID,
		RazorpayOrderID: order.ID,
		Amount:          req.Amount,
		Currency:        order.Currency,
		Status:          models.OrderCreated,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if booking != nil {
		err = s.store.UpdateBookingPayment(ctx, req.BookingID, models.BookingPending, &order.ID, nil)
	} else {
		err = s.store.UpdatePackagePayment(ctx, req.BookingID, models.PaymentPending, &order.ID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.OrderCreateResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.payments.KeyID(),
	}, nil
}

func (s *Service) VerifyPayment(ctx context.Context, req *api.PaymentVerifyRequest) error {
	const op = "service.VerifyPayment"

	if err := api.Validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w: %s", op, response.ErrValidation, err)
	}

	if !s.payments.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return fmt.Errorf("%s: %w", op, response.ErrBadSignature)
	}

	bookingID, err := s.resolveBookingID(ctx, req.BookingID, req.RazorpayOrderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.store.UpdatePaymentStatus(ctx, req.RazorpayOrderID, models.OrderPaid, &req.RazorpayPaymentID, &req.RazorpaySignature)
	if err != nil && !errors.Is(err, response.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.store.GetBooking(ctx, bookingID)
	switch {
	case err == nil:
		err = s.store.UpdateBookingPayment(ctx, bookingID, models.BookingConfirmed, &req.RazorpayOrderID, &req.RazorpayPaymentID)
	case errors.Is(err, response.ErrNotFound):
		err = s.store.UpdatePackagePayment(ctx, bookingID, models.PaymentPaid, &req.RazorpayOrderID, &req.RazorpayPaymentID)
	}
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// HandlePaymentFailure records the failed order. A single booking is
// cancelled and its slot released; a package keeps its reserved slots and
// stays active with payment_status=failed, leaving the cancel-or-retry
// decision to the caller.
func (s *Service) HandlePaymentFailure(ctx context.Context, req *api.PaymentFailureRequest) error {
	const op = "service.HandlePaymentFailure"

	if err := api.Validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w: %s", op, response.ErrValidation, err)
	}

	bookingID, err := s.resolveBookingID(ctx, req.BookingID, req.OrderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.store.UpdatePaymentStatus(ctx, req.OrderID, models.OrderFailed, nil, nil)
	if err != nil && !errors.Is(err, response.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.store.GetBooking(ctx, bookingID)
	switch {
	case err == nil:
		if _, err := s.CancelBooking(ctx, bookingID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	case errors.Is(err, response.ErrNotFound):
		err = s.store.UpdatePackagePayment(ctx, bookingID, models.PaymentFailed, nil, nil)
		if err != nil {
			if errors.Is(err, response.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, response.ErrNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// resolveBookingID falls back to the payment record when a gateway callback
// carries only the order id.
func (s *Service) resolveBookingID(ctx context.Context, bookingID, orderID string) (string, error) {
	if bookingID != "" {
		return bookingID, nil
	}

	p, err := s.store.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return "", err
	}

	return p.BookingID, nil
}

func (s *Service) ListUserPayments(ctx context.Context, userID string) ([]api.PaymentResponse, error) {
	const op = "service.ListUserPayments"

	payments, err := s.store.ListUserPayments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}

	return result, nil
}

// #### helpers ####

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toPackageResponse(p *models.BookingPackage) api.PackageResponse {
	return api.PackageResponse{
		ID:               p.ID,
		StudentID:        p.StudentID,
		StudentName:      p.StudentName,
		TeacherID:        p.TeacherID,
		TeacherName:      p.TeacherName,
		Subject:          p.Subject,
		PackageType:      string(p.PackageKind),
		StartDate:        p.StartDate.Format(dateLayout),
		EndDate:          p.EndDate.Format(dateLayout),
		TotalClasses:     p.TotalClasses,
		PricePerClass:    p.PricePerClass,
		TotalPrice:       p.TotalPrice,
		DiscountPercent:  p.DiscountPercent,
		FinalPrice:       p.FinalPrice,
		SameTimeDaily:    p.SameTimeDaily,
		DefaultStartTime: p.DefaultStartTime,
		SelectedDays:     p.SelectedDays,
		Status:           string(p.Status),
		PaymentStatus:    string(p.PaymentStatus),
	}
}

func toSessionResponse(sess *models.PackageSession) api.SessionResponse {
	return api.SessionResponse{
		ID:              sess.ID,
		PackageID:       sess.PackageID,
		StudentID:       sess.StudentID,
		TeacherID:       sess.TeacherID,
		ScheduledDate:   sess.ScheduledDate.Format(dateLayout),
		ScheduledTime:   sess.ScheduledTime,
		DurationMinutes: sess.DurationMinutes,
		Status:          string(sess.Status),
		StudentJoined:   sess.StudentJoined,
		TeacherJoined:   sess.TeacherJoined,
	}
}

func toBookingResponse(b *models.Booking) *api.BookingResponse {
	return &api.BookingResponse{
		ID:           b.ID,
		TeacherID:    b.TeacherID,
		TeacherName:  b.TeacherName,
		StudentID:    b.StudentID,
		StudentName:  b.StudentName,
		StudentEmail: b.StudentEmail,
		Subject:      b.Subject,
		Date:         b.Date.Format(dateLayout),
		Time:         b.Time,
		Price:        b.Price,
		Status:       string(b.Status),
	}
}

func toPaymentResponse(p *models.Payment) api.PaymentResponse {
	resp := api.PaymentResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		UserName:        p.UserName,
		BookingID:       p.BookingID,
		RazorpayOrderID: p.RazorpayOrderID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.RazorpayPaymentID != nil {
		resp.RazorpayPaymentID = *p.RazorpayPaymentID
	}
	return resp
}

func toBookingResponses(bookings []*models.Booking) []api.BookingResponse {
	result := make([]api.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, *toBookingResponse(b))
	}
	return result
}
