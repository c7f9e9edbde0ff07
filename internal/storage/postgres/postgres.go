package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tutorhub-service/internal/models"
	"tutorhub-service/pkg/response"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// #### availability slots ####

// IsSlotFree treats a missing row as free; only an explicit record marked
// unavailable blocks the cell.
func (s *Storage) IsSlotFree(ctx context.Context, teacherID string, date time.Time, startTime string) (bool, error) {
	const op = "storage.postgres.IsSlotFree"

	var isAvailable bool
	err := s.db.QueryRowContext(ctx,
		`SELECT is_available FROM availability_slots
		WHERE teacher_id=$1 AND date=$2 AND start_time=$3`,
		teacherID, date, startTime,
	).Scan(&isAvailable)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return isAvailable, nil
}

func (s *Storage) GetBookedTimes(ctx context.Context, teacherID string, date time.Time) ([]string, error) {
	const op = "storage.postgres.GetBookedTimes"

	rows, err := s.db.QueryContext(ctx,
		`SELECT start_time FROM availability_slots
		WHERE teacher_id=$1 AND date=$2 AND is_available=FALSE`,
		teacherID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return times, nil
}

// ReserveSlot inserts exactly one unavailable slot record. A unique violation
// on (teacher_id, date, start_time) means someone else holds the cell and maps
// to ErrSlotNotAvailable; the row is never overwritten.
func (s *Storage) ReserveSlot(ctx context.Context, slot *models.AvailabilitySlot) (string, error) {
	const op = "storage.postgres.ReserveSlot"

	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO availability_slots
		(id, teacher_id, date, start_time, end_time, is_available,
		 booked_by_student_id, booked_by_student_name, booking_id, package_session_id, booking_kind)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, $8, $9, $10)`,
		slot.ID,
		slot.TeacherID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.BookedByStudentID,
		slot.BookedByStudentName,
		slot.BookingID,
		slot.PackageSessionID,
		string(slot.BookingKind),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return slot.ID, nil
}

// ReleaseSlot deletes the record, returning the cell to implicit availability.
// Releasing a cell that was never reserved is not an error.
func (s *Storage) ReleaseSlot(ctx context.Context, teacherID string, date time.Time, startTime string) error {
	const op = "storage.postgres.ReleaseSlot"

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM availability_slots
		WHERE teacher_id=$1 AND date=$2 AND start_time=$3`,
		teacherID, date, startTime,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) ReleaseSlotsByIDs(ctx context.Context, ids []string) error {
	const op = "storage.postgres.ReleaseSlotsByIDs"

	if len(ids) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM availability_slots WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### booking packages ####

func (s *Storage) CreatePackage(ctx context.Context, p *models.BookingPackage) (string, error) {
	const op = "storage.postgres.CreatePackage"

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO booking_packages
		(id, student_id, student_name, teacher_id, teacher_name, subject, package_kind,
		 start_date, end_date, total_classes, price_per_class, total_price,
		 discount_percent, final_price, same_time_daily, default_start_time,
		 selected_days, status, payment_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		p.ID, p.StudentID, p.StudentName, p.TeacherID, p.TeacherName, p.Subject,
		string(p.PackageKind), p.StartDate, p.EndDate, p.TotalClasses, p.PricePerClass,
		p.TotalPrice, p.DiscountPercent, p.FinalPrice, p.SameTimeDaily,
		p.DefaultStartTime, pq.Array(p.SelectedDays), string(p.Status), string(p.PaymentStatus),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return p.ID, nil
}

func (s *Storage) GetPackage(ctx context.Context, id string) (*models.BookingPackage, error) {
	const op = "storage.postgres.GetPackage"

	var p models.BookingPackage
	err := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, student_name, teacher_id, teacher_name, subject,
		 package_kind, start_date, end_date, total_classes, price_per_class,
		 total_price, discount_percent, final_price, same_time_daily,
		 default_start_time, selected_days, status, payment_status,
		 razorpay_order_id, razorpay_payment_id, created_at, updated_at
		FROM booking_packages WHERE id=$1`,
		id,
	).Scan(
		&p.ID, &p.StudentID, &p.StudentName, &p.TeacherID, &p.TeacherName, &p.Subject,
		&p.PackageKind, &p.StartDate, &p.EndDate, &p.TotalClasses, &p.PricePerClass,
		&p.TotalPrice, &p.DiscountPercent, &p.FinalPrice, &p.SameTimeDaily,
		&p.DefaultStartTime, pq.Array(&p.SelectedDays), &p.Status, &p.PaymentStatus,
		&p.RazorpayOrderID, &p.RazorpayPaymentID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (s *Storage) ListStudentPackages(ctx context.Context, studentID string) ([]*models.BookingPackage, error) {
	const op = "storage.postgres.ListStudentPackages"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, student_name, teacher_id, teacher_name, subject,
		 package_kind, start_date, end_date, total_classes, price_per_class,
		 total_price, discount_percent, final_price, same_time_daily,
		 default_start_time, selected_days, status, payment_status,
		 razorpay_order_id, razorpay_payment_id, created_at, updated_at
		FROM booking_packages WHERE student_id=$1
		ORDER BY created_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var packages []*models.BookingPackage
	for rows.Next() {
		var p models.BookingPackage
		err := rows.Scan(
			&p.ID, &p.StudentID, &p.StudentName, &p.TeacherID, &p.TeacherName, &p.Subject,
			&p.PackageKind, &p.StartDate, &p.EndDate, &p.TotalClasses, &p.PricePerClass,
			&p.TotalPrice, &p.DiscountPercent, &p.FinalPrice, &p.SameTimeDaily,
			&p.DefaultStartTime, pq.Array(&p.SelectedDays), &p.Status, &p.PaymentStatus,
			&p.RazorpayOrderID, &p.RazorpayPaymentID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		packages = append(packages, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return packages, nil
}

func (s *Storage) UpdatePackageStatus(ctx context.Context, id string, status models.PackageStatus) error {
	const op = "storage.postgres.UpdatePackageStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE booking_packages SET status=$1, updated_at=now() WHERE id=$2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) UpdatePackagePayment(ctx context.Context, id string, status models.PaymentStatus, orderID, paymentID *string) error {
	const op = "storage.postgres.UpdatePackagePayment"

	res, err := s.db.ExecContext(ctx,
		`UPDATE booking_packages
		SET payment_status=$1,
		    razorpay_order_id=COALESCE($2, razorpay_order_id),
		    razorpay_payment_id=COALESCE($3, razorpay_payment_id),
		    updated_at=now()
		WHERE id=$4`,
		string(status), orderID, paymentID, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeletePackage(ctx context.Context, id string) error {
	const op = "storage.postgres.DeletePackage"

	_, err := s.db.ExecContext(ctx, `DELETE FROM booking_packages WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### package sessions ####

func (s *Storage) CreateSession(ctx context.Context, sess *models.PackageSession) (string, error) {
	const op = "storage.postgres.CreateSession"

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO package_sessions
		(id, package_id, student_id, teacher_id, scheduled_date, scheduled_time,
		 duration_minutes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sess.ID, sess.PackageID, sess.StudentID, sess.TeacherID,
		sess.ScheduledDate, sess.ScheduledTime, sess.DurationMinutes, string(sess.Status),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return sess.ID, nil
}

func (s *Storage) GetSession(ctx context.Context, id string) (*models.PackageSession, error) {
	const op = "storage.postgres.GetSession"

	var sess models.PackageSession
	err := s.db.QueryRowContext(ctx,
		`SELECT id, package_id, student_id, teacher_id, scheduled_date, scheduled_time,
		 duration_minutes, status, student_joined, teacher_joined,
		 actual_start_time, actual_end_time, completed_at, created_at
		FROM package_sessions WHERE id=$1`,
		id,
	).Scan(
		&sess.ID, &sess.PackageID, &sess.StudentID, &sess.TeacherID,
		&sess.ScheduledDate, &sess.ScheduledTime, &sess.DurationMinutes, &sess.Status,
		&sess.StudentJoined, &sess.TeacherJoined,
		&sess.ActualStartTime, &sess.ActualEndTime, &sess.CompletedAt, &sess.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sess, nil
}

func (s *Storage) ListPackageSessions(ctx context.Context, packageID string) ([]*models.PackageSession, error) {
	const op = "storage.postgres.ListPackageSessions"

	return s.querySessions(ctx, op,
		`SELECT id, package_id, student_id, teacher_id, scheduled_date, scheduled_time,
		 duration_minutes, status, student_joined, teacher_joined,
		 actual_start_time, actual_end_time, completed_at, created_at
		FROM package_sessions WHERE package_id=$1
		ORDER BY scheduled_date ASC`,
		packageID,
	)
}

// ListFutureScheduledSessions returns sessions still in 'scheduled' status on
// or after the cutoff; cancellation touches only these.
func (s *Storage) ListFutureScheduledSessions(ctx context.Context, packageID string, from time.Time) ([]*models.PackageSession, error) {
	const op = "storage.postgres.ListFutureScheduledSessions"

	return s.querySessions(ctx, op,
		`SELECT id, package_id, student_id, teacher_id, scheduled_date, scheduled_time,
		 duration_minutes, status, student_joined, teacher_joined,
		 actual_start_time, actual_end_time, completed_at, created_at
		FROM package_sessions
		WHERE package_id=$1 AND scheduled_date >= $2 AND status='scheduled'
		ORDER BY scheduled_date ASC`,
		packageID, from,
	)
}

func (s *Storage) querySessions(ctx context.Context, op, query string, args ...any) ([]*models.PackageSession, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sessions []*models.PackageSession
	for rows.Next() {
		var sess models.PackageSession
		err := rows.Scan(
			&sess.ID, &sess.PackageID, &sess.StudentID, &sess.TeacherID,
			&sess.ScheduledDate, &sess.ScheduledTime, &sess.DurationMinutes, &sess.Status,
			&sess.StudentJoined, &sess.TeacherJoined,
			&sess.ActualStartTime, &sess.ActualEndTime, &sess.CompletedAt, &sess.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sessions = append(sessions, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sessions, nil
}

func (s *Storage) CancelFutureSessions(ctx context.Context, packageID string, from time.Time) error {
	const op = "storage.postgres.CancelFutureSessions"

	_, err := s.db.ExecContext(ctx,
		`UPDATE package_sessions SET status='cancelled'
		WHERE package_id=$1 AND scheduled_date >= $2 AND status='scheduled'`,
		packageID, from,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) UpdateSessionAttendance(ctx context.Context, id string, studentJoined, teacherJoined *bool, startedAt *time.Time) error {
	const op = "storage.postgres.UpdateSessionAttendance"

	res, err := s.db.ExecContext(ctx,
		`UPDATE package_sessions
		SET student_joined=COALESCE($1, student_joined),
		    teacher_joined=COALESCE($2, teacher_joined),
		    actual_start_time=COALESCE(actual_start_time, $3)
		WHERE id=$4`,
		studentJoined, teacherJoined, startedAt, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) CompleteSession(ctx context.Context, id string, at time.Time) error {
	const op = "storage.postgres.CompleteSession"

	res, err := s.db.ExecContext(ctx,
		`UPDATE package_sessions
		SET status='completed', actual_end_time=$1, completed_at=$1
		WHERE id=$2`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteSessionsByPackage(ctx context.Context, packageID string) error {
	const op = "storage.postgres.DeleteSessionsByPackage"

	_, err := s.db.ExecContext(ctx, `DELETE FROM package_sessions WHERE package_id=$1`, packageID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### single-session bookings ####

func (s *Storage) CreateBooking(ctx context.Context, b *models.Booking) (string, error) {
	const op = "storage.postgres.CreateBooking"

	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings
		(id, teacher_id, teacher_name, student_id, student_name, student_email,
		 subject, date, time, price, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		b.ID, b.TeacherID, b.TeacherName, b.StudentID, b.StudentName, b.StudentEmail,
		b.Subject, b.Date, b.Time, b.Price, string(b.Status),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return b.ID, nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	var b models.Booking
	err := s.db.QueryRowContext(ctx,
		`SELECT id, teacher_id, teacher_name, student_id, student_name, student_email,
		 subject, date, time, price, status, razorpay_order_id, razorpay_payment_id,
		 created_at, updated_at
		FROM bookings WHERE id=$1`,
		id,
	).Scan(
		&b.ID, &b.TeacherID, &b.TeacherName, &b.StudentID, &b.StudentName, &b.StudentEmail,
		&b.Subject, &b.Date, &b.Time, &b.Price, &b.Status,
		&b.RazorpayOrderID, &b.RazorpayPaymentID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &b, nil
}

func (s *Storage) ListTeacherBookings(ctx context.Context, teacherID string) ([]*models.Booking, error) {
	const op = "storage.postgres.ListTeacherBookings"

	return s.queryBookings(ctx, op,
		`SELECT id, teacher_id, teacher_name, student_id, student_name, student_email,
		 subject, date, time, price, status, razorpay_order_id, razorpay_payment_id,
		 created_at, updated_at
		FROM bookings WHERE teacher_id=$1 ORDER BY created_at DESC`,
		teacherID,
	)
}

func (s *Storage) ListStudentBookings(ctx context.Context, studentID string) ([]*models.Booking, error) {
	const op = "storage.postgres.ListStudentBookings"

	return s.queryBookings(ctx, op,
		`SELECT id, teacher_id, teacher_name, student_id, student_name, student_email,
		 subject, date, time, price, status, razorpay_order_id, razorpay_payment_id,
		 created_at, updated_at
		FROM bookings WHERE student_id=$1 ORDER BY created_at DESC`,
		studentID,
	)
}

func (s *Storage) queryBookings(ctx context.Context, op, query string, args ...any) ([]*models.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(
			&b.ID, &b.TeacherID, &b.TeacherName, &b.StudentID, &b.StudentName, &b.StudentEmail,
			&b.Subject, &b.Date, &b.Time, &b.Price, &b.Status,
			&b.RazorpayOrderID, &b.RazorpayPaymentID, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (s *Storage) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	const op = "storage.postgres.UpdateBookingStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) UpdateBookingPayment(ctx context.Context, id string, status models.BookingStatus, orderID, paymentID *string) error {
	const op = "storage.postgres.UpdateBookingPayment"

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings
		SET status=$1,
		    razorpay_order_id=COALESCE($2, razorpay_order_id),
		    razorpay_payment_id=COALESCE($3, razorpay_payment_id),
		    updated_at=now()
		WHERE id=$4`,
		string(status), orderID, paymentID, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteBooking(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteBooking"

	_, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### payments ####

func (s *Storage) CreatePayment(ctx context.Context, p *models.Payment) (string, error) {
	const op = "storage.postgres.CreatePayment"

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments
		(id, user_id, user_name, booking_id, razorpay_order_id, amount, currency, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.UserID, p.UserName, p.BookingID, p.RazorpayOrderID,
		p.Amount, p.Currency, string(p.Status),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return p.ID, nil
}

func (s *Storage) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	const op = "storage.postgres.GetPaymentByOrderID"

	var p models.Payment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, user_name, booking_id, razorpay_order_id,
		 razorpay_payment_id, razorpay_signature, amount, currency, status, created_at
		FROM payments WHERE razorpay_order_id=$1`,
		orderID,
	).Scan(
		&p.ID, &p.UserID, &p.UserName, &p.BookingID, &p.RazorpayOrderID,
		&p.RazorpayPaymentID, &p.RazorpaySignature, &p.Amount, &p.Currency,
		&p.Status, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (s *Storage) ListUserPayments(ctx context.Context, userID string) ([]*models.Payment, error) {
	const op = "storage.postgres.ListUserPayments"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, user_name, booking_id, razorpay_order_id,
		 razorpay_payment_id, razorpay_signature, amount, currency, status, created_at
		FROM payments WHERE user_id=$1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.UserName, &p.BookingID, &p.RazorpayOrderID,
			&p.RazorpayPaymentID, &p.RazorpaySignature, &p.Amount, &p.Currency,
			&p.Status, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payments, nil
}

func (s *Storage) UpdatePaymentStatus(ctx context.Context, orderID string, status models.OrderStatus, paymentID, signature *string) error {
	const op = "storage.postgres.UpdatePaymentStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE payments
		SET status=$1,
		    razorpay_payment_id=COALESCE($2, razorpay_payment_id),
		    razorpay_signature=COALESCE($3, razorpay_signature)
		WHERE razorpay_order_id=$4`,
		string(status), paymentID, signature, orderID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
