package models

import "time"

type PackageKind string

const (
	PackageSingle  PackageKind = "single"
	PackageWeekly  PackageKind = "weekly"
	PackageMonthly PackageKind = "monthly"
)

func (k PackageKind) Valid() bool {
	return k == PackageSingle || k == PackageWeekly || k == PackageMonthly
}

type PackageStatus string

const (
	PackageActive    PackageStatus = "active"
	PackagePaused    PackageStatus = "paused"
	PackageCompleted PackageStatus = "completed"
	PackageCancelled PackageStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid || p == PaymentFailed || p == PaymentRefunded
}

type SessionStatus string

const (
	SessionScheduled   SessionStatus = "scheduled"
	SessionCompleted   SessionStatus = "completed"
	SessionMissed      SessionStatus = "missed"
	SessionCancelled   SessionStatus = "cancelled"
	SessionRescheduled SessionStatus = "rescheduled"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (b BookingStatus) Valid() bool {
	return b == BookingPending || b == BookingConfirmed || b == BookingCancelled
}

type BookingKind string

const (
	BookingKindSingle  BookingKind = "single"
	BookingKindPackage BookingKind = "package"
)

type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

// AvailabilitySlot is one reserved (teacher, date, start_time) cell.
// A cell with no record is implicitly free; the unique constraint on the
// triple is what prevents double booking.
type AvailabilitySlot struct {
	ID                  string      `db:"id"`
	TeacherID           string      `db:"teacher_id"`
	Date                time.Time   `db:"date"`
	StartTime           string      `db:"start_time"`
	EndTime             string      `db:"end_time"`
	IsAvailable         bool        `db:"is_available"`
	BookedByStudentID   string      `db:"booked_by_student_id"`
	BookedByStudentName string      `db:"booked_by_student_name"`
	BookingID           *string     `db:"booking_id"`
	PackageSessionID    *string     `db:"package_session_id"`
	BookingKind         BookingKind `db:"booking_kind"`
	CreatedAt           time.Time   `db:"created_at"`
}

type BookingPackage struct {
	ID                string        `db:"id"`
	StudentID         string        `db:"student_id"`
	StudentName       string        `db:"student_name"`
	TeacherID         string        `db:"teacher_id"`
	TeacherName       string        `db:"teacher_name"`
	Subject           string        `db:"subject"`
	PackageKind       PackageKind   `db:"package_kind"`
	StartDate         time.Time     `db:"start_date"`
	EndDate           time.Time     `db:"end_date"`
	TotalClasses      int           `db:"total_classes"`
	PricePerClass     float64       `db:"price_per_class"`
	TotalPrice        float64       `db:"total_price"`
	DiscountPercent   int           `db:"discount_percent"`
	FinalPrice        float64       `db:"final_price"`
	SameTimeDaily     bool          `db:"same_time_daily"`
	DefaultStartTime  string        `db:"default_start_time"`
	SelectedDays      []string      `db:"selected_days"`
	Status            PackageStatus `db:"status"`
	PaymentStatus     PaymentStatus `db:"payment_status"`
	RazorpayOrderID   *string       `db:"razorpay_order_id"`
	RazorpayPaymentID *string       `db:"razorpay_payment_id"`
	CreatedAt         time.Time     `db:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at"`
}

type PackageSession struct {
	ID              string        `db:"id"`
	PackageID       string        `db:"package_id"`
	StudentID       string        `db:"student_id"`
	TeacherID       string        `db:"teacher_id"`
	ScheduledDate   time.Time     `db:"scheduled_date"`
	ScheduledTime   string        `db:"scheduled_time"`
	DurationMinutes int           `db:"duration_minutes"`
	Status          SessionStatus `db:"status"`
	StudentJoined   bool          `db:"student_joined"`
	TeacherJoined   bool          `db:"teacher_joined"`
	ActualStartTime *time.Time    `db:"actual_start_time"`
	ActualEndTime   *time.Time    `db:"actual_end_time"`
	CompletedAt     *time.Time    `db:"completed_at"`
	CreatedAt       time.Time     `db:"created_at"`
}

type Booking struct {
	ID                string        `db:"id"`
	TeacherID         string        `db:"teacher_id"`
	TeacherName       string        `db:"teacher_name"`
	StudentID         string        `db:"student_id"`
	StudentName       string        `db:"student_name"`
	StudentEmail      string        `db:"student_email"`
	Subject           string        `db:"subject"`
	Date              time.Time     `db:"date"`
	Time              string        `db:"time"`
	Price             float64       `db:"price"`
	Status            BookingStatus `db:"status"`
	RazorpayOrderID   *string       `db:"razorpay_order_id"`
	RazorpayPaymentID *string       `db:"razorpay_payment_id"`
	CreatedAt         time.Time     `db:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at"`
}

type Payment struct {
	ID                string      `db:"id"`
	UserID            string      `db:"user_id"`
	UserName          string      `db:"user_name"`
	BookingID         string      `db:"booking_id"`
	RazorpayOrderID   string      `db:"razorpay_order_id"`
	RazorpayPaymentID *string     `db:"razorpay_payment_id"`
	RazorpaySignature *string     `db:"razorpay_signature"`
	Amount            float64     `db:"amount"`
	Currency          string      `db:"currency"`
	Status            OrderStatus `db:"status"`
	CreatedAt         time.Time   `db:"created_at"`
}
