package api

import "github.com/go-playground/validator/v10"

var Validate = validator.New()

type SlotRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required"`
	EndTime string `json:"end_time,omitempty"`
}

type AvailabilityCheckRequest struct {
	TeacherID string        `json:"teacher_id" validate:"required"`
	Slots     []SlotRequest `json:"slots" validate:"required,min=1,dive"`
}

type ConflictInfo struct {
	Slot         SlotRequest `json:"slot"`
	Reason       string      `json:"reason"`
	Alternatives []string    `json:"alternatives"`
}

type AvailabilityCheckResponse struct {
	Available    []SlotRequest  `json:"available"`
	Conflicts    []ConflictInfo `json:"conflicts"`
	HasConflicts bool           `json:"has_conflicts"`
}

type PackageCreateRequest struct {
	StudentID        string   `json:"student_id" validate:"required"`
	StudentName      string   `json:"student_name" validate:"required"`
	TeacherID        string   `json:"teacher_id" validate:"required"`
	TeacherName      string   `json:"teacher_name"`
	Subject          string   `json:"subject"`
	PackageType      string   `json:"package_type" validate:"required,oneof=single weekly monthly"`
	SelectedDays     []string `json:"selected_days" validate:"required,min=1"`
	SameTimeDaily    bool     `json:"same_time_daily"`
	DefaultStartTime string   `json:"default_start_time" validate:"required"`
	PricePerClass    float64  `json:"price_per_class" validate:"required,gt=0"`
	StartDate        string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

type PricingResponse struct {
	BasePrice       float64 `json:"base_price"`
	TotalClasses    int     `json:"total_classes"`
	TotalPrice      float64 `json:"total_price"`
	DiscountPercent int     `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	FinalPrice      float64 `json:"final_price"`
}

type PackageResponse struct {
	ID               string   `json:"id"`
	StudentID        string   `json:"student_id"`
	StudentName      string   `json:"student_name"`
	TeacherID        string   `json:"teacher_id"`
	TeacherName      string   `json:"teacher_name"`
	Subject          string   `json:"subject"`
	PackageType      string   `json:"package_type"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	TotalClasses     int      `json:"total_classes"`
	PricePerClass    float64  `json:"price_per_class"`
	TotalPrice       float64  `json:"total_price"`
	DiscountPercent  int      `json:"discount_percent"`
	FinalPrice       float64  `json:"final_price"`
	SameTimeDaily    bool     `json:"same_time_daily"`
	DefaultStartTime string   `json:"default_start_time"`
	SelectedDays     []string `json:"selected_days"`
	Status           string   `json:"status"`
	PaymentStatus    string   `json:"payment_status"`
}

type SessionResponse struct {
	ID              string `json:"id"`
	PackageID       string `json:"package_id"`
	StudentID       string `json:"student_id"`
	TeacherID       string `json:"teacher_id"`
	ScheduledDate   string `json:"scheduled_date"`
	ScheduledTime   string `json:"scheduled_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	StudentJoined   bool   `json:"student_joined"`
	TeacherJoined   bool   `json:"teacher_joined"`
}

type PackageCreateResponse struct {
	Package  PackageResponse   `json:"package"`
	Sessions []SessionResponse `json:"sessions"`
	Pricing  PricingResponse   `json:"pricing"`
}

type PackageDetailResponse struct {
	Package  PackageResponse   `json:"package"`
	Sessions []SessionResponse `json:"sessions"`
}

type PackagePaymentUpdateRequest struct {
	PaymentStatus     string `json:"payment_status" validate:"required,oneof=pending paid failed refunded"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
}

type BookingCreateRequest struct {
	TeacherID    string  `json:"teacher_id" validate:"required"`
	TeacherName  string  `json:"teacher_name" validate:"required"`
	StudentID    string  `json:"student_id" validate:"required"`
	StudentName  string  `json:"student_name" validate:"required"`
	StudentEmail string  `json:"student_email" validate:"required,email"`
	Subject      string  `json:"subject" validate:"required"`
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string  `json:"time" validate:"required"`
	Price        float64 `json:"price" validate:"required,gt=0"`
}

type BookingResponse struct {
	ID           string  `json:"id"`
	TeacherID    string  `json:"teacher_id"`
	TeacherName  string  `json:"teacher_name"`
	StudentID    string  `json:"student_id"`
	StudentName  string  `json:"student_name"`
	StudentEmail string  `json:"student_email"`
	Subject      string  `json:"subject"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Price        float64 `json:"price"`
	Status       string  `json:"status"`
}

type BookingStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

type SessionAttendanceRequest struct {
	StudentJoined *bool `json:"student_joined,omitempty"`
	TeacherJoined *bool `json:"teacher_joined,omitempty"`
	Completed     bool  `json:"completed,omitempty"`
}

type DaySlotsResponse struct {
	TeacherID string   `json:"teacher_id"`
	Date      string   `json:"date"`
	Free      []string `json:"free"`
}

type OrderCreateRequest struct {
	BookingID string  `json:"booking_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

type OrderCreateResponse struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	KeyID    string  `json:"key_id"`
}

type PaymentVerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	BookingID         string `json:"booking_id"`
}

type PaymentFailureRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	BookingID string `json:"booking_id"`
}

type PaymentResponse struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	UserName          string  `json:"user_name"`
	BookingID         string  `json:"booking_id"`
	RazorpayOrderID   string  `json:"razorpay_order_id"`
	RazorpayPaymentID string  `json:"razorpay_payment_id,omitempty"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"created_at"`
}
