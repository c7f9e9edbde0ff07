package list

import (
	"context"
	"log/slog"
	"net/http"

	"tutorhub-service/api"
	"tutorhub-service/pkg/response"
	"tutorhub-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingLister interface {
	ListTeacherBookings(ctx context.Context, teacherID string) ([]api.BookingResponse, error)
	ListStudentBookings(ctx context.Context, studentID string) ([]api.BookingResponse, error)
}

type Response struct {
	response.Response
	Bookings []api.BookingResponse `json:"bookings"`
}

// New serves both teacher and student listings; exactly one of the two URL
// params is present depending on the mounted route.
func New(log *slog.Logger, lister BookingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.list.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var (
			bookings []api.BookingResponse
			err      error
		)

		if teacherID := chi.URLParam(r, "teacher_id"); teacherID != "" {
			bookings, err = lister.ListTeacherBookings(r.Context(), teacherID)
		} else if studentID := chi.URLParam(r, "student_id"); studentID != "" {
			bookings, err = lister.ListStudentBookings(r.Context(), studentID)
		} else {
			log.Error("teacher_id and student_id are both empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "teacher_id or student_id is required"))
			return
		}

		if err != nil {
			log.Error("Failed to list bookings", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list bookings"))
			return
		}

		log.Info("Bookings retrieved", slog.Int("count", len(bookings)))

		render.JSON(w, r, Response{
			Bookings: bookings,
		})
	}
}
