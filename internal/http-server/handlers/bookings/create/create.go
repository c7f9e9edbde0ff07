package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"tutorhub-service/api"
	"tutorhub-service/internal/service"
	"tutorhub-service/pkg/response"
	"tutorhub-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type BookingCreator interface {
	CreateBooking(ctx context.Context, req *api.BookingCreateRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.BookingCreateRequest
}

type Response struct {
	response.Response
	Booking   api.BookingResponse `json:"booking,omitempty"`
	Conflicts []api.ConflictInfo  `json:"conflicts,omitempty"`
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.create.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		booking, err := creator.CreateBooking(r.Context(), &req.BookingCreateRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("slot is locked")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "resource is locked"))
			return
		}

		var conflictErr *service.SlotConflictError
		if errors.As(err, &conflictErr) {
			log.Error("slot is not available")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, Response{
				Response:  response.Error(string(response.SLOT_NOT_AVAILABLE), "slot is not available"),
				Conflicts: conflictErr.Conflicts,
			})
			return
		}

		if err != nil {
			log.Error("Failed to create booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create booking"))
			return
		}

		log.Info("Booking created", slog.String("booking_id", booking.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Booking: *booking,
		})
	}
}
