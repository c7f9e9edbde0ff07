package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"tutorhub-service/api"
	"tutorhub-service/pkg/response"
	"tutorhub-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type SlotsGetter interface {
	GetTeacherDaySlots(ctx context.Context, teacherID, date string) (*api.DaySlotsResponse, error)
}

type Response struct {
	response.Response
	TeacherID string   `json:"teacher_id"`
	Date      string   `json:"date"`
	Free      []string `json:"free"`
}

func New(log *slog.Logger, getter SlotsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		teacherID := chi.URLParam(r, "teacher_id")
		if teacherID == "" {
			log.Error("teacher_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "teacher_id is required"))
			return
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			log.Error("date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date is required"))
			return
		}

		slots, err := getter.GetTeacherDaySlots(r.Context(), teacherID, date)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to get slots", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get slots"))
			return
		}

		log.Info("Slots retrieved",
			slog.String("teacher_id", teacherID),
			slog.String("date", date),
			slog.Int("free", len(slots.Free)),
		)

		render.JSON(w, r, Response{
			TeacherID: slots.TeacherID,
			Date:      slots.Date,
			Free:      slots.Free,
		})
	}
}
