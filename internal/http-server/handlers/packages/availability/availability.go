package availability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"tutorhub-service/api"
	"tutorhub-service/pkg/response"
	"tutorhub-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, req *api.AvailabilityCheckRequest) (*api.AvailabilityCheckResponse, error)
}

type Request struct {
	api.AvailabilityCheckRequest
}

type Response struct {
	response.Response
	Available    []api.SlotRequest  `json:"available"`
	Conflicts    []api.ConflictInfo `json:"conflicts"`
	HasConflicts bool               `json:"has_conflicts"`
}

func New(log *slog.Logger, checker AvailabilityChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.packages.availability.New"

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

		result, err := checker.CheckAvailability(r.Context(), &req.AvailabilityCheckRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to check availability", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to check availability"))
			return
		}

		log.Info("Availability checked",
			slog.Int("available", len(result.Available)),
			slog.Int("conflicts", len(result.Conflicts)),
		)

		render.JSON(w, r, Response{
			Available:    result.Available,
			Conflicts:    result.Conflicts,
			HasConflicts: result.HasConflicts,
		})
	}
}
