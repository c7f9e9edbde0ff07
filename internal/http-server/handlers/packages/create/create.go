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

type PackageCreator interface {
	CreatePackage(ctx context.Context, req *api.PackageCreateRequest) (*api.PackageCreateResponse, error)
}

type Request struct {
	api.PackageCreateRequest
}

type Response struct {
	response.Response
	Package   api.PackageResponse   `json:"package,omitempty"`
	Sessions  []api.SessionResponse `json:"sessions,omitempty"`
	Pricing   api.PricingResponse   `json:"pricing,omitempty"`
	Conflicts []api.ConflictInfo    `json:"conflicts,omitempty"`
}

func New(log *slog.Logger, creator PackageCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.packages.create.New"

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

		result, err := creator.CreatePackage(r.Context(), &req.PackageCreateRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("teacher schedule is locked")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "resource is locked"))
			return
		}

		var conflictErr *service.SlotConflictError
		if errors.As(err, &conflictErr) {
			log.Error("slots are not available", slog.Int("conflicts", len(conflictErr.Conflicts)))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, Response{
				Response:  response.Error(string(response.SLOT_NOT_AVAILABLE), "some slots are already booked"),
				Conflicts: conflictErr.Conflicts,
			})
			return
		}

		if err != nil {
			log.Error("Failed to create package", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create package"))
			return
		}

		log.Info("Package created",
			slog.String("package_id", result.Package.ID),
			slog.Int("sessions", len(result.Sessions)),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Package:  result.Package,
			Sessions: result.Sessions,
			Pricing:  result.Pricing,
		})
	}
}
