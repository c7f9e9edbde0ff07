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

type PackageGetter interface {
	GetPackage(ctx context.Context, id string) (*api.PackageDetailResponse, error)
}

type Response struct {
	response.Response
	Package  api.PackageResponse   `json:"package,omitempty"`
	Sessions []api.SessionResponse `json:"sessions,omitempty"`
}

func New(log *slog.Logger, getter PackageGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.packages.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		detail, err := getter.GetPackage(r.Context(), id)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to get package", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get package"))
			return
		}

		log.Info("Package retrieved", slog.String("package_id", id))

		render.JSON(w, r, Response{
			Package:  detail.Package,
			Sessions: detail.Sessions,
		})
	}
}
