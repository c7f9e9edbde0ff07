package list

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

type PackageLister interface {
	ListStudentPackages(ctx context.Context, studentID string) ([]api.PackageResponse, error)
}

type Response struct {
	response.Response
	Packages []api.PackageResponse `json:"packages"`
}

func New(log *slog.Logger, lister PackageLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.packages.list.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		studentID := chi.URLParam(r, "student_id")
		if studentID == "" {
			log.Error("student_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "student_id is required"))
			return
		}

		packages, err := lister.ListStudentPackages(r.Context(), studentID)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to list packages", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list packages"))
			return
		}

		log.Info("Packages retrieved", slog.Int("count", len(packages)))

		render.JSON(w, r, Response{
			Packages: packages,
		})
	}
}
