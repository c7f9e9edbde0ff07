package history

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

type HistoryLister interface {
	ListUserPayments(ctx context.Context, userID string) ([]api.PaymentResponse, error)
}

type Response struct {
	response.Response
	Payments []api.PaymentResponse `json:"payments"`
}

func New(log *slog.Logger, lister HistoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.history.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID := chi.URLParam(r, "user_id")
		if userID == "" {
			log.Error("user_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "user_id is required"))
			return
		}

		payments, err := lister.ListUserPayments(r.Context(), userID)

		if err != nil {
			log.Error("Failed to list payments", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list payments"))
			return
		}

		log.Info("Payments retrieved",
			slog.String("user_id", userID),
			slog.Int("count", len(payments)),
		)

		render.JSON(w, r, Response{
			Payments: payments,
		})
	}
}
