package order

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

type OrderCreator interface {
	CreateOrder(ctx context.Context, req *api.OrderCreateRequest) (*api.OrderCreateResponse, error)
}

type Request struct {
	api.OrderCreateRequest
}

type Response struct {
	response.Response
	Order api.OrderCreateResponse `json:"order,omitempty"`
}

func New(log *slog.Logger, creator OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.order.New"

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

		result, err := creator.CreateOrder(r.Context(), &req.OrderCreateRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), err.Error()))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if errors.Is(err, response.ErrUpstream) {
			log.Error("payment gateway failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error(string(response.UPSTREAM_FAILED), "payment gateway failed"))
			return
		}

		if err != nil {
			log.Error("Failed to create order", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create order"))
			return
		}

		log.Info("Order created", slog.String("order_id", result.OrderID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Order: *result,
		})
	}
}
