package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	kafkax "github.com/ariefcatur/go-commerce-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/orders"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/payments"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/store"
)

type PaymentsHandler struct {
	Engine    *payments.Engine
	Orders    *OrdersHandler // reuses its publish plumbing
	Processed *kafkax.Producer
	Status    *kafkax.Producer
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/payments", h.makePayment)
	r.Get("/payments/{id}", h.getPayment)
	r.Put("/payments/{id}/status", h.updatePaymentStatus)
}

func (h *PaymentsHandler) makePayment(w http.ResponseWriter, r *http.Request) {
	var in payments.CreatePaymentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.OrderID == "" || in.Method == "" {
		respondErr(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.Create(ctx, in)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.Created {
		h.Orders.publish(h.Processed, r, in.OrderID, orders.EventPaymentProcessed, orders.PaymentProcessedPayload{
			OrderID:   in.OrderID,
			PaymentID: res.PaymentID,
			Amount:    in.Amount,
			Status:    string(res.Status),
		})
	}
	respond(w, http.StatusOK, res, res.Message)
}

func (h *PaymentsHandler) getPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Engine.Get(ctx, paymentID)
	if errors.Is(err, store.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "payment not found")
		return
	}
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, p, "Payment retrieved successfully")
}

func (h *PaymentsHandler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")

	var body struct {
		Status payments.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.UpdateStatus(ctx, paymentID, body.Status)
	if err != nil {
		// includes the missing-payment case, which is an error, not a rejection
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.Updated {
		p, perr := h.Engine.Get(ctx, paymentID)
		if perr == nil {
			h.Orders.publish(h.Status, r, p.OrderID, orders.EventPaymentStatusChanged, orders.PaymentStatusChangedPayload{
				OrderID:   p.OrderID,
				PaymentID: paymentID,
				Status:    string(res.Status),
			})
		}
	}
	respond(w, http.StatusOK, res, res.Message)
}
