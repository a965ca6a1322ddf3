package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-commerce-fulfillment/internal/kafka"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/orders"
	"github.com/ariefcatur/go-commerce-fulfillment/internal/redisx"
)

type OrdersHandler struct {
	Engine    *orders.Engine
	Created   *kafkax.Producer
	Status    *kafkax.Producer
	Confirmed *kafkax.Producer
	Redis     *redis.Client
	Service   string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Put("/orders/{id}/status", h.updateOrderStatus)
	r.Post("/orders/{id}/confirm", h.confirmOrder)
}

func (h *OrdersHandler) publish(p *kafkax.Producer, r *http.Request, orderID, eventType string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, status orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]string{"status": string(status)})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.CustomerID == "" || len(in.Items) == 0 {
		respondErr(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.CreateOrder(ctx, in)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !res.Created {
		respond(w, http.StatusOK, res, res.Message)
		return
	}

	h.cacheStatus(ctx, res.OrderID, res.Status)
	h.publish(h.Created, r, res.OrderID, orders.EventOrderCreated, orders.OrderCreatedPayload{
		OrderID:    res.OrderID,
		CustomerID: in.CustomerID,
		Total:      res.Total,
		Status:     string(res.Status),
	})
	respond(w, http.StatusCreated, res, res.Message)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(orders.StatusPending)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Engine.ListByStatus(ctx, orders.Status(status))
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, list, "Retrieved orders successfully")
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Engine.Get(ctx, orderID)
	if err != nil {
		respondErr(w, http.StatusNotFound, "order not found")
		return
	}
	respond(w, http.StatusOK, o, "Order retrieved successfully")
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		respond(w, http.StatusOK, json.RawMessage(s), "")
		return
	}

	// fallback to the store
	o, err := h.Engine.Get(ctx, orderID)
	if err != nil {
		respondErr(w, http.StatusNotFound, "order not found")
		return
	}
	h.cacheStatus(ctx, orderID, o.Status)
	respond(w, http.StatusOK, map[string]string{"status": string(o.Status)}, "")
}

func (h *OrdersHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var body struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.UpdateStatus(ctx, orderID, body.Status)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.Updated {
		h.cacheStatus(ctx, orderID, res.Status)
		h.publish(h.Status, r, orderID, orders.EventOrderStatusChanged, orders.OrderStatusChangedPayload{
			OrderID: orderID,
			Status:  string(res.Status),
		})
	}
	respond(w, http.StatusOK, res, res.Message)
}

func (h *OrdersHandler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.Confirm(ctx, orderID)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.Confirmed {
		h.cacheStatus(ctx, orderID, orders.StatusConfirmed)
		h.publish(h.Confirmed, r, orderID, orders.EventOrderConfirmed, orders.OrderConfirmedPayload{
			OrderID: orderID,
		})
	}
	respond(w, http.StatusOK, res, res.Message)
}
