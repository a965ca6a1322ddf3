package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/customers"
)

type CustomersHandler struct {
	Repo *customers.Repo
}

func (h *CustomersHandler) Register(r *chi.Mux) {
	r.Get("/customers", h.list)
	r.Post("/customers", h.create)
	r.Get("/customers/{id}", h.get)
	r.Put("/customers/{id}", h.update)
	r.Delete("/customers/{id}", h.delete)
}

func (h *CustomersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Repo.List(ctx)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, cs, "Retrieved customers successfully")
}

func (h *CustomersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Repo.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, customers.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, c, "Customer retrieved successfully")
}

func (h *CustomersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in customers.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Name == "" || in.Email == "" {
		respondErr(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := h.Repo.Insert(ctx, in)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusCreated, map[string]string{"id": id}, "Customer created successfully")
}

func (h *CustomersHandler) update(w http.ResponseWriter, r *http.Request) {
	var in customers.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Repo.Update(ctx, chi.URLParam(r, "id"), in)
	if errors.Is(err, customers.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, nil, "Customer updated successfully")
}

func (h *CustomersHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Repo.SoftDelete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, customers.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, nil, "Customer deleted successfully")
}
