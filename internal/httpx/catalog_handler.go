package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-commerce-fulfillment/internal/catalog"
)

type CatalogHandler struct {
	Repo *catalog.Repo
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Post("/products", h.create)
	r.Get("/products/{id}", h.get)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.List(ctx)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, ps, "Retrieved products successfully")
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, p, "Product retrieved successfully")
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Name == "" || in.Price.IsNegative() || in.Stock < 0 {
		respondErr(w, http.StatusBadRequest, "missing or invalid fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := h.Repo.Insert(ctx, in)
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusCreated, map[string]string{"id": id}, "Product created successfully")
}

func (h *CatalogHandler) update(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Repo.Update(ctx, chi.URLParam(r, "id"), in)
	if errors.Is(err, catalog.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, nil, "Product updated successfully")
}

func (h *CatalogHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Repo.SoftDelete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		respondErr(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		respondErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, nil, "Product deleted successfully")
}
