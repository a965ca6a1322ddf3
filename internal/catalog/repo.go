package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

var ErrNotFound = errors.New("product not found")

// Repo is the catalog's single-table CRUD surface. Deletes are soft: the
// row keeps its id so order items can still reference it.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, description, price, stock FROM products
		WHERE is_deleted = FALSE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, description, price, stock FROM products
		WHERE id = $1 AND is_deleted = FALSE`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *Repo) Insert(ctx context.Context, in ProductInput) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, description, price, stock, is_deleted)
		VALUES ($1, $2, $3, $4, $5, FALSE)`,
		id, in.Name, in.Description, in.Price, in.Stock)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repo) Update(ctx context.Context, id string, in ProductInput) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name = $2, description = $3, price = $4, stock = $5
		WHERE id = $1 AND is_deleted = FALSE`,
		id, in.Name, in.Description, in.Price, in.Stock)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SoftDelete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET is_deleted = TRUE
		WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
