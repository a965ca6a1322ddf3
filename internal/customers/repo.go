package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

var ErrNotFound = errors.New("customer not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, email, address FROM customers
		WHERE is_deleted = FALSE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Address); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Customer, error) {
	var c Customer
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, email, address FROM customers
		WHERE id = $1 AND is_deleted = FALSE`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

func (r *Repo) Insert(ctx context.Context, in CustomerInput) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO customers(id, name, email, address, is_deleted)
		VALUES ($1, $2, $3, $4, FALSE)`,
		id, in.Name, in.Email, in.Address)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repo) Update(ctx context.Context, id string, in CustomerInput) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE customers SET name = $2, email = $3, address = $4
		WHERE id = $1 AND is_deleted = FALSE`,
		id, in.Name, in.Email, in.Address)
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
		UPDATE customers SET is_deleted = TRUE
		WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
