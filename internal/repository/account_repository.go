package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmeet/eventhub/internal/domain"
)

// Schema:
//
//	CREATE TABLE accounts (
//	    id            bigserial PRIMARY KEY,
//	    role          text        NOT NULL,
//	    email         text        NOT NULL UNIQUE,
//	    password_hash text        NOT NULL,
//	    name          text        NOT NULL,
//	    created_at    timestamptz NOT NULL DEFAULT now(),
//	    updated_at    timestamptz NOT NULL DEFAULT now()
//	);
type AccountRepository interface {
	Create(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	UpdateRole(ctx context.Context, id int64, role string) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountCols = `id, role, email, password_hash, name, created_at, updated_at`

const uniqueViolation = "23505"

func (r *accountRepository) Create(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.Account, error) {
	const q = `
		INSERT INTO accounts (role, email, password_hash, name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + accountCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Account
	err := r.pool.QueryRow(ctx, q, req.Role, req.Email, passwordHash, req.Name).Scan(
		&a.ID, &a.Role, &a.Email, &a.PasswordHash, &a.Name, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.NewConflictError("account with this email already exists")
		}
		return nil, err
	}

	return &a, nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Account
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&a.ID, &a.Role, &a.Email, &a.PasswordHash, &a.Name, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &a, err
}

func (r *accountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Account
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.Role, &a.Email, &a.PasswordHash, &a.Name, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &a, err
}

func (r *accountRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	const q = `UPDATE accounts SET role = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, role)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("account not found")
	}

	return nil
}
