package payment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres builds the pgx-backed payment repository.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const paymentColumns = `id::text, order_id, method, provider_ref, status, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, in CreatePaymentInput) (*domain.Payment, error) {
	const q = `
INSERT INTO payments (order_id, method, provider_ref, status)
VALUES ($1, $2, $3, $4)
RETURNING ` + paymentColumns
	status := in.Status
	if status == "" {
		status = domain.PaymentStatusPending
	}
	row := r.pool.QueryRow(ctx, q, in.OrderID, string(in.Method), in.ProviderRef, string(status))
	return scanPayment(row)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	const q = `
SELECT ` + paymentColumns + `
FROM payments
WHERE id = $1
`
	p, err := scanPayment(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetByOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	const q = `
SELECT ` + paymentColumns + `
FROM payments
WHERE order_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *postgresRepo) GetPending(ctx context.Context, orderID string, method domain.PaymentMethod) (*domain.Payment, error) {
	const q = `
SELECT ` + paymentColumns + `
FROM payments
WHERE order_id = $1 AND method = $2 AND status = 'pending'
ORDER BY created_at DESC
LIMIT 1
`
	p, err := scanPayment(r.pool.QueryRow(ctx, q, orderID, string(method)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// MarkStatus moves a pending payment into the given status. It reports false
// without error when the payment already reached a terminal state, keeping
// confirmation idempotent across the poller, the return callback and manual
// confirm.
func (r *postgresRepo) MarkStatus(ctx context.Context, id string, status domain.PaymentStatus) (bool, error) {
	const q = `
UPDATE payments
SET status = $2, updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING id::text
`
	var updated string
	err := r.pool.QueryRow(ctx, q, id, string(status)).Scan(&updated)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	// No pending row: either the payment is terminal (no-op) or absent.
	const existsQ = `SELECT status FROM payments WHERE id = $1`
	var current string
	if err := r.pool.QueryRow(ctx, existsQ, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return false, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	var method, status string
	if err := row.Scan(&p.ID, &p.OrderID, &method, &p.ProviderRef, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Method = domain.PaymentMethod(method)
	p.Status = domain.PaymentStatus(status)
	return &p, nil
}
