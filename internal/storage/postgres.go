package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ CustomerStore = (*PostgresStore)(nil)

type PostgresStore struct {
	pool            *pgxpool.Pool
	defaultCurrency string
}

func NewPostgresStore(pool *pgxpool.Pool, defaultCurrency string) *PostgresStore {
	return &PostgresStore{pool: pool, defaultCurrency: defaultCurrency}
}

const pgUpsertCustomer = `
INSERT INTO customers (
	external_customer_id, first_name, last_name, email, phone,
	country, city, currency,
	last_order_id, last_order_amount, last_order_date, last_order_timezone
) VALUES (
	$1, $2, $3, $4, $5,
	$6, $7, COALESCE(NULLIF($8, ''), $13),
	$9, $10, $11, $12
)
ON CONFLICT (external_customer_id) DO UPDATE SET
	first_name          = COALESCE(NULLIF(EXCLUDED.first_name, ''), customers.first_name),
	last_name           = COALESCE(NULLIF(EXCLUDED.last_name, ''), customers.last_name),
	email               = COALESCE(NULLIF(EXCLUDED.email, ''), customers.email),
	phone               = COALESCE(NULLIF(EXCLUDED.phone, ''), customers.phone),
	country             = COALESCE(NULLIF(EXCLUDED.country, ''), customers.country),
	city                = COALESCE(NULLIF(EXCLUDED.city, ''), customers.city),
	currency            = COALESCE(NULLIF($8, ''), customers.currency),
	last_order_id       = COALESCE(EXCLUDED.last_order_id, customers.last_order_id),
	last_order_amount   = COALESCE(EXCLUDED.last_order_amount, customers.last_order_amount),
	last_order_date     = COALESCE(NULLIF(EXCLUDED.last_order_date, ''), customers.last_order_date),
	last_order_timezone = COALESCE(NULLIF(EXCLUDED.last_order_timezone, ''), customers.last_order_timezone),
	updated_at          = NOW()
RETURNING id`

func (s *PostgresStore) Upsert(ctx context.Context, update CustomerUpdate) (int64, error) {
	id, err := s.upsert(ctx, update)
	if isUniqueViolation(err) {
		// insert raced another delivery for the same id; the conflict
		// target now exists, so a second attempt merges instead
		id, err = s.upsert(ctx, update)
	}
	if err != nil {
		return 0, fmt.Errorf("upsert customer: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) upsert(ctx context.Context, u CustomerUpdate) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, pgUpsertCustomer,
		u.ExternalCustomerID, u.FirstName, u.LastName, u.Email, u.Phone,
		u.Country, u.City, u.Currency,
		u.LastOrderID, u.LastOrderAmount, u.LastOrderDate, u.LastOrderTimezone,
		s.defaultCurrency,
	).Scan(&id)
	return id, err
}

const pgGetCustomer = `
SELECT id, external_customer_id, first_name, last_name, email, phone,
	country, city, currency,
	last_order_id, last_order_amount, last_order_date, last_order_timezone,
	created_at, updated_at
FROM customers
WHERE external_customer_id = $1`

func (s *PostgresStore) Get(ctx context.Context, externalCustomerID int64) (*CustomerRecord, error) {
	var rec CustomerRecord
	err := s.pool.QueryRow(ctx, pgGetCustomer, externalCustomerID).Scan(
		&rec.ID, &rec.ExternalCustomerID,
		&rec.FirstName, &rec.LastName, &rec.Email, &rec.Phone,
		&rec.Country, &rec.City, &rec.Currency,
		&rec.LastOrderID, &rec.LastOrderAmount, &rec.LastOrderDate, &rec.LastOrderTimezone,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	const uniqueViolationCode = "23505"
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
