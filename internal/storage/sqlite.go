package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var _ CustomerStore = (*SQLiteStore)(nil)

// SQLiteStore backs the customer set with a local SQLite file.
// Suited to single-node and development deployments.
type SQLiteStore struct {
	db              *sql.DB
	defaultCurrency string
}

func NewSQLiteStore(db *sql.DB, defaultCurrency string) *SQLiteStore {
	return &SQLiteStore{db: db, defaultCurrency: defaultCurrency}
}

const sqliteUpsertCustomer = `
INSERT INTO customers (
	external_customer_id, first_name, last_name, email, phone,
	country, city, currency,
	last_order_id, last_order_amount, last_order_date, last_order_timezone
) VALUES (
	?, ?, ?, ?, ?,
	?, ?, COALESCE(NULLIF(?, ''), ?),
	?, ?, ?, ?
)
ON CONFLICT (external_customer_id) DO UPDATE SET
	first_name          = COALESCE(NULLIF(excluded.first_name, ''), first_name),
	last_name           = COALESCE(NULLIF(excluded.last_name, ''), last_name),
	email               = COALESCE(NULLIF(excluded.email, ''), email),
	phone               = COALESCE(NULLIF(excluded.phone, ''), phone),
	country             = COALESCE(NULLIF(excluded.country, ''), country),
	city                = COALESCE(NULLIF(excluded.city, ''), city),
	currency            = COALESCE(NULLIF(?, ''), currency),
	last_order_id       = COALESCE(excluded.last_order_id, last_order_id),
	last_order_amount   = COALESCE(excluded.last_order_amount, last_order_amount),
	last_order_date     = COALESCE(NULLIF(excluded.last_order_date, ''), last_order_date),
	last_order_timezone = COALESCE(NULLIF(excluded.last_order_timezone, ''), last_order_timezone),
	updated_at          = CURRENT_TIMESTAMP
RETURNING id`

func (s *SQLiteStore) Upsert(ctx context.Context, update CustomerUpdate) (int64, error) {
	id, err := s.upsert(ctx, update)
	if isConstraintViolation(err) {
		id, err = s.upsert(ctx, update)
	}
	if err != nil {
		return 0, fmt.Errorf("upsert customer: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) upsert(ctx context.Context, u CustomerUpdate) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, sqliteUpsertCustomer,
		u.ExternalCustomerID, u.FirstName, u.LastName, u.Email, u.Phone,
		u.Country, u.City, u.Currency, s.defaultCurrency,
		u.LastOrderID, u.LastOrderAmount, u.LastOrderDate, u.LastOrderTimezone,
		u.Currency,
	).Scan(&id)
	return id, err
}

const sqliteGetCustomer = `
SELECT id, external_customer_id, first_name, last_name, email, phone,
	country, city, currency,
	last_order_id, last_order_amount, last_order_date, last_order_timezone,
	created_at, updated_at
FROM customers
WHERE external_customer_id = ?`

func (s *SQLiteStore) Get(ctx context.Context, externalCustomerID int64) (*CustomerRecord, error) {
	var rec CustomerRecord
	err := s.db.QueryRowContext(ctx, sqliteGetCustomer, externalCustomerID).Scan(
		&rec.ID, &rec.ExternalCustomerID,
		&rec.FirstName, &rec.LastName, &rec.Email, &rec.Phone,
		&rec.Country, &rec.City, &rec.Currency,
		&rec.LastOrderID, &rec.LastOrderAmount, &rec.LastOrderDate, &rec.LastOrderTimezone,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
