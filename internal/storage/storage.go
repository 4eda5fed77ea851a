package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

// CustomerRecord is the durable reconciled view of a platform customer.
// ExternalCustomerID is the natural key; exactly one record exists per id.
type CustomerRecord struct {
	ID                 int64  `json:"id"`
	ExternalCustomerID int64  `json:"external_customer_id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Country            string `json:"country"`
	City               string `json:"city"`
	Currency           string `json:"currency"`

	// Denormalized snapshot of the most recently observed order.
	// LastOrderDate is the platform's own timestamp string; timezone
	// interpretation belongs to readers, alongside LastOrderTimezone.
	LastOrderID       *int64   `json:"last_order_id"`
	LastOrderAmount   *float64 `json:"last_order_amount"`
	LastOrderDate     string   `json:"last_order_date,omitempty"`
	LastOrderTimezone string   `json:"last_order_timezone,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerUpdate carries the fields observed in one delivery.
// Empty strings and nil pointers mean "not observed"; they never
// erase previously stored values.
type CustomerUpdate struct {
	ExternalCustomerID int64
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	Country            string
	City               string
	Currency           string
	LastOrderID        *int64
	LastOrderAmount    *float64
	LastOrderDate      string
	LastOrderTimezone  string
}

type CustomerStore interface {
	// Upsert inserts or field-wise merges a record keyed by
	// ExternalCustomerID and returns the internal record id.
	// Concurrent upserts for the same id serialize; upserts for
	// different ids proceed independently.
	Upsert(ctx context.Context, update CustomerUpdate) (int64, error)

	// Get returns the record for an external customer id.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, externalCustomerID int64) (*CustomerRecord, error)

	Close() error

	Ping(ctx context.Context) error
}

type RateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}

// Backend bundles the cross-request concerns that need a shared store
// (currently only IP rate limiting).
type Backend interface {
	RateLimiter

	Close() error

	Ping(ctx context.Context) error
}
