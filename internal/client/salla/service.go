package salla

import "context"

type OrderService interface {
	Get(ctx context.Context, id int64) (*Order, error)
}

type CustomerService interface {
	Get(ctx context.Context, id int64) (*Customer, error)
}

type WebhookService interface {
	// Register subscribes the given URL to one event.
	// The platform echoes the assigned subscription id.
	Register(ctx context.Context, reg Registration) (*Subscription, error)
}
