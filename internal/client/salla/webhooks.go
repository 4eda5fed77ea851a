package salla

import (
	"context"
	"net/http"
)

type webhookService struct {
	client *Client
}

func (s *webhookService) Register(ctx context.Context, reg Registration) (*Subscription, error) {
	const route = "/webhooks/subscribe"

	var sub Subscription
	if err := s.client.do(ctx, http.MethodPost, route, reg, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
