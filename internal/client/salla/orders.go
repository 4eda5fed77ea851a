package salla

import (
	"context"
	"fmt"
	"net/http"
)

type orderService struct {
	client *Client
}

func (s *orderService) Get(ctx context.Context, id int64) (*Order, error) {
	route := fmt.Sprintf("/orders/%d", id)

	var order Order
	if err := s.client.do(ctx, http.MethodGet, route, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
