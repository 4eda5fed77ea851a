package salla

import (
	"context"
	"fmt"
	"net/http"
)

type customerService struct {
	client *Client
}

func (s *customerService) Get(ctx context.Context, id int64) (*Customer, error) {
	route := fmt.Sprintf("/customers/%d", id)

	var customer Customer
	if err := s.client.do(ctx, http.MethodGet, route, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}
