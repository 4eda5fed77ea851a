package salla

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	opts = append([]Option{WithBaseURL(srv.URL)}, opts...)
	return New(source, opts...)
}

func TestOrdersGet(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/orders/123456" {
			t.Errorf("path = %s, want /orders/123456", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want Bearer test-token", got)
		}

		_ = go_json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"id":           123456,
				"reference_id": 41255233,
				"status":       map[string]any{"name": "بإنتظار المراجعة", "slug": "under_review"},
				"amounts": map[string]any{
					"total": map[string]any{"amount": 150.50, "currency": "SAR"},
				},
				"date":        map[string]any{"date": "2024-05-01 10:30:00.000000", "timezone": "Asia/Riyadh"},
				"items_count": 3,
				"customer":    map[string]any{"id": 789, "first_name": "Ahmed"},
			},
		})
	})

	got, err := client.Orders.Get(t.Context(), 123456)
	if err != nil {
		t.Fatalf("Orders.Get() unexpected error: %v", err)
	}

	want := &Order{
		ID:          123456,
		ReferenceID: 41255233,
		Status:      OrderStatus{Name: "بإنتظار المراجعة", Slug: "under_review"},
		Amounts:     OrderAmounts{Total: Money{Amount: 150.50, Currency: "SAR"}},
		Date:        DateTime{Date: "2024-05-01 10:30:00.000000", Timezone: "Asia/Riyadh"},
		ItemsCount:  3,
		Customer:    Customer{ID: 789, FirstName: "Ahmed"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomersGet(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customers/789" {
			t.Errorf("path = %s, want /customers/789", r.URL.Path)
		}
		_ = go_json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"id":          789,
				"first_name":  "Ahmed",
				"last_name":   "Ali",
				"email":       "a@x.com",
				"mobile_code": "+966",
				"mobile":      "501234567",
				"country":     "SA",
				"city":        "Riyadh",
				"currency":    "SAR",
			},
		})
	})

	got, err := client.Customers.Get(t.Context(), 789)
	if err != nil {
		t.Fatalf("Customers.Get() unexpected error: %v", err)
	}

	want := &Customer{
		ID:         789,
		FirstName:  "Ahmed",
		LastName:   "Ali",
		Email:      "a@x.com",
		MobileCode: "+966",
		Mobile:     "501234567",
		Country:    "SA",
		City:       "Riyadh",
		Currency:   "SAR",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("customer mismatch (-want +got):\n%s", diff)
	}
}

func TestWebhooksRegister(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/webhooks/subscribe" {
			t.Errorf("path = %s, want /webhooks/subscribe", r.URL.Path)
		}

		var reg Registration
		if err := go_json.NewDecoder(r.Body).Decode(&reg); err != nil {
			t.Errorf("decoding registration: %v", err)
		}

		_ = go_json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": Subscription{
				ID:      42,
				Name:    reg.Name,
				Event:   reg.Event,
				URL:     reg.URL,
				Version: reg.Version,
			},
		})
	})

	got, err := client.Webhooks.Register(t.Context(), Registration{
		Name:    "sallasync",
		Event:   "order.created",
		URL:     "https://example.com/webhooks/salla",
		Version: 2,
	})
	if err != nil {
		t.Fatalf("Webhooks.Register() unexpected error: %v", err)
	}
	if got.ID != 42 || got.Event != "order.created" {
		t.Errorf("subscription = %+v, want id 42 event order.created", got)
	}
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		handler       http.HandlerFunc
		wantKind      ErrorKind
		wantRetryable bool
	}{
		{
			name: "401 unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"message":"invalid token"}}`))
			},
			wantKind: ErrorKindUnauthorized,
		},
		{
			name: "403 unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			wantKind: ErrorKindUnauthorized,
		},
		{
			name: "404 not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantKind: ErrorKindNotFound,
		},
		{
			name: "429 rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantKind:      ErrorKindRateLimited,
			wantRetryable: true,
		},
		{
			name: "500 server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantKind:      ErrorKindServerError,
			wantRetryable: true,
		},
		{
			name: "2xx with success=false",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"success":false,"data":null}`))
			},
			wantKind: ErrorKindRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, tt.handler)

			_, err := client.Orders.Get(t.Context(), 1)
			if err == nil {
				t.Fatal("Orders.Get() expected error, got nil")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not *APIError", err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", apiErr.Kind, tt.wantKind)
			}
			if apiErr.Retryable() != tt.wantRetryable {
				t.Errorf("Retryable() = %t, want %t", apiErr.Retryable(), tt.wantRetryable)
			}
		})
	}
}

func TestErrorMessageFromBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"token expired"}}`))
	})

	_, err := client.Customers.Get(t.Context(), 1)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not *APIError", err)
	}
	if apiErr.Message != "token expired" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "token expired")
	}
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}, WithTimeout(50*time.Millisecond))

	_, err := client.Orders.Get(t.Context(), 1)
	if err == nil {
		t.Fatal("Orders.Get() expected timeout error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not *APIError", err)
	}
	if apiErr.Kind != ErrorKindTimeout {
		t.Errorf("Kind = %s, want %s", apiErr.Kind, ErrorKindTimeout)
	}
	if !apiErr.Retryable() {
		t.Error("Retryable() = false, want true for timeout")
	}
}

func TestConnectionError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	client := New(source, WithBaseURL(url))

	_, err := client.Orders.Get(t.Context(), 1)
	if err == nil {
		t.Fatal("Orders.Get() expected connection error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not *APIError", err)
	}
	if apiErr.Kind != ErrorKindConnection {
		t.Errorf("Kind = %s, want %s", apiErr.Kind, ErrorKindConnection)
	}
}
