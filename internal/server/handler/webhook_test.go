package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	go_json "github.com/goccy/go-json"

	"github.com/yousefm/sallasync/internal/service/webhook"
)

type stubService struct {
	receipt webhook.Receipt
	err     error

	gotBody      []byte
	gotSignature string
}

var _ webhook.Service = (*stubService)(nil)

func (s *stubService) ProcessWebhook(_ context.Context, req webhook.ProcessRequest) (webhook.Receipt, error) {
	s.gotBody = req.Body
	s.gotSignature = req.Signature
	return s.receipt, s.err
}

func TestHandleWebhook(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		receipt    webhook.Receipt
		err        error
		signature  string
		wantStatus int
		wantAck    string
	}{
		{
			name:       "processed delivery acks with record id",
			receipt:    webhook.Receipt{RecordID: 7, RawKind: "customer.created"},
			signature:  "deadbeef",
			wantStatus: http.StatusOK,
			wantAck:    "ok",
		},
		{
			name:       "unknown kind acks ignored",
			receipt:    webhook.Receipt{Ignored: true, RawKind: "product.created"},
			signature:  "deadbeef",
			wantStatus: http.StatusOK,
			wantAck:    "ignored",
		},
		{
			name:       "missing signature is a bad request",
			err:        webhook.ErrMissingSignature,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong signature is unauthorized",
			err:        webhook.ErrInvalidSignature,
			signature:  "deadbeef",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed payload is a bad request",
			err:        webhook.ErrMalformedPayload,
			signature:  "deadbeef",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing field is a bad request",
			err:        webhook.ErrMissingField,
			signature:  "deadbeef",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store failure is an internal error",
			err:        context.DeadlineExceeded,
			signature:  "deadbeef",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := &stubService{receipt: tt.receipt, err: tt.err}
			h := NewWebhook(service)

			body := []byte(`{"event":"customer.created","data":{"id":789}}`)
			req := httptest.NewRequest(http.MethodPost, "/webhooks/salla", bytes.NewReader(body))
			if tt.signature != "" {
				req.Header.Set("X-Salla-Signature", tt.signature)
			}

			rec := httptest.NewRecorder()
			h.HandleWebhook(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if !bytes.Equal(service.gotBody, body) {
				t.Error("service did not receive the raw request body")
			}
			if service.gotSignature != tt.signature {
				t.Errorf("service signature = %q, want %q", service.gotSignature, tt.signature)
			}

			if tt.wantAck == "" {
				return
			}

			var ack ackResponse
			if err := go_json.Unmarshal(rec.Body.Bytes(), &ack); err != nil {
				t.Fatalf("decoding ack: %v", err)
			}
			if ack.Status != tt.wantAck {
				t.Errorf("ack status = %q, want %q", ack.Status, tt.wantAck)
			}
			if ack.RecordID != tt.receipt.RecordID {
				t.Errorf("ack record_id = %d, want %d", ack.RecordID, tt.receipt.RecordID)
			}
			if ack.Event != tt.receipt.RawKind {
				t.Errorf("ack event = %q, want %q", ack.Event, tt.receipt.RawKind)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	HandleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := go_json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q, want ok", resp["status"])
	}
}
