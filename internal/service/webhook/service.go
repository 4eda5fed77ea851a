package webhook

import (
	"context"
	"errors"
)

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrInvalidSignature = errors.New("invalid signature")
)

type ProcessRequest struct {
	Body      []byte
	Signature string
}

// Receipt correlates a processed delivery with the affected record.
type Receipt struct {
	// RecordID is the internal id of the upserted record; zero when ignored.
	RecordID int64 `json:"record_id,omitempty"`
	// Ignored is true for unknown event kinds, which are acknowledged
	// without persistence.
	Ignored bool `json:"ignored,omitempty"`
	// RawKind is the delivery's event kind string as received.
	RawKind string `json:"event"`
}

type Service interface {
	// ProcessWebhook verifies the delivery signature, classifies the event,
	// optionally enriches it, and upserts the reconciled customer record.
	// Returns ErrMissingSignature when the signature header is empty.
	// Returns ErrInvalidSignature when the signature doesn't match.
	// Returns ErrMalformedPayload / ErrMissingField for unparseable bodies.
	// Unknown event kinds succeed with Receipt.Ignored set.
	ProcessWebhook(ctx context.Context, req ProcessRequest) (Receipt, error)
}
