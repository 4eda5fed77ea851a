package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/yousefm/sallasync/internal/service/webhook"
	"github.com/yousefm/sallasync/internal/xerrors"
	"github.com/yousefm/sallasync/internal/xhttp"
	"github.com/yousefm/sallasync/internal/xslog"
)

const headerSallaSignature = "X-Salla-Signature"

type Webhook struct {
	service webhook.Service
}

func NewWebhook(service webhook.Service) *Webhook {
	return &Webhook{service: service}
}

type ackResponse struct {
	Status   string `json:"status"`
	RecordID int64  `json:"record_id,omitempty"`
	Event    string `json:"event,omitempty"`
}

// HandleWebhook handles POST /webhooks/salla requests.
func (h *Webhook) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read webhook body", xslog.Error(err))
		xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage("failed to read request body")))
		return
	}

	req := webhook.ProcessRequest{
		Body:      body,
		Signature: r.Header.Get(headerSallaSignature),
	}

	receipt, err := h.service.ProcessWebhook(ctx, req)
	if err != nil {
		// missing entirely is a malformed request; present-but-wrong is 401
		if errors.Is(err, webhook.ErrMissingSignature) {
			logger.WarnContext(ctx, "missing webhook signature header")
			xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage("missing signature header")))
			return
		}

		if errors.Is(err, webhook.ErrInvalidSignature) {
			logger.WarnContext(ctx, "invalid webhook signature")
			xerrors.WriteError(ctx, w, xerrors.Unauthorized(xerrors.WithMessage("invalid signature")))
			return
		}

		if errors.Is(err, webhook.ErrMalformedPayload) || errors.Is(err, webhook.ErrMissingField) {
			logger.WarnContext(ctx, "unparseable webhook payload", xslog.Error(err))
			xerrors.WriteError(ctx, w, xerrors.BadRequest(xerrors.WithMessage(err.Error())))
			return
		}

		logger.ErrorContext(ctx, "failed to process webhook", xslog.Error(err))
		xerrors.WriteError(ctx, w, xerrors.Internal(xerrors.WithMessage("failed to process webhook"), xerrors.WithCause(err)))
		return
	}

	if receipt.Ignored {
		xhttp.WriteOK(w, ackResponse{Status: "ignored", Event: receipt.RawKind})
		return
	}

	xhttp.WriteOK(w, ackResponse{Status: "ok", RecordID: receipt.RecordID, Event: receipt.RawKind})
}
