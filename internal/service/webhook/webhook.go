package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yousefm/sallasync/internal/client/salla"
	"github.com/yousefm/sallasync/internal/storage"
	"github.com/yousefm/sallasync/internal/xslog"
)

const DefaultEnrichTimeout = 30 * time.Second

type Processor struct {
	secret          string
	defaultCurrency string
	store           storage.CustomerStore
	orders          salla.OrderService
	enrichTimeout   time.Duration
}

var _ Service = (*Processor)(nil)

type ProcessorOption func(*Processor)

// WithOrderEnrichment enables the synchronous order lookup that fills in
// fields the inbound payload omitted.
func WithOrderEnrichment(orders salla.OrderService, timeout time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.orders = orders
		if timeout > 0 {
			p.enrichTimeout = timeout
		}
	}
}

func NewProcessor(secret, defaultCurrency string, store storage.CustomerStore, opts ...ProcessorOption) *Processor {
	p := &Processor{
		secret:          secret,
		defaultCurrency: defaultCurrency,
		store:           store,
		enrichTimeout:   DefaultEnrichTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) ProcessWebhook(ctx context.Context, req ProcessRequest) (Receipt, error) {
	logger := xslog.FromContext(ctx)

	if req.Signature == "" {
		return Receipt{}, ErrMissingSignature
	}

	if !Verify(req.Body, req.Signature, p.secret) {
		return Receipt{}, ErrInvalidSignature
	}

	event, err := ParseEvent(req.Body, p.defaultCurrency)
	if err != nil {
		return Receipt{}, err
	}

	if event.Kind == KindUnknown {
		logger.InfoContext(ctx, "ignoring unknown webhook event",
			xslog.EventKind(event.RawKind),
		)
		return Receipt{Ignored: true, RawKind: event.RawKind}, nil
	}

	update := event.CustomerUpdate()

	if p.orders != nil && event.Order != nil && event.Order.ID != 0 {
		p.enrich(ctx, event.Order.ID, &update)
	}

	// the classified fields must land even when the enclosing request was
	// cancelled after the signature gate
	recordID, err := p.store.Upsert(context.WithoutCancel(ctx), update)
	if err != nil {
		return Receipt{}, fmt.Errorf("upsert record: %w", err)
	}

	logger.InfoContext(ctx, "processed webhook",
		xslog.EventKind(string(event.Kind)),
		xslog.CustomerID(event.CustomerID),
		xslog.RecordID(recordID),
	)

	return Receipt{RecordID: recordID, RawKind: string(event.Kind)}, nil
}

// enrich fetches the authoritative order detail and folds it into the
// update. One attempt; failures degrade to proceeding without enrichment.
func (p *Processor) enrich(ctx context.Context, orderID int64, update *storage.CustomerUpdate) {
	logger := xslog.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, p.enrichTimeout)
	defer cancel()

	order, err := p.orders.Get(ctx, orderID)
	if err != nil {
		var apiErr *salla.APIError
		if errors.As(err, &apiErr) && apiErr.Kind == salla.ErrorKindUnauthorized {
			// systemic credential problem, not a per-delivery hiccup
			logger.ErrorContext(ctx, "enrichment credential rejected",
				xslog.OrderID(orderID),
				xslog.Error(err),
			)
			return
		}
		logger.WarnContext(ctx, "order enrichment failed",
			xslog.OrderID(orderID),
			xslog.Error(err),
		)
		return
	}

	applyOrder(update, order)
}

// applyOrder overlays enrichment values onto the update. Enrichment is as
// authoritative as the inbound payload: last write by arrival order wins,
// and empty values never erase observed ones.
func applyOrder(update *storage.CustomerUpdate, order *salla.Order) {
	c := order.Customer
	if c.FirstName != "" {
		update.FirstName = c.FirstName
	}
	if c.LastName != "" {
		update.LastName = c.LastName
	}
	if c.Email != "" {
		update.Email = c.Email
	}
	if phone := c.MobileCode + c.Mobile; phone != "" {
		update.Phone = phone
	}
	if c.Country != "" {
		update.Country = c.Country
	}
	if c.City != "" {
		update.City = c.City
	}
	if order.Amounts.Total.Currency != "" {
		update.Currency = order.Amounts.Total.Currency
	}
	if order.Amounts.Total.Amount != 0 {
		amount := order.Amounts.Total.Amount
		update.LastOrderAmount = &amount
	}
	if order.Date.Date != "" {
		update.LastOrderDate = order.Date.Date
		update.LastOrderTimezone = order.Date.Timezone
	}
}
