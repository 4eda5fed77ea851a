package webhook

import (
	"errors"
	"fmt"

	go_json "github.com/goccy/go-json"

	"github.com/yousefm/sallasync/internal/storage"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrMissingField     = errors.New("missing required field")
)

type Kind string

const (
	KindOrderCreated    Kind = "order.created"
	KindOrderUpdated    Kind = "order.updated"
	KindCustomerCreated Kind = "customer.created"
	KindCustomerUpdated Kind = "customer.updated"
	// KindUnknown is a recognized "ignore" outcome, not an error.
	// The raw kind string is kept for logging; nothing is persisted.
	KindUnknown Kind = "unknown"
)

// OrderRef is the order information observed in an order event.
type OrderRef struct {
	ID         int64
	Total      float64
	Currency   string
	Status     string
	ItemsCount int
	Date       string
	Timezone   string
}

// Event is the classified form of one webhook delivery. CustomerID is
// non-zero for every kind except KindUnknown.
type Event struct {
	Kind       Kind
	RawKind    string
	CustomerID int64

	FirstName string
	LastName  string
	Email     string
	Phone     string
	Country   string
	City      string
	Currency  string

	Order *OrderRef
}

type rawCustomer struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	MobileCode string `json:"mobile_code"`
	Mobile     string `json:"mobile"`
	Country    string `json:"country"`
	City       string `json:"city"`
	Currency   string `json:"currency"`
}

type rawOrder struct {
	ID       int64       `json:"id"`
	Customer rawCustomer `json:"customer"`
	Status   struct {
		Name string `json:"name"`
	} `json:"status"`
	Amounts struct {
		Total struct {
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
		} `json:"total"`
	} `json:"amounts"`
	ItemsCount int `json:"items_count"`
	Date       struct {
		Date     string `json:"date"`
		Timezone string `json:"timezone"`
	} `json:"date"`
}

type rawPayload struct {
	Event string             `json:"event"`
	Data  go_json.RawMessage `json:"data"`
}

// ParseEvent classifies a raw webhook payload. Unknown event kinds classify
// successfully as KindUnknown; only structural problems are errors.
// Optional subfields default rather than fail. Pure and deterministic.
func ParseEvent(body []byte, defaultCurrency string) (Event, error) {
	var raw rawPayload
	if err := go_json.Unmarshal(body, &raw); err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrMalformedPayload, err)
	}

	if raw.Event == "" {
		return Event{}, fmt.Errorf("%w: event", ErrMissingField)
	}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return Event{}, fmt.Errorf("%w: data", ErrMissingField)
	}

	switch Kind(raw.Event) {
	case KindOrderCreated, KindOrderUpdated:
		return parseOrderEvent(Kind(raw.Event), raw.Data, defaultCurrency)
	case KindCustomerCreated, KindCustomerUpdated:
		return parseCustomerEvent(Kind(raw.Event), raw.Data)
	default:
		return Event{Kind: KindUnknown, RawKind: raw.Event}, nil
	}
}

func parseOrderEvent(kind Kind, data go_json.RawMessage, defaultCurrency string) (Event, error) {
	var order rawOrder
	if err := go_json.Unmarshal(data, &order); err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrMalformedPayload, err)
	}

	if order.Customer.ID == 0 {
		return Event{}, fmt.Errorf("%w: data.customer.id", ErrMissingField)
	}

	currency := order.Amounts.Total.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	event := fromCustomer(kind, string(kind), order.Customer)
	event.Order = &OrderRef{
		ID:         order.ID,
		Total:      order.Amounts.Total.Amount,
		Currency:   currency,
		Status:     order.Status.Name,
		ItemsCount: order.ItemsCount,
		Date:       order.Date.Date,
		Timezone:   order.Date.Timezone,
	}
	if event.Currency == "" {
		event.Currency = currency
	}
	return event, nil
}

func parseCustomerEvent(kind Kind, data go_json.RawMessage) (Event, error) {
	var customer rawCustomer
	if err := go_json.Unmarshal(data, &customer); err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrMalformedPayload, err)
	}

	if customer.ID == 0 {
		return Event{}, fmt.Errorf("%w: data.id", ErrMissingField)
	}

	return fromCustomer(kind, string(kind), customer), nil
}

func fromCustomer(kind Kind, rawKind string, c rawCustomer) Event {
	return Event{
		Kind:       kind,
		RawKind:    rawKind,
		CustomerID: c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      joinPhone(c.MobileCode, c.Mobile),
		Country:    c.Country,
		City:       c.City,
		Currency:   c.Currency,
	}
}

// joinPhone concatenates the dialing code and local number, each falling
// back to the empty string.
func joinPhone(code, number string) string {
	return code + number
}

// CustomerUpdate projects the event's observed fields into a store update.
func (e Event) CustomerUpdate() storage.CustomerUpdate {
	update := storage.CustomerUpdate{
		ExternalCustomerID: e.CustomerID,
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		Email:              e.Email,
		Phone:              e.Phone,
		Country:            e.Country,
		City:               e.City,
		Currency:           e.Currency,
	}
	if e.Order != nil && e.Order.ID != 0 {
		orderID := e.Order.ID
		amount := e.Order.Total
		update.LastOrderID = &orderID
		update.LastOrderAmount = &amount
		update.LastOrderDate = e.Order.Date
		update.LastOrderTimezone = e.Order.Timezone
	}
	return update
}
