package salla

// Money is an amount in the smallest practical unit plus its currency label.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// DateTime is the platform's timestamp representation: a formatted local
// time string plus the zone it was rendered in. Kept unparsed; readers own
// timezone interpretation.
type DateTime struct {
	Date     string `json:"date"`
	Timezone string `json:"timezone"`
}

type OrderStatus struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type OrderAmounts struct {
	Total Money `json:"total"`
}

type Order struct {
	ID          int64        `json:"id"`
	ReferenceID int64        `json:"reference_id"`
	Status      OrderStatus  `json:"status"`
	Amounts     OrderAmounts `json:"amounts"`
	Date        DateTime     `json:"date"`
	ItemsCount  int          `json:"items_count"`
	Customer    Customer     `json:"customer"`
}

type Customer struct {
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

// Registration subscribes a receiver URL to one platform event.
type Registration struct {
	Name    string `json:"name"`
	Event   string `json:"event"`
	URL     string `json:"url"`
	Version int    `json:"version"`
}

type Subscription struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Event   string `json:"event"`
	URL     string `json:"url"`
	Version int    `json:"version"`
}
