package storage

import "time"

// applyUpdate merges an update into an existing record. Non-empty incoming
// values overwrite; empty incoming values preserve what is stored. Applying
// the same update twice leaves the record unchanged after the first apply.
func applyUpdate(rec *CustomerRecord, u CustomerUpdate, now time.Time) {
	if u.FirstName != "" {
		rec.FirstName = u.FirstName
	}
	if u.LastName != "" {
		rec.LastName = u.LastName
	}
	if u.Email != "" {
		rec.Email = u.Email
	}
	if u.Phone != "" {
		rec.Phone = u.Phone
	}
	if u.Country != "" {
		rec.Country = u.Country
	}
	if u.City != "" {
		rec.City = u.City
	}
	if u.Currency != "" {
		rec.Currency = u.Currency
	}
	if u.LastOrderID != nil {
		id := *u.LastOrderID
		rec.LastOrderID = &id
	}
	if u.LastOrderAmount != nil {
		amount := *u.LastOrderAmount
		rec.LastOrderAmount = &amount
	}
	if u.LastOrderDate != "" {
		rec.LastOrderDate = u.LastOrderDate
	}
	if u.LastOrderTimezone != "" {
		rec.LastOrderTimezone = u.LastOrderTimezone
	}
	rec.UpdatedAt = now
}

// newRecord builds a fresh record from an update, filling the configured
// default currency when the delivery did not carry one.
func newRecord(u CustomerUpdate, defaultCurrency string, now time.Time) CustomerRecord {
	rec := CustomerRecord{
		ExternalCustomerID: u.ExternalCustomerID,
		Currency:           defaultCurrency,
		CreatedAt:          now,
	}
	applyUpdate(&rec, u, now)
	return rec
}
