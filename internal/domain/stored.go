package domain

import (
	"fmt"
	"time"
)

// StoredSubscription is the flat snake-case encoding shared by the storage layer
// and the HTTP API. Dates are YYYY-MM-DD calendar days.
type StoredSubscription struct {
	ID             string    `bson:"_id" json:"id"`
	UserID         string    `bson:"user_id" json:"-"`
	ClientName     string    `bson:"client_name" json:"client_name"`
	PlanType       string    `bson:"plan_type" json:"plan_type"`
	Duration       string    `bson:"duration" json:"duration"`
	CustomDuration *int      `bson:"custom_duration" json:"custom_duration"`
	CustomDate     *string   `bson:"custom_date" json:"custom_date"`
	StartDate      string    `bson:"start_date" json:"start_date"`
	ExpirationDate string    `bson:"expiration_date" json:"expiration_date"`
	Notes          *string   `bson:"notes" json:"notes"`
	Cost           *float64  `bson:"cost" json:"cost"`
	Status         Status    `bson:"status" json:"status"`
	DaysLeft       int       `bson:"-" json:"days_until_expiry"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// ToStored encodes a subscription for the storage layer
func ToStored(s *Subscription) StoredSubscription {
	stored := StoredSubscription{
		ID:             s.ID,
		UserID:         s.OwnerID,
		ClientName:     s.ClientName,
		PlanType:       s.PlanType,
		Duration:       s.Duration,
		CustomDuration: s.CustomDurationDays,
		StartDate:      FormatDate(s.StartDate),
		ExpirationDate: FormatDate(s.ExpirationDate),
		Notes:          s.Notes,
		Cost:           s.Cost,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
	}
	if s.CustomDate != nil {
		d := FormatDate(*s.CustomDate)
		stored.CustomDate = &d
	}
	return stored
}

// FromStored decodes a stored record. A missing or unreadable expiration date
// is re-resolved from the other fields.
func FromStored(stored StoredSubscription) (*Subscription, error) {
	start, err := ParseDate(stored.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date %q: %w", stored.StartDate, err)
	}

	sub := &Subscription{
		ID:                 stored.ID,
		OwnerID:            stored.UserID,
		ClientName:         stored.ClientName,
		PlanType:           stored.PlanType,
		Duration:           stored.Duration,
		CustomDurationDays: stored.CustomDuration,
		StartDate:          start,
		Notes:              stored.Notes,
		Cost:               stored.Cost,
		Status:             stored.Status,
		CreatedAt:          stored.CreatedAt,
	}

	if stored.CustomDate != nil && *stored.CustomDate != "" {
		d, err := ParseDate(*stored.CustomDate)
		if err != nil {
			return nil, fmt.Errorf("invalid custom_date %q: %w", *stored.CustomDate, err)
		}
		sub.CustomDate = &d
	}

	if exp, err := ParseDate(stored.ExpirationDate); err == nil {
		sub.ExpirationDate = exp
	} else {
		sub.ExpirationDate = ResolveExpirationDate(start, sub.Duration, sub.CustomDurationDays, sub.CustomDate)
	}

	return sub, nil
}
