package domain

import (
	"context"
	"time"
)

// Status is the lifecycle state of a subscription relative to "now"
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring-soon"
	StatusExpired      Status = "expired"
)

// Duration keys with special resolution rules
const (
	DurationLifetime = "lifetime"
	DurationCustom   = "custom"
)

const (
	// DefaultDurationDays is used when neither the fixed table nor a custom day count resolves a key.
	// Unknown keys fall back silently; this is policy, not an error path.
	DefaultDurationDays = 30

	// ExpiringSoonWindowDays is inclusive: exactly 14 days left is still expiring-soon
	ExpiringSoonWindowDays = 14

	// LifetimeYear marks the far-future sentinel used for "never expires"
	LifetimeYear = 2099

	// DateLayout is the calendar-day encoding used by the storage layer
	DateLayout = "2006-01-02"
)

// LifetimeExpiration is the sentinel expiration date of lifetime subscriptions
var LifetimeExpiration = time.Date(LifetimeYear, time.December, 31, 0, 0, 0, 0, time.UTC)

// fixedDurationDays is the built-in day-count table
var fixedDurationDays = map[string]int{
	"1-day":    1,
	"1-week":   7,
	"1-month":  30,
	"3-months": 90,
	"6-months": 180,
	"1-year":   365,
}

// FixedDurationDays returns the built-in day count for a key
func FixedDurationDays(key string) (int, bool) {
	days, ok := fixedDurationDays[key]
	return days, ok
}

// Subscription is a tracked recurring subscription.
// ExpirationDate and Status are derived; build and change records through
// NewSubscription and Apply so they never drift from the inputs.
type Subscription struct {
	ID                 string     `json:"id"`
	OwnerID            string     `json:"-"`
	ClientName         string     `json:"client_name"`
	PlanType           string     `json:"plan_type"`
	Duration           string     `json:"duration"`
	CustomDurationDays *int       `json:"custom_duration,omitempty"`
	CustomDate         *time.Time `json:"custom_date,omitempty"`
	StartDate          time.Time  `json:"start_date"`
	ExpirationDate     time.Time  `json:"expiration_date"`
	Notes              *string    `json:"notes,omitempty"`
	Cost               *float64   `json:"cost,omitempty"`
	Status             Status     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
}

// SubscriptionInput carries the caller-editable fields of a subscription
type SubscriptionInput struct {
	ClientName         string     `json:"client_name" validate:"required"`
	PlanType           string     `json:"plan_type" validate:"required"`
	Duration           string     `json:"duration" validate:"required"`
	CustomDurationDays *int       `json:"custom_duration,omitempty" validate:"omitempty,gt=0"`
	CustomDate         *time.Time `json:"custom_date,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	Cost               *float64   `json:"cost,omitempty" validate:"omitempty,gte=0"`
}

// NewSubscription builds a record from input, deriving expiration date and status
func NewSubscription(id string, input SubscriptionInput, now time.Time) *Subscription {
	sub := &Subscription{ID: id}
	sub.Apply(input, now)
	return sub
}

// Apply replaces every mutable field with input and recomputes the derived fields.
// The ID is left untouched.
func (s *Subscription) Apply(input SubscriptionInput, now time.Time) {
	start := CalendarDay(now)
	if input.StartDate != nil && !input.StartDate.IsZero() {
		start = CalendarDay(*input.StartDate)
	}

	var customDate *time.Time
	if input.CustomDate != nil && !input.CustomDate.IsZero() {
		d := CalendarDay(*input.CustomDate)
		customDate = &d
	}

	s.ClientName = input.ClientName
	s.PlanType = input.PlanType
	s.Duration = input.Duration
	s.CustomDurationDays = input.CustomDurationDays
	s.CustomDate = customDate
	s.StartDate = start
	s.Notes = input.Notes
	s.Cost = input.Cost
	s.ExpirationDate = ResolveExpirationDate(start, input.Duration, input.CustomDurationDays, customDate)
	s.Status = ClassifyStatus(s.ExpirationDate, now)
}

// Refresh re-classifies the status against now without touching other fields
func (s *Subscription) Refresh(now time.Time) {
	s.Status = ClassifyStatus(s.ExpirationDate, now)
}

// Input returns the editable fields of the record
func (s *Subscription) Input() SubscriptionInput {
	start := s.StartDate
	return SubscriptionInput{
		ClientName:         s.ClientName,
		PlanType:           s.PlanType,
		Duration:           s.Duration,
		CustomDurationDays: s.CustomDurationDays,
		CustomDate:         s.CustomDate,
		StartDate:          &start,
		Notes:              s.Notes,
		Cost:               s.Cost,
	}
}

// Clone returns a deep copy so callers can't mutate store-owned records
func (s *Subscription) Clone() *Subscription {
	c := *s
	if s.CustomDurationDays != nil {
		v := *s.CustomDurationDays
		c.CustomDurationDays = &v
	}
	if s.CustomDate != nil {
		v := *s.CustomDate
		c.CustomDate = &v
	}
	if s.Notes != nil {
		v := *s.Notes
		c.Notes = &v
	}
	if s.Cost != nil {
		v := *s.Cost
		c.Cost = &v
	}
	return &c
}

// ResolveExpirationDate maps a duration key to an absolute expiration date.
// Order: lifetime sentinel, explicit custom date, fixed table, custom day count, 30-day fallback.
func ResolveExpirationDate(startDate time.Time, durationKey string, customDurationDays *int, customDate *time.Time) time.Time {
	if durationKey == DurationLifetime {
		return LifetimeExpiration
	}

	if durationKey == DurationCustom && customDate != nil {
		return *customDate
	}

	days, ok := fixedDurationDays[durationKey]
	if !ok {
		days = DefaultDurationDays
		if customDurationDays != nil && *customDurationDays > 0 {
			days = *customDurationDays
		}
	}

	return CalendarDay(startDate).AddDate(0, 0, days)
}

// ClassifyStatus maps an expiration date to a lifecycle state relative to now.
// The lifetime sentinel is checked by year before any date comparison.
func ClassifyStatus(expirationDate, now time.Time) Status {
	if expirationDate.Year() >= LifetimeYear {
		return StatusActive
	}

	daysLeft := DaysUntilExpiry(expirationDate, now)
	switch {
	case daysLeft <= 0:
		return StatusExpired
	case daysLeft <= ExpiringSoonWindowDays:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// DaysUntilExpiry counts whole calendar days from now to the expiration date.
// Negative once the date has passed.
func DaysUntilExpiry(expirationDate, now time.Time) int {
	diff := CalendarDay(expirationDate).Sub(CalendarDay(now))
	return int(diff.Hours() / 24)
}

// CalendarDay truncates t to midnight UTC of its calendar date
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar day
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders a calendar day as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return CalendarDay(t).Format(DateLayout)
}

// SubscriptionRepository is the persistence collaborator for subscription records.
// Every call is scoped to the owning user.
type SubscriptionRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*Subscription, error)
	Insert(ctx context.Context, ownerID string, subscription *Subscription) (*Subscription, error)
	Update(ctx context.Context, id, ownerID string, subscription *Subscription) error
	Delete(ctx context.Context, id, ownerID string) error
}
