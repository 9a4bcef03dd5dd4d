package domain

import (
	"context"
	"fmt"
	"strings"
)

// DurationOption is one named renewal period. Days is nil for durations
// resolved specially (lifetime, custom date).
type DurationOption struct {
	Label string `json:"label" validate:"required"`
	Value string `json:"value" validate:"required"`
	Days  *int   `json:"days" validate:"omitempty,gt=0"`
}

// Vocabulary holds a user's plan types and duration options, both ordered
type Vocabulary struct {
	PlanTypes []string         `json:"plan_types"`
	Durations []DurationOption `json:"durations"`
}

// DefaultPlanTypes are the plan types every new user starts with
var DefaultPlanTypes = []string{"Basic", "Premium", "Platinum"}

// DefaultVocabulary returns a fresh copy of the built-in vocabularies
func DefaultVocabulary() *Vocabulary {
	days := func(n int) *int { return &n }

	return &Vocabulary{
		PlanTypes: append([]string(nil), DefaultPlanTypes...),
		Durations: []DurationOption{
			{Label: "1 Day", Value: "1-day", Days: days(1)},
			{Label: "1 Week", Value: "1-week", Days: days(7)},
			{Label: "1 Month", Value: "1-month", Days: days(30)},
			{Label: "3 Months", Value: "3-months", Days: days(90)},
			{Label: "6 Months", Value: "6-months", Days: days(180)},
			{Label: "1 Year", Value: "1-year", Days: days(365)},
			{Label: "Lifetime", Value: DurationLifetime},
			{Label: "Custom Date", Value: DurationCustom},
		},
	}
}

// Clone returns a deep copy
func (v *Vocabulary) Clone() *Vocabulary {
	c := &Vocabulary{
		PlanTypes: append([]string(nil), v.PlanTypes...),
		Durations: make([]DurationOption, len(v.Durations)),
	}
	for i, d := range v.Durations {
		c.Durations[i] = d
		if d.Days != nil {
			n := *d.Days
			c.Durations[i].Days = &n
		}
	}
	return c
}

// HasPlanType reports whether label is known (case-sensitive)
func (v *Vocabulary) HasPlanType(label string) bool {
	for _, t := range v.PlanTypes {
		if t == label {
			return true
		}
	}
	return false
}

// AddPlanType appends the trimmed label. Blank or already present labels are rejected with ErrDuplicate.
func (v *Vocabulary) AddPlanType(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("%w: plan type must not be blank", ErrDuplicate)
	}
	if v.HasPlanType(label) {
		return fmt.Errorf("%w: plan type %q", ErrDuplicate, label)
	}
	v.PlanTypes = append(v.PlanTypes, label)
	return nil
}

// RemovePlanType drops label. Records already using it keep the orphaned label.
func (v *Vocabulary) RemovePlanType(label string) error {
	label = strings.TrimSpace(label)
	for i, t := range v.PlanTypes {
		if t == label {
			v.PlanTypes = append(v.PlanTypes[:i], v.PlanTypes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: plan type %q", ErrNotFound, label)
}

// FindDuration looks up a duration option by key
func (v *Vocabulary) FindDuration(key string) (DurationOption, bool) {
	for _, d := range v.Durations {
		if d.Value == key {
			return d, true
		}
	}
	return DurationOption{}, false
}

// AddDuration appends entry; its key must be unique
func (v *Vocabulary) AddDuration(entry DurationOption) error {
	entry, err := normalizeDuration(entry)
	if err != nil {
		return err
	}
	if _, exists := v.FindDuration(entry.Value); exists {
		return fmt.Errorf("%w: duration %q", ErrDuplicate, entry.Value)
	}
	v.Durations = append(v.Durations, entry)
	return nil
}

// UpdateDuration replaces the entry at index. The new key may not collide with another entry.
func (v *Vocabulary) UpdateDuration(index int, entry DurationOption) error {
	if index < 0 || index >= len(v.Durations) {
		return fmt.Errorf("%w: duration index %d", ErrNotFound, index)
	}
	entry, err := normalizeDuration(entry)
	if err != nil {
		return err
	}
	for i, d := range v.Durations {
		if i != index && d.Value == entry.Value {
			return fmt.Errorf("%w: duration %q", ErrDuplicate, entry.Value)
		}
	}
	v.Durations[index] = entry
	return nil
}

// RemoveDuration drops the entry at index
func (v *Vocabulary) RemoveDuration(index int) error {
	if index < 0 || index >= len(v.Durations) {
		return fmt.Errorf("%w: duration index %d", ErrNotFound, index)
	}
	v.Durations = append(v.Durations[:index], v.Durations[index+1:]...)
	return nil
}

func normalizeDuration(entry DurationOption) (DurationOption, error) {
	entry.Label = strings.TrimSpace(entry.Label)
	entry.Value = strings.TrimSpace(entry.Value)
	if entry.Label == "" {
		return entry, fmt.Errorf("%w: duration label cannot be empty", ErrValidation)
	}
	if entry.Value == "" {
		return entry, fmt.Errorf("%w: duration value cannot be empty", ErrValidation)
	}
	if entry.Days != nil && *entry.Days <= 0 {
		return entry, fmt.Errorf("%w: duration days must be positive", ErrValidation)
	}
	return entry, nil
}

// VocabularyRepository persists a user's vocabularies.
// Get returns the defaults when nothing has been saved yet.
type VocabularyRepository interface {
	Get(ctx context.Context, ownerID string) (*Vocabulary, error)
	Save(ctx context.Context, ownerID string, vocabulary *Vocabulary) error
}
