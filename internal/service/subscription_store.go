package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/telemetry"
	"github.com/oklog/ulid/v2"
)

// StoreOptions lets callers replace the clock and id generator
type StoreOptions struct {
	Now   func() time.Time
	NewID func() string
}

func (o StoreOptions) withDefaults() StoreOptions {
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewID == nil {
		o.NewID = func() string { return ulid.Make().String() }
	}
	return o
}

// SubscriptionStore owns one user's subscriptions and vocabularies.
// Every write goes to the persistence collaborator first and is committed
// in memory only after it succeeds.
type SubscriptionStore struct {
	mu        sync.Mutex
	ownerID   string
	repo      domain.SubscriptionRepository
	vocabRepo domain.VocabularyRepository
	records   []*domain.Subscription
	vocab     *domain.Vocabulary
	opts      StoreOptions
}

// NewSubscriptionStore creates a store over already-loaded records (newest first)
func NewSubscriptionStore(
	ownerID string,
	records []*domain.Subscription,
	vocab *domain.Vocabulary,
	repo domain.SubscriptionRepository,
	vocabRepo domain.VocabularyRepository,
	opts StoreOptions,
) *SubscriptionStore {
	if vocab == nil {
		vocab = domain.DefaultVocabulary()
	}
	owned := make([]*domain.Subscription, 0, len(records))
	for _, r := range records {
		c := r.Clone()
		c.OwnerID = ownerID
		owned = append(owned, c)
	}

	return &SubscriptionStore{
		ownerID:   ownerID,
		repo:      repo,
		vocabRepo: vocabRepo,
		records:   owned,
		vocab:     vocab.Clone(),
		opts:      opts.withDefaults(),
	}
}

// OwnerID returns the user this store belongs to
func (s *SubscriptionStore) OwnerID() string {
	return s.ownerID
}

// Add validates input, derives expiration/status and persists a new record
func (s *SubscriptionStore) Add(ctx context.Context, input domain.SubscriptionInput) (sub *domain.Subscription, err error) {
	defer func() { telemetry.RecordMutation(ctx, "add", err) }()

	input, err = normalizeInput(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.vocab.HasPlanType(input.PlanType) {
		return nil, fmt.Errorf("%w: unknown plan type %q", domain.ErrValidation, input.PlanType)
	}

	now := s.opts.Now()
	record := domain.NewSubscription(s.opts.NewID(), s.withVocabularyDays(input), now)
	record.OwnerID = s.ownerID
	record.CreatedAt = now

	stored, err := s.repo.Insert(ctx, s.ownerID, record)
	if err != nil {
		return nil, domain.NewPersistenceError("insert subscription", err)
	}
	if stored != nil {
		record = stored.Clone()
		record.OwnerID = s.ownerID
	}

	s.records = append([]*domain.Subscription{record}, s.records...)
	return record.Clone(), nil
}

// Update replaces all mutable fields of the record and recomputes its derived fields.
// The plan type must be known unless it is the record's current (possibly orphaned) label.
func (s *SubscriptionStore) Update(ctx context.Context, id string, input domain.SubscriptionInput) (sub *domain.Subscription, err error) {
	defer func() { telemetry.RecordMutation(ctx, "update", err) }()

	input, err = normalizeInput(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: subscription %s", domain.ErrNotFound, id)
	}
	current := s.records[idx]

	if input.PlanType != current.PlanType && !s.vocab.HasPlanType(input.PlanType) {
		return nil, fmt.Errorf("%w: unknown plan type %q", domain.ErrValidation, input.PlanType)
	}

	updated := current.Clone()
	updated.Apply(s.withVocabularyDays(input), s.opts.Now())

	if err := s.repo.Update(ctx, id, s.ownerID, updated); err != nil {
		return nil, domain.NewPersistenceError("update subscription", err)
	}

	s.records[idx] = updated
	return updated.Clone(), nil
}

// Remove deletes the record; unknown ids fail with ErrNotFound
func (s *SubscriptionStore) Remove(ctx context.Context, id string) (err error) {
	defer func() { telemetry.RecordMutation(ctx, "remove", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: subscription %s", domain.ErrNotFound, id)
	}

	if err := s.repo.Delete(ctx, id, s.ownerID); err != nil {
		return domain.NewPersistenceError("delete subscription", err)
	}

	s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
	return nil
}

// Get returns a copy of one record with a freshly classified status
func (s *SubscriptionStore) Get(id string) (*domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: subscription %s", domain.ErrNotFound, id)
	}
	c := s.records[idx].Clone()
	c.Refresh(s.opts.Now())
	return c, nil
}

// List returns copies of all records, newest first, with statuses re-classified against now
func (s *SubscriptionStore) List() []*domain.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Filter applies the status filter and free-text search over the current records
func (s *SubscriptionStore) Filter(filter domain.StatusFilter, search string) []*domain.Subscription {
	return domain.FilterSubscriptions(s.List(), filter, search)
}

// Summary builds the dashboard aggregate; filter and search narrow only the latest list
func (s *SubscriptionStore) Summary(filter domain.StatusFilter, search string) *domain.DashboardSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SummarizeSubscriptions(s.snapshot(), s.opts.Now(), filter, search)
}

// Calendar builds the calendar view for one month
func (s *SubscriptionStore) Calendar(year int, month time.Month) *domain.CalendarMonth {
	return domain.BuildCalendarMonth(s.List(), year, month)
}

// Now exposes the store clock so callers format relative values consistently
func (s *SubscriptionStore) Now() time.Time {
	return s.opts.Now()
}

// Vocabulary returns a copy of the plan types and durations
func (s *SubscriptionStore) Vocabulary() *domain.Vocabulary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.vocab.Clone()
}

// AddPlanType appends a plan type; blank or existing labels fail with ErrDuplicate
func (s *SubscriptionStore) AddPlanType(ctx context.Context, label string) error {
	return s.mutateVocabulary(ctx, "add_plan_type", func(v *domain.Vocabulary) error {
		return v.AddPlanType(label)
	})
}

// RemovePlanType drops a plan type without touching records that use it
func (s *SubscriptionStore) RemovePlanType(ctx context.Context, label string) error {
	return s.mutateVocabulary(ctx, "remove_plan_type", func(v *domain.Vocabulary) error {
		return v.RemovePlanType(label)
	})
}

// AddDuration appends a duration option; its key must be unique
func (s *SubscriptionStore) AddDuration(ctx context.Context, entry domain.DurationOption) error {
	if err := validateDuration(entry); err != nil {
		return err
	}
	return s.mutateVocabulary(ctx, "add_duration", func(v *domain.Vocabulary) error {
		return v.AddDuration(entry)
	})
}

// UpdateDuration replaces the duration option at index
func (s *SubscriptionStore) UpdateDuration(ctx context.Context, index int, entry domain.DurationOption) error {
	if err := validateDuration(entry); err != nil {
		return err
	}
	return s.mutateVocabulary(ctx, "update_duration", func(v *domain.Vocabulary) error {
		return v.UpdateDuration(index, entry)
	})
}

// RemoveDuration drops the duration option at index
func (s *SubscriptionStore) RemoveDuration(ctx context.Context, index int) error {
	return s.mutateVocabulary(ctx, "remove_duration", func(v *domain.Vocabulary) error {
		return v.RemoveDuration(index)
	})
}

// mutateVocabulary applies fn to a copy, saves it, then swaps it in
func (s *SubscriptionStore) mutateVocabulary(ctx context.Context, op string, fn func(*domain.Vocabulary) error) (err error) {
	defer func() { telemetry.RecordMutation(ctx, op, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.vocab.Clone()
	if err := fn(next); err != nil {
		return err
	}

	if s.vocabRepo != nil {
		if err := s.vocabRepo.Save(ctx, s.ownerID, next); err != nil {
			return domain.NewPersistenceError("save vocabulary", err)
		}
	}

	s.vocab = next
	return nil
}

// withVocabularyDays feeds a user-defined duration's day count to the resolver
// when the caller didn't supply one
func (s *SubscriptionStore) withVocabularyDays(input domain.SubscriptionInput) domain.SubscriptionInput {
	if input.CustomDurationDays != nil {
		return input
	}
	if _, fixed := domain.FixedDurationDays(input.Duration); fixed {
		return input
	}
	if opt, ok := s.vocab.FindDuration(input.Duration); ok && opt.Days != nil {
		days := *opt.Days
		input.CustomDurationDays = &days
	}
	return input
}

func (s *SubscriptionStore) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// snapshot must be called with mu held
func (s *SubscriptionStore) snapshot() []*domain.Subscription {
	now := s.opts.Now()
	out := make([]*domain.Subscription, len(s.records))
	for i, r := range s.records {
		c := r.Clone()
		c.Refresh(now)
		out[i] = c
	}
	return out
}
