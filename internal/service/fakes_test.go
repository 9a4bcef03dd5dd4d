package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mansoorceksport/subtrack/internal/domain"
)

var errBackendDown = errors.New("backend unavailable")

// fakeSubscriptionRepo is an in-memory domain.SubscriptionRepository
type fakeSubscriptionRepo struct {
	mu       sync.Mutex
	records  map[string][]*domain.Subscription
	failNext error
	calls    []string
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{records: make(map[string][]*domain.Subscription)}
}

func (f *fakeSubscriptionRepo) fail() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeSubscriptionRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list")
	if err := f.fail(); err != nil {
		return nil, err
	}
	out := make([]*domain.Subscription, 0, len(f.records[ownerID]))
	for _, r := range f.records[ownerID] {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) Insert(ctx context.Context, ownerID string, sub *domain.Subscription) (*domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "insert")
	if err := f.fail(); err != nil {
		return nil, err
	}
	f.records[ownerID] = append([]*domain.Subscription{sub.Clone()}, f.records[ownerID]...)
	return sub.Clone(), nil
}

func (f *fakeSubscriptionRepo) Update(ctx context.Context, id, ownerID string, sub *domain.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update")
	if err := f.fail(); err != nil {
		return err
	}
	for i, r := range f.records[ownerID] {
		if r.ID == id {
			f.records[ownerID][i] = sub.Clone()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeSubscriptionRepo) Delete(ctx context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete")
	if err := f.fail(); err != nil {
		return err
	}
	list := f.records[ownerID]
	for i, r := range list {
		if r.ID == id {
			f.records[ownerID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeVocabularyRepo is an in-memory domain.VocabularyRepository
type fakeVocabularyRepo struct {
	mu       sync.Mutex
	saved    map[string]*domain.Vocabulary
	failNext error
}

func newFakeVocabularyRepo() *fakeVocabularyRepo {
	return &fakeVocabularyRepo{saved: make(map[string]*domain.Vocabulary)}
}

func (f *fakeVocabularyRepo) Get(ctx context.Context, ownerID string) (*domain.Vocabulary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.saved[ownerID]; ok {
		return v.Clone(), nil
	}
	return domain.DefaultVocabulary(), nil
}

func (f *fakeVocabularyRepo) Save(ctx context.Context, ownerID string, v *domain.Vocabulary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failNext; err != nil {
		f.failNext = nil
		return err
	}
	f.saved[ownerID] = v.Clone()
	return nil
}

// fakeExportStore records uploads keyed by owner and instant
type fakeExportStore struct {
	objects map[string][]byte
}

func (f *fakeExportStore) PutExport(ctx context.Context, ownerID string, at time.Time, body []byte) (string, string, error) {
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	key := ownerID + "/" + at.UTC().Format("20060102T150405Z") + ".json"
	f.objects[key] = body
	return key, "http://objects.test/" + key, nil
}

var fixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func testOptions() StoreOptions {
	n := 0
	return StoreOptions{
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("sub-%03d", n)
		},
	}
}

func daysAgo(n int) *time.Time {
	t := fixedNow.AddDate(0, 0, -n)
	return &t
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }
