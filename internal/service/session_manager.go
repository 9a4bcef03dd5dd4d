package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// SessionManager keeps one SubscriptionStore per active user, loading it on first use
type SessionManager struct {
	mu        sync.RWMutex
	stores    map[string]*SubscriptionStore
	repo      domain.SubscriptionRepository
	vocabRepo domain.VocabularyRepository
	opts      StoreOptions
}

// NewSessionManager creates a new SessionManager instance
func NewSessionManager(
	repo domain.SubscriptionRepository,
	vocabRepo domain.VocabularyRepository,
	opts StoreOptions,
) *SessionManager {
	return &SessionManager{
		stores:    make(map[string]*SubscriptionStore),
		repo:      repo,
		vocabRepo: vocabRepo,
		opts:      opts.withDefaults(),
	}
}

// Store returns the owner's store, loading records and vocabulary on first access
func (m *SessionManager) Store(ctx context.Context, ownerID string) (*SubscriptionStore, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}

	m.mu.RLock()
	store, ok := m.stores[ownerID]
	m.mu.RUnlock()
	if ok {
		return store, nil
	}

	loaded, err := m.load(ctx, ownerID, false)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have loaded it meanwhile
	if existing, ok := m.stores[ownerID]; ok {
		return existing, nil
	}
	m.stores[ownerID] = loaded
	return loaded, nil
}

// Refetch discards the cached session and reloads it from storage
func (m *SessionManager) Refetch(ctx context.Context, ownerID string) (*SubscriptionStore, error) {
	loaded, err := m.load(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.stores[ownerID] = loaded
	m.mu.Unlock()

	return loaded, nil
}

// Drop forgets a session (e.g. on sign-out)
func (m *SessionManager) Drop(ownerID string) {
	m.mu.Lock()
	delete(m.stores, ownerID)
	m.mu.Unlock()
}

func (m *SessionManager) load(ctx context.Context, ownerID string, refetch bool) (_ *SubscriptionStore, err error) {
	started := time.Now()
	defer func() { telemetry.RecordSessionLoad(ctx, started, refetch, err) }()

	var (
		records []*domain.Subscription
		vocab   *domain.Vocabulary
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := m.repo.ListByOwner(gCtx, ownerID)
		if err != nil {
			return domain.NewPersistenceError("list subscriptions", err)
		}
		records = list
		return nil
	})

	g.Go(func() error {
		if m.vocabRepo == nil {
			vocab = domain.DefaultVocabulary()
			return nil
		}
		v, err := m.vocabRepo.Get(gCtx, ownerID)
		if err != nil {
			return domain.NewPersistenceError("load vocabulary", err)
		}
		vocab = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[Session] Loaded %d subscriptions for owner %s", len(records), ownerID)

	return NewSubscriptionStore(ownerID, records, vocab, m.repo, m.vocabRepo, m.opts), nil
}
