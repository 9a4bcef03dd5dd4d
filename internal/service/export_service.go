package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mansoorceksport/subtrack/internal/domain"
)

// ErrExportDisabled is returned when no export store is configured
var ErrExportDisabled = errors.New("exports are not configured")

// ExportService writes JSON snapshots of a user's subscriptions to object storage
type ExportService struct {
	sessions *SessionManager
	exports  domain.ExportStore
}

// NewExportService creates a new export service. exports may be nil.
func NewExportService(sessions *SessionManager, exports domain.ExportStore) *ExportService {
	return &ExportService{
		sessions: sessions,
		exports:  exports,
	}
}

// Export uploads the owner's current records and vocabulary
func (s *ExportService) Export(ctx context.Context, ownerID string) (*domain.ExportResult, error) {
	if s.exports == nil {
		return nil, ErrExportDisabled
	}

	store, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := store.Now()
	records := store.List()
	doc := domain.ExportDocument{
		OwnerID:       ownerID,
		ExportedAt:    now,
		Count:         len(records),
		Subscriptions: make([]domain.StoredSubscription, 0, len(records)),
		Vocabulary:    store.Vocabulary(),
	}
	for _, r := range records {
		stored := domain.ToStored(r)
		stored.DaysLeft = domain.DaysUntilExpiry(r.ExpirationDate, now)
		doc.Subscriptions = append(doc.Subscriptions, stored)
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}

	key, url, err := s.exports.PutExport(ctx, ownerID, now, body)
	if err != nil {
		return nil, domain.NewPersistenceError("upload export", err)
	}

	log.Printf("[Export] Uploaded %d subscriptions for owner %s to %s", len(records), ownerID, key)

	return &domain.ExportResult{Key: key, URL: url, Count: len(records)}, nil
}
