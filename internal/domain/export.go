package domain

import (
	"context"
	"time"
)

// ExportDocument is the JSON snapshot written by an export
type ExportDocument struct {
	OwnerID       string               `json:"owner_id"`
	ExportedAt    time.Time            `json:"exported_at"`
	Count         int                  `json:"count"`
	Subscriptions []StoredSubscription `json:"subscriptions"`
	Vocabulary    *Vocabulary          `json:"vocabulary"`
}

// ExportResult describes an uploaded export
type ExportResult struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// ExportStore keeps export documents. Implementations own the object key layout.
type ExportStore interface {
	// PutExport writes one JSON export for ownerID taken at the given instant
	// and returns the object key and its access URL.
	PutExport(ctx context.Context, ownerID string, at time.Time, body []byte) (key string, url string, err error)
}
