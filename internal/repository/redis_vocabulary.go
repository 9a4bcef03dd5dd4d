package repository

import (
	"context"
	"errors"

	"github.com/mansoorceksport/subtrack/internal/domain"
)

const vocabularyKeyPrefix = "vocab:"

// RedisVocabularyRepository implements domain.VocabularyRepository on top of the
// traced Redis cache. Vocabularies never expire.
type RedisVocabularyRepository struct {
	cache *RedisCacheRepository
}

// NewRedisVocabularyRepository creates a new vocabulary repository
func NewRedisVocabularyRepository(cache *RedisCacheRepository) *RedisVocabularyRepository {
	return &RedisVocabularyRepository{cache: cache}
}

// Get returns the owner's vocabulary, or the defaults if none was saved
func (r *RedisVocabularyRepository) Get(ctx context.Context, ownerID string) (*domain.Vocabulary, error) {
	var vocab domain.Vocabulary
	if err := r.cache.Get(ctx, vocabularyKeyPrefix+ownerID, &vocab); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return domain.DefaultVocabulary(), nil
		}
		return nil, err
	}

	if vocab.PlanTypes == nil {
		vocab.PlanTypes = []string{}
	}
	if vocab.Durations == nil {
		vocab.Durations = []domain.DurationOption{}
	}
	return &vocab, nil
}

// Save overwrites the owner's vocabulary
func (r *RedisVocabularyRepository) Save(ctx context.Context, ownerID string, vocabulary *domain.Vocabulary) error {
	return r.cache.Set(ctx, vocabularyKeyPrefix+ownerID, vocabulary, 0)
}
