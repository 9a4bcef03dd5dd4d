package repository

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupTestDB spins up a fresh MongoDB container; skipped without Docker
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	t.Cleanup(func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	})

	return mongoClient.Database("subtrack_test")
}

var repoNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func newRecord(id, name string, created time.Time) *domain.Subscription {
	start := repoNow.AddDate(0, 0, -3)
	cost := 9.99
	sub := domain.NewSubscription(id, domain.SubscriptionInput{
		ClientName: name,
		PlanType:   "Basic",
		Duration:   "1-month",
		StartDate:  &start,
		Cost:       &cost,
	}, repoNow)
	sub.CreatedAt = created
	return sub
}

func TestMongoSubscriptionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMongoSubscriptionRepository(db)
	ctx := context.Background()

	older := newRecord("01OLDER", "Netflix", repoNow.Add(-time.Hour))
	newer := newRecord("02NEWER", "Spotify", repoNow)
	foreign := newRecord("03FOREIGN", "Hulu", repoNow)

	t.Run("insert returns the persisted record", func(t *testing.T) {
		got, err := repo.Insert(ctx, "owner-1", older)
		require.NoError(t, err)
		assert.Equal(t, "owner-1", got.OwnerID)
		assert.Equal(t, older.ExpirationDate, got.ExpirationDate)

		_, err = repo.Insert(ctx, "owner-1", newer)
		require.NoError(t, err)
		_, err = repo.Insert(ctx, "owner-2", foreign)
		require.NoError(t, err)
	})

	t.Run("list is scoped and newest first", func(t *testing.T) {
		list, err := repo.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "02NEWER", list[0].ID)
		assert.Equal(t, "01OLDER", list[1].ID)
		assert.Equal(t, domain.StatusActive, list[0].Status)
		require.NotNil(t, list[0].Cost)
		assert.InDelta(t, 9.99, *list[0].Cost, 0.0001)

		empty, err := repo.ListByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("update", func(t *testing.T) {
		changed := newer.Clone()
		notes := "family plan"
		changed.Apply(domain.SubscriptionInput{
			ClientName: "Spotify Family",
			PlanType:   "Premium",
			Duration:   domain.DurationLifetime,
			Notes:      &notes,
		}, repoNow)
		require.NoError(t, repo.Update(ctx, newer.ID, "owner-1", changed))

		list, err := repo.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "Spotify Family", list[0].ClientName)
		assert.Equal(t, domain.LifetimeExpiration, list[0].ExpirationDate)
		require.NotNil(t, list[0].Notes)
		assert.Equal(t, "family plan", *list[0].Notes)

		err = repo.Update(ctx, foreign.ID, "owner-1", changed)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, foreign.ID, "owner-1"), domain.ErrNotFound)
		require.NoError(t, repo.Delete(ctx, older.ID, "owner-1"))

		list, err := repo.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, newer.ID, list[0].ID)
	})
}
