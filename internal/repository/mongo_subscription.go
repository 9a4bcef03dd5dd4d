package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/subtrack/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const subscriptionsCollection = "subscriptions"

// MongoSubscriptionRepository implements domain.SubscriptionRepository
type MongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new subscription repository
func NewMongoSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	coll := db.Collection(subscriptionsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Per-user listing, newest first
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})

	return &MongoSubscriptionRepository{
		collection: coll,
	}
}

// ListByOwner returns the owner's records, newest first
func (r *MongoSubscriptionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	subscriptions := make([]*domain.Subscription, 0)
	for cursor.Next(ctx) {
		var stored domain.StoredSubscription
		if err := cursor.Decode(&stored); err != nil {
			return nil, fmt.Errorf("failed to decode subscription: %w", err)
		}
		sub, err := domain.FromStored(stored)
		if err != nil {
			// one corrupt document should not hide the rest
			log.Printf("[Mongo] Skipping subscription %s: %v", stored.ID, err)
			continue
		}
		subscriptions = append(subscriptions, sub)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return subscriptions, nil
}

// Insert stores a new record and returns it as persisted
func (r *MongoSubscriptionRepository) Insert(ctx context.Context, ownerID string, subscription *domain.Subscription) (*domain.Subscription, error) {
	stored := domain.ToStored(subscription)
	stored.UserID = ownerID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	// Mongo keeps millisecond precision; trim so the returned record matches a reload
	stored.CreatedAt = stored.CreatedAt.Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to insert subscription: %w", err)
	}

	return domain.FromStored(stored)
}

// Update replaces the mutable fields of the owner's record
func (r *MongoSubscriptionRepository) Update(ctx context.Context, id, ownerID string, subscription *domain.Subscription) error {
	stored := domain.ToStored(subscription)

	update := bson.M{
		"$set": bson.M{
			"client_name":     stored.ClientName,
			"plan_type":       stored.PlanType,
			"duration":        stored.Duration,
			"custom_duration": stored.CustomDuration,
			"custom_date":     stored.CustomDate,
			"start_date":      stored.StartDate,
			"expiration_date": stored.ExpirationDate,
			"notes":           stored.Notes,
			"cost":            stored.Cost,
			"status":          stored.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": ownerID}, update)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the owner's record
func (r *MongoSubscriptionRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
