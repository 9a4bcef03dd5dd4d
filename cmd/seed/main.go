package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/subtrack/internal/config"
	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/repository"
	"github.com/mansoorceksport/subtrack/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ownerID   string
	email     string
	reset     bool
	tokenOnly bool
)

type sample struct {
	name       string
	planType   string
	duration   string
	startDays  int // days before today
	customDays int
	notes      string
}

var samples = []sample{
	// Active
	{name: "Netflix", planType: "Basic", duration: "1-month", startDays: 10, notes: "Family plan with 4K streaming"},
	{name: "Spotify Premium", planType: "Premium", duration: "1-month", startDays: 5, notes: "Individual plan"},
	{name: "Adobe Creative Cloud", planType: "Platinum", duration: "1-year", startDays: 60, notes: "Full suite for design work"},
	// Expiring soon
	{name: "GitHub Pro", planType: "Premium", duration: "1-month", startDays: 20, notes: "Private repositories and advanced features"},
	{name: "Gym Membership", planType: "Basic", duration: "custom", startDays: 77, customDays: 90, notes: "Annual membership with personal trainer sessions"},
	// Expired
	{name: "New York Times", planType: "Premium", duration: "1-month", startDays: 35, notes: "Digital subscription"},
	{name: "VPN Service", planType: "Platinum", duration: "1-year", startDays: 370, notes: "NordVPN premium plan"},
	{name: "Microsoft 365", planType: "Basic", duration: "1-month", startDays: 40, notes: "Office suite and cloud storage"},
}

func main() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed sample subscriptions for a local owner",
		Long:  `Inserts a set of sample subscriptions covering every status for one owner and prints a development JWT for that owner.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&ownerID, "owner", "o", "demo-user", "Owner id to seed")
	cmd.Flags().StringVar(&email, "email", "demo@subtrack.local", "Email claim for the dev token")
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete the owner's existing subscriptions and vocabulary first")
	cmd.Flags().BoolVar(&tokenOnly, "token-only", false, "Only print a dev token")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !tokenOnly {
		if err := seed(cmd.Context(), cfg); err != nil {
			return err
		}
	}

	token, err := devToken(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("\nDev token for %s (valid %s):\n%s\n", ownerID, cfg.JWT.DevTokenExpiry, token)
	return nil
}

func seed(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to Mongo: %w", err)
	}
	defer client.Disconnect(context.Background())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	db := client.Database(cfg.MongoDB.Database)
	cache := repository.NewRedisCacheRepository(redisClient)

	if reset {
		res, err := db.Collection("subscriptions").DeleteMany(ctx, bson.M{"user_id": ownerID})
		if err != nil {
			return fmt.Errorf("failed to reset subscriptions: %w", err)
		}
		if err := cache.Delete(ctx, "vocab:"+ownerID); err != nil {
			return fmt.Errorf("failed to reset vocabulary: %w", err)
		}
		log.Printf("Removed %d existing subscriptions for %s", res.DeletedCount, ownerID)
	}

	sessions := service.NewSessionManager(
		repository.NewMongoSubscriptionRepository(db),
		repository.NewRedisVocabularyRepository(cache),
		service.StoreOptions{},
	)
	store, err := sessions.Store(ctx, ownerID)
	if err != nil {
		return err
	}

	now := store.Now()
	// oldest first so the list comes back in sample order
	for i := len(samples) - 1; i >= 0; i-- {
		s := samples[i]
		start := now.AddDate(0, 0, -s.startDays)
		notes := s.notes
		input := domain.SubscriptionInput{
			ClientName: s.name,
			PlanType:   s.planType,
			Duration:   s.duration,
			StartDate:  &start,
			Notes:      &notes,
		}
		if s.customDays > 0 {
			days := s.customDays
			input.CustomDurationDays = &days
		}

		sub, err := store.Add(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", s.name, err)
		}
		log.Printf("✓ %-22s %s  expires %s (%s)", sub.ClientName, sub.ID, domain.FormatDate(sub.ExpirationDate), sub.Status)
		// keep created_at strictly increasing for stable ordering
		time.Sleep(2 * time.Millisecond)
	}

	log.Printf("Seeded %d subscriptions for %s", len(samples), ownerID)
	return nil
}

func devToken(cfg *config.Config) (string, error) {
	now := time.Now()
	claims := domain.OwnerClaims{
		UserID: ownerID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWT.DevTokenExpiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign dev token: %w", err)
	}
	return signed, nil
}
