package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/subtrack/internal/config"
	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const testSecret = "test-secret-key-123"

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// memoryRepo is an in-memory domain.SubscriptionRepository for HTTP tests
type memoryRepo struct {
	mu       sync.Mutex
	records  map[string][]*domain.Subscription
	failNext error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string][]*domain.Subscription)}
}

func (r *memoryRepo) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *memoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Subscription, 0, len(r.records[ownerID]))
	for _, s := range r.records[ownerID] {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (r *memoryRepo) Insert(ctx context.Context, ownerID string, sub *domain.Subscription) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	r.records[ownerID] = append([]*domain.Subscription{sub.Clone()}, r.records[ownerID]...)
	return sub.Clone(), nil
}

func (r *memoryRepo) Update(ctx context.Context, id, ownerID string, sub *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	for i, s := range r.records[ownerID] {
		if s.ID == id {
			r.records[ownerID][i] = sub.Clone()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memoryRepo) Delete(ctx context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	list := r.records[ownerID]
	for i, s := range list {
		if s.ID == id {
			r.records[ownerID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryObjects) PutExport(ctx context.Context, ownerID string, at time.Time, body []byte) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	key := "exports/" + ownerID + "/" + at.UTC().Format("20060102T150405Z") + ".json"
	m.objects[key] = body
	return key, "http://objects.test/" + key, nil
}

type testEnv struct {
	app     *fiber.App
	repo    *memoryRepo
	objects *memoryObjects
	redis   *miniredis.Miniredis

	lastHeaders http.Header
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.Server.AllowOrigins = "*"
	cfg.Server.IdempotencyTTL = time.Minute
	return cfg
}

// setupApp builds the app over in-memory storage and miniredis.
// db may be nil when repo is provided.
func setupApp(t *testing.T, db *mongo.Database, repo domain.SubscriptionRepository) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	objects := &memoryObjects{}
	n := 0
	app := NewApp(AppDependencies{
		Config:        testConfig(),
		MongoDB:       db,
		RedisClient:   redisClient,
		Subscriptions: repo,
		Exports:       objects,
		StoreOptions: service.StoreOptions{
			Now: func() time.Time { return testNow },
			NewID: func() string {
				n++
				return fmt.Sprintf("sub-%03d", n)
			},
		},
	})

	env := &testEnv{app: app, objects: objects, redis: mr}
	if m, ok := repo.(*memoryRepo); ok {
		env.repo = m
	}
	return env
}

func mintToken(t *testing.T, ownerID string) string {
	t.Helper()
	claims := domain.OwnerClaims{
		UserID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, headers ...string) (int, envelope) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(jsonBytes)
	}
	req, err := http.NewRequest(method, path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	e.lastHeaders = resp.Header

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}
