package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/subtrack/internal/repository"
)

// CorrelationHeader carries the client-generated request id used for replay
const CorrelationHeader = "X-Correlation-ID"

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyMiddleware replays the stored response when a POST/PUT/PATCH is retried
// with the same X-Correlation-ID within ttl. Keys are scoped per owner, so it must
// run after VerifyOwnerToken.
func IdempotencyMiddleware(cache *repository.RedisCacheRepository, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPatch && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get(CorrelationHeader)
		if correlationID == "" {
			return c.Next()
		}

		key := fmt.Sprintf("idempotency:%s:%s", GetOwnerID(c), correlationID)

		var cached cachedResponse
		err := cache.Get(c.UserContext(), key, &cached)
		if err == nil {
			c.Set("X-Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(cached.Status).Send(cached.Body)
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			// Redis trouble must not block writes
			log.Printf("[Idempotency] lookup failed for %s: %v", key, err)
		}

		if err := c.Next(); err != nil {
			return err
		}

		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 300 {
			body := append([]byte(nil), c.Response().Body()...)
			if len(body) > 0 {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				// first response wins when two requests raced past the lookup
				if _, err := cache.SetNX(ctx, key, cachedResponse{Status: statusCode, Body: body}, ttl); err != nil {
					log.Printf("[Idempotency] store failed for %s: %v", key, err)
				}
			}
		}

		return nil
	}
}
