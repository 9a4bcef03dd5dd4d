package handler

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/middleware"
	"github.com/mansoorceksport/subtrack/internal/service"
	"github.com/mansoorceksport/subtrack/internal/telemetry"
)

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	var pe *domain.PersistenceError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrExportDisabled):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &pe):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("[Handler] %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// ownerStore resolves the authenticated owner's session
func ownerStore(c *fiber.Ctx, sessions *service.SessionManager) (*service.SubscriptionStore, error) {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return nil, domain.ErrForbidden
	}
	telemetry.TagOwner(c, ownerID)
	return sessions.Store(c.UserContext(), ownerID)
}

// subscriptionView is the wire form of a record: flat snake-case with YYYY-MM-DD dates
func subscriptionView(sub *domain.Subscription, now time.Time) domain.StoredSubscription {
	view := domain.ToStored(sub)
	view.DaysLeft = domain.DaysUntilExpiry(sub.ExpirationDate, now)
	return view
}

func subscriptionViews(subs []*domain.Subscription, now time.Time) []domain.StoredSubscription {
	views := make([]domain.StoredSubscription, 0, len(subs))
	for _, sub := range subs {
		views = append(views, subscriptionView(sub, now))
	}
	return views
}
