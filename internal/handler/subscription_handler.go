package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/middleware"
	"github.com/mansoorceksport/subtrack/internal/service"
	"github.com/mansoorceksport/subtrack/internal/telemetry"
)

// SubscriptionHandler handles HTTP requests for subscription records
type SubscriptionHandler struct {
	sessions *service.SessionManager
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(sessions *service.SessionManager) *SubscriptionHandler {
	return &SubscriptionHandler{sessions: sessions}
}

// subscriptionRequest is the create/update body. Dates are YYYY-MM-DD.
type subscriptionRequest struct {
	ClientName     string   `json:"client_name"`
	PlanType       string   `json:"plan_type"`
	Duration       string   `json:"duration"`
	CustomDuration *int     `json:"custom_duration"`
	CustomDate     *string  `json:"custom_date"`
	StartDate      *string  `json:"start_date"`
	Notes          *string  `json:"notes"`
	Cost           *float64 `json:"cost"`
}

func (r subscriptionRequest) toInput() (domain.SubscriptionInput, error) {
	input := domain.SubscriptionInput{
		ClientName:         r.ClientName,
		PlanType:           r.PlanType,
		Duration:           r.Duration,
		CustomDurationDays: r.CustomDuration,
		Notes:              r.Notes,
		Cost:               r.Cost,
	}

	var err error
	if input.StartDate, err = parseOptionalDate("start_date", r.StartDate); err != nil {
		return input, err
	}
	if input.CustomDate, err = parseOptionalDate("custom_date", r.CustomDate); err != nil {
		return input, err
	}
	return input, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(strings.TrimSpace(*value))
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrValidation, field)
	}
	return &d, nil
}

// List handles GET /v1/subscriptions?status=&search=
func (h *SubscriptionHandler) List(c *fiber.Ctx) error {
	filter, err := domain.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return fail(c, err)
	}

	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	records := store.Filter(filter, c.Query("search"))
	return success(c, fiber.StatusOK, subscriptionViews(records, store.Now()))
}

// Get handles GET /v1/subscriptions/:id
func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	sub, err := store.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, subscriptionView(sub, store.Now()))
}

// Create handles POST /v1/subscriptions
func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	input, err := req.toInput()
	if err != nil {
		return fail(c, err)
	}

	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	sub, err := store.Add(c.UserContext(), input)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, subscriptionView(sub, store.Now()))
}

// Update handles PUT /v1/subscriptions/:id
func (h *SubscriptionHandler) Update(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	input, err := req.toInput()
	if err != nil {
		return fail(c, err)
	}

	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	sub, err := store.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, subscriptionView(sub, store.Now()))
}

// Delete handles DELETE /v1/subscriptions/:id
func (h *SubscriptionHandler) Delete(c *fiber.Ctx) error {
	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	if err := store.Remove(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Subscription deleted",
	})
}

// Refetch handles POST /v1/subscriptions/refetch, reloading the session from storage
func (h *SubscriptionHandler) Refetch(c *fiber.Ctx) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return fail(c, domain.ErrForbidden)
	}
	telemetry.TagOwner(c, ownerID)

	store, err := h.sessions.Refetch(c.UserContext(), ownerID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, subscriptionViews(store.List(), store.Now()))
}
