package handler

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/service"
)

// VocabularyHandler manages the owner's plan types and duration options
type VocabularyHandler struct {
	sessions *service.SessionManager
}

// NewVocabularyHandler creates a new vocabulary handler
func NewVocabularyHandler(sessions *service.SessionManager) *VocabularyHandler {
	return &VocabularyHandler{sessions: sessions}
}

// ListPlanTypes handles GET /v1/plan-types
func (h *VocabularyHandler) ListPlanTypes(c *fiber.Ctx) error {
	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, store.Vocabulary().PlanTypes)
}

// AddPlanType handles POST /v1/plan-types
func (h *VocabularyHandler) AddPlanType(c *fiber.Ctx) error {
	var req struct {
		Label string `json:"label"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	if err := store.AddPlanType(c.UserContext(), req.Label); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, store.Vocabulary().PlanTypes)
}

// RemovePlanType handles DELETE /v1/plan-types/:label
func (h *VocabularyHandler) RemovePlanType(c *fiber.Ctx) error {
	label, err := url.PathUnescape(c.Params("label"))
	if err != nil {
		return badRequest(c, "Invalid plan type")
	}

	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	if err := store.RemovePlanType(c.UserContext(), label); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, store.Vocabulary().PlanTypes)
}

// ListDurations handles GET /v1/durations
func (h *VocabularyHandler) ListDurations(c *fiber.Ctx) error {
	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, store.Vocabulary().Durations)
}

// AddDuration handles POST /v1/durations
func (h *VocabularyHandler) AddDuration(c *fiber.Ctx) error {
	var entry domain.DurationOption
	if err := c.BodyParser(&entry); err != nil {
		return badRequest(c, "Invalid request body")
	}

	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	if err := store.AddDuration(c.UserContext(), entry); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, store.Vocabulary().Durations)
}

// UpdateDuration handles PUT /v1/durations/:index
func (h *VocabularyHandler) UpdateDuration(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "Duration index must be a number")
	}

	var entry domain.DurationOption
	if err := c.BodyParser(&entry); err != nil {
		return badRequest(c, "Invalid request body")
	}

	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	if err := store.UpdateDuration(c.UserContext(), index, entry); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, store.Vocabulary().Durations)
}

// RemoveDuration handles DELETE /v1/durations/:index
func (h *VocabularyHandler) RemoveDuration(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "Duration index must be a number")
	}

	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	if err := store.RemoveDuration(c.UserContext(), index); err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, store.Vocabulary().Durations)
}
