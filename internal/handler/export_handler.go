package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/middleware"
	"github.com/mansoorceksport/subtrack/internal/service"
	"github.com/mansoorceksport/subtrack/internal/telemetry"
)

// ExportHandler uploads JSON snapshots of the owner's data
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Create handles POST /v1/exports
func (h *ExportHandler) Create(c *fiber.Ctx) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return fail(c, domain.ErrForbidden)
	}
	telemetry.TagOwner(c, ownerID)

	result, err := h.exports.Export(c.UserContext(), ownerID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, result)
}
