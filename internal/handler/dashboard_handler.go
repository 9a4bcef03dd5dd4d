package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/subtrack/internal/domain"
	"github.com/mansoorceksport/subtrack/internal/service"
)

// DashboardHandler serves the summary cards and the expiration calendar
type DashboardHandler struct {
	sessions *service.SessionManager
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(sessions *service.SessionManager) *DashboardHandler {
	return &DashboardHandler{sessions: sessions}
}

type summaryResponse struct {
	Total        int                         `json:"total"`
	Active       int                         `json:"active"`
	ExpiringSoon int                         `json:"expiring_soon"`
	Expired      int                         `json:"expired"`
	ActiveCost   float64                     `json:"active_cost"`
	Latest       []domain.StoredSubscription `json:"latest"`
}

type calendarDayResponse struct {
	Date          string                      `json:"date"`
	Subscriptions []domain.StoredSubscription `json:"subscriptions"`
}

type calendarResponse struct {
	Year        int                         `json:"year"`
	Month       int                         `json:"month"`
	Days        []calendarDayResponse       `json:"days"`
	Expirations []domain.StoredSubscription `json:"expirations"`
}

// Summary handles GET /v1/dashboard/summary?status=&search=
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	filter, err := domain.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return fail(c, err)
	}

	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	now := store.Now()
	summary := store.Summary(filter, c.Query("search"))
	return success(c, fiber.StatusOK, summaryResponse{
		Total:        summary.Total,
		Active:       summary.Active,
		ExpiringSoon: summary.ExpiringSoon,
		Expired:      summary.Expired,
		ActiveCost:   summary.ActiveCost,
		Latest:       subscriptionViews(summary.Latest, now),
	})
}

// Calendar handles GET /v1/calendar?year=&month=, defaulting to the current month
func (h *DashboardHandler) Calendar(c *fiber.Ctx) error {
	store, err := ownerStore(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}

	now := store.Now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 || year < 1 || year > domain.LifetimeYear {
		return badRequest(c, "year/month out of range")
	}

	cal := store.Calendar(year, time.Month(month))

	resp := calendarResponse{
		Year:        cal.Year,
		Month:       int(cal.Month),
		Days:        make([]calendarDayResponse, 0, len(cal.Days)),
		Expirations: subscriptionViews(cal.Expirations, now),
	}
	for _, day := range cal.Days {
		resp.Days = append(resp.Days, calendarDayResponse{
			Date:          domain.FormatDate(day.Date),
			Subscriptions: subscriptionViews(day.Subscriptions, now),
		})
	}

	return success(c, fiber.StatusOK, resp)
}
