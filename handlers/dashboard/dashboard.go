package dashboard

import (
	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the role-specific landing summary
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	d, err := h.dashboard.Get(c.UserContext(), sess)
	if err != nil {
		return handlers.Fail(c, err, "Dashboard")
	}
	return response.Success(c, d)
}
