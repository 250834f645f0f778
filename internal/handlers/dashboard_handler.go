package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Antonio-217/controle-financeiro/internal/services"
)

// DashboardHandler serves the monthly 50/30/20 overview.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	now              func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, now: time.Now}
}

// GetDashboard returns the overview of a month
// @Summary     Get dashboard
// @Description Income, expenses, balance, per-bucket progress against the 50/30/20 targets, bills due soon and the month's transactions
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "Month as YYYY-MM (default current month)"
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Store not migrated"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, _, err := parsePeriodQuery(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(sess.GroupID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}
