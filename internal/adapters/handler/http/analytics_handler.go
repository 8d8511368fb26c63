package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/services"
)

type AnalyticsHandler struct {
	svc *services.AnalyticsService
}

func NewAnalyticsHandler(svc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/analytics", h.Get)
}

// Get godoc
// @Summary  Totals, percentage and per-month breakdown
// @Tags     analytics
// @Produce  json
// @Param    from  query string false "YYYY-MM-DD"
// @Param    to    query string false "YYYY-MM-DD"
// @Param    scope query string false "all | semester"
// @Success  200 {object} domain.AttendanceAnalytics
// @Router   /analytics [get]
func (h *AnalyticsHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	analytics, err := h.svc.GetAnalytics(c.Request.Context(), services.AnalyticsQuery{
		UserID: userID,
		From:   c.Query("from"),
		To:     c.Query("to"),
		Scope:  c.DefaultQuery("scope", services.ScopeSemester),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}
