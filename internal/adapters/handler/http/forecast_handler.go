package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/services"
)

type ForecastRecorder interface {
	ForecastComputed(kind string)
}

// ForecastHandler answers "what if" questions. Nothing here is cached:
// every request recomputes from the stored attendance.
type ForecastHandler struct {
	svc           *services.ForecastService
	recorder      ForecastRecorder
	defaultTarget float64
}

func NewForecastHandler(svc *services.ForecastService, recorder ForecastRecorder, defaultTarget float64) *ForecastHandler {
	return &ForecastHandler{
		svc:           svc,
		recorder:      recorder,
		defaultTarget: defaultTarget,
	}
}

func (h *ForecastHandler) RegisterRoutes(router *gin.RouterGroup) {
	forecast := router.Group("/forecast")
	{
		forecast.GET("/leave-plan", h.LeavePlan)
		forecast.GET("/range", h.Range)
		forecast.GET("/semester", h.Semester)
		forecast.GET("/audit", h.Audit)
	}
}

// LeavePlan godoc
// @Summary  Project attendance after taking planned leave days
// @Tags     forecast
// @Produce  json
// @Param    mode   query string false "SEMESTER | MONTH"
// @Param    month  query string false "Month key, e.g. 'March 2024'"
// @Param    leaves query int    false "Planned leave days"
// @Param    target query number false "Target percentage"
// @Param    today  query string false "Override of the current date"
// @Success  200 {object} services.LeavePlanResult
// @Router   /forecast/leave-plan [get]
func (h *ForecastHandler) LeavePlan(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	target, ok := queryFloat(c, "target", h.defaultTarget)
	if !ok {
		return
	}
	leaves, ok := queryInt(c, "leaves", 0)
	if !ok {
		return
	}

	plan, err := h.svc.LeavePlan(c.Request.Context(), services.LeavePlanQuery{
		UserID:        userID,
		Mode:          c.Query("mode"),
		Month:         c.Query("month"),
		PlannedLeaves: leaves,
		Target:        target,
		Today:         c.Query("today"),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	h.record("leave_plan")
	c.JSON(http.StatusOK, plan)
}

func (h *ForecastHandler) Range(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	target, ok := queryFloat(c, "target", h.defaultTarget)
	if !ok {
		return
	}

	forecast, err := h.svc.RangeForecast(c.Request.Context(), services.RangeForecastQuery{
		UserID: userID,
		Start:  c.Query("from"),
		End:    c.Query("to"),
		Target: target,
		Today:  c.Query("today"),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	h.record("range")
	c.JSON(http.StatusOK, forecast)
}

func (h *ForecastHandler) Semester(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	target, ok := queryFloat(c, "target", h.defaultTarget)
	if !ok {
		return
	}

	summary, err := h.svc.SemesterSummary(c.Request.Context(), userID, target, c.Query("today"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.record("semester")
	c.JSON(http.StatusOK, summary)
}

func (h *ForecastHandler) Audit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.svc.Audit(c.Request.Context(), userID, c.Query("today"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.record("audit")
	c.JSON(http.StatusOK, report)
}

func (h *ForecastHandler) record(kind string) {
	if h.recorder != nil {
		h.recorder.ForecastComputed(kind)
	}
}
