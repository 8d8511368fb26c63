package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/studo-sync-engine/internal/core/services"
)

const keepAliveInterval = 30 * time.Second

type EventSubscriber interface {
	Subscribe(userID string) (<-chan domain.ChangeEvent, func())
}

type WriteRecorder interface {
	AttendanceWritten(op string)
}

type AttendanceHandler struct {
	svc       *services.AttendanceService
	events    EventSubscriber
	recorder  WriteRecorder
	keepAlive time.Duration
}

func NewAttendanceHandler(svc *services.AttendanceService, events EventSubscriber, recorder WriteRecorder) *AttendanceHandler {
	return &AttendanceHandler{
		svc:       svc,
		events:    events,
		recorder:  recorder,
		keepAlive: keepAliveInterval,
	}
}

// defaultTotalClasses applies when a save omits total_classes.
const defaultTotalClasses = 1

type saveAttendanceRequest struct {
	TotalClasses *int                    `json:"total_classes" binding:"omitempty,gte=0,lte=24"`
	Status       domain.AttendanceStatus `json:"status" binding:"required"`
	LeaveCounted bool                    `json:"leave_counted"`
	Remark       string                  `json:"remark" binding:"max=1000"`
	ProofURL     string                  `json:"proof_url" binding:"omitempty,url"`
	ProofName    string                  `json:"proof_name" binding:"max=255"`
}

func (r saveAttendanceRequest) totalClasses() int {
	if r.TotalClasses == nil {
		return defaultTotalClasses
	}
	return *r.TotalClasses
}

type patchAttendanceRequest struct {
	TotalClasses *int                     `json:"total_classes" binding:"omitempty,gte=0,lte=24"`
	Status       *domain.AttendanceStatus `json:"status"`
	LeaveCounted *bool                    `json:"leave_counted"`
	Remark       *string                  `json:"remark"`
	ProofURL     *string                  `json:"proof_url"`
	ProofName    *string                  `json:"proof_name"`
	Version      int                      `json:"version"`
}

func (h *AttendanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	attendance := router.Group("/attendance")
	{
		attendance.GET("", h.List)
		attendance.GET("/sync", h.Sync)
		attendance.GET("/reports", h.Reports)
		attendance.GET("/events", h.Events)
		attendance.PUT("/:date", h.Save)
		attendance.PATCH("/:date", h.Patch)
		attendance.DELETE("/:date", h.Delete)
	}
}

// List godoc
// @Summary  Attendance days, optionally limited to [from, to]
// @Tags     attendance
// @Produce  json
// @Param    from query string false "YYYY-MM-DD"
// @Param    to   query string false "YYYY-MM-DD"
// @Success  200 {array} domain.AttendanceDay
// @Router   /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	days, err := h.svc.ListInRange(c.Request.Context(), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

// Save godoc
// @Summary  Record (or overwrite) the attendance of one day
// @Tags     attendance
// @Accept   json
// @Produce  json
// @Param    date path string true "YYYY-MM-DD"
// @Param    body body saveAttendanceRequest true "Day"
// @Success  200 {object} domain.AttendanceDay
// @Failure  400 {object} map[string]string
// @Router   /attendance/{date} [put]
func (h *AttendanceHandler) Save(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req saveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	day, err := h.svc.Save(c.Request.Context(), userID, domain.AttendanceInput{
		Date:         c.Param("date"),
		TotalClasses: req.totalClasses(),
		Status:       req.Status,
		LeaveCounted: req.LeaveCounted,
		Remark:       req.Remark,
		ProofURL:     req.ProofURL,
		ProofName:    req.ProofName,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	h.record("upsert")
	c.JSON(http.StatusOK, day)
}

func (h *AttendanceHandler) Patch(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req patchAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	day, err := h.svc.Update(c.Request.Context(), services.UpdateAttendanceInput{
		UserID:       userID,
		Date:         c.Param("date"),
		TotalClasses: req.TotalClasses,
		Status:       req.Status,
		LeaveCounted: req.LeaveCounted,
		Remark:       req.Remark,
		ProofURL:     req.ProofURL,
		ProofName:    req.ProofName,
		Version:      req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	h.record("patch")
	c.JSON(http.StatusOK, day)
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("date")); err != nil {
		handleError(c, err)
		return
	}

	h.record("delete")
	c.Status(http.StatusNoContent)
}

// Sync returns every change after last_sync, soft deletes included.
func (h *AttendanceHandler) Sync(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	raw := c.Query("last_sync")
	if raw == "" {
		raw = c.Query("since")
	}

	var lastSync time.Time
	if raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_sync format, use RFC3339"})
			return
		}
		lastSync = parsed
	}

	serverTime := time.Now().UTC()
	changes, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   changes,
		"timestamp": serverTime,
	})
}

func (h *AttendanceHandler) Reports(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	reports, err := h.svc.Reports(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Events streams change notifications for the caller as server-sent events.
func (h *AttendanceHandler) Events(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	events, cleanup := h.events.Subscribe(userID)
	defer cleanup()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("connected", gin.H{"status": "connected"})
	c.Writer.Flush()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-events:
			if !open {
				return false
			}
			c.SSEvent(event.Kind, event)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Unix()})
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func (h *AttendanceHandler) record(op string) {
	if h.recorder != nil {
		h.recorder.AttendanceWritten(op)
	}
}
