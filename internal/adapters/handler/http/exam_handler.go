package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/studo-sync-engine/internal/core/services"
)

type ExamHandler struct {
	svc *services.ExamService
}

func NewExamHandler(svc *services.ExamService) *ExamHandler {
	return &ExamHandler{
		svc: svc,
	}
}

type createExamRequest struct {
	Title       string          `json:"title" binding:"required"`
	Subject     string          `json:"subject" binding:"max=200"`
	Kind        domain.ExamKind `json:"kind"`
	Date        string          `json:"date" binding:"required"`
	Description string          `json:"description" binding:"max=2000"`
}

func (h *ExamHandler) RegisterRoutes(router *gin.RouterGroup) {
	exams := router.Group("/exams")
	{
		exams.POST("", h.Create)
		exams.GET("", h.Schedule)
		exams.DELETE("/:id", h.Delete)
	}
}

func (h *ExamHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req createExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exam, err := h.svc.Create(c.Request.Context(), services.CreateExamInput{
		UserID:      userID,
		Title:       req.Title,
		Subject:     req.Subject,
		Kind:        req.Kind,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// Schedule godoc
// @Summary  Upcoming and past exams with days left
// @Tags     exams
// @Produce  json
// @Success  200 {object} domain.ExamSchedule
// @Router   /exams [get]
func (h *ExamHandler) Schedule(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	schedule, err := h.svc.Schedule(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *ExamHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
