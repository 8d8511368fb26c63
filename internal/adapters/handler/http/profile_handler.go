package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/studo-sync-engine/internal/core/services"
)

type ProfileHandler struct {
	svc *services.ProfileService
}

func NewProfileHandler(svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.Get)
		profile.PUT("", h.Update)
		profile.PUT("/semester", h.SetSemester)
		profile.DELETE("/semester", h.ClearSemester)
	}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	student, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req domain.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.svc.Update(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

// SetSemester godoc
// @Summary  Configure the semester window used as forecast baseline
// @Tags     profile
// @Accept   json
// @Produce  json
// @Param    body body domain.SemesterWindow true "Inclusive window"
// @Success  200 {object} domain.Student
// @Failure  400 {object} map[string]string
// @Router   /profile/semester [put]
func (h *ProfileHandler) SetSemester(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req domain.SemesterWindow
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.svc.SetSemester(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *ProfileHandler) ClearSemester(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if _, err := h.svc.SetSemester(c.Request.Context(), userID, nil); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
