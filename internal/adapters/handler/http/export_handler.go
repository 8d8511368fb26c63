package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/studo-sync-engine/internal/core/services"
)

const maxImportBytes = 5 << 20

type ExportHandler struct {
	svc *services.ExportService
}

func NewExportHandler(svc *services.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

func (h *ExportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/export", h.Export)
	router.GET("/export/csv", h.ExportCSV)
	router.POST("/import", h.Import)
}

// Export godoc
// @Summary  Full JSON backup of the caller's data
// @Tags     export
// @Produce  json
// @Success  200 {object} domain.ExportBundle
// @Router   /export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	bundle, err := h.svc.Export(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="studo-backup-%s.json"`, bundle.ExportedAt.Format("2006-01-02")))
	c.JSON(http.StatusOK, bundle)
}

func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.svc.ExportCSV(c.Request.Context(), userID, &buf); err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="attendance.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Import godoc
// @Summary  Restore a backup produced by /export
// @Tags     export
// @Accept   json
// @Produce  json
// @Param    body body domain.ExportBundle true "Backup"
// @Success  200 {object} services.ImportResult
// @Failure  400 {object} map[string]string
// @Router   /import [post]
func (h *ExportHandler) Import(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	var bundle domain.ExportBundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup file", "details": err.Error()})
		return
	}

	result, err := h.svc.Import(c.Request.Context(), userID, &bundle)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
