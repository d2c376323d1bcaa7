package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
	"github.com/piscine-hq/piscine-admin-api/internal/service"
	"github.com/piscine-hq/piscine-admin-api/pkg/response"
)

// ExportHandler streams roster exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Roster godoc
// @Summary Export the student roster
// @Description Render the roster as CSV or PDF
// @Tags Export
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Param search query string false "Search by name or username"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /export/students [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	filter := models.StudentFilter{Search: c.Query("search")}

	file, err := h.service.Roster(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
