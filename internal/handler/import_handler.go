package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
	"github.com/piscine-hq/piscine-admin-api/internal/service"
	appErrors "github.com/piscine-hq/piscine-admin-api/pkg/errors"
	"github.com/piscine-hq/piscine-admin-api/pkg/response"
	"github.com/piscine-hq/piscine-admin-api/pkg/storage"
)

type importRunner interface {
	Run(ctx context.Context, fileName string, data []byte, userID string) (*service.ImportSummary, error)
	History(ctx context.Context, limit int) ([]models.ImportRun, error)
	Get(ctx context.Context, id string) (*models.ImportRun, error)
	DownloadToken(ctx context.Context, id string) (string, time.Time, error)
	ResolveDownload(token string) (string, error)
}

// ImportHandler exposes the CSV smart-import endpoints.
type ImportHandler struct {
	service importRunner
	uploads *storage.LocalStorage
}

// NewImportHandler creates a new handler.
func NewImportHandler(svc importRunner, uploads *storage.LocalStorage) *ImportHandler {
	return &ImportHandler{service: svc, uploads: uploads}
}

// Upload godoc
// @Summary Import a CSV file
// @Description Classify and upsert students, exam grades and rush scores from an uploaded CSV
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 408 {object} response.Envelope
// @Router /import [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close() //nolint:errcheck

	data, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file"))
		return
	}

	summary, err := h.service.Run(c.Request.Context(), fileHeader.Filename, data, claims.UserID)
	if err != nil {
		// A timeout still carries a partial summary worth returning.
		if summary != nil && errors.Is(err, appErrors.ErrImportTimeout) {
			response.JSON(c, http.StatusRequestTimeout, summary, nil)
			return
		}
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

// History godoc
// @Summary List import runs
// @Description List the most recent import invocations
// @Tags Import
// @Produce json
// @Param limit query int false "Maximum number of runs"
// @Success 200 {object} response.Envelope
// @Router /import/runs [get]
func (h *ImportHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, nil)
}

// Get godoc
// @Summary Get one import run
// @Tags Import
// @Produce json
// @Param id path string true "Import run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /import/runs/{id} [get]
func (h *ImportHandler) Get(c *gin.Context) {
	run, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// DownloadToken godoc
// @Summary Issue a download token for the raw uploaded file
// @Tags Import
// @Produce json
// @Param id path string true "Import run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /import/runs/{id}/download-token [post]
func (h *ImportHandler) DownloadToken(c *gin.Context) {
	token, expiresAt, err := h.service.DownloadToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"token": token, "expires_at": expiresAt}, nil)
}

// Download godoc
// @Summary Download a raw uploaded file
// @Description Stream the original CSV referenced by a signed token
// @Tags Import
// @Produce text/csv
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /import/download [get]
func (h *ImportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	relPath, err := h.service.ResolveDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.uploads.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "stored file no longer exists"))
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", "attachment")
	c.Header("Content-Type", "text/csv")
	if _, err := io.Copy(c.Writer, file); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
