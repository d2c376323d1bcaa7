package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piscine-hq/piscine-admin-api/internal/importer"
	"github.com/piscine-hq/piscine-admin-api/internal/middleware"
	"github.com/piscine-hq/piscine-admin-api/internal/models"
	"github.com/piscine-hq/piscine-admin-api/internal/service"
	appErrors "github.com/piscine-hq/piscine-admin-api/pkg/errors"
)

type importServiceMock struct {
	runSummary   *service.ImportSummary
	runErr       error
	historyResp  []models.ImportRun
	lastFileName string
	lastUserID   string
	runCalled    bool
}

func (m *importServiceMock) Run(ctx context.Context, fileName string, data []byte, userID string) (*service.ImportSummary, error) {
	m.runCalled = true
	m.lastFileName = fileName
	m.lastUserID = userID
	return m.runSummary, m.runErr
}

func (m *importServiceMock) History(ctx context.Context, limit int) ([]models.ImportRun, error) {
	return m.historyResp, nil
}

func (m *importServiceMock) Get(ctx context.Context, id string) (*models.ImportRun, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "import run not found")
}

func (m *importServiceMock) DownloadToken(ctx context.Context, id string) (string, time.Time, error) {
	return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "import run not found")
}

func (m *importServiceMock) ResolveDownload(token string) (string, error) {
	return "", appErrors.ErrUnauthorized
}

func multipartCSV(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, mock *importServiceMock, withClaims bool) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewImportHandler(mock, nil)

	body, contentType := multipartCSV(t, "roster.csv", "username,name\njdoe,Jane Doe\n")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	if withClaims {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStaff})
	}

	handler.Upload(c)
	return w
}

func TestImportHandlerUpload(t *testing.T) {
	mock := &importServiceMock{runSummary: &service.ImportSummary{
		Run:    &models.ImportRun{ID: "run-1", Success: true, TotalRows: 1, Created: 1},
		Result: &importer.Result{Success: true, Stats: importer.Stats{TotalRows: 1, Created: 1}},
	}}

	w := uploadRequest(t, mock, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mock.runCalled)
	assert.Equal(t, "roster.csv", mock.lastFileName)
	assert.Equal(t, "user-1", mock.lastUserID)
}

func TestImportHandlerUploadRequiresAuth(t *testing.T) {
	mock := &importServiceMock{}
	w := uploadRequest(t, mock, false)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, mock.runCalled)
}

func TestImportHandlerUploadStructuralRejection(t *testing.T) {
	mock := &importServiceMock{runErr: appErrors.ErrUnsupportedFile}
	w := uploadRequest(t, mock, true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrUnsupportedFile.Code, envelope.Error.Code)
}

func TestImportHandlerUploadTimeoutReturnsPartialSummary(t *testing.T) {
	mock := &importServiceMock{
		runSummary: &service.ImportSummary{
			Run:    &models.ImportRun{ID: "run-1", Success: false},
			Result: &importer.Result{Success: false, Message: "import exceeded the time budget; already issued writes were kept"},
		},
		runErr: appErrors.ErrImportTimeout,
	}

	w := uploadRequest(t, mock, true)
	require.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "time budget")
}

func TestImportHandlerHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &importServiceMock{historyResp: []models.ImportRun{{ID: "run-1"}, {ID: "run-2"}}}
	handler := NewImportHandler(mock, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/import/runs?limit=5", nil)
	c.Request = req

	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-2")
}
