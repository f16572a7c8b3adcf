package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investleasing/leasing-portal-api/internal/middleware"
	"github.com/investleasing/leasing-portal-api/internal/models"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
)

type syncRunnerMock struct {
	result *models.SyncResult
	err    error
	userID string
}

func (m *syncRunnerMock) Sync(ctx context.Context, userID string) (*models.SyncResult, error) {
	m.userID = userID
	return m.result, m.err
}

func syncRequest(t *testing.T, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/documents/sync", nil)
	require.NoError(t, err)
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func TestSyncHandlerSuccess(t *testing.T) {
	mock := &syncRunnerMock{result: &models.SyncResult{
		Documents: []models.DocumentRecord{{ID: "d1", Category: "contract", Number: "ДЛ-001"}},
		Count:     1,
	}}
	handler := NewSyncHandler(mock)

	c, w := syncRequest(t, &models.JWTClaims{UserID: "u1"})
	handler.Sync(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", mock.userID)

	var envelope struct {
		Data models.SyncResult      `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Count)
	assert.Equal(t, "synchronization finished", envelope.Meta["message"])
}

func TestSyncHandlerEmptyResult(t *testing.T) {
	mock := &syncRunnerMock{result: &models.SyncResult{Documents: []models.DocumentRecord{}}}
	handler := NewSyncHandler(mock)

	c, w := syncRequest(t, &models.JWTClaims{UserID: "u1"})
	handler.Sync(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "no documents found", envelope.Meta["message"])
}

func TestSyncHandlerUnauthorized(t *testing.T) {
	handler := NewSyncHandler(&syncRunnerMock{})

	c, w := syncRequest(t, nil)
	handler.Sync(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncHandlerSurfacesErrorKind(t *testing.T) {
	mock := &syncRunnerMock{err: appErrors.ErrCustomerFolderNotFound}
	handler := NewSyncHandler(mock)

	c, w := syncRequest(t, &models.JWTClaims{UserID: "u1"})
	handler.Sync(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrCustomerFolderNotFound.Code, envelope.Error.Code)
}

func TestSyncHandlerConflictWhenRunInProgress(t *testing.T) {
	mock := &syncRunnerMock{err: appErrors.ErrSyncInProgress}
	handler := NewSyncHandler(mock)

	c, w := syncRequest(t, &models.JWTClaims{UserID: "u1"})
	handler.Sync(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
