package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investleasing/leasing-portal-api/internal/middleware"
	"github.com/investleasing/leasing-portal-api/internal/models"
	"github.com/investleasing/leasing-portal-api/internal/service"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
)

type documentProviderMock struct {
	contracts []models.Contract
	download  *service.Download
	err       error
}

func (m *documentProviderMock) ListContracts(ctx context.Context, userID string) ([]models.Contract, error) {
	return m.contracts, m.err
}

func (m *documentProviderMock) ListActs(ctx context.Context, userID string) ([]models.Act, error) {
	return nil, m.err
}

func (m *documentProviderMock) ListInvoices(ctx context.Context, userID string) ([]models.Invoice, error) {
	return nil, m.err
}

func (m *documentProviderMock) ListOthers(ctx context.Context, userID string) ([]models.OtherDocument, error) {
	return nil, m.err
}

func (m *documentProviderMock) OpenDownload(ctx context.Context, userID, category, id string) (*service.Download, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.download, nil
}

func documentRequest(t *testing.T, target string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func TestDocumentHandlerListContracts(t *testing.T) {
	mock := &documentProviderMock{contracts: []models.Contract{{ID: "c1", Number: "ДЛ-001"}}}
	handler := NewDocumentHandler(mock)

	c, w := documentRequest(t, "/documents/contracts", &models.JWTClaims{UserID: "u1"})
	handler.ListContracts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ДЛ-001")
}

func TestDocumentHandlerDownload(t *testing.T) {
	mock := &documentProviderMock{download: &service.Download{
		FileName: "ДЛ-001_dogovor.pdf",
		Reader:   io.NopCloser(strings.NewReader("file bytes")),
	}}
	handler := NewDocumentHandler(mock)

	c, w := documentRequest(t, "/documents/download?type=contract&id=c1", &models.JWTClaims{UserID: "u1"})
	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "file bytes", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}

func TestDocumentHandlerDownloadRequiresParams(t *testing.T) {
	handler := NewDocumentHandler(&documentProviderMock{})

	c, w := documentRequest(t, "/documents/download?type=contract", &models.JWTClaims{UserID: "u1"})
	handler.Download(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerDownloadForbidden(t *testing.T) {
	mock := &documentProviderMock{err: appErrors.ErrForbidden}
	handler := NewDocumentHandler(mock)

	c, w := documentRequest(t, "/documents/download?type=contract&id=c1", &models.JWTClaims{UserID: "u1"})
	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
