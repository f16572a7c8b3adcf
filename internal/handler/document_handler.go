package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/investleasing/leasing-portal-api/internal/models"
	"github.com/investleasing/leasing-portal-api/internal/service"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
	"github.com/investleasing/leasing-portal-api/pkg/response"
)

type documentProvider interface {
	ListContracts(ctx context.Context, userID string) ([]models.Contract, error)
	ListActs(ctx context.Context, userID string) ([]models.Act, error)
	ListInvoices(ctx context.Context, userID string) ([]models.Invoice, error)
	ListOthers(ctx context.Context, userID string) ([]models.OtherDocument, error)
	OpenDownload(ctx context.Context, userID, category, id string) (*service.Download, error)
}

// DocumentHandler serves the synchronized document lists and downloads.
type DocumentHandler struct {
	service documentProvider
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(svc documentProvider) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// ListContracts godoc
// @Summary List contracts
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /documents/contracts [get]
func (h *DocumentHandler) ListContracts(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	contracts, err := h.service.ListContracts(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contracts, nil)
}

// ListActs godoc
// @Summary List acts
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /documents/acts [get]
func (h *DocumentHandler) ListActs(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	acts, err := h.service.ListActs(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, acts, nil)
}

// ListInvoices godoc
// @Summary List invoices
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /documents/invoices [get]
func (h *DocumentHandler) ListInvoices(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invoices, err := h.service.ListInvoices(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices, nil)
}

// ListOthers godoc
// @Summary List other documents
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /documents/others [get]
func (h *DocumentHandler) ListOthers(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	docs, err := h.service.ListOthers(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// Download godoc
// @Summary Download a stored document
// @Description Stream the bytes of one synchronized document
// @Tags Documents
// @Produce application/octet-stream
// @Param type query string true "Document type" Enums(contract, act, invoice, other)
// @Param id query string true "Document id"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /documents/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	docType := c.Query("type")
	id := c.Query("id")
	if docType == "" || id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "type and id are required"))
		return
	}

	download, err := h.service.OpenDownload(c.Request.Context(), claims.UserID, docType, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Reader.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.FileName))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, download.Reader)
}
