package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/investleasing/leasing-portal-api/internal/models"
	appErrors "github.com/investleasing/leasing-portal-api/pkg/errors"
	"github.com/investleasing/leasing-portal-api/pkg/response"
)

type syncRunner interface {
	Sync(ctx context.Context, userID string) (*models.SyncResult, error)
}

// SyncHandler triggers document synchronization runs.
type SyncHandler struct {
	service syncRunner
}

// NewSyncHandler creates a new handler.
func NewSyncHandler(svc syncRunner) *SyncHandler {
	return &SyncHandler{service: svc}
}

// Sync godoc
// @Summary Synchronize documents
// @Description Walk the customer's remote folder, download and classify every document
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Security BearerAuth
// @Router /documents/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.Sync(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "synchronization finished"
	if result.Count == 0 && result.Skipped == 0 {
		message = "no documents found"
	} else if result.Skipped > 0 {
		message = "synchronization finished with skipped files"
	}

	response.JSON(c, http.StatusOK, result, map[string]interface{}{"message": message})
}
