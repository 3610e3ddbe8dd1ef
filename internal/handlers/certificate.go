package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shihabhq/democracy-server/internal/certificate"
	"github.com/shihabhq/democracy-server/internal/models"
	"github.com/shihabhq/democracy-server/internal/pngmeta"
	"github.com/shihabhq/democracy-server/internal/services"
	"github.com/shihabhq/democracy-server/internal/storage"
)

type CertificateHandler struct {
	certService *services.CertificateService
}

func NewCertificateHandler(certService *services.CertificateService) *CertificateHandler {
	return &CertificateHandler{certService: certService}
}

// Get godoc
// @Summary      Download a certificate
// @Description  Returns the certificate PDF for a passing attempt, generating it on first request. Remote artifacts redirect to their public URL.
// @Tags         certificate
// @Produce      application/pdf
// @Param        attemptId path string true "Attempt ID"
// @Success      200 {file} file
// @Success      302
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/certificate/{attemptId} [get]
func (h *CertificateHandler) Get(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("attemptId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid attempt id"})
		return
	}

	loc, err := h.certService.GetOrCreate(c.Request.Context(), attemptID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAttemptNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrAttemptNotPassed):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, storage.ErrUpload):
			// Retryable: external storage hiccup.
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to store certificate, please retry"})
		case errors.Is(err, certificate.ErrTemplateUnavailable),
			errors.Is(err, pngmeta.ErrInvalidImage),
			errors.Is(err, certificate.ErrRender):
			// Operator-correctable template problems; not retryable.
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate certificate"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	if loc.Kind == models.LocationRemote {
		c.Redirect(http.StatusFound, loc.Value)
		return
	}
	c.FileAttachment(loc.Value, "certificate.pdf")
}
