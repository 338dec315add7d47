package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/services"
	"github.com/kendall-kelly/aga-grading-api/utils"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service error kinds to the JSON error envelope
func respondServiceError(c *gin.Context, err error) {
	var uploadErr *utils.FileUploadError
	switch {
	case errors.As(err, &uploadErr):
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
	case errors.Is(err, services.ErrInvalidImage):
		respondError(c, http.StatusBadRequest, "INVALID_IMAGE", "The image could not be read")
	case errors.Is(err, services.ErrInvalidSubmission):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrCertificateNotFound):
		respondError(c, http.StatusNotFound, "CERTIFICATE_NOT_FOUND", "Certificate not found")
	case errors.Is(err, services.ErrPersistence):
		slog.Error("persistence failure", "path", c.FullPath(), "error", err.Error())
		respondError(c, http.StatusServiceUnavailable, "PERSISTENCE_FAILURE", "Storage is temporarily unavailable, please retry")
	default:
		slog.Error("unexpected error", "path", c.FullPath(), "error", err.Error())
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
