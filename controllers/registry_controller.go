package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/models"
	"github.com/kendall-kelly/aga-grading-api/services"
)

// CreateRegistryEntryRequest represents the request body for registering a certificate
type CreateRegistryEntryRequest struct {
	CertificateCode string `json:"certificate_code" binding:"required"`
	DisplayName     string `json:"display_name" binding:"required"`
	Note            string `json:"note"`
}

// RegistryEntryResponse is the public view of a registry entry and its certificate
type RegistryEntryResponse struct {
	DisplayName     string     `json:"display_name"`
	Note            string     `json:"note"`
	CertificateCode string     `json:"certificate_code"`
	ItemTitle       string     `json:"item_title,omitempty"`
	Grade           string     `json:"grade,omitempty"`
	IssuedAt        *time.Time `json:"issued_at,omitempty"`
	RegisteredAt    time.Time  `json:"registered_at"`
}

func registryEntryResponse(entry *models.RegistryEntry) RegistryEntryResponse {
	resp := RegistryEntryResponse{
		DisplayName:     entry.DisplayName,
		Note:            entry.Note,
		CertificateCode: entry.CertificateCode,
		RegisteredAt:    entry.CreatedAt,
	}
	if entry.Order != nil {
		resp.ItemTitle = entry.Order.ItemTitle
		resp.Grade = entry.Order.GradeLabel
		issuedAt := entry.Order.CreatedAt
		resp.IssuedAt = &issuedAt
	}
	return resp
}

// CreateRegistryEntry handles POST /api/v1/registry - registers a collector's certificate
func CreateRegistryEntry(c *gin.Context) {
	var req CreateRegistryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "certificate_code and display_name are required")
		return
	}

	entry, err := services.GetRegistryService().Add(c.Request.Context(), req.CertificateCode, req.DisplayName, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    registryEntryResponse(entry),
	})
}

// ListRegistry handles GET /api/v1/registry - lists the latest registry entries
func ListRegistry(c *gin.Context) {
	entries, err := services.GetRegistryService().Latest(c.Request.Context(), services.RegistryListLimit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	data := make([]RegistryEntryResponse, 0, len(entries))
	for i := range entries {
		data = append(data, registryEntryResponse(&entries[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
