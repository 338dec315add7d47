package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/services"
)

// GradeImage handles POST /api/v1/grade - scores an uploaded image without issuing a certificate
func GradeImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "An image file is required in the 'image' field")
		return
	}

	result, err := services.GetImageService().GradeUpload(fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"grade":     result.Grade,
			"subgrades": result.Subgrades,
			"overall":   result.Overall,
		},
	})
}
