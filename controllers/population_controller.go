package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/services"
)

// GetPopulation handles GET /api/v1/population - counts for one title with ?title=,
// otherwise the full population report
func GetPopulation(c *gin.Context) {
	population := services.GetPopulationService()

	if title := strings.TrimSpace(c.Query("title")); title != "" {
		counts, err := population.Counts(c.Request.Context(), title)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"item_title": title,
				"counts":     counts,
			},
		})
		return
	}

	rows, err := population.Report(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rows,
	})
}
