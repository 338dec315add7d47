package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/services"
)

// LookupCertificate handles GET /api/v1/lookup?cert= - public lookup by certificate code
func LookupCertificate(c *gin.Context) {
	view, err := services.GetIssuanceService().Lookup(c.Request.Context(), c.Query("cert"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
	})
}

// VerifyCertificate handles GET /api/v1/certificates/:code/:token and /c/:code/:token.
// Unknown codes and wrong tokens get the same 404.
func VerifyCertificate(c *gin.Context) {
	view, err := services.GetIssuanceService().LookupVerified(c.Request.Context(), c.Param("code"), c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
	})
}
