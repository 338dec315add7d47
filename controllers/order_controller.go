package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/grading"
	"github.com/kendall-kelly/aga-grading-api/models"
	"github.com/kendall-kelly/aga-grading-api/services"
)

// RecentOrdersLimit is the number of orders listed by GET /api/v1/orders/recent
const RecentOrdersLimit = 6

// CreateOrderRequest represents the request body for issuing a certificate.
// Multipart requests carry the same fields as form values plus an optional
// "image" file; "subgrades" is then a JSON object string.
type CreateOrderRequest struct {
	SubmitterName  string            `json:"submitter_name" form:"submitter_name"`
	SubmitterEmail string            `json:"submitter_email" form:"submitter_email"`
	ItemTitle      string            `json:"item_title" form:"item_title"`
	ServiceTier    string            `json:"service_tier" form:"service_tier"`
	Grade          string            `json:"grade" form:"grade"`
	Subgrades      grading.Subgrades `json:"subgrades" form:"-"`
}

// IssuedCertificateResponse is the body of a successful issuance
type IssuedCertificateResponse struct {
	CertificateCode   string               `json:"certificate_code"`
	VerificationToken string               `json:"verification_token"`
	VerificationURL   string               `json:"verification_url"`
	SubmitterName     string               `json:"submitter_name"`
	ItemTitle         string               `json:"item_title"`
	ServiceTier       string               `json:"service_tier"`
	Grade             string               `json:"grade"`
	Subgrades         grading.Subgrades    `json:"subgrades"`
	CreatedAt         time.Time            `json:"created_at"`
	Artifacts         services.ArtifactSet `json:"artifacts"`
}

// OrderSummary is the public listing view of an order
type OrderSummary struct {
	CertificateCode string    `json:"certificate_code"`
	ItemTitle       string    `json:"item_title"`
	Grade           string    `json:"grade"`
	CreatedAt       time.Time `json:"created_at"`
}

func summarizeOrder(order *models.Order) OrderSummary {
	return OrderSummary{
		CertificateCode: order.CertificateCode,
		ItemTitle:       order.ItemTitle,
		Grade:           order.GradeLabel,
		CreatedAt:       order.CreatedAt,
	}
}

// CreateOrder handles POST /api/v1/orders - grades the submission if needed and issues a certificate
func CreateOrder(c *gin.Context) {
	submission, ok := bindSubmission(c)
	if !ok {
		return
	}

	result, err := services.GetIssuanceService().Issue(c.Request.Context(), submission)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order := result.Order
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": IssuedCertificateResponse{
			CertificateCode:   order.CertificateCode,
			VerificationToken: result.VerificationToken,
			VerificationURL:   result.VerificationURL,
			SubmitterName:     order.SubmitterName,
			ItemTitle:         order.ItemTitle,
			ServiceTier:       order.ServiceTier,
			Grade:             order.GradeLabel,
			Subgrades:         order.SubgradeScores(),
			CreatedAt:         order.CreatedAt,
			Artifacts:         result.Artifacts,
		},
	})
}

// bindSubmission reads a JSON or multipart issuance request, writing the error response on failure
func bindSubmission(c *gin.Context) (services.Submission, bool) {
	var req CreateOrderRequest
	var submission services.Submission

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid form data")
			return submission, false
		}
		if raw := strings.TrimSpace(c.PostForm("subgrades")); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Subgrades); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "subgrades must be a JSON object of numbers")
				return submission, false
			}
		}

		fileHeader, err := c.FormFile("image")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid image upload")
			return submission, false
		}
		submission.ImageFile = fileHeader
	} else if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return submission, false
	}

	submission.SubmitterName = req.SubmitterName
	submission.SubmitterEmail = req.SubmitterEmail
	submission.ItemTitle = req.ItemTitle
	submission.ServiceTier = req.ServiceTier
	submission.Grade = req.Grade
	submission.Subgrades = req.Subgrades
	return submission, true
}

// GetRecentOrders handles GET /api/v1/orders/recent - lists the latest issued certificates
func GetRecentOrders(c *gin.Context) {
	orders, err := services.GetOrderStore().Recent(c.Request.Context(), RecentOrdersLimit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		summaries = append(summaries, summarizeOrder(&orders[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summaries,
	})
}

// GetStats handles GET /api/v1/stats - counts issued certificates
func GetStats(c *gin.Context) {
	stats, err := services.GetOrderStore().Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
