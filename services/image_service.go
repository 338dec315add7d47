package services

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"time"

	"github.com/kendall-kelly/aga-grading-api/grading"
	"github.com/kendall-kelly/aga-grading-api/metrics"
	"github.com/kendall-kelly/aga-grading-api/utils"
)

// ImageService scores submitted item images
type ImageService interface {
	// GradeUpload validates an uploaded image file and scores it
	GradeUpload(fileHeader *multipart.FileHeader) (*grading.Result, error)

	// Grade decodes and scores an image read from r
	Grade(r io.Reader) (*grading.Result, error)
}

// ScoringImageService implements ImageService with the grading heuristic
type ScoringImageService struct {
	metrics *metrics.Metrics
}

var imageServiceInstance ImageService

// InitImageService initializes the image service
func InitImageService(m *metrics.Metrics) ImageService {
	imageServiceInstance = NewScoringImageService(m)
	return imageServiceInstance
}

// NewScoringImageService creates a scoring image service; m may be nil
func NewScoringImageService(m *metrics.Metrics) *ScoringImageService {
	return &ScoringImageService{metrics: m}
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// GradeUpload validates and scores an uploaded image
func (s *ScoringImageService) GradeUpload(fileHeader *multipart.FileHeader) (*grading.Result, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open file: %v", ErrInvalidImage, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("warning: failed to close file: %v", closeErr)
		}
	}()

	return s.Grade(file)
}

// Grade decodes and scores an image
func (s *ScoringImageService) Grade(r io.Reader) (*grading.Result, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no image provided", ErrInvalidImage)
	}

	start := time.Now()
	result, err := grading.ScoreReader(io.LimitReader(r, utils.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	s.metrics.ObserveScoreDuration(time.Since(start))

	return &result, nil
}
