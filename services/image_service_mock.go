package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"sync"

	"github.com/kendall-kelly/aga-grading-api/grading"
	"github.com/kendall-kelly/aga-grading-api/utils"
)

// MockImageService is a mock implementation of ImageService for testing.
// It returns a fixed result for any readable input.
type MockImageService struct {
	Result grading.Result
	Err    error

	calls int
	mu    sync.RWMutex
}

// NewMockImageService creates a mock image service returning result
func NewMockImageService(result grading.Result) *MockImageService {
	return &MockImageService{Result: result}
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// GradeUpload validates the upload like the real service, then returns the fixed result
func (m *MockImageService) GradeUpload(fileHeader *multipart.FileHeader) (*grading.Result, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open file: %v", ErrInvalidImage, err)
	}
	defer file.Close()

	return m.Grade(file)
}

// Grade drains r and returns the fixed result or error
func (m *MockImageService) Grade(r io.Reader) (*grading.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if r == nil {
		return nil, fmt.Errorf("%w: no image provided", ErrInvalidImage)
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	result := m.Result
	return &result, nil
}

// Calls returns how many images were graded (for testing assertions)
func (m *MockImageService) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
