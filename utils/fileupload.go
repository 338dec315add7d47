package utils

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

// AllowedImageFormats are the upload extensions the grader can decode
var AllowedImageFormats = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size <= 0 {
		return &FileUploadError{
			Code:    "EMPTY_FILE",
			Message: "Uploaded file is empty",
		}
	}

	// Check file size
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, allowed := range AllowedImageFormats {
		if ext == allowed {
			return nil
		}
	}
	return &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedImageFormats, ", ")),
	}
}

// ValidateArtifactKey rejects keys that could escape the artifact directory.
// Valid keys look like "labels/1718000000-ABC123.png".
func ValidateArtifactKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.HasPrefix(key, "/") {
		return &FileUploadError{Code: "INVALID_FILENAME", Message: "Invalid artifact key"}
	}
	return nil
}

// SaveArtifactFile writes content under baseDir at the slash-separated key,
// creating directories as needed, and returns the full path
func SaveArtifactFile(baseDir, key string, content []byte) (fullPath string, err error) {
	if err := ValidateArtifactKey(key); err != nil {
		return "", err
	}

	fullPath = filepath.Join(baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	// Write to a temporary file first so readers never see a partial artifact
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".artifact-*")
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close destination file: %w", err)
	}
	if err = os.Rename(tmp.Name(), fullPath); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return fullPath, nil
}

// ArtifactURL returns the public URL for a locally stored artifact
func ArtifactURL(baseURL, key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/artifacts/%s", strings.TrimRight(baseURL, "/"), key)
}
