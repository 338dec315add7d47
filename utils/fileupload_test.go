package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	// Create a buffer to write our multipart form
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Create form file
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	// Parse the multipart form
	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["image"]) > 0 {
		fileHeader := form.File["image"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateImageFile_AllowedFormats(t *testing.T) {
	content := []byte("fake image content")
	for _, name := range []string{"card.png", "card.JPG", "card.jpeg", "card.gif", "card.bmp", "card.webp"} {
		fileHeader := createTestFileHeader(name, int64(len(content)), content)
		require.NotNil(t, fileHeader)
		assert.NoError(t, ValidateImageFile(fileHeader), name)
	}
}

func TestValidateImageFile_FileTooLarge(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("large.png", 11*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	require.Error(t, err)

	uploadErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", uploadErr.Code)
	assert.Contains(t, uploadErr.Message, "10 MB")
}

func TestValidateImageFile_InvalidFormat(t *testing.T) {
	content := []byte("%PDF-1.4")
	fileHeader := createTestFileHeader("card.pdf", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	require.Error(t, err)

	uploadErr, ok := err.(*FileUploadError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
}

func TestValidateImageFile_Empty(t *testing.T) {
	fileHeader := createTestFileHeader("card.png", 0, []byte("x"))
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	require.Error(t, err)
	assert.Equal(t, "EMPTY_FILE", err.(*FileUploadError).Code)
}

func TestValidateArtifactKey(t *testing.T) {
	assert.NoError(t, ValidateArtifactKey("labels/1718000000-ABC123.png"))

	for _, key := range []string{"", "../etc/passwd", "labels/../../x.png", "/abs/path.png", `labels\x.png`} {
		assert.Error(t, ValidateArtifactKey(key), key)
	}
}

func TestSaveArtifactFile(t *testing.T) {
	baseDir := t.TempDir()
	content := []byte("png bytes")

	fullPath, err := SaveArtifactFile(baseDir, "qrcodes/1718000000-ABC123.png", content)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(baseDir, "qrcodes", "1718000000-ABC123.png"), fullPath)

	saved, err := os.ReadFile(fullPath)
	require.NoError(t, err)
	assert.Equal(t, content, saved)

	entries, err := os.ReadDir(filepath.Join(baseDir, "qrcodes"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files should not be left behind")
}

func TestSaveArtifactFile_RejectsTraversal(t *testing.T) {
	_, err := SaveArtifactFile(t.TempDir(), "../escape.png", []byte("x"))
	assert.Error(t, err)
}

func TestArtifactURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/artifacts/labels/a.png", ArtifactURL("http://localhost:8080/", "labels/a.png"))
	assert.Equal(t, "", ArtifactURL("http://localhost:8080", ""))
}
