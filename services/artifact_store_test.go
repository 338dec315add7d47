package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArtifactStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalArtifactStore(dir, "http://localhost:8080/")

	url, err := store.Save(context.Background(), "labels/1-A.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/artifacts/labels/1-A.png", url)
	assert.Equal(t, dir, store.Dir())

	content, err := os.ReadFile(filepath.Join(dir, "labels", "1-A.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), content)
}

func TestLocalArtifactStore_RejectsTraversal(t *testing.T) {
	store := NewLocalArtifactStore(t.TempDir(), "http://localhost:8080")

	for _, key := range []string{"", "../escape.png", "/etc/passwd", `labels\..\x.png`} {
		_, err := store.Save(context.Background(), key, []byte("x"), "image/png")
		assert.Error(t, err, key)
	}
}

func TestLocalArtifactStore_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalArtifactStore(dir, "http://localhost:8080")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, "qrcodes/1-A.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "qrcodes", "1-A.png"))
}

func TestS3ArtifactStore_Save(t *testing.T) {
	s3 := NewMockS3Service()
	store := NewS3ArtifactStore(s3, "https://aga.example.com/")

	url, err := store.Save(context.Background(), "certs/1-A.pdf", []byte("%PDF-1.3"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://aga.example.com/artifacts/certs/1-A.pdf", url)
	assert.Equal(t, []byte("%PDF-1.3"), s3.GetUploadedFiles()["certs/1-A.pdf"])
	assert.Equal(t, "application/pdf", s3.ContentType("certs/1-A.pdf"))
}

func TestS3ArtifactStore_Link(t *testing.T) {
	s3 := NewMockS3Service()
	store := NewS3ArtifactStore(s3, "https://aga.example.com")

	_, err := store.Save(context.Background(), "certs/1-A.pdf", []byte("%PDF-1.3"), "application/pdf")
	require.NoError(t, err)

	url, err := store.Link(context.Background(), "certs/1-A.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://test-bucket.s3.us-east-1.amazonaws.com/certs/1-A.pdf?mock=true", url)

	_, err = store.Link(context.Background(), "certs/missing.pdf")
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = store.Link(context.Background(), "../certs/1-A.pdf")
	assert.Error(t, err)
}

func TestS3ArtifactStore_UploadFailure(t *testing.T) {
	s3 := NewMockS3Service()
	s3.FailUploadsOf("certs/1-A.pdf", errors.New("throttled"))
	store := NewS3ArtifactStore(s3, "https://aga.example.com")

	_, err := store.Save(context.Background(), "certs/1-A.pdf", []byte("x"), "application/pdf")
	assert.EqualError(t, err, "throttled")
	assert.False(t, s3.FileExists("certs/1-A.pdf"))

	_, err = store.Save(context.Background(), "../x", []byte("x"), "application/pdf")
	assert.Error(t, err)
}
