package services

import (
	"context"
	"fmt"

	"github.com/kendall-kelly/aga-grading-api/utils"
)

// ArtifactStore persists rendered artifacts and returns a locator for clients
type ArtifactStore interface {
	Save(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

// LocalArtifactStore writes artifacts under a directory served by the API
type LocalArtifactStore struct {
	dir     string
	baseURL string
}

// NewLocalArtifactStore creates a store writing under dir, linking through baseURL
func NewLocalArtifactStore(dir, baseURL string) *LocalArtifactStore {
	return &LocalArtifactStore{dir: dir, baseURL: baseURL}
}

// Dir returns the directory artifacts are written to
func (s *LocalArtifactStore) Dir() string {
	return s.dir
}

// Save writes the artifact to disk
func (s *LocalArtifactStore) Save(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := utils.SaveArtifactFile(s.dir, key, content); err != nil {
		return "", err
	}
	return utils.ArtifactURL(s.baseURL, key), nil
}

// S3ArtifactStore uploads artifacts to S3. The locators it returns point at
// the API's /artifacts route, which redirects to a fresh presigned URL, so
// printed and stored links never expire.
type S3ArtifactStore struct {
	s3      S3Interface
	baseURL string
}

// NewS3ArtifactStore creates an artifact store backed by s3, linking through baseURL
func NewS3ArtifactStore(s3 S3Interface, baseURL string) *S3ArtifactStore {
	return &S3ArtifactStore{s3: s3, baseURL: baseURL}
}

// Save uploads the artifact and returns its stable API locator
func (s *S3ArtifactStore) Save(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if err := utils.ValidateArtifactKey(key); err != nil {
		return "", err
	}
	if err := s.s3.PutObject(ctx, key, content, contentType); err != nil {
		return "", err
	}
	return utils.ArtifactURL(s.baseURL, key), nil
}

// Link returns a presigned GET URL for a stored artifact
func (s *S3ArtifactStore) Link(ctx context.Context, key string) (string, error) {
	if err := utils.ValidateArtifactKey(key); err != nil {
		return "", err
	}
	url, err := s.s3.GetPresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
	}
	return url, nil
}

// ArtifactLinker resolves an artifact key to a short-lived download URL
type ArtifactLinker interface {
	Link(ctx context.Context, key string) (string, error)
}

var artifactLinkerInstance ArtifactLinker

// SetArtifactLinker registers the linker used by the /artifacts route.
// A nil linker means artifacts are served from the local artifact directory.
func SetArtifactLinker(linker ArtifactLinker) {
	artifactLinkerInstance = linker
}

// GetArtifactLinker returns the registered linker, or nil for local storage
func GetArtifactLinker() ArtifactLinker {
	return artifactLinkerInstance
}
