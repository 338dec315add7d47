package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/config"
	"github.com/kendall-kelly/aga-grading-api/services"
)

// artifactKinds maps each artifact directory to the extension and content type it serves
var artifactKinds = map[string]struct {
	ext         string
	contentType string
}{
	"qrcodes": {".png", "image/png"},
	"labels":  {".png", "image/png"},
	"certs":   {".pdf", "application/pdf"},
}

// GetArtifact handles GET /artifacts/:kind/:filename - serves locally stored certificate
// artifacts, or redirects to a presigned URL when artifacts live in S3
func GetArtifact(c *gin.Context) {
	kind := c.Param("kind")
	filename := c.Param("filename")

	spec, ok := artifactKinds[kind]
	if !ok {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Artifact not found")
		return
	}

	// Security: Prevent directory traversal attacks
	if filename == "" || strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	if strings.ToLower(filepath.Ext(filename)) != spec.ext {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Unsupported artifact file type")
		return
	}

	if linker := services.GetArtifactLinker(); linker != nil {
		url, err := linker.Link(c.Request.Context(), kind+"/"+filename)
		if err != nil {
			respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Artifact not found")
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Redirect(http.StatusFound, url)
		return
	}

	filePath := filepath.Join(config.GetConfig().ArtifactDir, kind, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Artifact not found")
		return
	}

	// Artifacts never change once written
	c.Header("Content-Type", spec.contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(filePath)
}
