package services

import "errors"

// Error kinds surfaced by the grading and issuance services. Stores return
// these wrapped so controllers can map them with errors.Is.
var (
	// ErrInvalidImage means the submitted image could not be read or decoded
	ErrInvalidImage = errors.New("invalid image input")
	// ErrInvalidSubmission means the submission failed validation
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrDuplicateCertificate means a minted code already exists; issuance re-mints
	ErrDuplicateCertificate = errors.New("duplicate certificate code")
	// ErrPersistence means storage was unavailable or rejected a write; the caller may retry
	ErrPersistence = errors.New("persistence failure")
	// ErrCertificateNotFound covers both unknown codes and token mismatches
	ErrCertificateNotFound = errors.New("certificate not found")
	// ErrArtifactNotFound means no stored artifact exists under the key
	ErrArtifactNotFound = errors.New("artifact not found")
)
