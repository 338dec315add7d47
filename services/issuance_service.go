package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/kendall-kelly/aga-grading-api/grading"
	"github.com/kendall-kelly/aga-grading-api/logger"
	"github.com/kendall-kelly/aga-grading-api/metrics"
	"github.com/kendall-kelly/aga-grading-api/models"
	"gorm.io/datatypes"
)

const (
	// MaxMintAttempts bounds re-minting after certificate code collisions
	MaxMintAttempts = 5
	// DefaultItemTitle is used when a submission has no title
	DefaultItemTitle = "Sports Card"
	// DefaultServiceTier is used when a submission has no service tier
	DefaultServiceTier = "standard"
)

// Submission is a request to issue one certificate. Either Grade or an image
// (ImageFile or Image) must be present; a supplied grade takes precedence.
type Submission struct {
	SubmitterName  string
	SubmitterEmail string
	ItemTitle      string
	ServiceTier    string
	Grade          string
	Subgrades      grading.Subgrades
	ImageFile      *multipart.FileHeader
	Image          io.Reader
}

func (s Submission) hasImage() bool {
	return s.ImageFile != nil || s.Image != nil
}

// IssuanceResult is the outcome of a successful issuance
type IssuanceResult struct {
	Order             *models.Order `json:"order"`
	VerificationToken string        `json:"verification_token"`
	VerificationURL   string        `json:"verification_url"`
	Artifacts         ArtifactSet   `json:"artifacts"`
}

// CertificateView is the public view of an issued certificate
type CertificateView struct {
	CertificateCode string            `json:"certificate_code"`
	ItemTitle       string            `json:"item_title"`
	Grade           string            `json:"grade"`
	Subgrades       grading.Subgrades `json:"subgrades"`
	CreatedAt       time.Time         `json:"created_at"`
	Verified        bool              `json:"verified"`
	Population      map[string]int64  `json:"population"`
}

// IssuanceDeps holds the collaborators of an IssuanceService
type IssuanceDeps struct {
	Images       ImageService
	Certificates *CertificateService
	Orders       OrderRepository
	Population   PopulationRegistry
	Renderer     ArtifactRenderer
	BaseURL      string
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// IssuanceService grades submissions and issues certificates
type IssuanceService struct {
	images     ImageService
	certs      *CertificateService
	orders     OrderRepository
	population PopulationRegistry
	renderer   ArtifactRenderer
	baseURL    string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

var issuanceServiceInstance *IssuanceService

// InitIssuanceService creates the issuance service and makes it the process instance
func InitIssuanceService(deps IssuanceDeps) *IssuanceService {
	issuanceServiceInstance = NewIssuanceService(deps)
	return issuanceServiceInstance
}

// GetIssuanceService returns the initialized issuance service instance
func GetIssuanceService() *IssuanceService {
	return issuanceServiceInstance
}

// SetIssuanceService sets the issuance service instance (primarily for testing)
func SetIssuanceService(service *IssuanceService) {
	issuanceServiceInstance = service
}

// NewIssuanceService creates an issuance service
func NewIssuanceService(deps IssuanceDeps) *IssuanceService {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &IssuanceService{
		images:     deps.Images,
		certs:      deps.Certificates,
		orders:     deps.Orders,
		population: deps.Population,
		renderer:   deps.Renderer,
		baseURL:    deps.BaseURL,
		logger:     log,
		metrics:    deps.Metrics,
	}
}

// Issue grades the submission if needed, mints a certificate, persists the
// order with its population increment and renders the artifacts.
//
// Invalid input fails before anything is minted or persisted. Artifact
// failures never fail the issuance.
func (s *IssuanceService) Issue(ctx context.Context, sub Submission) (*IssuanceResult, error) {
	grade, subgrades, err := s.resolveGrade(sub)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(sub.ItemTitle)
	if title == "" {
		title = DefaultItemTitle
	}
	tier := strings.TrimSpace(sub.ServiceTier)
	if tier == "" {
		tier = DefaultServiceTier
	}

	var order *models.Order
	var token string
	for attempt := 1; ; attempt++ {
		code := s.certs.Mint()
		token = s.certs.TokenFor(code)
		order = &models.Order{
			CertificateCode: code,
			SubmitterName:   strings.TrimSpace(sub.SubmitterName),
			SubmitterEmail:  strings.TrimSpace(sub.SubmitterEmail),
			ItemTitle:       title,
			ServiceTier:     tier,
			GradeLabel:      string(grade),
			Subgrades:       datatypes.NewJSONType(subgrades),
		}

		err := s.orders.CreateIssued(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateCertificate) {
			return nil, err
		}

		s.metrics.IncrementMintCollision()
		s.logger.Warn("certificate code collision, re-minting",
			"certificate_code", code,
			"attempt", attempt,
		)
		if attempt == MaxMintAttempts {
			return nil, fmt.Errorf("%w: no unique certificate code after %d attempts", ErrPersistence, MaxMintAttempts)
		}
	}

	s.metrics.IncrementIssued(order.GradeLabel)
	s.logger.Info("certificate issued",
		"certificate_code", order.CertificateCode,
		"grade", order.GradeLabel,
		"item_title", order.ItemTitle,
	)

	result := &IssuanceResult{
		Order:             order,
		VerificationToken: token,
		VerificationURL:   s.certs.VerificationURL(s.baseURL, order.CertificateCode),
	}
	if s.renderer != nil {
		result.Artifacts = s.renderer.Render(ctx, ArtifactRequest{
			CertificateCode: order.CertificateCode,
			VerificationURL: result.VerificationURL,
			ItemTitle:       order.ItemTitle,
			SubmitterName:   order.SubmitterName,
			Grade:           order.GradeLabel,
			Subgrades:       subgrades,
		})
	}

	return result, nil
}

// resolveGrade validates a supplied grade or scores the image
func (s *IssuanceService) resolveGrade(sub Submission) (grading.Grade, grading.Subgrades, error) {
	if label := strings.TrimSpace(sub.Grade); label != "" {
		grade, ok := grading.ParseGrade(label)
		if !ok {
			return "", nil, fmt.Errorf("%w: unknown grade %q", ErrInvalidSubmission, label)
		}
		subgrades := sub.Subgrades
		if subgrades == nil {
			subgrades = grading.Subgrades{}
		}
		if err := subgrades.Validate(); err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
		}
		return grade, subgrades, nil
	}

	if !sub.hasImage() {
		return "", nil, fmt.Errorf("%w: a grade or an image is required", ErrInvalidSubmission)
	}

	var result *grading.Result
	var err error
	if sub.ImageFile != nil {
		result, err = s.images.GradeUpload(sub.ImageFile)
	} else {
		result, err = s.images.Grade(sub.Image)
	}
	if err != nil {
		return "", nil, err
	}
	return result.Grade, result.Subgrades, nil
}

// LookupVerified returns the certificate only when token verifies for code
// and the order exists. Both failures return ErrCertificateNotFound.
func (s *IssuanceService) LookupVerified(ctx context.Context, code, token string) (*CertificateView, error) {
	if !s.certs.Verify(code, token) {
		return nil, ErrCertificateNotFound
	}
	view, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	view.Verified = true
	return view, nil
}

// Lookup returns the public fields of a certificate with its title's population counts
func (s *IssuanceService) Lookup(ctx context.Context, code string) (*CertificateView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: certificate code is required", ErrInvalidSubmission)
	}
	return s.lookup(ctx, code)
}

func (s *IssuanceService) lookup(ctx context.Context, code string) (*CertificateView, error) {
	order, err := s.orders.FindByCertificateCode(ctx, code)
	if err != nil {
		return nil, err
	}

	population, err := s.population.Counts(ctx, order.ItemTitle)
	if err != nil {
		return nil, err
	}

	return &CertificateView{
		CertificateCode: order.CertificateCode,
		ItemTitle:       order.ItemTitle,
		Grade:           order.GradeLabel,
		Subgrades:       order.SubgradeScores(),
		CreatedAt:       order.CreatedAt,
		Population:      population,
	}, nil
}
