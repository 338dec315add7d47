package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/kendall-kelly/aga-grading-api/grading"
	"github.com/kendall-kelly/aga-grading-api/logger"
	"github.com/kendall-kelly/aga-grading-api/metrics"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"
)

// Artifact kinds, also used as metric labels
const (
	ArtifactQRCode      = "qr_code"
	ArtifactLabel       = "label"
	ArtifactCertificate = "certificate"
)

const (
	qrCodeSize  = 256
	labelWidth  = 900
	labelHeight = 300
	labelQRSize = 200
)

var (
	labelBackground = color.RGBA{15, 18, 30, 255}
	labelBanner     = color.RGBA{190, 30, 30, 255}
	labelText       = color.RGBA{235, 235, 240, 255}
)

// ArtifactRequest carries the public fields of an issued order needed for rendering
type ArtifactRequest struct {
	CertificateCode string
	VerificationURL string
	ItemTitle       string
	SubmitterName   string
	Grade           string
	Subgrades       grading.Subgrades
}

// Artifact is the outcome of rendering one artifact
type Artifact struct {
	Available bool   `json:"available"`
	URL       string `json:"url,omitempty"`
}

// ArtifactSet holds the outcome of every artifact for one certificate
type ArtifactSet struct {
	QRCode      Artifact `json:"qr_code"`
	Label       Artifact `json:"label"`
	Certificate Artifact `json:"certificate"`
}

// ArtifactRenderer produces the derived documents of an issued certificate.
// Render never fails; artifacts that could not be produced are marked unavailable.
type ArtifactRenderer interface {
	Render(ctx context.Context, req ArtifactRequest) ArtifactSet
}

// CertificateArtifactRenderer renders the QR code, slab label and certificate PDF
type CertificateArtifactRenderer struct {
	store   ArtifactStore
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewCertificateArtifactRenderer creates a renderer saving into store.
// Each Render call is bounded by timeout.
func NewCertificateArtifactRenderer(store ArtifactStore, timeout time.Duration, log *slog.Logger, m *metrics.Metrics) *CertificateArtifactRenderer {
	if log == nil {
		log = logger.Discard()
	}
	return &CertificateArtifactRenderer{store: store, timeout: timeout, logger: log, metrics: m}
}

// ArtifactKeys returns the storage keys for a certificate's artifacts
func ArtifactKeys(code string) (qr, label, certificate string) {
	return "qrcodes/" + code + ".png", "labels/" + code + ".png", "certs/" + code + ".pdf"
}

// Render renders and stores all artifacts. The label and the PDF embed the QR
// code and are rendered concurrently once it exists.
func (r *CertificateArtifactRenderer) Render(ctx context.Context, req ArtifactRequest) ArtifactSet {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	qrKey, labelKey, certKey := ArtifactKeys(req.CertificateCode)
	var set ArtifactSet

	qrPNG, err := RenderQRCode(req.VerificationURL)
	if err != nil {
		r.fail(req, ArtifactQRCode, err)
	} else {
		set.QRCode = r.save(ctx, req, ArtifactQRCode, qrKey, qrPNG, "image/png")
	}

	var g errgroup.Group
	g.Go(func() error {
		label, err := RenderLabel(req, qrPNG)
		if err != nil {
			r.fail(req, ArtifactLabel, err)
			return nil
		}
		set.Label = r.save(ctx, req, ArtifactLabel, labelKey, label, "image/png")
		return nil
	})
	g.Go(func() error {
		doc, err := RenderCertificatePDF(req, qrPNG)
		if err != nil {
			r.fail(req, ArtifactCertificate, err)
			return nil
		}
		set.Certificate = r.save(ctx, req, ArtifactCertificate, certKey, doc, "application/pdf")
		return nil
	})
	_ = g.Wait()

	return set
}

func (r *CertificateArtifactRenderer) save(ctx context.Context, req ArtifactRequest, kind, key string, content []byte, contentType string) Artifact {
	url, err := r.store.Save(ctx, key, content, contentType)
	if err != nil {
		r.fail(req, kind, err)
		return Artifact{}
	}
	return Artifact{Available: true, URL: url}
}

func (r *CertificateArtifactRenderer) fail(req ArtifactRequest, kind string, err error) {
	r.metrics.IncrementRenderFailure(kind)
	r.logger.Warn("artifact render failed",
		"certificate_code", req.CertificateCode,
		"artifact", kind,
		"error", err.Error(),
	)
}

// RenderQRCode encodes the verification URL as a PNG QR code
func RenderQRCode(verificationURL string) ([]byte, error) {
	if verificationURL == "" {
		return nil, fmt.Errorf("verification URL is empty")
	}
	content, err := qrcode.Encode(verificationURL, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return content, nil
}

// RenderLabel draws the 900x300 slab label. qrPNG may be nil.
func RenderLabel(req ArtifactRequest, qrPNG []byte) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, labelWidth, labelHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(labelBackground), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, labelWidth, 60), image.NewUniform(labelBanner), image.Point{}, draw.Src)

	drawText(img, "AGA Grading", 18, 12, 3, color.White)
	drawText(img, "Submitter: "+req.SubmitterName, 20, 90, 2, labelText)
	drawText(img, "Title: "+req.ItemTitle, 20, 140, 2, labelText)
	drawText(img, "Cert: "+req.CertificateCode, 20, 190, 2, labelText)
	drawText(img, "Grade: "+req.Grade, 20, 240, 2, labelText)

	if qrPNG != nil {
		qr, err := png.Decode(bytes.NewReader(qrPNG))
		if err != nil {
			return nil, fmt.Errorf("failed to decode QR code: %w", err)
		}
		target := image.Rect(labelWidth-220, 80, labelWidth-220+labelQRSize, 80+labelQRSize)
		draw.NearestNeighbor.Scale(img, target, qr, qr.Bounds(), draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode label: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText renders text with the fixed bitmap face, scaled by an integer
// factor, with its top-left corner at (x, y)
func drawText(dst draw.Image, text string, x, y, scale int, col color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	if width == 0 {
		return
	}
	height := face.Metrics().Height.Ceil()

	glyphs := image.NewRGBA(image.Rect(0, 0, width, height))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	target := image.Rect(x, y, x+width*scale, y+height*scale)
	draw.NearestNeighbor.Scale(dst, target, glyphs, glyphs.Bounds(), draw.Over, nil)
}

// RenderCertificatePDF lays out the letter-size certificate document. qrPNG may be nil.
func RenderCertificatePDF(req ArtifactRequest, qrPNG []byte) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Certificate of Grading "+req.CertificateCode, true)
	pdf.AddPage()
	w, h := pdf.GetPageSize()

	pdf.SetFillColor(31, 36, 56)
	pdf.Rect(0, 0, w, h, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.Text(72, 90, "Authentic Grading Authority")
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(72, 130, "Certificate of Grading")

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(72, 170, tr("Certification #: "+req.CertificateCode))
	pdf.Text(72, 190, tr("Title: "+req.ItemTitle))
	pdf.Text(72, 210, tr("Grade: "+req.Grade))
	pdf.Text(72, 230, fmt.Sprintf("Subgrades: Ctr %s  Corn %s  Edg %s  Surf %s",
		formatSubgrade(req.Subgrades, grading.Centering),
		formatSubgrade(req.Subgrades, grading.Corners),
		formatSubgrade(req.Subgrades, grading.Edges),
		formatSubgrade(req.Subgrades, grading.Surface),
	))

	if qrPNG != nil {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
		pdf.ImageOptions("qr", w-200, 132, 128, 128, false, opts, 0, "")
	}

	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(217, 217, 217)
	pdf.Text(72, h-60, "Verify at AGA - scan QR for live cert page.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func formatSubgrade(sub grading.Subgrades, name string) string {
	v, ok := sub[name]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.1f", v)
}
