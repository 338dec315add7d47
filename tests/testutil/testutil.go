package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
	"testing"

	"github.com/kendall-kelly/aga-grading-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated in-memory SQLite database on a single connection
// and closes it when the test ends
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// GrayPNG encodes a uniform gray square image
func GrayPNG(t *testing.T, size int, level uint8) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return encodePNG(t, img)
}

// GemPNG encodes an image that scores Gem 10: white with a one-pixel
// checkerboard over its bottom half
func GemPNG(t *testing.T) []byte {
	t.Helper()

	const size = 512
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if y >= size/2 && (x+y)%2 == 1 {
				continue
			}
			img.Pix[y*img.Stride+x] = 255
		}
	}
	return encodePNG(t, img)
}

// PNGHeader returns just the signature and IHDR chunk of a grayscale PNG
// declaring width x height pixels, with no pixel data
func PNGHeader(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 4+13)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:8], width)
	binary.BigEndian.PutUint32(ihdr[8:12], height)
	ihdr[12] = 8

	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}
