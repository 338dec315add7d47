package services

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/kendall-kelly/aga-grading-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupServiceTestDB opens a migrated in-memory database. A single connection
// keeps every goroutine on the same in-memory database.
func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db), "Failed to migrate test database")
	return db
}

// sequenceSource returns the given random parts in order, repeating the last one
func sequenceSource(parts ...string) func() string {
	i := 0
	return func() string {
		part := parts[i]
		if i < len(parts)-1 {
			i++
		}
		return part
	}
}

// grayPNG encodes a uniform gray image
func grayPNG(t *testing.T, size int, level uint8) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
