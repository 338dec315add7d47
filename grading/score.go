// Package grading implements the deterministic visual scoring heuristic used
// to grade submitted items.
//
// An image is resampled to a fixed square working resolution and three signals
// are measured on it: edge sharpness, mean brightness and corner noise. Each
// signal maps to a subgrade through a fixed clamped linear transform, and the
// mean of the rounded subgrades selects one of four grade buckets. Scoring is a
// pure function and safe for concurrent use.
package grading

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	// Registered decoders for ScoreReader
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUndecodableImage is returned when the input cannot be decoded as an image
var ErrUndecodableImage = errors.New("image could not be decoded")

// MaxImagePixels is the largest width*height Decode accepts, the same
// decompression bomb limit Pillow applies
const MaxImagePixels = 1024 * 1024 * 1024 / 4 / 3

// Score grades an already decoded image
func Score(img image.Image) Result {
	return Evaluate(Measure(img))
}

// ScoreReader decodes an image from r and grades it
func ScoreReader(r io.Reader) (Result, error) {
	img, err := Decode(r)
	if err != nil {
		return Result{}, err
	}
	return Score(img), nil
}

// Decode decodes any registered image format. The header is checked first
// so images over MaxImagePixels are rejected before any pixel is allocated.
func Decode(r io.Reader) (image.Image, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUndecodableImage, cfg.Width, cfg.Height, MaxImagePixels)
	}

	img, _, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	return img, nil
}

// Measure resamples img to the working resolution and takes the raw signals.
// Empty images measure as an all-black working raster.
func Measure(img image.Image) Signals {
	var small *raster
	if img == nil || img.Bounds().Empty() {
		small = newRaster(WorkingSize, WorkingSize, 3)
	} else {
		small = resample(toRGB(img), WorkingSize, WorkingSize)
	}

	gray := luminance(small)
	edges := luminance(findEdges(small))

	return Signals{
		Sharpness:   measure(edges).stddev(),
		Brightness:  measure(gray).mean(),
		CornerNoise: measure(crop(gray, CornerRegionSize, CornerRegionSize)).stddev(),
	}
}
