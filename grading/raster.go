package grading

import (
	"image"
	"image/color"
)

// raster is a packed 8-bit image with one or three channels per pixel
type raster struct {
	width    int
	height   int
	channels int
	pix      []uint8
}

func newRaster(width, height, channels int) *raster {
	return &raster{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]uint8, width*height*channels),
	}
}

func (r *raster) row(y int) []uint8 {
	stride := r.width * r.channels
	return r.pix[y*stride : (y+1)*stride]
}

// toRGB drops alpha without premultiplying and replicates gray into all channels
func toRGB(img image.Image) *raster {
	b := img.Bounds()
	out := newRaster(b.Dx(), b.Dy(), 3)

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < out.height; y++ {
			row := out.row(y)
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < out.width; x++ {
				row[x*3+0] = src.Pix[off+x*4+0]
				row[x*3+1] = src.Pix[off+x*4+1]
				row[x*3+2] = src.Pix[off+x*4+2]
			}
		}
		return out
	}

	for y := 0; y < out.height; y++ {
		row := out.row(y)
		for x := 0; x < out.width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[x*3+0] = c.R
			row[x*3+1] = c.G
			row[x*3+2] = c.B
		}
	}
	return out
}

// luminance projects an RGB raster to one channel using fixed-point ITU-R 601 weights
func luminance(rgb *raster) *raster {
	out := newRaster(rgb.width, rgb.height, 1)
	for i := 0; i < rgb.width*rgb.height; i++ {
		r := uint32(rgb.pix[i*3+0])
		g := uint32(rgb.pix[i*3+1])
		b := uint32(rgb.pix[i*3+2])
		out.pix[i] = uint8((r*19595 + g*38470 + b*7471 + 0x8000) >> 16)
	}
	return out
}

// crop copies the region [0,w)x[0,h) of a single-channel raster, clipped to its bounds
func crop(src *raster, w, h int) *raster {
	if w > src.width {
		w = src.width
	}
	if h > src.height {
		h = src.height
	}
	out := newRaster(w, h, src.channels)
	for y := 0; y < h; y++ {
		copy(out.row(y), src.row(y)[:w*src.channels])
	}
	return out
}
