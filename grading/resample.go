package grading

import "math"

// Fixed-point precision of the convolution coefficients
const precisionBits = 32 - 8 - 2

const bicubicSupport = 2.0

// bicubicFilter is the Keys cubic kernel with a = -0.5
func bicubicFilter(x float64) float64 {
	const a = -0.5
	if x < 0 {
		x = -x
	}
	if x < 1 {
		return ((a+2)*x-(a+3))*x*x + 1
	}
	if x < 2 {
		return (((x-5)*x+8)*x - 4) * a
	}
	return 0
}

// coefficients holds, per output sample, the first contributing input index,
// the number of contributing inputs and their fixed-point weights.
type coefficients struct {
	ksize  int
	bounds []int
	kk     []int
}

func (c *coefficients) window(i int) (start, count int, weights []int) {
	return c.bounds[i*2], c.bounds[i*2+1], c.kk[i*c.ksize : (i+1)*c.ksize]
}

func precomputeCoefficients(inSize, outSize int) *coefficients {
	scale := float64(inSize) / float64(outSize)
	filterScale := scale
	if filterScale < 1 {
		filterScale = 1
	}
	support := bicubicSupport * filterScale
	ksize := int(math.Ceil(support))*2 + 1

	weights := make([]float64, outSize*ksize)
	bounds := make([]int, outSize*2)
	for xx := 0; xx < outSize; xx++ {
		center := (float64(xx) + 0.5) * scale
		ss := 1.0 / filterScale

		xmin := int(center - support + 0.5)
		if xmin < 0 {
			xmin = 0
		}
		xmax := int(center + support + 0.5)
		if xmax > inSize {
			xmax = inSize
		}
		xmax -= xmin
		if xmax > ksize {
			xmax = ksize
		}

		k := weights[xx*ksize : (xx+1)*ksize]
		ww := 0.0
		for x := 0; x < xmax; x++ {
			w := bicubicFilter((float64(x+xmin) - center + 0.5) * ss)
			k[x] = w
			ww += w
		}
		if ww != 0 {
			for x := 0; x < xmax; x++ {
				k[x] /= ww
			}
		}
		bounds[xx*2] = xmin
		bounds[xx*2+1] = xmax
	}

	kk := make([]int, len(weights))
	for i, w := range weights {
		if w < 0 {
			kk[i] = int(-0.5 + w*(1<<precisionBits))
		} else {
			kk[i] = int(0.5 + w*(1<<precisionBits))
		}
	}
	return &coefficients{ksize: ksize, bounds: bounds, kk: kk}
}

func clip8(v int) uint8 {
	v >>= precisionBits
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// resample scales src to width x height with separable bicubic convolution,
// horizontal pass first. Each pass is skipped when its dimension is unchanged.
func resample(src *raster, width, height int) *raster {
	out := src
	if width != src.width {
		out = resampleHorizontal(out, width)
	}
	if height != src.height {
		out = resampleVertical(out, height)
	}
	if out == src {
		cp := newRaster(src.width, src.height, src.channels)
		copy(cp.pix, src.pix)
		return cp
	}
	return out
}

func resampleHorizontal(src *raster, width int) *raster {
	coeffs := precomputeCoefficients(src.width, width)
	ch := src.channels
	out := newRaster(width, src.height, ch)
	for y := 0; y < src.height; y++ {
		in := src.row(y)
		dst := out.row(y)
		for xx := 0; xx < width; xx++ {
			xmin, xmax, k := coeffs.window(xx)
			for c := 0; c < ch; c++ {
				ss := 1 << (precisionBits - 1)
				for x := 0; x < xmax; x++ {
					ss += int(in[(x+xmin)*ch+c]) * k[x]
				}
				dst[xx*ch+c] = clip8(ss)
			}
		}
	}
	return out
}

func resampleVertical(src *raster, height int) *raster {
	coeffs := precomputeCoefficients(src.height, height)
	ch := src.channels
	out := newRaster(src.width, height, ch)
	for yy := 0; yy < height; yy++ {
		ymin, ymax, k := coeffs.window(yy)
		dst := out.row(yy)
		for xx := 0; xx < src.width*ch; xx++ {
			ss := 1 << (precisionBits - 1)
			for y := 0; y < ymax; y++ {
				ss += int(src.pix[(y+ymin)*src.width*ch+xx]) * k[y]
			}
			dst[xx] = clip8(ss)
		}
	}
	return out
}
