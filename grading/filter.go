package grading

// findEdgesKernel is the 3x3 high-pass kernel applied to each channel
var findEdgesKernel = [9]int{
	-1, -1, -1,
	-1, 8, -1,
	-1, -1, -1,
}

// findEdges convolves every channel with findEdgesKernel, clipping to [0,255].
// The outermost rows and columns are copied from the source unchanged.
func findEdges(src *raster) *raster {
	out := newRaster(src.width, src.height, src.channels)
	copy(out.pix, src.pix)
	if src.width < 3 || src.height < 3 {
		return out
	}

	ch := src.channels
	for y := 1; y < src.height-1; y++ {
		above := src.row(y - 1)
		cur := src.row(y)
		below := src.row(y + 1)
		dst := out.row(y)
		for x := 1; x < src.width-1; x++ {
			for c := 0; c < ch; c++ {
				i := x*ch + c
				sum := findEdgesKernel[0]*int(below[i-ch]) + findEdgesKernel[1]*int(below[i]) + findEdgesKernel[2]*int(below[i+ch]) +
					findEdgesKernel[3]*int(cur[i-ch]) + findEdgesKernel[4]*int(cur[i]) + findEdgesKernel[5]*int(cur[i+ch]) +
					findEdgesKernel[6]*int(above[i-ch]) + findEdgesKernel[7]*int(above[i]) + findEdgesKernel[8]*int(above[i+ch])
				dst[i] = clampByte(sum)
			}
		}
	}
	return out
}

func clampByte(v int) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
