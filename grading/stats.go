package grading

import "math"

// stats accumulates a histogram of a single-channel raster
type stats struct {
	count float64
	sum   float64
	sum2  float64
}

func measure(r *raster) stats {
	var hist [256]int
	for _, v := range r.pix {
		hist[v]++
	}

	var s stats
	for i, n := range hist {
		s.count += float64(n)
		s.sum += float64(i) * float64(n)
		s.sum2 += float64(i*i) * float64(n)
	}
	return s
}

func (s stats) mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / s.count
}

// variance is the population variance
func (s stats) variance() float64 {
	if s.count == 0 {
		return 0
	}
	v := (s.sum2 - (s.sum*s.sum)/s.count) / s.count
	if v < 0 {
		return 0
	}
	return v
}

func (s stats) stddev() float64 {
	return math.Sqrt(s.variance())
}
