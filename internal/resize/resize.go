// Package resize implements separable image resampling for mipmap
// generation. Resampling runs as two one-dimensional convolution
// passes with precomputed weight tables; tables and pixel buffers are
// cached in a State and reused across calls.
package resize

import "math"

// Filter selects the reconstruction kernel.
type Filter uint8

const (
	// Box averages the covered source pixels. Resizing an image to its
	// own size with Box is the identity.
	Box Filter = iota
	// Nearest picks the closest source pixel.
	Nearest
	// Triangle is a linear tent kernel.
	Triangle
	// Mitchell is the Mitchell-Netravali cubic with B = C = 1/3.
	Mitchell
	// Lanczos3 is a three-lobe Lanczos windowed sinc.
	Lanczos3
)

// support returns the kernel radius in source pixels at scale 1.
func (f Filter) support() float64 {
	switch f {
	case Box, Nearest:
		return 0.5
	case Triangle:
		return 1
	case Mitchell:
		return 2
	default:
		return 3
	}
}

// kernel evaluates the filter at x.
func (f Filter) kernel(x float64) float64 {
	if x < 0 {
		x = -x
	}
	switch f {
	case Box, Nearest:
		if x <= 0.5 {
			return 1
		}
		return 0
	case Triangle:
		if x < 1 {
			return 1 - x
		}
		return 0
	case Mitchell:
		const b, c = 1.0 / 3, 1.0 / 3
		if x < 1 {
			return ((12-9*b-6*c)*x*x*x + (-18+12*b+6*c)*x*x + (6 - 2*b)) / 6
		}
		if x < 2 {
			return ((-b-6*c)*x*x*x + (6*b+30*c)*x*x + (-12*b-48*c)*x + (8*b + 24*c)) / 6
		}
		return 0
	default:
		if x < 3 {
			return sinc(x) * sinc(x/3)
		}
		return 0
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// contrib lists the source taps of one destination pixel.
type contrib struct {
	first   int
	weights []float32
}

// tableKey identifies a weight table by axis geometry and filter.
type tableKey struct {
	src    int
	dst    int
	filter Filter
}

// State holds the weight-table cache and intermediate pixel buffers.
// It is not safe for concurrent use.
type State struct {
	tables map[tableKey][]contrib
	pre    [][4]float32
	mid    [][4]float32
	out    [][4]float32
}

// NewState returns an empty resize state.
func NewState() *State {
	return &State{tables: make(map[tableKey][]contrib)}
}

// table returns the cached weight table for one axis, computing it on
// first use. Weights are normalized to sum to 1 per destination pixel.
func (s *State) table(src, dst int, f Filter) []contrib {
	key := tableKey{src: src, dst: dst, filter: f}
	if t, ok := s.tables[key]; ok {
		return t
	}

	scale := float64(src) / float64(dst)
	filterScale := math.Max(scale, 1)
	radius := f.support() * filterScale

	t := make([]contrib, dst)
	for i := range t {
		center := (float64(i) + 0.5) * scale

		if f == Nearest {
			j := min(src-1, max(0, int(center)))
			t[i] = contrib{first: j, weights: []float32{1}}
			continue
		}

		lo := max(0, int(math.Ceil(center-radius-0.5)))
		hi := min(src-1, int(math.Floor(center+radius-0.5)))
		if hi < lo {
			lo = min(src-1, max(0, int(center)))
			hi = lo
		}

		weights := make([]float32, hi-lo+1)
		var sum float64
		for j := lo; j <= hi; j++ {
			w := f.kernel((float64(j) + 0.5 - center) / filterScale)
			weights[j-lo] = float32(w)
			sum += w
		}
		if sum != 0 {
			inv := float32(1 / sum)
			for k := range weights {
				weights[k] *= inv
			}
		}
		t[i] = contrib{first: lo, weights: weights}
	}

	s.tables[key] = t
	return t
}

// Resize resamples src (srcW by srcH RGBA pixels in row-major order)
// to dstW by dstH. With straightAlpha set, color channels are
// premultiplied by alpha before resampling and unpremultiplied after,
// so transparent pixels do not bleed into their neighbors. The
// returned slice is owned by the State and valid until the next call.
func (s *State) Resize(src [][4]float32, srcW, srcH, dstW, dstH int, straightAlpha bool, f Filter) [][4]float32 {
	if straightAlpha {
		s.pre = grow(s.pre, srcW*srcH)
		for i, p := range src {
			a := p[3]
			s.pre[i] = [4]float32{p[0] * a, p[1] * a, p[2] * a, a}
		}
		src = s.pre[:srcW*srcH]
	}

	// Horizontal pass: srcW x srcH -> dstW x srcH.
	hTab := s.table(srcW, dstW, f)
	s.mid = grow(s.mid, dstW*srcH)
	mid := s.mid[:dstW*srcH]
	for y := 0; y < srcH; y++ {
		in := src[y*srcW : (y+1)*srcW]
		out := mid[y*dstW : (y+1)*dstW]
		for x := range out {
			c := hTab[x]
			var acc [4]float32
			for k, w := range c.weights {
				p := in[c.first+k]
				acc[0] += w * p[0]
				acc[1] += w * p[1]
				acc[2] += w * p[2]
				acc[3] += w * p[3]
			}
			out[x] = acc
		}
	}

	// Vertical pass: dstW x srcH -> dstW x dstH.
	vTab := s.table(srcH, dstH, f)
	s.out = grow(s.out, dstW*dstH)
	dst := s.out[:dstW*dstH]
	for y := 0; y < dstH; y++ {
		c := vTab[y]
		out := dst[y*dstW : (y+1)*dstW]
		for x := range out {
			var acc [4]float32
			for k, w := range c.weights {
				p := mid[(c.first+k)*dstW+x]
				acc[0] += w * p[0]
				acc[1] += w * p[1]
				acc[2] += w * p[2]
				acc[3] += w * p[3]
			}
			out[x] = acc
		}
	}

	if straightAlpha {
		for i := range dst {
			if a := dst[i][3]; a > 0 {
				inv := 1 / a
				dst[i][0] *= inv
				dst[i][1] *= inv
				dst[i][2] *= inv
			}
		}
	}
	return dst
}

func grow(buf [][4]float32, n int) [][4]float32 {
	if cap(buf) < n {
		return make([][4]float32, n)
	}
	return buf[:n]
}
