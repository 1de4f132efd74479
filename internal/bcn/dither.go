package bcn

// fsWeights are the Floyd-Steinberg error diffusion weights for the
// right, down-left, down, and down-right neighbors.
var fsWeights = [4]float32{7.0 / 16, 3.0 / 16, 5.0 / 16, 1.0 / 16}

// BlockDither quantizes the 16 values of a 4x4 block with in-block
// error diffusion. quantize receives the error-adjusted value of pixel
// i and returns the value actually representable; the residual is
// diffused to the unvisited neighbors. The result is deterministic.
func BlockDither(values *[16]float32, quantize func(i int, v float32) float32) {
	var carry [16]float32
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := y*4 + x
			got := quantize(i, values[i]+carry[i])
			err := values[i] + carry[i] - got
			if x+1 < 4 {
				carry[i+1] += err * fsWeights[0]
			}
			if y+1 < 4 {
				if x-1 >= 0 {
					carry[i+3] += err * fsWeights[1]
				}
				carry[i+4] += err * fsWeights[2]
				if x+1 < 4 {
					carry[i+5] += err * fsWeights[3]
				}
			}
		}
	}
}

// ditherColors assigns palette indices with per-channel error
// diffusion over the RGB channels.
func ditherColors(block *Block, palette [][4]float32, pick func(i int) (int, bool), assign func(i, index int)) {
	var carry [16][3]float32
	diffuse := func(i int, err [3]float32) {
		x, y := i%4, i/4
		add := func(j int, w float32) {
			carry[j][0] += err[0] * w
			carry[j][1] += err[1] * w
			carry[j][2] += err[2] * w
		}
		if x+1 < 4 {
			add(i+1, fsWeights[0])
		}
		if y+1 < 4 {
			if x-1 >= 0 {
				add(i+3, fsWeights[1])
			}
			add(i+4, fsWeights[2])
			if x+1 < 4 {
				add(i+5, fsWeights[3])
			}
		}
	}

	for i := 0; i < 16; i++ {
		if idx, fixed := pick(i); fixed {
			assign(i, idx)
			continue
		}
		p := block[i]
		target := [4]float32{p[0] + carry[i][0], p[1] + carry[i][1], p[2] + carry[i][2], p[3]}
		best, bestDist := 0, float32(0)
		for j, ref := range palette {
			d := sqrDist(target, ref)
			if j == 0 || d < bestDist {
				best, bestDist = j, d
			}
		}
		assign(i, best)
		chosen := palette[best]
		diffuse(i, [3]float32{target[0] - chosen[0], target[1] - chosen[1], target[2] - chosen[2]})
	}
}
