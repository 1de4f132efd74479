package bcn

import "testing"

func uniformBlock(r, g, b, a float32) Block {
	var block Block
	for i := range block {
		block[i] = [4]float32{r, g, b, a}
	}
	return block
}

func TestEncodeBC1UniformRed(t *testing.T) {
	t.Parallel()

	block := uniformBlock(1, 0, 0, 1)
	out := EncodeBC1Block(&block, BC1Options{})

	// Both endpoints are RGB565 pure red and every index is 0.
	want := [8]byte{0x00, 0xf8, 0x00, 0xf8, 0, 0, 0, 0}
	if out != want {
		t.Fatalf("EncodeBC1Block() = % x, want % x", out, want)
	}
}

func TestBC1RoundTripUniform(t *testing.T) {
	t.Parallel()

	colors := [][4]float32{
		{1, 0, 0, 1},
		{0, 1, 0, 1},
		{0, 0, 1, 1},
		{0.5, 0.25, 0.75, 1},
		{0, 0, 0, 1},
		{1, 1, 1, 1},
	}

	for _, c := range colors {
		block := uniformBlock(c[0], c[1], c[2], c[3])
		out := EncodeBC1Block(&block, BC1Options{})
		got := DecodeBC1Block(out[:], false)

		for i := range got {
			for ch := 0; ch < 3; ch++ {
				diff := got[i][ch] - c[ch]
				if diff < 0 {
					diff = -diff
				}
				// RGB565 quantization of a 5-bit channel is at most
				// half a step (1/62); the 6-bit green channel is finer.
				if diff > 1.0/31/2+1e-6 {
					t.Fatalf("color %v pixel %d channel %d: got %f", c, i, ch, got[i][ch])
				}
			}
			if got[i][3] != 1 {
				t.Fatalf("color %v pixel %d: alpha = %f, want 1", c, i, got[i][3])
			}
		}
	}
}

func TestBC1TransparentPixels(t *testing.T) {
	t.Parallel()

	block := uniformBlock(1, 0, 0, 1)
	block[5][3] = 0
	block[10][3] = 0.2

	out := EncodeBC1Block(&block, BC1Options{})
	got := DecodeBC1Block(out[:], false)

	if got[5][3] != 0 || got[10][3] != 0 {
		t.Fatalf("transparent pixels decoded opaque: %v %v", got[5], got[10])
	}
	if got[0][3] != 1 {
		t.Fatalf("opaque pixel decoded transparent: %v", got[0])
	}
	if got[0][0] < 0.9 {
		t.Fatalf("opaque pixel lost its color: %v", got[0])
	}
}

func TestBC1NoDefaultIgnoresAlpha(t *testing.T) {
	t.Parallel()

	block := uniformBlock(0, 1, 0, 0)
	out := EncodeBC1Block(&block, BC1Options{NoDefault: true})
	got := DecodeBC1Block(out[:], true)

	for i := range got {
		if got[i][1] < 0.9 {
			t.Fatalf("pixel %d lost green in opaque mode: %v", i, got[i])
		}
	}
}

func TestBC1TwoColorBlock(t *testing.T) {
	t.Parallel()

	var block Block
	for i := range block {
		if i%2 == 0 {
			block[i] = [4]float32{1, 1, 1, 1}
		} else {
			block[i] = [4]float32{0, 0, 0, 1}
		}
	}

	out := EncodeBC1Block(&block, BC1Options{})
	got := DecodeBC1Block(out[:], false)

	for i := range got {
		want := float32(0)
		if i%2 == 0 {
			want = 1
		}
		for ch := 0; ch < 3; ch++ {
			diff := got[i][ch] - want
			if diff < 0 {
				diff = -diff
			}
			if diff > 0.02 {
				t.Fatalf("pixel %d channel %d = %f, want %f", i, ch, got[i][ch], want)
			}
		}
	}
}

func TestBC1DitherDeterministic(t *testing.T) {
	t.Parallel()

	var block Block
	for i := range block {
		block[i] = [4]float32{float32(i) / 15, 0.5, 1 - float32(i)/15, 1}
	}

	a := EncodeBC1Block(&block, BC1Options{Dither: true})
	b := EncodeBC1Block(&block, BC1Options{Dither: true})
	if a != b {
		t.Fatalf("dithered encode is not deterministic: % x vs % x", a, b)
	}
}
