package bcn

import "testing"

func TestBC4RoundTripUniform(t *testing.T) {
	t.Parallel()

	for _, v := range []float32{0, 0.25, 0.5, 0.75, 1} {
		var vals [16]float32
		for i := range vals {
			vals[i] = v
		}

		out := EncodeBC4Block(&vals, BC4Options{})
		got := DecodeBC4Block(out[:], false)

		for i, g := range got {
			diff := g - v
			if diff < 0 {
				diff = -diff
			}
			if diff > 1.0/255+1e-6 {
				t.Fatalf("value %f pixel %d: got %f", v, i, g)
			}
		}
	}
}

func TestBC4RoundTripGradient(t *testing.T) {
	t.Parallel()

	var vals [16]float32
	for i := range vals {
		vals[i] = float32(i) / 15
	}

	out := EncodeBC4Block(&vals, BC4Options{})
	got := DecodeBC4Block(out[:], false)

	// Endpoints are 0 and 1, so the 8-point palette has steps of 1/7.
	for i, g := range got {
		diff := g - vals[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 0.5/7+1e-6 {
			t.Fatalf("pixel %d: got %f, want about %f", i, g, vals[i])
		}
	}
}

func TestBC4SNormRoundTrip(t *testing.T) {
	t.Parallel()

	var vals [16]float32
	for i := range vals {
		vals[i] = float32(i)/7.5 - 1 // spans [-1, 1]
	}

	out := EncodeBC4Block(&vals, BC4Options{SNorm: true})
	got := DecodeBC4Block(out[:], true)

	for i, g := range got {
		diff := g - vals[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1.0/7+1e-6 {
			t.Fatalf("pixel %d: got %f, want about %f", i, g, vals[i])
		}
	}
}

func TestBC4SNormReservedEndpoint(t *testing.T) {
	t.Parallel()

	// -128 is reserved and decodes like -127.
	src := [8]byte{0x80, 0x81, 0, 0, 0, 0, 0, 0}
	got := DecodeBC4Block(src[:], true)
	if got[0] != -1 {
		t.Fatalf("endpoint -128 decoded to %f, want -1", got[0])
	}
}

func TestBC4IndexPacking(t *testing.T) {
	t.Parallel()

	var idx [16]uint8
	for i := range idx {
		idx[i] = uint8(i % 8)
	}

	packed := packBC4(200, 10, idx)
	got := unpackBC4Indices(packed[2:8])
	if got != idx {
		t.Fatalf("index packing round-trip = %v, want %v", got, idx)
	}
}

func TestBC4ModePalettes(t *testing.T) {
	t.Parallel()

	// Interpolated mode: e0 > e1 gives 8 graded points.
	p := bc4Palette(255, 0, false)
	if p[0] != 1 || p[1] != 0 {
		t.Fatalf("palette endpoints = %f, %f", p[0], p[1])
	}
	for i := 2; i < 8; i++ {
		if p[i] <= 0 || p[i] >= 1 {
			t.Fatalf("palette[%d] = %f outside (0, 1)", i, p[i])
		}
	}

	// Extreme mode: e0 <= e1 pins the last two entries to the domain.
	p = bc4Palette(100, 200, false)
	if p[6] != 0 || p[7] != 1 {
		t.Fatalf("extreme palette ends = %f, %f, want 0, 1", p[6], p[7])
	}
}
