package bcn

import "encoding/binary"

// BC1 block layout: 8 bytes. Two RGB565 endpoints followed by 16
// 2-bit palette indices. When the first endpoint is numerically
// greater than the second, the palette has four interpolated colors;
// otherwise three colors plus transparent black.

// BC1Options controls BC1 block encoding.
type BC1Options struct {
	// Dither diffuses color quantization error within the block.
	Dither bool
	// NoDefault suppresses the 1-bit alpha branch. Set when the block
	// is the RGB half of a BC2/BC3 block, which is always four-color.
	NoDefault bool
}

// EncodeBC1Block compresses a 4x4 RGBA block.
func EncodeBC1Block(block *Block, opts BC1Options) [8]byte {
	hasAlpha := false
	if !opts.NoDefault {
		for _, p := range block {
			if p[3] < 0.5 {
				hasAlpha = true
				break
			}
		}
	}

	minColor, maxColor := minMaxLum(block)
	c0 := to565(maxColor)
	c1 := to565(minColor)

	// Four-color mode needs c0 > c1, three-color mode c0 <= c1.
	if hasAlpha == (c0 > c1) {
		c0, c1 = c1, c0
	}

	palette := bc1Palette(c0, c1, opts.NoDefault || (!hasAlpha && c0 > c1))
	refs := palette[:4]
	if hasAlpha {
		refs = palette[:3]
	}

	var indices uint32
	pick := func(i int) (int, bool) {
		if hasAlpha && block[i][3] < 0.5 {
			return 3, true
		}
		return 0, false
	}
	assign := func(i, index int) {
		indices |= uint32(index) << (i * 2)
	}

	if opts.Dither {
		ditherColors(block, refs, pick, assign)
	} else {
		for i := 0; i < 16; i++ {
			if idx, fixed := pick(i); fixed {
				assign(i, idx)
				continue
			}
			best, bestDist := 0, float32(0)
			for j, ref := range refs {
				d := sqrDist(block[i], ref)
				if j == 0 || d < bestDist {
					best, bestDist = j, d
				}
			}
			assign(i, best)
		}
	}

	var out [8]byte
	binary.LittleEndian.PutUint16(out[0:], c0)
	binary.LittleEndian.PutUint16(out[2:], c1)
	binary.LittleEndian.PutUint32(out[4:], indices)
	return out
}

// DecodeBC1Block expands a BC1 block. opaque forces four-color
// interpretation regardless of the endpoint order, as required for the
// RGB half of BC2 and BC3 blocks.
func DecodeBC1Block(src []byte, opaque bool) Block {
	c0 := binary.LittleEndian.Uint16(src[0:])
	c1 := binary.LittleEndian.Uint16(src[2:])
	indices := binary.LittleEndian.Uint32(src[4:])

	palette := bc1Palette(c0, c1, opaque || c0 > c1)

	var block Block
	for i := 0; i < 16; i++ {
		block[i] = palette[indices>>(i*2)&0x3]
	}
	return block
}

// bc1Palette builds the four reference colors for an endpoint pair.
func bc1Palette(c0, c1 uint16, fourColor bool) [4][4]float32 {
	p0 := from565(c0)
	p1 := from565(c1)
	if fourColor {
		return [4][4]float32{p0, p1, mix(p0, p1, 2, 1), mix(p0, p1, 1, 2)}
	}
	return [4][4]float32{p0, p1, mix(p0, p1, 1, 1), {0, 0, 0, 0}}
}
