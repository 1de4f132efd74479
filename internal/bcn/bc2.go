package bcn

import "encoding/binary"

// BC2 block layout: 16 bytes. 64 bits of explicit 4-bit alpha, packed
// little-endian nibble by nibble, followed by a BC1 color block that
// is always interpreted in four-color mode.

// EncodeBC2Alpha packs 16 alpha values into the explicit alpha half.
func EncodeBC2Alpha(alpha *[16]float32, dither bool) [8]byte {
	var packed uint64
	set := func(i int, v uint32) {
		packed |= uint64(v) << (i * 4)
	}

	if dither {
		vals := *alpha
		BlockDither(&vals, func(i int, v float32) float32 {
			q := roundBits(v, 4)
			set(i, q)
			return float32(q) / 15
		})
	} else {
		for i, v := range alpha {
			set(i, roundBits(v, 4))
		}
	}

	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], packed)
	return out
}

// DecodeBC2Alpha expands the explicit alpha half.
func DecodeBC2Alpha(src []byte) [16]float32 {
	packed := binary.LittleEndian.Uint64(src)
	var out [16]float32
	for i := range out {
		out[i] = float32(packed>>(i*4)&0xf) / 15
	}
	return out
}

// EncodeBC2Block compresses a 4x4 RGBA block to BC2.
func EncodeBC2Block(block *Block, ditherColor, ditherAlpha bool) [16]byte {
	alpha := blockAlpha(block)
	alphaHalf := EncodeBC2Alpha(&alpha, ditherAlpha)
	colorHalf := EncodeBC1Block(block, BC1Options{Dither: ditherColor, NoDefault: true})
	return concat(alphaHalf, colorHalf)
}

// DecodeBC2Block expands a BC2 block.
func DecodeBC2Block(src []byte) Block {
	alpha := DecodeBC2Alpha(src[0:8])
	block := DecodeBC1Block(src[8:16], true)
	for i := range block {
		block[i][3] = alpha[i]
	}
	return block
}

// blockAlpha extracts the alpha channel of a block.
func blockAlpha(block *Block) [16]float32 {
	var out [16]float32
	for i, p := range block {
		out[i] = p[3]
	}
	return out
}
