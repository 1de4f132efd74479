package bcn

// BC3 block layout: 16 bytes. A BC4-style interpolated alpha block
// followed by a BC1 color block that is always interpreted in
// four-color mode.

// EncodeBC3Block compresses a 4x4 RGBA block to BC3.
func EncodeBC3Block(block *Block, ditherColor, ditherAlpha bool) [16]byte {
	alpha := blockAlpha(block)
	alphaHalf := EncodeBC4Block(&alpha, BC4Options{Dither: ditherAlpha})
	colorHalf := EncodeBC1Block(block, BC1Options{Dither: ditherColor, NoDefault: true})
	return concat(alphaHalf, colorHalf)
}

// DecodeBC3Block expands a BC3 block.
func DecodeBC3Block(src []byte) Block {
	alpha := DecodeBC4Block(src[0:8], false)
	block := DecodeBC1Block(src[8:16], true)
	for i := range block {
		block[i][3] = alpha[i]
	}
	return block
}
