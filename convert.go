package dds

import (
	"encoding/binary"
	"math"
)

// pixelUnpackFunc converts len(dst) file pixels into RGBA float32.
// Missing alpha defaults to 1. Formats without blue (RG) or without
// color (A8) decode those channels as 0; single-channel R and luminance
// formats replicate their value into R, G, and B, so G and B are not 0.
type pixelUnpackFunc func(src []byte, dst [][4]float32)

// pixelPackFunc converts len(src) RGBA float32 pixels into file bytes.
type pixelPackFunc func(src [][4]float32, dst []byte)

func clamp01(v float32) float32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

func unorm8(v byte) float32 {
	return float32(v) / 255
}

func packUnorm8(v float32) byte {
	return byte(math.RoundToEven(float64(clamp01(v)) * 255))
}

func unorm16(v uint16) float32 {
	return float32(v) / 65535
}

func packUnorm16(v float32) uint16 {
	return uint16(math.RoundToEven(float64(clamp01(v)) * 65535))
}

// unormN converts an n-bit unsigned value to [0, 1].
func unormN(v uint32, bits uint) float32 {
	return float32(v) / float32(uint32(1)<<bits-1)
}

// halfToF32 expands an IEEE 754 binary16 value.
func halfToF32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff

	switch exp {
	case 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// Subnormal: normalize the mantissa into bit 10.
		shift := uint32(0)
		for mant&0x400 == 0 {
			mant <<= 1
			shift++
		}
		mant &= 0x3ff
		return math.Float32frombits(sign | (113-shift)<<23 | mant<<13)
	case 0x1f:
		return math.Float32frombits(sign | 0xff<<23 | mant<<13)
	default:
		return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
	}
}

// f32ToHalf rounds a float32 to the nearest binary16 value.
func f32ToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23&0xff) - 127 + 15
	mant := bits & 0x7fffff

	switch {
	case exp >= 0x1f:
		if bits&0x7fffffff > 0x7f800000 {
			return sign | 0x7e00 // NaN
		}
		return sign | 0x7c00 // Inf or overflow
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		mant |= 0x800000
		shift := uint32(14 - exp)
		half := uint16(mant >> shift)
		if mant>>(shift-1)&1 != 0 {
			half++ // round half away from zero; ties are vanishing
		}
		return sign | half
	default:
		half := sign | uint16(exp)<<10 | uint16(mant>>13)
		if mant&0x1000 != 0 {
			half++
		}
		return half
	}
}

// rgbaToGray folds RGB into a single luminance channel.
func rgbaToGray(p [4]float32) float32 {
	return 0.299*p[0] + 0.587*p[1] + 0.114*p[2]
}

// rowToF32 converts one row of caller pixels into RGBA float32.
func rowToF32(color ColorFormat, src []byte, dst [][4]float32) {
	n := color.Channels.Count()
	step := int(n * color.Precision.Size())

	for i := range dst {
		var ch [4]float32
		off := i * step
		switch color.Precision {
		case U8:
			for c := uint32(0); c < n; c++ {
				ch[c] = unorm8(src[off+int(c)])
			}
		case U16:
			for c := uint32(0); c < n; c++ {
				ch[c] = unorm16(binary.LittleEndian.Uint16(src[off+int(c)*2:]))
			}
		default:
			for c := uint32(0); c < n; c++ {
				ch[c] = math.Float32frombits(binary.LittleEndian.Uint32(src[off+int(c)*4:]))
			}
		}

		switch color.Channels {
		case Grayscale:
			dst[i] = [4]float32{ch[0], ch[0], ch[0], 1}
		case GrayscaleAlpha:
			dst[i] = [4]float32{ch[0], ch[0], ch[0], ch[1]}
		case RGB:
			dst[i] = [4]float32{ch[0], ch[1], ch[2], 1}
		default:
			dst[i] = ch
		}
	}
}

// rowFromF32 converts one row of RGBA float32 into caller pixels.
func rowFromF32(color ColorFormat, src [][4]float32, dst []byte) {
	n := color.Channels.Count()
	step := int(n * color.Precision.Size())

	for i, p := range src {
		var ch [4]float32
		switch color.Channels {
		case Grayscale:
			ch[0] = rgbaToGray(p)
		case GrayscaleAlpha:
			ch[0], ch[1] = rgbaToGray(p), p[3]
		case RGB:
			ch[0], ch[1], ch[2] = p[0], p[1], p[2]
		default:
			ch = p
		}

		off := i * step
		switch color.Precision {
		case U8:
			for c := uint32(0); c < n; c++ {
				dst[off+int(c)] = packUnorm8(ch[c])
			}
		case U16:
			for c := uint32(0); c < n; c++ {
				binary.LittleEndian.PutUint16(dst[off+int(c)*2:], packUnorm16(ch[c]))
			}
		default:
			for c := uint32(0); c < n; c++ {
				binary.LittleEndian.PutUint32(dst[off+int(c)*4:], math.Float32bits(ch[c]))
			}
		}
	}
}

// Per-format pixel codecs. Each converts between the file's channel
// layout and canonical RGBA float32.

func unpackRGBA8(src []byte, dst [][4]float32) {
	for i := range dst {
		o := i * 4
		dst[i] = [4]float32{unorm8(src[o]), unorm8(src[o+1]), unorm8(src[o+2]), unorm8(src[o+3])}
	}
}

func packRGBA8(src [][4]float32, dst []byte) {
	for i, p := range src {
		o := i * 4
		dst[o], dst[o+1], dst[o+2], dst[o+3] = packUnorm8(p[0]), packUnorm8(p[1]), packUnorm8(p[2]), packUnorm8(p[3])
	}
}

func unpackBGRA8(src []byte, dst [][4]float32) {
	for i := range dst {
		o := i * 4
		dst[i] = [4]float32{unorm8(src[o+2]), unorm8(src[o+1]), unorm8(src[o]), unorm8(src[o+3])}
	}
}

func packBGRA8(src [][4]float32, dst []byte) {
	for i, p := range src {
		o := i * 4
		dst[o], dst[o+1], dst[o+2], dst[o+3] = packUnorm8(p[2]), packUnorm8(p[1]), packUnorm8(p[0]), packUnorm8(p[3])
	}
}

func unpackBGRX8(src []byte, dst [][4]float32) {
	for i := range dst {
		o := i * 4
		dst[i] = [4]float32{unorm8(src[o+2]), unorm8(src[o+1]), unorm8(src[o]), 1}
	}
}

func packBGRX8(src [][4]float32, dst []byte) {
	for i, p := range src {
		o := i * 4
		dst[o], dst[o+1], dst[o+2], dst[o+3] = packUnorm8(p[2]), packUnorm8(p[1]), packUnorm8(p[0]), 0xff
	}
}

func unpackRGB8(src []byte, dst [][4]float32) {
	for i := range dst {
		o := i * 3
		dst[i] = [4]float32{unorm8(src[o]), unorm8(src[o+1]), unorm8(src[o+2]), 1}
	}
}

func packRGB8(src [][4]float32, dst []byte) {
	for i, p := range src {
		o := i * 3
		dst[o], dst[o+1], dst[o+2] = packUnorm8(p[0]), packUnorm8(p[1]), packUnorm8(p[2])
	}
}

func unpackBGR8(src []byte, dst [][4]float32) {
	for i := range dst {
		o := i * 3
		dst[i] = [4]float32{unorm8(src[o+2]), unorm8(src[o+1]), unorm8(src[o]), 1}
	}
}

func packBGR8(src [][4]float32, dst []byte) {
	for i, p := range src {
		o := i * 3
		dst[o], dst[o+1], dst[o+2] = packUnorm8(p[2]), packUnorm8(p[1]), packUnorm8(p[0])
	}
}

func unpackR8(src []byte, dst [][4]float32) {
	for i := range dst {
		v := unorm8(src[i])
		dst[i] = [4]float32{v, v, v, 1}
	}
}

func packR8(src [][4]float32, dst []byte) {
	for i, p := range src {
		dst[i] = packUnorm8(rgbaToGray(p))
	}
}

func unpackRG8(src []byte, dst [][4]float32) {
	for i := range dst {
		o := i * 2
		dst[i] = [4]float32{unorm8(src[o]), unorm8(src[o+1]), 0, 1}
	}
}

func packRG8(src [][4]float32, dst []byte) {
	for i, p := range src {
		o := i * 2
		dst[o], dst[o+1] = packUnorm8(p[0]), packUnorm8(p[1])
	}
}

func unpackA8(src []byte, dst [][4]float32) {
	for i := range dst {
		dst[i] = [4]float32{0, 0, 0, unorm8(src[i])}
	}
}

func packA8(src [][4]float32, dst []byte) {
	for i, p := range src {
		dst[i] = packUnorm8(p[3])
	}
}

func unpackB5G6R5(src []byte, dst [][4]float32) {
	for i := range dst {
		v := binary.LittleEndian.Uint16(src[i*2:])
		dst[i] = [4]float32{
			unormN(uint32(v>>11)&0x1f, 5),
			unormN(uint32(v>>5)&0x3f, 6),
			unormN(uint32(v)&0x1f, 5),
			1,
		}
	}
}

func packB5G6R5(src [][4]float32, dst []byte) {
	for i, p := range src {
		r := uint16(math.RoundToEven(float64(clamp01(p[0])) * 31))
		g := uint16(math.RoundToEven(float64(clamp01(p[1])) * 63))
		b := uint16(math.RoundToEven(float64(clamp01(p[2])) * 31))
		binary.LittleEndian.PutUint16(dst[i*2:], r<<11|g<<5|b)
	}
}

func unpackB5G5R5A1(src []byte, dst [][4]float32) {
	for i := range dst {
		v := binary.LittleEndian.Uint16(src[i*2:])
		dst[i] = [4]float32{
			unormN(uint32(v>>10)&0x1f, 5),
			unormN(uint32(v>>5)&0x1f, 5),
			unormN(uint32(v)&0x1f, 5),
			float32(v >> 15),
		}
	}
}

func packB5G5R5A1(src [][4]float32, dst []byte) {
	for i, p := range src {
		r := uint16(math.RoundToEven(float64(clamp01(p[0])) * 31))
		g := uint16(math.RoundToEven(float64(clamp01(p[1])) * 31))
		b := uint16(math.RoundToEven(float64(clamp01(p[2])) * 31))
		var a uint16
		if p[3] >= 0.5 {
			a = 1
		}
		binary.LittleEndian.PutUint16(dst[i*2:], a<<15|r<<10|g<<5|b)
	}
}

func unpackB4G4R4A4(src []byte, dst [][4]float32) {
	for i := range dst {
		v := binary.LittleEndian.Uint16(src[i*2:])
		dst[i] = [4]float32{
			unormN(uint32(v>>8)&0xf, 4),
			unormN(uint32(v>>4)&0xf, 4),
			unormN(uint32(v)&0xf, 4),
			unormN(uint32(v>>12)&0xf, 4),
		}
	}
}

func packB4G4R4A4(src [][4]float32, dst []byte) {
	for i, p := range src {
		r := uint16(math.RoundToEven(float64(clamp01(p[0])) * 15))
		g := uint16(math.RoundToEven(float64(clamp01(p[1])) * 15))
		b := uint16(math.RoundToEven(float64(clamp01(p[2])) * 15))
		a := uint16(math.RoundToEven(float64(clamp01(p[3])) * 15))
		binary.LittleEndian.PutUint16(dst[i*2:], a<<12|r<<8|g<<4|b)
	}
}

func unpackRGB10A2(src []byte, dst [][4]float32) {
	for i := range dst {
		v := binary.LittleEndian.Uint32(src[i*4:])
		dst[i] = [4]float32{
			unormN(v&0x3ff, 10),
			unormN(v>>10&0x3ff, 10),
			unormN(v>>20&0x3ff, 10),
			unormN(v>>30, 2),
		}
	}
}

func unpackR16(src []byte, dst [][4]float32) {
	for i := range dst {
		v := unorm16(binary.LittleEndian.Uint16(src[i*2:]))
		dst[i] = [4]float32{v, v, v, 1}
	}
}

func packR16(src [][4]float32, dst []byte) {
	for i, p := range src {
		binary.LittleEndian.PutUint16(dst[i*2:], packUnorm16(rgbaToGray(p)))
	}
}

func unpackRG16(src []byte, dst [][4]float32) {
	for i := range dst {
		o := i * 4
		dst[i] = [4]float32{
			unorm16(binary.LittleEndian.Uint16(src[o:])),
			unorm16(binary.LittleEndian.Uint16(src[o+2:])),
			0, 1,
		}
	}
}

func packRG16(src [][4]float32, dst []byte) {
	for i, p := range src {
		o := i * 4
		binary.LittleEndian.PutUint16(dst[o:], packUnorm16(p[0]))
		binary.LittleEndian.PutUint16(dst[o+2:], packUnorm16(p[1]))
	}
}

func unpackRGBA16(src []byte, dst [][4]float32) {
	for i := range dst {
		o := i * 8
		for c := 0; c < 4; c++ {
			dst[i][c] = unorm16(binary.LittleEndian.Uint16(src[o+c*2:]))
		}
	}
}

func packRGBA16(src [][4]float32, dst []byte) {
	for i, p := range src {
		o := i * 8
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint16(dst[o+c*2:], packUnorm16(p[c]))
		}
	}
}

// unpackF16 reads n half-float channels per pixel.
func unpackF16(n int) pixelUnpackFunc {
	return func(src []byte, dst [][4]float32) {
		for i := range dst {
			o := i * n * 2
			p := [4]float32{0, 0, 0, 1}
			for c := 0; c < n; c++ {
				p[c] = halfToF32(binary.LittleEndian.Uint16(src[o+c*2:]))
			}
			dst[i] = p
		}
	}
}

// packF16 writes n half-float channels per pixel.
func packF16(n int) pixelPackFunc {
	return func(src [][4]float32, dst []byte) {
		for i, p := range src {
			o := i * n * 2
			for c := 0; c < n; c++ {
				binary.LittleEndian.PutUint16(dst[o+c*2:], f32ToHalf(p[c]))
			}
		}
	}
}

// unpackF32 reads n float32 channels per pixel.
func unpackF32(n int) pixelUnpackFunc {
	return func(src []byte, dst [][4]float32) {
		for i := range dst {
			o := i * n * 4
			p := [4]float32{0, 0, 0, 1}
			for c := 0; c < n; c++ {
				p[c] = math.Float32frombits(binary.LittleEndian.Uint32(src[o+c*4:]))
			}
			dst[i] = p
		}
	}
}

// packF32 writes n float32 channels per pixel.
func packF32(n int) pixelPackFunc {
	return func(src [][4]float32, dst []byte) {
		for i, p := range src {
			o := i * n * 4
			for c := 0; c < n; c++ {
				binary.LittleEndian.PutUint32(dst[o+c*4:], math.Float32bits(p[c]))
			}
		}
	}
}

// Single-channel float formats replicate the channel on decode and
// fold luminance on encode, like their UNORM counterparts.

func unpackGrayF16(src []byte, dst [][4]float32) {
	for i := range dst {
		v := halfToF32(binary.LittleEndian.Uint16(src[i*2:]))
		dst[i] = [4]float32{v, v, v, 1}
	}
}

func packGrayF16(src [][4]float32, dst []byte) {
	for i, p := range src {
		binary.LittleEndian.PutUint16(dst[i*2:], f32ToHalf(rgbaToGray(p)))
	}
}

func unpackGrayF32(src []byte, dst [][4]float32) {
	for i := range dst {
		v := math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
		dst[i] = [4]float32{v, v, v, 1}
	}
}

func packGrayF32(src [][4]float32, dst []byte) {
	for i, p := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(rgbaToGray(p)))
	}
}
