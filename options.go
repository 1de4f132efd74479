package dds

import "github.com/creasty/defaults"

// MagicCheck controls how ReadHeader treats the four magic bytes.
type MagicCheck uint8

const (
	// MagicRequired reads and validates the "DDS " magic bytes.
	MagicRequired MagicCheck = iota
	// MagicSkip assumes the magic bytes have already been consumed.
	MagicSkip
)

// ParseOptions controls header parsing. All permissiveness decisions
// live here.
type ParseOptions struct {
	// FileMagic selects whether the "DDS " magic bytes are expected.
	FileMagic MagicCheck
	// PermissivePixelFormatSize accepts pixel format size fields other
	// than 32. Some writers put garbage there.
	PermissivePixelFormatSize bool
	// MaxArraySize rejects headers declaring larger texture arrays.
	MaxArraySize uint32 `default:"4096"`
}

// DefaultParseOptions returns the default parse options.
func DefaultParseOptions() ParseOptions {
	var o ParseOptions
	_ = defaults.Set(&o)
	return o
}

// DecodeOptions controls decoding.
type DecodeOptions struct {
	// MemoryLimit caps any single scratch allocation, in bytes.
	MemoryLimit uint64 `default:"1073741824"`
}

// DefaultDecodeOptions returns the default decode options.
func DefaultDecodeOptions() DecodeOptions {
	var o DecodeOptions
	_ = defaults.Set(&o)
	return o
}

// Dithering selects which channels are dithered during encoding.
type Dithering uint8

const (
	// DitherNone disables dithering.
	DitherNone Dithering = iota
	// DitherColorAndAlpha dithers all channels.
	DitherColorAndAlpha
	// DitherColor dithers only color channels.
	DitherColor
	// DitherAlpha dithers only the alpha channel.
	DitherAlpha
)

func (d Dithering) color() bool {
	return d == DitherColorAndAlpha || d == DitherColor
}

func (d Dithering) alpha() bool {
	return d == DitherColorAndAlpha || d == DitherAlpha
}

// EncodeOptions controls encoding.
type EncodeOptions struct {
	// Dithering enables dithering of quantized channels. Dithering is
	// deterministic for a given input.
	Dithering Dithering
}

// ResizeFilter selects the filter used to resize surfaces when
// generating mipmaps.
type ResizeFilter uint8

const (
	// FilterBox averages the covered source pixels. The default.
	FilterBox ResizeFilter = iota
	// FilterNearest picks the nearest source pixel.
	FilterNearest
	// FilterTriangle is a linear tent filter.
	FilterTriangle
	// FilterMitchell is the Mitchell-Netravali cubic (B=C=1/3).
	FilterMitchell
	// FilterLanczos3 is a three-lobe Lanczos windowed sinc.
	FilterLanczos3
)

// WriteOptions controls per-surface write behavior of the Encoder.
type WriteOptions struct {
	// GenerateMipmaps synthesizes all mipmap levels following a written
	// level 0 surface by resizing it. Ignored for volume textures.
	GenerateMipmaps bool
	// ResizeStraightAlpha premultiplies alpha into the color channels
	// around the resize to avoid color bleeding. Set to false for
	// premultiplied or channel-packed textures.
	ResizeStraightAlpha bool `default:"true"`
	// ResizeFilter is the filter used for mipmap generation.
	ResizeFilter ResizeFilter
}

// DefaultWriteOptions returns the default write options.
func DefaultWriteOptions() WriteOptions {
	var o WriteOptions
	_ = defaults.Set(&o)
	return o
}
