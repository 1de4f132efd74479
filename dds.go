// Package dds implements a streaming encoder and decoder for the
// DirectDraw Surface (DDS) texture container.
//
// A DDS file carries a fixed header describing a GPU texture resource
// (2D texture, texture array, cube map, or volume), optionally with a
// mipmap chain, followed by tightly packed surface data in one of many
// block-compressed or uncompressed pixel formats.
//
// The package decodes and encodes surface by surface: the header
// determines a DataLayout, a SurfaceIterator walks the surfaces in the
// canonical file order, and the Decoder/Encoder transcode each surface
// between the on-disk encoding and a caller-supplied image buffer.
package dds

// Size is the width and height of a surface in pixels.
type Size struct {
	Width  uint32
	Height uint32
}

// IsEmpty reports whether the size has a zero dimension.
func (s Size) IsEmpty() bool {
	return s.Width == 0 || s.Height == 0
}

// Pixels returns the number of pixels.
func (s Size) Pixels() uint64 {
	return uint64(s.Width) * uint64(s.Height)
}

// mip returns the size of the given mipmap level, clamped to 1x1.
func (s Size) mip(level uint8) Size {
	return Size{
		Width:  max(1, s.Width>>level),
		Height: max(1, s.Height>>level),
	}
}

// Rect is a rectangle within a surface.
type Rect struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

// IsEmpty reports whether the rectangle has a zero dimension.
func (r Rect) IsEmpty() bool {
	return r.Width == 0 || r.Height == 0
}

// fitsIn reports whether the rectangle lies fully within a surface of
// the given size.
func (r Rect) fitsIn(s Size) bool {
	return uint64(r.X)+uint64(r.Width) <= uint64(s.Width) &&
		uint64(r.Y)+uint64(r.Height) <= uint64(s.Height)
}
