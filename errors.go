package dds

import (
	"errors"
	"fmt"
)

// Decode errors without payloads.
var (
	// ErrNoMoreSurfaces is returned when all surfaces have been consumed.
	ErrNoMoreSurfaces = errors.New("no more surfaces")
	// ErrUnexpectedSurfaceSize is returned when a caller image does not
	// match the size of the current surface.
	ErrUnexpectedSurfaceSize = errors.New("unexpected size of the surface")
	// ErrCannotSkipMipmapsInVolume is returned when skipping mipmaps
	// from within a volume depth slice sequence.
	ErrCannotSkipMipmapsInVolume = errors.New("cannot skip mipmaps within a volume texture")
	// ErrNotACubeMap is returned by ReadCubeMap for non-cube-map files.
	ErrNotACubeMap = errors.New("the DDS file is not a cube map")
	// ErrRectOutOfBounds is returned when a rectangle exceeds the surface.
	ErrRectOutOfBounds = errors.New("rectangle is out of bounds of the surface size")
	// ErrMemoryLimitExceeded is returned when a scratch allocation would
	// exceed DecodeOptions.MemoryLimit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
)

// Encode errors without payloads.
var (
	// ErrEmptySurface is returned when writing a surface with a zero
	// width or height.
	ErrEmptySurface = errors.New("surface has a width or height of 0")
	// ErrTooManySurfaces is returned when writing past the last surface
	// declared in the header.
	ErrTooManySurfaces = errors.New("too many surfaces written")
	// ErrMissingSurfaces is returned by Finish when surfaces declared in
	// the header have not been written.
	ErrMissingSurfaces = errors.New("not enough surfaces have been written")
)

// HeaderErrorKind identifies why a DDS header was rejected.
type HeaderErrorKind uint8

const (
	// InvalidMagicBytes means the file does not start with "DDS ".
	InvalidMagicBytes HeaderErrorKind = iota
	// InvalidHeaderSize means the header size field is not 124.
	InvalidHeaderSize
	// InvalidPixelFormatSize means the pixel format size field is not 32.
	InvalidPixelFormatSize
	// InvalidDxgiFormat means the DX10 extension carries an unknown
	// DXGI format value.
	InvalidDxgiFormat
	// InvalidResourceDimension means the DX10 resource dimension is not
	// buffer, 1D, 2D, or 3D.
	InvalidResourceDimension
	// InvalidAlphaMode means the DX10 alpha mode is out of range.
	InvalidAlphaMode
	// InvalidArraySizeForTexture3D means a 3D texture declares an array
	// size other than 1.
	InvalidArraySizeForTexture3D
)

// HeaderError reports a malformed DDS header.
type HeaderError struct {
	Kind HeaderErrorKind
	// Value is the offending field value. For InvalidMagicBytes it is
	// the little-endian interpretation of the four magic bytes.
	Value uint32
}

func (e *HeaderError) Error() string {
	switch e.Kind {
	case InvalidMagicBytes:
		return fmt.Sprintf("invalid magic bytes %q, expected %q", fourCCString(e.Value), Magic)
	case InvalidHeaderSize:
		return fmt.Sprintf("invalid DDS header size %d, expected %d", e.Value, HeaderSize)
	case InvalidPixelFormatSize:
		return fmt.Sprintf("invalid DDS pixel format size %d, expected %d", e.Value, PixelFormatSize)
	case InvalidDxgiFormat:
		return fmt.Sprintf("invalid DXGI format %d in DX10 header extension", e.Value)
	case InvalidResourceDimension:
		return fmt.Sprintf("invalid resource dimension %d in DX10 header extension", e.Value)
	case InvalidAlphaMode:
		return fmt.Sprintf("invalid alpha mode %d in DX10 header extension", e.Value)
	case InvalidArraySizeForTexture3D:
		return fmt.Sprintf("invalid array size %d for a texture 3D in DX10 header extension", e.Value)
	default:
		return "invalid DDS header"
	}
}

// FormatErrorKind identifies why a pixel format was rejected.
type FormatErrorKind uint8

const (
	// UnsupportedDxgiFormat means the DXGI format value is known but has
	// no supported Format.
	UnsupportedDxgiFormat FormatErrorKind = iota
	// UnsupportedFourCC means the legacy FourCC tag is not recognized.
	UnsupportedFourCC
	// UnsupportedPixelFormat means the legacy bit masks match no known
	// channel layout.
	UnsupportedPixelFormat
)

// FormatError reports a syntactically valid header that encodes a pixel
// format this implementation does not support.
type FormatError struct {
	Kind FormatErrorKind
	// Value is the DXGI format value or the FourCC tag, if applicable.
	Value uint32
}

func (e *FormatError) Error() string {
	switch e.Kind {
	case UnsupportedDxgiFormat:
		return fmt.Sprintf("DXGI format %d is not supported", e.Value)
	case UnsupportedFourCC:
		return fmt.Sprintf("unsupported FourCC %q", fourCCString(e.Value))
	default:
		return "unsupported pixel format in the DDS header"
	}
}

// LayoutErrorKind identifies why a data layout could not be built.
type LayoutErrorKind uint8

const (
	// TooManyMipMaps means the header declares more than 255 mipmaps.
	TooManyMipMaps LayoutErrorKind = iota
	// ZeroDimension means the width or height is zero.
	ZeroDimension
	// MissingDepth means a volume texture declares no depth.
	MissingDepth
	// ArraySizeTooBig means the array size exceeds the configured limit
	// or overflows when multiplied by the six cube map faces.
	ArraySizeTooBig
	// DataLayoutTooBig means the summed surface sizes exceed the
	// supported maximum.
	DataLayoutTooBig
	// IncompleteCubeMap means not all six cube map faces are present.
	IncompleteCubeMap
	// InvalidCubeMapFaces means the cube map faces are not 2D textures.
	InvalidCubeMapFaces
)

// LayoutError reports a header whose data section cannot be laid out.
type LayoutError struct {
	Kind LayoutErrorKind
	// Value is the offending mipmap count or array size, if applicable.
	Value uint32
}

func (e *LayoutError) Error() string {
	switch e.Kind {
	case TooManyMipMaps:
		return fmt.Sprintf("too many mipmaps (%d), the maximum supported is 255", e.Value)
	case ZeroDimension:
		return "the width or height of the texture is zero"
	case MissingDepth:
		return "missing depth for a volume texture"
	case ArraySizeTooBig:
		return fmt.Sprintf("array size %d is too large", e.Value)
	case DataLayoutTooBig:
		return "data layout described by the header is too large"
	case IncompleteCubeMap:
		return "cube map does not declare all six faces"
	case InvalidCubeMapFaces:
		return "cube map faces must be 2D textures"
	default:
		return "invalid data layout"
	}
}

// RowPitchError reports a row pitch below the required minimum of
// bytes-per-pixel times the rectangle width.
type RowPitchError struct {
	RequiredMinimum uint64
}

func (e *RowPitchError) Error() string {
	return fmt.Sprintf("row pitch too small: must be at least %d bytes", e.RequiredMinimum)
}

// RectBufferError reports a rectangle buffer below the required minimum
// of row pitch times the rectangle height.
type RectBufferError struct {
	RequiredMinimum uint64
}

func (e *RectBufferError) Error() string {
	return fmt.Sprintf("buffer too small for rectangle: required at least %d bytes", e.RequiredMinimum)
}

// UnsupportedFormatError reports an attempt to encode a format without
// encoding support.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("format %s does not support encoding", e.Format)
}

// SizeMultiple is the size granularity a format requires of encoded
// surfaces.
type SizeMultiple struct {
	Width  uint32
	Height uint32
}

// InvalidSizeError reports a surface size that is not a multiple of the
// format's required size granularity.
type InvalidSizeError struct {
	SizeMultiple SizeMultiple
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("surface size must be a multiple of %dx%d", e.SizeMultiple.Width, e.SizeMultiple.Height)
}
