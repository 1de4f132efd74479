package dds

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Magic is the four-byte DDS file signature.
	Magic = "DDS "

	// HeaderSize is the size of the DDS_HEADER structure.
	HeaderSize = 124
	// PixelFormatSize is the size of the DDS_PIXELFORMAT structure.
	PixelFormatSize = 32
	// DX10HeaderSize is the size of the DDS_HEADER_DXT10 extension.
	DX10HeaderSize = 20

	// DDS_HEADER flags
	DCaps        = 0x1
	DHeight      = 0x2
	DWidth       = 0x4
	DPitch       = 0x8
	DPixelFormat = 0x1000
	DMipMapCount = 0x20000
	DLinearSize  = 0x80000
	DDepth       = 0x800000

	// DDS_PIXELFORMAT flags
	PFAlphaPixels = 0x1
	PFAlpha       = 0x2
	PFFourCC      = 0x4
	PFRGB         = 0x40
	PFYUV         = 0x200
	PFLuminance   = 0x20000

	// DDS_CAPS flags
	CapsComplex = 0x8
	CapsTexture = 0x1000
	CapsMipMap  = 0x400000

	// DDS_CAPS2 flags
	Caps2CubeMap          = 0x200
	Caps2CubeMapPositiveX = 0x400
	Caps2CubeMapNegativeX = 0x800
	Caps2CubeMapPositiveY = 0x1000
	Caps2CubeMapNegativeY = 0x2000
	Caps2CubeMapPositiveZ = 0x4000
	Caps2CubeMapNegativeZ = 0x8000
	Caps2AllFaces         = 0xfc00
	Caps2Volume           = 0x200000

	HeaderFlagsTexture = DCaps | DHeight | DWidth | DPixelFormat

	// FourCCDX10 marks a header carrying the DX10 extension.
	FourCCDX10 = 0x30315844 // "DX10" in little-endian
)

// DX10 resource dimensions.
const (
	ResourceDimensionBuffer    = 1
	ResourceDimensionTexture1D = 2
	ResourceDimensionTexture2D = 3
	ResourceDimensionTexture3D = 4
)

// DX10 misc flags.
const (
	MiscTextureCube = 0x4
)

// maxKnownDxgiFormat is the last value of the DXGI_FORMAT enumeration
// this implementation recognizes as syntactically valid.
const maxKnownDxgiFormat = 132

// PixelFormat represents the DDS_PIXELFORMAT structure.
type PixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// HeaderDX10 represents the DDS_HEADER_DXT10 extension structure.
type HeaderDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// AlphaMode returns the alpha mode bits of MiscFlags2.
func (h *HeaderDX10) AlphaMode() uint32 {
	return h.MiscFlags2 & 0x7
}

// Header represents the DDS_HEADER structure. DX10 is non-nil when the
// pixel format FourCC is "DX10" and the extension follows the header.
type Header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       PixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32

	DX10 *HeaderDX10
}

// fourCCString renders a FourCC value as its four ASCII characters.
func fourCCString(v uint32) string {
	return string([]byte{
		byte(v),
		byte(v >> 8),
		byte(v >> 16),
		byte(v >> 24),
	})
}

// fourCC packs a four-character tag into its little-endian value.
func fourCC(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

// dwordReader decodes little-endian DWORDs from a fixed buffer.
type dwordReader struct {
	buf []byte
	off int
}

func (r *dwordReader) next() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

// ReadHeader reads a DDS header, including the DX10 extension when
// present, leaving the reader positioned at the start of the surface
// data. A nil options value uses DefaultParseOptions.
func ReadHeader(r io.Reader, options *ParseOptions) (*Header, error) {
	opts := DefaultParseOptions()
	if options != nil {
		opts = *options
	}

	if opts.FileMagic == MagicRequired {
		var magic [4]byte
		if _, err := io.ReadFull(r, magic[:]); err != nil {
			return nil, fmt.Errorf("reading magic: %w", err)
		}
		if string(magic[:]) != Magic {
			return nil, &HeaderError{Kind: InvalidMagicBytes, Value: binary.LittleEndian.Uint32(magic[:])}
		}
	}

	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	d := dwordReader{buf: buf}

	var h Header
	h.Size = d.next()
	if h.Size != HeaderSize {
		return nil, &HeaderError{Kind: InvalidHeaderSize, Value: h.Size}
	}
	h.Flags = d.next()
	h.Height = d.next()
	h.Width = d.next()
	h.PitchOrLinearSize = d.next()
	h.Depth = d.next()
	h.MipMapCount = d.next()
	for i := range h.Reserved1 {
		h.Reserved1[i] = d.next()
	}

	pf := &h.PixelFormat
	pf.Size = d.next()
	if pf.Size != PixelFormatSize && !opts.PermissivePixelFormatSize {
		return nil, &HeaderError{Kind: InvalidPixelFormatSize, Value: pf.Size}
	}
	pf.Flags = d.next()
	pf.FourCC = d.next()
	pf.RGBBitCount = d.next()
	pf.RBitMask = d.next()
	pf.GBitMask = d.next()
	pf.BBitMask = d.next()
	pf.ABitMask = d.next()

	h.Caps = d.next()
	h.Caps2 = d.next()
	h.Caps3 = d.next()
	h.Caps4 = d.next()
	h.Reserved2 = d.next()

	if pf.Flags&PFFourCC != 0 && pf.FourCC == FourCCDX10 {
		dx10, err := readHeaderDX10(r, &opts)
		if err != nil {
			return nil, err
		}
		h.DX10 = dx10
	}

	return &h, nil
}

// readHeaderDX10 reads and validates the 20-byte DX10 extension.
func readHeaderDX10(r io.Reader, opts *ParseOptions) (*HeaderDX10, error) {
	buf := make([]byte, DX10HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading DX10 header extension: %w", err)
	}
	d := dwordReader{buf: buf}

	var dx10 HeaderDX10
	dx10.DXGIFormat = d.next()
	dx10.ResourceDimension = d.next()
	dx10.MiscFlag = d.next()
	dx10.ArraySize = d.next()
	dx10.MiscFlags2 = d.next()

	if dx10.DXGIFormat > maxKnownDxgiFormat {
		return nil, &HeaderError{Kind: InvalidDxgiFormat, Value: dx10.DXGIFormat}
	}
	if dx10.ResourceDimension < ResourceDimensionBuffer || dx10.ResourceDimension > ResourceDimensionTexture3D {
		return nil, &HeaderError{Kind: InvalidResourceDimension, Value: dx10.ResourceDimension}
	}
	if dx10.AlphaMode() > 4 {
		return nil, &HeaderError{Kind: InvalidAlphaMode, Value: dx10.AlphaMode()}
	}
	if dx10.ResourceDimension == ResourceDimensionTexture3D && dx10.ArraySize != 1 {
		return nil, &HeaderError{Kind: InvalidArraySizeForTexture3D, Value: dx10.ArraySize}
	}
	if dx10.ArraySize > opts.MaxArraySize {
		return nil, &LayoutError{Kind: ArraySizeTooBig, Value: dx10.ArraySize}
	}

	return &dx10, nil
}

// dwordWriter encodes little-endian DWORDs into a fixed buffer.
type dwordWriter struct {
	buf []byte
	off int
}

func (w *dwordWriter) put(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

// Write writes the magic bytes, the header, and the DX10 extension when
// present. The output round-trips byte-for-byte with ReadHeader.
func (h *Header) Write(w io.Writer) error {
	size := 4 + HeaderSize
	if h.DX10 != nil {
		size += DX10HeaderSize
	}
	buf := make([]byte, size)
	copy(buf, Magic)
	d := dwordWriter{buf: buf, off: 4}

	d.put(h.Size)
	d.put(h.Flags)
	d.put(h.Height)
	d.put(h.Width)
	d.put(h.PitchOrLinearSize)
	d.put(h.Depth)
	d.put(h.MipMapCount)
	for _, v := range h.Reserved1 {
		d.put(v)
	}

	pf := &h.PixelFormat
	d.put(pf.Size)
	d.put(pf.Flags)
	d.put(pf.FourCC)
	d.put(pf.RGBBitCount)
	d.put(pf.RBitMask)
	d.put(pf.GBitMask)
	d.put(pf.BBitMask)
	d.put(pf.ABitMask)

	d.put(h.Caps)
	d.put(h.Caps2)
	d.put(h.Caps3)
	d.put(h.Caps4)
	d.put(h.Reserved2)

	if h.DX10 != nil {
		d.put(h.DX10.DXGIFormat)
		d.put(h.DX10.ResourceDimension)
		d.put(h.DX10.MiscFlag)
		d.put(h.DX10.ArraySize)
		d.put(h.DX10.MiscFlags2)
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

// ArraySize returns the number of array slices the header declares.
// Headers without a DX10 extension always describe a single slice.
// A zero DX10 array size is treated as 1; some writers store zero.
func (h *Header) ArraySize() uint32 {
	if h.DX10 != nil {
		return max(1, h.DX10.ArraySize)
	}
	return 1
}

// mipCount returns the declared mipmap count, clamped to at least 1.
func (h *Header) mipCount() uint32 {
	if h.Flags&DMipMapCount != 0 || h.MipMapCount > 0 {
		return max(1, h.MipMapCount)
	}
	return 1
}

// isCubeMap reports whether the header declares a cube map.
func (h *Header) isCubeMap() bool {
	if h.DX10 != nil {
		return h.DX10.MiscFlag&MiscTextureCube != 0
	}
	return h.Caps2&Caps2CubeMap != 0
}

// isVolume reports whether the header declares a volume texture.
func (h *Header) isVolume() bool {
	if h.DX10 != nil {
		return h.DX10.ResourceDimension == ResourceDimensionTexture3D
	}
	return h.Caps2&Caps2Volume != 0 || h.Flags&DDepth != 0
}

// NewTextureHeader builds a plain 2D texture header for a format. It
// prefers the legacy pixel format representation and falls back to the
// DX10 extension for formats the legacy header cannot express.
func NewTextureHeader(format Format, width, height, mipMapCount uint32) (*Header, error) {
	fi := format.info()
	if fi == nil {
		return nil, &FormatError{Kind: UnsupportedPixelFormat}
	}

	flags := uint32(HeaderFlagsTexture)
	caps := uint32(CapsTexture)
	if mipMapCount > 1 {
		flags |= DMipMapCount
		caps |= CapsComplex | CapsMipMap
	}

	var pitchOrLinear uint32
	if fi.isBlock() {
		flags |= DLinearSize
		pitchOrLinear = ceilDiv(width, fi.blockWidth) * ceilDiv(height, fi.blockHeight) * fi.bytesPerBlock
	} else {
		flags |= DPitch
		pitchOrLinear = width * fi.bytesPerBlock
	}

	h := &Header{
		Size:              HeaderSize,
		Flags:             flags,
		Height:            height,
		Width:             width,
		PitchOrLinearSize: pitchOrLinear,
		MipMapCount:       mipMapCount,
		Caps:              caps,
	}
	h.PixelFormat = legacyPixelFormat(format)
	if h.PixelFormat.Size == 0 {
		dxgi, ok := dxgiValues[format]
		if !ok {
			return nil, &FormatError{Kind: UnsupportedPixelFormat}
		}
		h.PixelFormat = PixelFormat{Size: PixelFormatSize, Flags: PFFourCC, FourCC: FourCCDX10}
		h.DX10 = &HeaderDX10{
			DXGIFormat:        dxgi,
			ResourceDimension: ResourceDimensionTexture2D,
			ArraySize:         1,
		}
	}
	return h, nil
}

// legacyPixelFormat returns the legacy DDS_PIXELFORMAT of a format, or
// a zero value when the format needs the DX10 extension.
func legacyPixelFormat(format Format) PixelFormat {
	masks := func(flags, bits, r, g, b, a uint32) PixelFormat {
		return PixelFormat{
			Size: PixelFormatSize, Flags: flags, RGBBitCount: bits,
			RBitMask: r, GBitMask: g, BBitMask: b, ABitMask: a,
		}
	}
	cc := func(tag uint32) PixelFormat {
		return PixelFormat{Size: PixelFormatSize, Flags: PFFourCC, FourCC: tag}
	}

	switch format {
	case FormatRGBA8:
		return masks(PFRGB|PFAlphaPixels, 32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000)
	case FormatBGRA8:
		return masks(PFRGB|PFAlphaPixels, 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000)
	case FormatBGRX8:
		return masks(PFRGB, 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0)
	case FormatRGB8:
		return masks(PFRGB, 24, 0x000000ff, 0x0000ff00, 0x00ff0000, 0)
	case FormatBGR8:
		return masks(PFRGB, 24, 0x00ff0000, 0x0000ff00, 0x000000ff, 0)
	case FormatR8:
		return masks(PFLuminance, 8, 0x000000ff, 0, 0, 0)
	case FormatR16:
		return masks(PFLuminance, 16, 0x0000ffff, 0, 0, 0)
	case FormatA8:
		return masks(PFAlpha, 8, 0, 0, 0, 0x000000ff)
	case FormatB5G6R5:
		return masks(PFRGB, 16, 0x0000f800, 0x000007e0, 0x0000001f, 0)
	case FormatB5G5R5A1:
		return masks(PFRGB|PFAlphaPixels, 16, 0x00007c00, 0x000003e0, 0x0000001f, 0x00008000)
	case FormatB4G4R4A4:
		return masks(PFRGB|PFAlphaPixels, 16, 0x00000f00, 0x000000f0, 0x0000000f, 0x0000f000)
	case FormatRG16:
		return masks(PFRGB, 32, 0x0000ffff, 0xffff0000, 0, 0)
	case FormatBC1:
		return cc(fourCC("DXT1"))
	case FormatBC2Premultiplied:
		return cc(fourCC("DXT2"))
	case FormatBC2:
		return cc(fourCC("DXT3"))
	case FormatBC3Premultiplied:
		return cc(fourCC("DXT4"))
	case FormatBC3:
		return cc(fourCC("DXT5"))
	case FormatBC4U:
		return cc(fourCC("ATI1"))
	case FormatBC5U:
		return cc(fourCC("ATI2"))
	case FormatRGBA16:
		return cc(36)
	case FormatR16F:
		return cc(111)
	case FormatRG16F:
		return cc(112)
	case FormatRGBA16F:
		return cc(113)
	case FormatR32F:
		return cc(114)
	case FormatRG32F:
		return cc(115)
	case FormatRGBA32F:
		return cc(116)
	default:
		return PixelFormat{}
	}
}

// dxgiValues is the preferred DXGI value of formats written through
// the DX10 extension.
var dxgiValues = map[Format]uint32{
	FormatBC4S:    81,
	FormatBC5S:    84,
	FormatRG8:     49,
	FormatRGB32F:  6,
	FormatRGB10A2: 24,
}
