package dds

// Format identifies a recognized pixel encoding.
type Format string

// Block-compressed formats.
const (
	FormatBC1              Format = "BC1_UNORM"
	FormatBC2              Format = "BC2_UNORM"
	FormatBC2Premultiplied Format = "BC2_UNORM_PREMULTIPLIED"
	FormatBC3              Format = "BC3_UNORM"
	FormatBC3Premultiplied Format = "BC3_UNORM_PREMULTIPLIED"
	FormatBC4U             Format = "BC4_UNORM"
	FormatBC4S             Format = "BC4_SNORM"
	FormatBC5U             Format = "BC5_UNORM"
	FormatBC5S             Format = "BC5_SNORM"
)

// Uncompressed formats.
const (
	FormatRGBA8    Format = "R8G8B8A8_UNORM"
	FormatBGRA8    Format = "B8G8R8A8_UNORM"
	FormatBGRX8    Format = "B8G8R8X8_UNORM"
	FormatRGB8     Format = "R8G8B8_UNORM"
	FormatBGR8     Format = "B8G8R8_UNORM"
	FormatR8       Format = "R8_UNORM"
	FormatRG8      Format = "R8G8_UNORM"
	FormatA8       Format = "A8_UNORM"
	FormatB5G6R5   Format = "B5G6R5_UNORM"
	FormatB5G5R5A1 Format = "B5G5R5A1_UNORM"
	FormatB4G4R4A4 Format = "B4G4R4A4_UNORM"
	FormatR16      Format = "R16_UNORM"
	FormatRG16     Format = "R16G16_UNORM"
	FormatRGBA16   Format = "R16G16B16A16_UNORM"
	FormatR16F     Format = "R16_FLOAT"
	FormatRG16F    Format = "R16G16_FLOAT"
	FormatRGBA16F  Format = "R16G16B16A16_FLOAT"
	FormatR32F     Format = "R32_FLOAT"
	FormatRG32F    Format = "R32G32_FLOAT"
	FormatRGB32F   Format = "R32G32B32_FLOAT"
	FormatRGBA32F  Format = "R32G32B32A32_FLOAT"
	FormatRGB10A2  Format = "R10G10B10A2_UNORM"
)

// formatInfo is the catalog entry of a Format. Exactly one of the
// pixel codec pair (unpack/pack) or the block codec pair is set,
// depending on the block dimensions. A nil pack/encodeBlock marks a
// decode-only format.
type formatInfo struct {
	color         ColorFormat
	bytesPerBlock uint32
	blockWidth    uint32
	blockHeight   uint32
	sizeMultiple  SizeMultiple
	premultiplied bool

	unpack pixelUnpackFunc
	pack   pixelPackFunc

	decodeBlock blockDecodeFunc
	encodeBlock blockEncodeFunc
}

func (fi *formatInfo) isBlock() bool {
	return fi.blockWidth > 1 || fi.blockHeight > 1
}

func (fi *formatInfo) supportsEncoding() bool {
	if fi.isBlock() {
		return fi.encodeBlock != nil
	}
	return fi.pack != nil
}

// info returns the catalog entry, or nil for unknown formats.
func (f Format) info() *formatInfo {
	return formatCatalog[f]
}

// Color returns the native color of the format: the channel layout and
// precision its pixels decode to. BC4_SNORM and BC5_SNORM report U8,
// which does not hold their negative values: decoding them to an
// unsigned precision clamps negatives to 0.
func (f Format) Color() ColorFormat {
	if fi := f.info(); fi != nil {
		return fi.color
	}
	return ColorFormat{}
}

// BytesPerBlock returns the number of bytes per pixel for uncompressed
// formats, or per encoded block for block-compressed formats.
func (f Format) BytesPerBlock() uint32 {
	if fi := f.info(); fi != nil {
		return fi.bytesPerBlock
	}
	return 0
}

// BlockSize returns the block dimensions: 1x1 for uncompressed formats
// and 4x4 for block-compressed formats.
func (f Format) BlockSize() (width, height uint32) {
	if fi := f.info(); fi != nil {
		return fi.blockWidth, fi.blockHeight
	}
	return 0, 0
}

// SupportsEncoding reports whether the format can be encoded. Some
// formats are decode-only.
func (f Format) SupportsEncoding() bool {
	if fi := f.info(); fi != nil {
		return fi.supportsEncoding()
	}
	return false
}

// DataLength returns the number of bytes a surface of the given size
// occupies in the file.
func (f Format) DataLength(size Size) uint64 {
	fi := f.info()
	if fi == nil {
		return 0
	}
	blocksX := uint64(ceilDiv(size.Width, fi.blockWidth))
	blocksY := uint64(ceilDiv(size.Height, fi.blockHeight))
	return blocksX * blocksY * uint64(fi.bytesPerBlock)
}

func ceilDiv(v, d uint32) uint32 {
	return (v + d - 1) / d
}

// FormatFromHeader resolves the pixel format of a header. Resolution
// precedence: the DX10 DXGI format, then known FourCC tags, then the
// legacy bit mask table.
func FormatFromHeader(h *Header) (Format, error) {
	if h.DX10 != nil {
		if f, ok := dxgiFormats[h.DX10.DXGIFormat]; ok {
			return f, nil
		}
		return "", &FormatError{Kind: UnsupportedDxgiFormat, Value: h.DX10.DXGIFormat}
	}

	pf := &h.PixelFormat
	if pf.Flags&PFFourCC != 0 {
		if f, ok := fourCCFormats[pf.FourCC]; ok {
			return f, nil
		}
		return "", &FormatError{Kind: UnsupportedFourCC, Value: pf.FourCC}
	}

	for i := range maskFormats {
		m := &maskFormats[i]
		if pf.Flags&m.flags != m.flags || pf.RGBBitCount != m.bitCount {
			continue
		}
		if pf.RBitMask == m.r && pf.GBitMask == m.g && pf.BBitMask == m.b && pf.ABitMask == m.a {
			return m.format, nil
		}
	}
	return "", &FormatError{Kind: UnsupportedPixelFormat}
}

// dxgiFormats maps DXGI_FORMAT values to formats. sRGB variants map to
// the same format; no color-space conversion is performed.
var dxgiFormats = map[uint32]Format{
	2:   FormatRGBA32F,
	6:   FormatRGB32F,
	10:  FormatRGBA16F,
	11:  FormatRGBA16,
	16:  FormatRG32F,
	24:  FormatRGB10A2,
	28:  FormatRGBA8,
	29:  FormatRGBA8,
	34:  FormatRG16F,
	35:  FormatRG16,
	41:  FormatR32F,
	49:  FormatRG8,
	54:  FormatR16F,
	56:  FormatR16,
	61:  FormatR8,
	65:  FormatA8,
	71:  FormatBC1,
	72:  FormatBC1,
	74:  FormatBC2,
	75:  FormatBC2,
	77:  FormatBC3,
	78:  FormatBC3,
	80:  FormatBC4U,
	81:  FormatBC4S,
	83:  FormatBC5U,
	84:  FormatBC5S,
	85:  FormatB5G6R5,
	86:  FormatB5G5R5A1,
	87:  FormatBGRA8,
	91:  FormatBGRA8,
	88:  FormatBGRX8,
	93:  FormatBGRX8,
	115: FormatB4G4R4A4,
}

// fourCCFormats maps legacy FourCC tags to formats. The numeric keys
// are D3DFMT codes some writers store in place of a character tag.
var fourCCFormats = map[uint32]Format{
	fourCC("DXT1"): FormatBC1,
	fourCC("DXT2"): FormatBC2Premultiplied,
	fourCC("DXT3"): FormatBC2,
	fourCC("DXT4"): FormatBC3Premultiplied,
	fourCC("DXT5"): FormatBC3,
	fourCC("ATI1"): FormatBC4U,
	fourCC("BC4U"): FormatBC4U,
	fourCC("BC4S"): FormatBC4S,
	fourCC("ATI2"): FormatBC5U,
	fourCC("BC5U"): FormatBC5U,
	fourCC("BC5S"): FormatBC5S,
	36:             FormatRGBA16,
	111:            FormatR16F,
	112:            FormatRG16F,
	113:            FormatRGBA16F,
	114:            FormatR32F,
	115:            FormatRG32F,
	116:            FormatRGBA32F,
}

// maskFormats classifies legacy mask-based pixel formats.
var maskFormats = []struct {
	flags    uint32
	bitCount uint32
	r, g, b  uint32
	a        uint32
	format   Format
}{
	{PFRGB | PFAlphaPixels, 32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000, FormatRGBA8},
	{PFRGB | PFAlphaPixels, 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000, FormatBGRA8},
	{PFRGB | PFAlphaPixels, 32, 0x000003ff, 0x000ffc00, 0x3ff00000, 0xc0000000, FormatRGB10A2},
	{PFRGB, 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0, FormatBGRX8},
	{PFRGB, 32, 0x0000ffff, 0xffff0000, 0, 0, FormatRG16},
	{PFRGB, 24, 0x00ff0000, 0x0000ff00, 0x000000ff, 0, FormatBGR8},
	{PFRGB, 24, 0x000000ff, 0x0000ff00, 0x00ff0000, 0, FormatRGB8},
	{PFRGB, 16, 0x0000f800, 0x000007e0, 0x0000001f, 0, FormatB5G6R5},
	{PFRGB | PFAlphaPixels, 16, 0x00007c00, 0x000003e0, 0x0000001f, 0x00008000, FormatB5G5R5A1},
	{PFRGB | PFAlphaPixels, 16, 0x00000f00, 0x000000f0, 0x0000000f, 0x0000f000, FormatB4G4R4A4},
	{PFLuminance, 8, 0x000000ff, 0, 0, 0, FormatR8},
	{PFLuminance, 16, 0x0000ffff, 0, 0, 0, FormatR16},
	{PFAlpha, 8, 0, 0, 0, 0x000000ff, FormatA8},
}
