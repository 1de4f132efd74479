package dds

import (
	"errors"
	"testing"
)

func TestFormatFromHeader(t *testing.T) {
	t.Parallel()

	legacy := func(flags, bits, r, g, b, a uint32) *Header {
		return &Header{
			Size: HeaderSize, Flags: HeaderFlagsTexture, Height: 4, Width: 4,
			PixelFormat: PixelFormat{
				Size: PixelFormatSize, Flags: flags, RGBBitCount: bits,
				RBitMask: r, GBitMask: g, BBitMask: b, ABitMask: a,
			},
			Caps: CapsTexture,
		}
	}
	cc := func(tag string) *Header {
		h := legacy(0, 0, 0, 0, 0, 0)
		h.PixelFormat = PixelFormat{Size: PixelFormatSize, Flags: PFFourCC, FourCC: fourCC(tag)}
		return h
	}
	dxgi := func(v uint32) *Header {
		h := cc("DX10")
		h.DX10 = &HeaderDX10{DXGIFormat: v, ResourceDimension: ResourceDimensionTexture2D, ArraySize: 1}
		return h
	}

	tests := []struct {
		name   string
		header *Header
		want   Format
	}{
		{name: "dxgi-bc1", header: dxgi(71), want: FormatBC1},
		{name: "dxgi-bc1-srgb", header: dxgi(72), want: FormatBC1},
		{name: "dxgi-bc5-snorm", header: dxgi(84), want: FormatBC5S},
		{name: "dxgi-rgba32f", header: dxgi(2), want: FormatRGBA32F},
		{name: "fourcc-dxt1", header: cc("DXT1"), want: FormatBC1},
		{name: "fourcc-dxt2", header: cc("DXT2"), want: FormatBC2Premultiplied},
		{name: "fourcc-dxt5", header: cc("DXT5"), want: FormatBC3},
		{name: "fourcc-ati2", header: cc("ATI2"), want: FormatBC5U},
		{name: "masks-rgba8", header: legacy(PFRGB|PFAlphaPixels, 32, 0xff, 0xff00, 0xff0000, 0xff000000), want: FormatRGBA8},
		{name: "masks-bgra8", header: legacy(PFRGB|PFAlphaPixels, 32, 0xff0000, 0xff00, 0xff, 0xff000000), want: FormatBGRA8},
		{name: "masks-bgr8", header: legacy(PFRGB, 24, 0xff0000, 0xff00, 0xff, 0), want: FormatBGR8},
		{name: "masks-565", header: legacy(PFRGB, 16, 0xf800, 0x7e0, 0x1f, 0), want: FormatB5G6R5},
		{name: "masks-luminance8", header: legacy(PFLuminance, 8, 0xff, 0, 0, 0), want: FormatR8},
		{name: "masks-alpha8", header: legacy(PFAlpha, 8, 0, 0, 0, 0xff), want: FormatA8},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := FormatFromHeader(tc.header)
			if err != nil {
				t.Fatalf("FormatFromHeader() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("FormatFromHeader() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFormatFromHeaderUnsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header *Header
		kind   FormatErrorKind
	}{
		{
			name: "dxgi",
			header: &Header{
				PixelFormat: PixelFormat{Size: PixelFormatSize, Flags: PFFourCC, FourCC: FourCCDX10},
				DX10:        &HeaderDX10{DXGIFormat: 130, ResourceDimension: ResourceDimensionTexture2D, ArraySize: 1},
			},
			kind: UnsupportedDxgiFormat,
		},
		{
			name: "fourcc",
			header: &Header{
				PixelFormat: PixelFormat{Size: PixelFormatSize, Flags: PFFourCC, FourCC: fourCC("XXXX")},
			},
			kind: UnsupportedFourCC,
		},
		{
			name: "masks",
			header: &Header{
				PixelFormat: PixelFormat{Size: PixelFormatSize, Flags: PFRGB, RGBBitCount: 32, RBitMask: 0x3},
			},
			kind: UnsupportedPixelFormat,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := FormatFromHeader(tc.header)
			var ferr *FormatError
			if !errors.As(err, &ferr) {
				t.Fatalf("FormatFromHeader() error = %v, want FormatError", err)
			}
			if ferr.Kind != tc.kind {
				t.Fatalf("FormatError kind = %d, want %d", ferr.Kind, tc.kind)
			}
		})
	}
}

func TestFormatGeometry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format   Format
		color    ColorFormat
		bpb      uint32
		blockDim uint32
		encode   bool
	}{
		{format: FormatBC1, color: ColorFormat{RGBA, U8}, bpb: 8, blockDim: 4, encode: true},
		{format: FormatBC3, color: ColorFormat{RGBA, U8}, bpb: 16, blockDim: 4, encode: true},
		{format: FormatBC4U, color: ColorFormat{Grayscale, U8}, bpb: 8, blockDim: 4, encode: true},
		{format: FormatBC5S, color: ColorFormat{RGB, U8}, bpb: 16, blockDim: 4, encode: true},
		{format: FormatRGBA8, color: ColorFormat{RGBA, U8}, bpb: 4, blockDim: 1, encode: true},
		{format: FormatR16F, color: ColorFormat{Grayscale, F32}, bpb: 2, blockDim: 1, encode: true},
		{format: FormatRGB10A2, color: ColorFormat{RGBA, U16}, bpb: 4, blockDim: 1, encode: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.format), func(t *testing.T) {
			t.Parallel()

			if got := tc.format.Color(); got != tc.color {
				t.Fatalf("Color() = %v, want %v", got, tc.color)
			}
			if got := tc.format.BytesPerBlock(); got != tc.bpb {
				t.Fatalf("BytesPerBlock() = %d, want %d", got, tc.bpb)
			}
			w, h := tc.format.BlockSize()
			if w != tc.blockDim || h != tc.blockDim {
				t.Fatalf("BlockSize() = %dx%d, want %dx%d", w, h, tc.blockDim, tc.blockDim)
			}
			if got := tc.format.SupportsEncoding(); got != tc.encode {
				t.Fatalf("SupportsEncoding() = %v, want %v", got, tc.encode)
			}
		})
	}
}

func TestFormatDataLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		size   Size
		want   uint64
	}{
		{format: FormatBC1, size: Size{8, 8}, want: 32},
		{format: FormatBC1, size: Size{9, 8}, want: 48},
		{format: FormatBC1, size: Size{1, 1}, want: 8},
		{format: FormatBC3, size: Size{256, 256}, want: 64 * 64 * 16},
		{format: FormatRGBA8, size: Size{64, 64}, want: 64 * 64 * 4},
		{format: FormatBGR8, size: Size{3, 3}, want: 27},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.format), func(t *testing.T) {
			t.Parallel()

			if got := tc.format.DataLength(tc.size); got != tc.want {
				t.Fatalf("DataLength(%v) = %d, want %d", tc.size, got, tc.want)
			}
		})
	}
}
