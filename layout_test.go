package dds

import (
	"errors"
	"testing"
)

// cubeHeader builds a legacy cube map header with all six faces.
func cubeHeader(width, height, mips uint32) *Header {
	return &Header{
		Size: HeaderSize, Flags: HeaderFlagsTexture | DMipMapCount,
		Height: height, Width: width, MipMapCount: mips,
		PixelFormat: legacyPixelFormat(FormatRGBA8),
		Caps:        CapsTexture | CapsComplex | CapsMipMap,
		Caps2:       Caps2CubeMap | Caps2AllFaces,
	}
}

// volumeHeader builds a legacy volume header.
func volumeHeader(width, height, depth, mips uint32) *Header {
	return &Header{
		Size: HeaderSize, Flags: HeaderFlagsTexture | DMipMapCount | DDepth,
		Height: height, Width: width, Depth: depth, MipMapCount: mips,
		PixelFormat: legacyPixelFormat(FormatRGBA8),
		Caps:        CapsTexture | CapsComplex | CapsMipMap,
		Caps2:       Caps2Volume,
	}
}

func TestLayoutTextureMipChain(t *testing.T) {
	t.Parallel()

	h := mustHeader(t, FormatRGBA8, 64, 64, 7)
	l, err := NewDataLayout(h, FormatRGBA8)
	if err != nil {
		t.Fatalf("NewDataLayout() error = %v", err)
	}

	if l.Kind() != LayoutTexture {
		t.Fatalf("Kind() = %d, want LayoutTexture", l.Kind())
	}
	if got := l.SurfaceCount(); got != 7 {
		t.Fatalf("SurfaceCount() = %d, want 7", got)
	}

	var want uint64
	for w := uint32(64); w >= 1; w /= 2 {
		want += uint64(w) * uint64(w) * 4
	}
	if got := l.DataLength(); got != want {
		t.Fatalf("DataLength() = %d, want %d", got, want)
	}

	// The k-th surface starts where the previous ones end.
	var offset uint64
	for k := uint64(0); k < l.SurfaceCount(); k++ {
		s, ok := l.SurfaceAt(k)
		if !ok {
			t.Fatalf("SurfaceAt(%d) missing", k)
		}
		if s.Offset != offset {
			t.Fatalf("SurfaceAt(%d).Offset = %d, want %d", k, s.Offset, offset)
		}
		wantSize := Size{64, 64}.mip(uint8(k))
		if s.Width != wantSize.Width || s.Height != wantSize.Height {
			t.Fatalf("SurfaceAt(%d) size = %dx%d, want %v", k, s.Width, s.Height, wantSize)
		}
		offset += s.Length
	}
	if offset != l.DataLength() {
		t.Fatalf("summed lengths = %d, want %d", offset, l.DataLength())
	}
}

func TestLayoutBlockMips(t *testing.T) {
	t.Parallel()

	h := mustHeader(t, FormatBC1, 8, 8, 4)
	l, err := NewDataLayout(h, FormatBC1)
	if err != nil {
		t.Fatalf("NewDataLayout() error = %v", err)
	}

	// Sub-block mips still occupy a full block.
	want := []uint64{32, 8, 8, 8}
	for k, w := range want {
		s, _ := l.SurfaceAt(uint64(k))
		if s.Length != w {
			t.Fatalf("mip %d length = %d, want %d", k, s.Length, w)
		}
	}
}

func TestLayoutCubeMap(t *testing.T) {
	t.Parallel()

	l, err := NewDataLayout(cubeHeader(16, 16, 5), FormatRGBA8)
	if err != nil {
		t.Fatalf("NewDataLayout() error = %v", err)
	}

	if l.Kind() != LayoutCubeMap {
		t.Fatalf("Kind() = %d, want LayoutCubeMap", l.Kind())
	}
	if got := l.SurfaceCount(); got != 30 {
		t.Fatalf("SurfaceCount() = %d, want 30", got)
	}

	// Face mip chains are stored one face after another.
	s, _ := l.SurfaceAt(5)
	if s.Slot != 1 || s.MipLevel != 0 || s.Kind != CubeFace {
		t.Fatalf("SurfaceAt(5) = %+v, want face 1 mip 0", s)
	}
}

func TestLayoutVolume(t *testing.T) {
	t.Parallel()

	l, err := NewDataLayout(volumeHeader(16, 16, 16, 5), FormatRGBA8)
	if err != nil {
		t.Fatalf("NewDataLayout() error = %v", err)
	}

	if l.Kind() != LayoutVolume {
		t.Fatalf("Kind() = %d, want LayoutVolume", l.Kind())
	}
	// 16 + 8 + 4 + 2 + 1 depth slices.
	if got := l.SurfaceCount(); got != 31 {
		t.Fatalf("SurfaceCount() = %d, want 31", got)
	}

	// First slice of mip 1 follows the 16 slices of mip 0.
	s, _ := l.SurfaceAt(16)
	if s.MipLevel != 1 || s.Slot != 0 || s.Kind != DepthSlice {
		t.Fatalf("SurfaceAt(16) = %+v, want depth slice 0 of mip 1", s)
	}
	if want := uint64(16) * 16 * 16 * 4; s.Offset != want {
		t.Fatalf("SurfaceAt(16).Offset = %d, want %d", s.Offset, want)
	}
}

func TestLayoutErrors(t *testing.T) {
	t.Parallel()

	incomplete := cubeHeader(8, 8, 1)
	incomplete.Caps2 = Caps2CubeMap | Caps2CubeMapPositiveX

	cubeVolume := cubeHeader(8, 8, 1)
	cubeVolume.Flags |= DDepth
	cubeVolume.Depth = 4

	zeroWidth := mustHeader(t, FormatRGBA8, 8, 8, 1)
	zeroWidth.Width = 0

	tooManyMips := mustHeader(t, FormatRGBA8, 8, 8, 1)
	tooManyMips.MipMapCount = 300
	tooManyMips.Flags |= DMipMapCount

	noDepth := volumeHeader(8, 8, 4, 1)
	noDepth.Depth = 0

	// 65535^3 RGBA32F pixels describe petabytes of data.
	overflow := volumeHeader(65535, 65535, 65535, 1)

	tests := []struct {
		name   string
		header *Header
		format Format
		kind   LayoutErrorKind
	}{
		{name: "incomplete-cube", header: incomplete, format: FormatRGBA8, kind: IncompleteCubeMap},
		{name: "cube-volume", header: cubeVolume, format: FormatRGBA8, kind: InvalidCubeMapFaces},
		{name: "zero-width", header: zeroWidth, format: FormatRGBA8, kind: ZeroDimension},
		{name: "too-many-mips", header: tooManyMips, format: FormatRGBA8, kind: TooManyMipMaps},
		{name: "no-depth", header: noDepth, format: FormatRGBA8, kind: MissingDepth},
		{name: "overflow", header: overflow, format: FormatRGBA32F, kind: DataLayoutTooBig},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewDataLayout(tc.header, tc.format)
			var lerr *LayoutError
			if !errors.As(err, &lerr) {
				t.Fatalf("NewDataLayout() error = %v, want LayoutError", err)
			}
			if lerr.Kind != tc.kind {
				t.Fatalf("LayoutError kind = %d, want %d", lerr.Kind, tc.kind)
			}
		})
	}
}
