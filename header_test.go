package dds

import (
	"bytes"
	"errors"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	dx10 := &Header{
		Size: HeaderSize, Flags: HeaderFlagsTexture, Height: 32, Width: 32,
		PixelFormat: PixelFormat{Size: PixelFormatSize, Flags: PFFourCC, FourCC: FourCCDX10},
		Caps:        CapsTexture,
		DX10: &HeaderDX10{
			DXGIFormat:        80,
			ResourceDimension: ResourceDimensionTexture2D,
			ArraySize:         4,
		},
	}

	tests := []struct {
		name   string
		header *Header
	}{
		{name: "legacy-rgba8", header: mustHeader(t, FormatRGBA8, 64, 64, 7)},
		{name: "fourcc-bc1", header: mustHeader(t, FormatBC1, 16, 8, 1)},
		{name: "fourcc-bc3", header: mustHeader(t, FormatBC3, 128, 128, 8)},
		{name: "dx10-bc4-array", header: dx10},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := tc.header.Write(&buf); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			first := buf.Bytes()

			got, err := ReadHeader(bytes.NewReader(first), nil)
			if err != nil {
				t.Fatalf("ReadHeader() error = %v", err)
			}

			var again bytes.Buffer
			if err := got.Write(&again); err != nil {
				t.Fatalf("Write() after read error = %v", err)
			}
			if !bytes.Equal(first, again.Bytes()) {
				t.Fatalf("header does not round-trip byte-for-byte:\n% x\n% x", first, again.Bytes())
			}
		})
	}
}

func TestReadHeaderErrors(t *testing.T) {
	t.Parallel()

	headerBytes := func(t *testing.T, format Format) []byte {
		t.Helper()
		var buf bytes.Buffer
		if err := mustHeader(t, format, 4, 4, 1).Write(&buf); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		return buf.Bytes()
	}

	tests := []struct {
		name   string
		mutate func(b []byte)
		kind   HeaderErrorKind
		dx10   bool
	}{
		{name: "bad-magic", mutate: func(b []byte) { b[0] = 'X' }, kind: InvalidMagicBytes},
		{name: "bad-header-size", mutate: func(b []byte) { b[4] = 120 }, kind: InvalidHeaderSize},
		{name: "bad-pixel-format-size", mutate: func(b []byte) { b[76] = 31 }, kind: InvalidPixelFormatSize},
		{name: "bad-dxgi", mutate: func(b []byte) { b[128] = 250 }, kind: InvalidDxgiFormat, dx10: true},
		{name: "bad-dimension", mutate: func(b []byte) { b[132] = 9 }, kind: InvalidResourceDimension, dx10: true},
		{name: "bad-alpha-mode", mutate: func(b []byte) { b[144] = 7 }, kind: InvalidAlphaMode, dx10: true},
		{name: "tex3d-array", mutate: func(b []byte) { b[132] = 4; b[140] = 2 }, kind: InvalidArraySizeForTexture3D, dx10: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			format := FormatRGBA8
			if tc.dx10 {
				format = FormatBC4S
			}
			raw := headerBytes(t, format)
			tc.mutate(raw)

			_, err := ReadHeader(bytes.NewReader(raw), nil)
			var herr *HeaderError
			if !errors.As(err, &herr) {
				t.Fatalf("ReadHeader() error = %v, want HeaderError", err)
			}
			if herr.Kind != tc.kind {
				t.Fatalf("HeaderError kind = %d, want %d", herr.Kind, tc.kind)
			}
		})
	}
}

func TestReadHeaderMagicSkip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := mustHeader(t, FormatRGBA8, 8, 8, 1)
	if err := h.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	opts := DefaultParseOptions()
	opts.FileMagic = MagicSkip
	if _, err := ReadHeader(bytes.NewReader(buf.Bytes()[4:]), &opts); err != nil {
		t.Fatalf("ReadHeader() with MagicSkip error = %v", err)
	}
}

func TestReadHeaderPermissivePixelFormatSize(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := mustHeader(t, FormatRGBA8, 8, 8, 1)
	if err := h.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	raw := buf.Bytes()
	raw[76] = 24

	if _, err := ReadHeader(bytes.NewReader(raw), nil); err == nil {
		t.Fatal("ReadHeader() expected error for pixel format size 24")
	}

	opts := DefaultParseOptions()
	opts.PermissivePixelFormatSize = true
	if _, err := ReadHeader(bytes.NewReader(raw), &opts); err != nil {
		t.Fatalf("ReadHeader() permissive error = %v", err)
	}
}

func TestReadHeaderMaxArraySize(t *testing.T) {
	t.Parallel()

	h := mustHeader(t, FormatBC4S, 8, 8, 1)
	h.DX10.ArraySize = 100
	var buf bytes.Buffer
	if err := h.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	opts := DefaultParseOptions()
	opts.MaxArraySize = 10
	_, err := ReadHeader(bytes.NewReader(buf.Bytes()), &opts)
	var lerr *LayoutError
	if !errors.As(err, &lerr) || lerr.Kind != ArraySizeTooBig {
		t.Fatalf("ReadHeader() error = %v, want ArraySizeTooBig", err)
	}
}

// mustHeader builds a texture header or fails the test.
func mustHeader(t *testing.T, format Format, width, height, mips uint32) *Header {
	t.Helper()
	h, err := NewTextureHeader(format, width, height, mips)
	if err != nil {
		t.Fatalf("NewTextureHeader(%s) error = %v", format, err)
	}
	return h
}
