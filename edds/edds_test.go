package edds

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

// testImage builds a deterministic NRGBA image.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: byte(x * 17),
				G: byte(y * 31),
				B: byte((x + y) * 7),
				A: 255,
			})
		}
	}
	return img
}

func TestWriteReadSmall(t *testing.T) {
	t.Parallel()

	// An 8x8 base surface is 256 bytes, below the compression
	// threshold, so every block takes the COPY path.
	src := testImage(8, 8)
	path := filepath.Join(t.TempDir(), "small.edds")

	if err := WriteWithMipmaps(src, path, 1); err != nil {
		t.Fatalf("WriteWithMipmaps() error = %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	back, ok := got.(*image.NRGBA)
	if !ok {
		t.Fatalf("Read() returned %T, want *image.NRGBA", got)
	}
	for i := range src.Pix {
		if back.Pix[i] != src.Pix[i] {
			t.Fatalf("pixel byte %d = %d, want %d", i, back.Pix[i], src.Pix[i])
		}
	}
}

func TestWriteReadWithMipChain(t *testing.T) {
	t.Parallel()

	// 64x64 surfaces are large enough to exercise the LZ4 path.
	src := testImage(64, 64)
	path := filepath.Join(t.TempDir(), "chain.edds")

	if err := Write(src, path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Fatalf("config = %dx%d, want 64x64", cfg.Width, cfg.Height)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	back := got.(*image.NRGBA)
	for i := range src.Pix {
		if back.Pix[i] != src.Pix[i] {
			t.Fatalf("pixel byte %d = %d, want %d", i, back.Pix[i], src.Pix[i])
		}
	}
}

func TestCompressBlockRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
	}{
		{name: "tiny-copy", size: 512},
		{name: "one-chunk", size: 16 * 1024},
		{name: "multi-chunk", size: 3*ChunkSize + 100},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data := make([]byte, tc.size)
			for i := range data {
				data[i] = byte(i % 251)
			}

			b, err := compressBlock(data)
			if err != nil {
				t.Fatalf("compressBlock() error = %v", err)
			}
			got, err := decompressBlock(b, len(data))
			if err != nil {
				t.Fatalf("decompressBlock() error = %v", err)
			}
			if len(got) != len(data) {
				t.Fatalf("decompressed %d bytes, want %d", len(got), len(data))
			}
			for i := range data {
				if got[i] != data[i] {
					t.Fatalf("byte %d = %d, want %d", i, got[i], data[i])
				}
			}
		})
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	t.Parallel()

	b := &block{Magic: BlockMagicLZ4, Data: []byte{0xff, 0xff, 0xff, 0x00, 1, 2}}
	if _, err := decompressBlock(b, 64); err == nil {
		t.Fatal("decompressBlock() accepted a broken chunk stream")
	}

	c := &block{Magic: BlockMagicCOPY, Data: make([]byte, 10)}
	if _, err := decompressBlock(c, 64); err == nil {
		t.Fatal("decompressBlock() accepted a short COPY block")
	}
}
