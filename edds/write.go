package edds

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"

	"github.com/woozymasta/dds"
	"github.com/woozymasta/dds/internal/resize"
)

// reservedENF1 tags headers the way the Enfusion Workbench writer
// does; some readers key on it.
const reservedENF1 = 0x31464e45

// Encode writes an image as EDDS with up to maxMipMaps levels.
// maxMipMaps of 0 writes the full chain; 1 writes only the base level.
func Encode(w io.Writer, img image.Image, maxMipMaps int) error {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return fmt.Errorf("empty image %dx%d", width, height)
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	mipMapCount := int(mipMapCountFor(width, height))
	if maxMipMaps > 0 && maxMipMaps < mipMapCount {
		mipMapCount = maxMipMaps
	}

	header, err := dds.NewTextureHeader(dds.FormatBGRA8, uint32(width), uint32(height), uint32(mipMapCount))
	if err != nil {
		return err
	}
	header.Reserved1[1] = reservedENF1

	blocks, err := buildMipBlocks(rgba, mipMapCount)
	if err != nil {
		return err
	}

	if err := header.Write(w); err != nil {
		return fmt.Errorf("writing EDDS header: %w", err)
	}

	// Table and bodies run from the smallest mip to the largest.
	for i := mipMapCount - 1; i >= 0; i-- {
		if _, err := w.Write([]byte(blocks[i].Magic)); err != nil {
			return fmt.Errorf("writing block magic for mipmap %d: %w", i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, blocks[i].Size); err != nil {
			return fmt.Errorf("writing block size for mipmap %d: %w", i, err)
		}
	}
	for i := mipMapCount - 1; i >= 0; i-- {
		if err := writeBlockBody(w, blocks[i]); err != nil {
			return fmt.Errorf("writing block body for mipmap %d: %w", i, err)
		}
	}
	return nil
}

// Write writes an image as an EDDS file with a full mipmap chain.
func Write(img image.Image, path string) error {
	return WriteWithMipmaps(img, path, 0)
}

// WriteWithMipmaps writes an EDDS file with a mipmap limit.
func WriteWithMipmaps(img image.Image, path string, maxMipMaps int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating EDDS file %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Encode(f, img, maxMipMaps)
}

// buildMipBlocks resizes the base image down the mip chain with a box
// filter and compresses each level as BGRA bytes.
func buildMipBlocks(rgba *image.NRGBA, mipMapCount int) ([]*block, error) {
	width := rgba.Bounds().Dx()
	height := rgba.Bounds().Dy()

	src := make([][4]float32, width*height)
	for i := range src {
		o := i * 4
		src[i] = [4]float32{
			float32(rgba.Pix[o]) / 255,
			float32(rgba.Pix[o+1]) / 255,
			float32(rgba.Pix[o+2]) / 255,
			float32(rgba.Pix[o+3]) / 255,
		}
	}

	state := resize.NewState()
	blocks := make([]*block, mipMapCount)
	for i := 0; i < mipMapCount; i++ {
		mipW := max(1, width>>i)
		mipH := max(1, height>>i)

		pixels := src
		if i > 0 {
			pixels = state.Resize(src, width, height, mipW, mipH, true, resize.Box)
		}

		bgra := make([]byte, mipW*mipH*4)
		for j, p := range pixels {
			o := j * 4
			bgra[o] = quantU8(p[2])
			bgra[o+1] = quantU8(p[1])
			bgra[o+2] = quantU8(p[0])
			bgra[o+3] = quantU8(p[3])
		}

		b, err := compressBlock(bgra)
		if err != nil {
			return nil, fmt.Errorf("compressing mipmap %d: %w", i, err)
		}
		blocks[i] = b
	}
	return blocks, nil
}

func quantU8(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

// mipMapCountFor returns the chain length down to 1x1, capped at the
// 11 levels Enfusion tooling expects.
func mipMapCountFor(width, height int) uint32 {
	count := uint32(1)
	w, h := width, height
	for w > 1 || h > 1 {
		count++
		w = max(1, w/2)
		h = max(1, h/2)
	}
	return min(count, 11)
}
