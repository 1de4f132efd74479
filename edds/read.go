package edds

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/woozymasta/dds"
)

// Decode reads an EDDS stream and returns its level 0 surface.
func Decode(r io.Reader) (image.Image, error) {
	header, err := dds.ReadHeader(r, nil)
	if err != nil {
		return nil, fmt.Errorf("reading EDDS header: %w", err)
	}
	format, err := dds.FormatFromHeader(header)
	if err != nil {
		return nil, err
	}
	if format != dds.FormatBGRA8 && format != dds.FormatRGBA8 {
		return nil, fmt.Errorf("unsupported EDDS pixel format %s", format)
	}

	mips := header.MipMapCount
	if mips == 0 {
		mips = 1
	}
	table, err := readBlockTable(r, mips)
	if err != nil {
		return nil, err
	}

	// Table and bodies run smallest mip first; the base level is last.
	var base *block
	for i := range table {
		b, err := readBlockBody(r, table[i])
		if err != nil {
			return nil, fmt.Errorf("reading mipmap block %d: %w", i, err)
		}
		if i == len(table)-1 {
			base = b
		}
	}

	width := int(header.Width)
	height := int(header.Height)
	expected := width * height * 4
	pixels, err := decompressBlock(base, expected)
	if err != nil {
		return nil, fmt.Errorf("decompressing base mipmap: %w", err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if format == dds.FormatBGRA8 {
		for i := 0; i+3 < len(pixels); i += 4 {
			img.Pix[i] = pixels[i+2]
			img.Pix[i+1] = pixels[i+1]
			img.Pix[i+2] = pixels[i]
			img.Pix[i+3] = pixels[i+3]
		}
	} else {
		copy(img.Pix, pixels)
	}
	return img, nil
}

// DecodeConfig reads only the header and reports the image geometry.
func DecodeConfig(r io.Reader) (image.Config, error) {
	header, err := dds.ReadHeader(r, nil)
	if err != nil {
		return image.Config{}, fmt.Errorf("reading EDDS header: %w", err)
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(header.Width),
		Height:     int(header.Height),
	}, nil
}

// Read loads the level 0 surface of an EDDS file.
func Read(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// ReadConfig reports the geometry of an EDDS file.
func ReadConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeConfig(f)
}
