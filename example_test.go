package dds_test

import (
	"bytes"
	"fmt"
	"image"
	"log"

	"golang.org/x/image/bmp"

	"github.com/woozymasta/dds"
)

// Example encodes a small texture, decodes it through the standard
// image registry, and re-encodes it as BMP.
func Example() {
	header, err := dds.NewTextureHeader(dds.FormatRGBA8, 2, 2, 1)
	if err != nil {
		log.Fatal(err)
	}

	var file bytes.Buffer
	enc, err := dds.NewEncoder(&file, dds.FormatRGBA8, header)
	if err != nil {
		log.Fatal(err)
	}

	pixels := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}
	view, err := dds.NewImageView(pixels, dds.Size{Width: 2, Height: 2}, dds.ColorFormat{Channels: dds.RGBA, Precision: dds.U8})
	if err != nil {
		log.Fatal(err)
	}
	if err := enc.WriteSurface(view); err != nil {
		log.Fatal(err)
	}
	if err := enc.Finish(); err != nil {
		log.Fatal(err)
	}

	img, format, err := image.Decode(bytes.NewReader(file.Bytes()))
	if err != nil {
		log.Fatal(err)
	}

	var out bytes.Buffer
	if err := bmp.Encode(&out, img); err != nil {
		log.Fatal(err)
	}

	fmt.Println(format, img.Bounds().Dx(), img.Bounds().Dy())
	fmt.Println(string(out.Bytes()[:2]))
	// Output:
	// dds 2 2
	// BM
}
