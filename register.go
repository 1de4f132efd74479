package dds

import (
	"image"
	"image/color"
	"io"
)

// Decode reads a DDS file and returns its level 0 surface as an
// image.Image. The package registers Decode and DecodeConfig for the
// "dds" format with image.Decode.
func Decode(r io.Reader) (image.Image, error) {
	d, err := NewDecoder(r)
	if err != nil {
		return nil, err
	}

	size := d.MainSize()
	img := image.NewNRGBA(image.Rect(0, 0, int(size.Width), int(size.Height)))
	view := ImageView{
		Data:     img.Pix,
		Size:     size,
		Color:    ColorFormat{Channels: RGBA, Precision: U8},
		RowPitch: img.Stride,
	}
	if err := d.ReadSurface(view); err != nil {
		return nil, err
	}
	return img, nil
}

// DecodeConfig reads only the header and reports the level 0 size.
func DecodeConfig(r io.Reader) (image.Config, error) {
	info, err := ReadInfo(r, nil)
	if err != nil {
		return image.Config{}, err
	}
	size := info.Layout().MainSize()
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(size.Width),
		Height:     int(size.Height),
	}, nil
}

func init() {
	image.RegisterFormat("dds", Magic, Decode, DecodeConfig)
}
