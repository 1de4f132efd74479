package dds

import "fmt"

// ImageView is a caller-owned pixel buffer the codec reads from or
// writes into. Rows are RowPitch bytes apart; the codec never touches
// bytes outside Size.Height times RowPitch.
type ImageView struct {
	Data     []byte
	Size     Size
	Color    ColorFormat
	RowPitch int
}

// NewImageView wraps a tightly packed pixel buffer. The buffer must
// hold at least Size.Height rows of Size.Width pixels.
func NewImageView(data []byte, size Size, color ColorFormat) (ImageView, error) {
	v := ImageView{
		Data:     data,
		Size:     size,
		Color:    color,
		RowPitch: int(size.Width) * int(color.BytesPerPixel()),
	}
	if err := v.validate(); err != nil {
		return ImageView{}, err
	}
	return v, nil
}

// validate checks the pitch and buffer length invariants.
func (v ImageView) validate() error {
	minPitch := uint64(v.Size.Width) * uint64(v.Color.BytesPerPixel())
	if v.RowPitch < 0 || uint64(v.RowPitch) < minPitch {
		return fmt.Errorf("image row pitch %d below minimum %d", v.RowPitch, minPitch)
	}
	need := uint64(v.RowPitch) * uint64(v.Size.Height)
	if uint64(len(v.Data)) < need {
		return fmt.Errorf("image buffer holds %d bytes, need %d", len(v.Data), need)
	}
	return nil
}

// row returns the pixel bytes of row y, without the pitch padding.
func (v ImageView) row(y uint32) []byte {
	start := int(y) * v.RowPitch
	return v.Data[start : start+int(v.Size.Width)*int(v.Color.BytesPerPixel())]
}
