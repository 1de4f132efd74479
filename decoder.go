package dds

import (
	"fmt"
	"io"
)

// Info bundles the header, pixel format, and data layout of a DDS
// file. It is immutable: the layout is always the one generated from
// the header.
type Info struct {
	header *Header
	format Format
	layout *DataLayout
}

// ReadInfo reads a header from the stream and resolves its format and
// layout, leaving the reader positioned at the start of the surface
// data. A nil options value uses DefaultParseOptions.
func ReadInfo(r io.Reader, options *ParseOptions) (*Info, error) {
	header, err := ReadHeader(r, options)
	if err != nil {
		return nil, err
	}
	return NewInfo(header)
}

// NewInfo resolves the format and layout of a header.
func NewInfo(header *Header) (*Info, error) {
	format, err := FormatFromHeader(header)
	if err != nil {
		return nil, err
	}
	return NewInfoWithFormat(header, format)
}

// NewInfoWithFormat builds the layout for a header with a caller
// chosen format, overriding format detection.
func NewInfoWithFormat(header *Header, format Format) (*Info, error) {
	layout, err := NewDataLayout(header, format)
	if err != nil {
		return nil, err
	}
	return &Info{header: header, format: format, layout: layout}, nil
}

// Header returns the parsed header.
func (i *Info) Header() *Header {
	return i.header
}

// Format returns the resolved pixel format.
func (i *Info) Format() Format {
	return i.format
}

// Layout returns the data layout.
func (i *Info) Layout() *DataLayout {
	return i.layout
}

// Decoder reads the pixel data of a DDS file surface by surface in
// canonical order. A Decoder must not be used concurrently.
type Decoder struct {
	reader io.Reader
	info   *Info
	iter   SurfaceIterator

	// Options controls decoding. Adjusting them between surfaces is
	// allowed.
	Options DecodeOptions

	scratch codecScratch
}

// NewDecoder reads the header from r and prepares the first surface.
func NewDecoder(r io.Reader) (*Decoder, error) {
	return NewDecoderWithOptions(r, nil)
}

// NewDecoderWithOptions reads the header with the given parse options.
func NewDecoderWithOptions(r io.Reader, options *ParseOptions) (*Decoder, error) {
	info, err := ReadInfo(r, options)
	if err != nil {
		return nil, err
	}
	return DecoderFromInfo(r, info)
}

// DecoderFromInfo wraps a reader positioned at the start of the
// surface data of a file described by info.
func DecoderFromInfo(r io.Reader, info *Info) (*Decoder, error) {
	return &Decoder{
		reader:  r,
		info:    info,
		iter:    NewSurfaceIterator(info.layout),
		Options: DefaultDecodeOptions(),
	}, nil
}

// Info returns the header, format, and layout of the file.
func (d *Decoder) Info() *Info {
	return d.info
}

// Format returns the pixel format of the file.
func (d *Decoder) Format() Format {
	return d.info.format
}

// Layout returns the data layout of the file.
func (d *Decoder) Layout() *DataLayout {
	return d.info.layout
}

// MainSize returns the size of the level 0 surface.
func (d *Decoder) MainSize() Size {
	return d.info.layout.MainSize()
}

// NativeColor returns the native color of the file's format.
func (d *Decoder) NativeColor() ColorFormat {
	return d.info.format.Color()
}

// SurfaceInfo returns the surface about to be read, or false when all
// surfaces have been consumed.
func (d *Decoder) SurfaceInfo() (SurfaceInfo, bool) {
	return d.iter.Current()
}

// ReadSurface decodes the next surface into the image, which must
// match the surface size exactly. For volume textures this reads the
// next depth slice.
func (d *Decoder) ReadSurface(image ImageView) error {
	current, ok := d.iter.Current()
	if !ok {
		return ErrNoMoreSurfaces
	}
	if image.Size != current.Size {
		return ErrUnexpectedSurfaceSize
	}
	if err := image.validate(); err != nil {
		return err
	}

	if err := decodeSurface(d.reader, image, d.info.format.info(), &d.Options, &d.scratch); err != nil {
		return err
	}
	d.iter.Advance()
	return nil
}

// ReadSurfaceRect decodes the part of the next surface that intersects
// rect into buf, converting to the given color format. Rows of the
// rectangle are rowPitch bytes apart in buf. For block-compressed
// formats only the blocks intersecting the rectangle are decoded.
//
// Like ReadSurface this consumes the whole surface; it is not possible
// to read two rectangles of the same surface.
func (d *Decoder) ReadSurfaceRect(buf []byte, rowPitch int, rect Rect, color ColorFormat) error {
	current, ok := d.iter.Current()
	if !ok {
		return ErrNoMoreSurfaces
	}
	if !rect.fitsIn(current.Size) {
		return ErrRectOutOfBounds
	}
	minPitch := uint64(color.BytesPerPixel()) * uint64(rect.Width)
	if rowPitch < 0 || uint64(rowPitch) < minPitch {
		return &RowPitchError{RequiredMinimum: minPitch}
	}
	need := uint64(rowPitch) * uint64(rect.Height)
	if uint64(len(buf)) < need {
		return &RectBufferError{RequiredMinimum: need}
	}

	err := decodeSurfaceRect(d.reader, current.Size, d.info.format.info(), buf, rowPitch, rect, color, &d.Options, &d.scratch)
	if err != nil {
		return err
	}
	d.iter.Advance()
	return nil
}

// SkipSurface skips over the next surface without decoding it.
func (d *Decoder) SkipSurface() error {
	current, ok := d.iter.Current()
	if !ok {
		return ErrNoMoreSurfaces
	}
	if err := skipBytes(d.reader, int64(current.DataLen)); err != nil {
		return err
	}
	d.iter.Advance()
	return nil
}

// SkipMipmaps skips ahead to the next level 0 surface. Its main use is
// skipping mipmaps between cube map faces and texture array elements.
// In a volume it fails with ErrCannotSkipMipmapsInVolume unless the
// cursor is on the first depth slice of a level. At a level 0 surface
// or at the end it is a no-op.
func (d *Decoder) SkipMipmaps() error {
	skip, err := d.iter.SkipMipmaps()
	if err != nil {
		return err
	}
	if skip > 0 {
		if err := skipBytes(d.reader, int64(skip)); err != nil {
			return err
		}
	}
	return nil
}

// ReadCubeMap reads mipmap level 0 of all six cube map faces in +X -X
// +Y -Y +Z -Z order, skipping the mipmaps between them. All six images
// must match the face size. The cursor must be at the first face.
func (d *Decoder) ReadCubeMap(faces *[6]ImageView) error {
	if d.info.layout.Kind() != LayoutCubeMap {
		return ErrNotACubeMap
	}
	for i := range faces {
		if err := d.ReadSurface(faces[i]); err != nil {
			return fmt.Errorf("reading cube map face %d: %w", i, err)
		}
		if err := d.SkipMipmaps(); err != nil {
			return fmt.Errorf("reading cube map face %d: %w", i, err)
		}
	}
	return nil
}
