package dds

import (
	"fmt"
	"io"
	"math"

	"github.com/woozymasta/dds/internal/resize"
)

// Encoder writes the pixel data of a DDS file surface by surface in
// canonical order. Construction writes the header immediately. An
// Encoder must not be used concurrently.
type Encoder struct {
	writer io.Writer
	format Format
	layout *DataLayout
	iter   SurfaceIterator

	// Options controls encoding. Adjusting them between surfaces is
	// allowed.
	Options EncodeOptions

	scratch codecScratch
	resize  *resizeState
}

// resizeState is the lazily allocated mipmap generation machinery: the
// resampler with its weight-table cache, the level 0 source pixels,
// and the byte buffer mip surfaces are converted into.
type resizeState struct {
	state *resize.State
	src   [][4]float32
	buf   []byte
}

// NewEncoder writes the header and prepares the first surface. The
// format must support encoding and the header must describe it.
func NewEncoder(w io.Writer, format Format, header *Header) (*Encoder, error) {
	fi := format.info()
	if fi == nil || !fi.supportsEncoding() {
		return nil, &UnsupportedFormatError{Format: format}
	}

	layout, err := NewDataLayout(header, format)
	if err != nil {
		return nil, err
	}

	if err := header.Write(w); err != nil {
		return nil, err
	}

	return &Encoder{
		writer: w,
		format: format,
		layout: layout,
		iter:   NewSurfaceIterator(layout),
	}, nil
}

// Format returns the pixel format being written.
func (e *Encoder) Format() Format {
	return e.format
}

// Layout returns the data layout being written.
func (e *Encoder) Layout() *DataLayout {
	return e.layout
}

// MainSize returns the size of the level 0 surface.
func (e *Encoder) MainSize() Size {
	return e.layout.MainSize()
}

// NativeColor returns the native color of the format being written.
func (e *Encoder) NativeColor() ColorFormat {
	return e.format.Color()
}

// SurfaceInfo returns the surface about to be written, or false when
// all declared surfaces have been written.
func (e *Encoder) SurfaceInfo() (SurfaceInfo, bool) {
	return e.iter.Current()
}

// WriteSurface encodes the next surface. The image must match the
// surface size declared in the header. For volume textures this
// writes the next depth slice.
func (e *Encoder) WriteSurface(image ImageView) error {
	return e.writeSurface(image, nil, nil)
}

// WriteSurfaceWith encodes the next surface like WriteSurface and, if
// options enable it, synthesizes all directly following mipmap
// surfaces by resizing the given image. Mipmaps are always resized
// from the level 0 source, not from the previous mip, to avoid
// accumulating filter error. Generating mipmaps for volume depth
// slices is not supported and silently skipped.
//
// progress may be nil; otherwise it receives monotonically increasing
// values from 0 to 1 and must not call back into the encoder.
func (e *Encoder) WriteSurfaceWith(image ImageView, progress func(float32), options *WriteOptions) error {
	opts := DefaultWriteOptions()
	if options != nil {
		opts = *options
	}
	return e.writeSurface(image, progress, &opts)
}

func (e *Encoder) writeSurface(image ImageView, progress func(float32), opts *WriteOptions) error {
	report := func(v float32) {
		if progress != nil {
			progress(v)
		}
	}
	report(0)

	current, ok := e.iter.Current()
	if !ok {
		return ErrTooManySurfaces
	}
	if image.Size != current.Size {
		return ErrUnexpectedSurfaceSize
	}
	if image.Size.IsEmpty() {
		return ErrEmptySurface
	}
	fi := e.format.info()
	if m := fi.sizeMultiple; m.Width > 1 || m.Height > 1 {
		if image.Size.Width%m.Width != 0 || image.Size.Height%m.Height != 0 {
			return &InvalidSizeError{SizeMultiple: m}
		}
	}
	if err := image.validate(); err != nil {
		return err
	}

	if err := encodeSurface(e.writer, image, fi, &e.Options, &e.scratch); err != nil {
		return err
	}
	e.iter.Advance()

	if opts != nil && opts.GenerateMipmaps && e.layout.Kind() != LayoutVolume {
		if next, ok := e.iter.Current(); ok && next.IsMipmap() {
			if err := e.generateMipmaps(image, report, opts); err != nil {
				return err
			}
		}
	}

	report(1)
	return nil
}

// generateMipmaps resizes the just written level 0 image to every
// directly following mipmap surface and encodes them.
func (e *Encoder) generateMipmaps(image ImageView, report func(float32), opts *WriteOptions) error {
	rs := e.getResizeState()
	srcW := int(image.Size.Width)
	srcH := int(image.Size.Height)

	// Align the source into RGBA float32 once.
	if cap(rs.src) < srcW*srcH {
		rs.src = make([][4]float32, srcW*srcH)
	}
	rs.src = rs.src[:srcW*srcH]
	for y := 0; y < srcH; y++ {
		rowToF32(image.Color, image.row(uint32(y)), rs.src[y*srcW:(y+1)*srcW])
	}

	fi := e.format.info()
	bpp := int(image.Color.BytesPerPixel())
	filter := toResizeFilter(opts.ResizeFilter)
	straight := opts.ResizeStraightAlpha && fi.color.Channels == RGBA && !fi.premultiplied

	count := 0
	for {
		current, ok := e.iter.Current()
		if !ok || !current.IsMipmap() {
			break
		}

		count++
		report(1 - float32(math.Pow(0.3, float64(count))))

		mipW := int(current.Size.Width)
		mipH := int(current.Size.Height)
		pixels := rs.state.Resize(rs.src, srcW, srcH, mipW, mipH, straight, filter)

		need := mipW * mipH * bpp
		if cap(rs.buf) < need {
			rs.buf = make([]byte, need)
		}
		rs.buf = rs.buf[:need]
		for y := 0; y < mipH; y++ {
			rowFromF32(image.Color, pixels[y*mipW:(y+1)*mipW], rs.buf[y*mipW*bpp:(y+1)*mipW*bpp])
		}

		mip := ImageView{
			Data:     rs.buf,
			Size:     current.Size,
			Color:    image.Color,
			RowPitch: mipW * bpp,
		}
		if err := encodeSurface(e.writer, mip, fi, &e.Options, &e.scratch); err != nil {
			return err
		}
		e.iter.Advance()
	}
	return nil
}

func (e *Encoder) getResizeState() *resizeState {
	if e.resize == nil {
		e.resize = &resizeState{state: resize.NewState()}
	}
	return e.resize
}

func toResizeFilter(f ResizeFilter) resize.Filter {
	switch f {
	case FilterNearest:
		return resize.Nearest
	case FilterTriangle:
		return resize.Triangle
	case FilterMitchell:
		return resize.Mitchell
	case FilterLanczos3:
		return resize.Lanczos3
	default:
		return resize.Box
	}
}

// Finish verifies that every surface declared in the header has been
// written and flushes the writer if it is buffered.
func (e *Encoder) Finish() error {
	if _, ok := e.iter.Current(); ok {
		return ErrMissingSurfaces
	}
	if f, ok := e.writer.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flushing writer: %w", err)
		}
	}
	return nil
}
