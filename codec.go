package dds

import (
	"fmt"
	"io"

	"github.com/woozymasta/dds/internal/bcn"
)

// blockDecodeFunc expands one encoded block into a 4x4 RGBA tile.
type blockDecodeFunc func(src []byte) bcn.Block

// blockEncodeFunc compresses a 4x4 RGBA tile into dst.
type blockEncodeFunc func(block *bcn.Block, opts *EncodeOptions, dst []byte)

// formatCatalog pairs every format with its geometry and codec
// drivers. Keeping plain function values here keeps the block loops
// free of interface dispatch.
var formatCatalog = map[Format]*formatInfo{
	FormatBC1: {
		color: ColorFormat{RGBA, U8}, bytesPerBlock: 8, blockWidth: 4, blockHeight: 4,
		decodeBlock: func(src []byte) bcn.Block { return bcn.DecodeBC1Block(src, false) },
		encodeBlock: encodeBlockBC1,
	},
	FormatBC2: {
		color: ColorFormat{RGBA, U8}, bytesPerBlock: 16, blockWidth: 4, blockHeight: 4,
		decodeBlock: func(src []byte) bcn.Block { return bcn.DecodeBC2Block(src) },
		encodeBlock: func(b *bcn.Block, o *EncodeOptions, dst []byte) {
			out := bcn.EncodeBC2Block(b, o.Dithering.color(), o.Dithering.alpha())
			copy(dst, out[:])
		},
	},
	FormatBC2Premultiplied: {
		color: ColorFormat{RGBA, U8}, bytesPerBlock: 16, blockWidth: 4, blockHeight: 4, premultiplied: true,
		decodeBlock: func(src []byte) bcn.Block { return bcn.DecodeBC2Block(src) },
		encodeBlock: func(b *bcn.Block, o *EncodeOptions, dst []byte) {
			bcn.PremultiplyAlpha(b)
			out := bcn.EncodeBC2Block(b, o.Dithering.color(), o.Dithering.alpha())
			copy(dst, out[:])
		},
	},
	FormatBC3: {
		color: ColorFormat{RGBA, U8}, bytesPerBlock: 16, blockWidth: 4, blockHeight: 4,
		decodeBlock: func(src []byte) bcn.Block { return bcn.DecodeBC3Block(src) },
		encodeBlock: func(b *bcn.Block, o *EncodeOptions, dst []byte) {
			out := bcn.EncodeBC3Block(b, o.Dithering.color(), o.Dithering.alpha())
			copy(dst, out[:])
		},
	},
	FormatBC3Premultiplied: {
		color: ColorFormat{RGBA, U8}, bytesPerBlock: 16, blockWidth: 4, blockHeight: 4, premultiplied: true,
		decodeBlock: func(src []byte) bcn.Block { return bcn.DecodeBC3Block(src) },
		encodeBlock: func(b *bcn.Block, o *EncodeOptions, dst []byte) {
			bcn.PremultiplyAlpha(b)
			out := bcn.EncodeBC3Block(b, o.Dithering.color(), o.Dithering.alpha())
			copy(dst, out[:])
		},
	},
	FormatBC4U: {
		color: ColorFormat{Grayscale, U8}, bytesPerBlock: 8, blockWidth: 4, blockHeight: 4,
		decodeBlock: func(src []byte) bcn.Block { return decodeBlockBC4(src, false) },
		encodeBlock: func(b *bcn.Block, o *EncodeOptions, dst []byte) { encodeBlockBC4(b, o, dst, false) },
	},
	FormatBC4S: {
		color: ColorFormat{Grayscale, U8}, bytesPerBlock: 8, blockWidth: 4, blockHeight: 4,
		decodeBlock: func(src []byte) bcn.Block { return decodeBlockBC4(src, true) },
		encodeBlock: func(b *bcn.Block, o *EncodeOptions, dst []byte) { encodeBlockBC4(b, o, dst, true) },
	},
	FormatBC5U: {
		color: ColorFormat{RGB, U8}, bytesPerBlock: 16, blockWidth: 4, blockHeight: 4,
		decodeBlock: func(src []byte) bcn.Block { return bcn.DecodeBC5Block(src, false) },
		encodeBlock: func(b *bcn.Block, o *EncodeOptions, dst []byte) {
			out := bcn.EncodeBC5Block(b, bcn.BC4Options{Dither: o.Dithering.color()})
			copy(dst, out[:])
		},
	},
	FormatBC5S: {
		color: ColorFormat{RGB, U8}, bytesPerBlock: 16, blockWidth: 4, blockHeight: 4,
		decodeBlock: func(src []byte) bcn.Block { return bcn.DecodeBC5Block(src, true) },
		encodeBlock: func(b *bcn.Block, o *EncodeOptions, dst []byte) {
			out := bcn.EncodeBC5Block(b, bcn.BC4Options{Dither: o.Dithering.color(), SNorm: true})
			copy(dst, out[:])
		},
	},

	FormatRGBA8:    {color: ColorFormat{RGBA, U8}, bytesPerBlock: 4, blockWidth: 1, blockHeight: 1, unpack: unpackRGBA8, pack: packRGBA8},
	FormatBGRA8:    {color: ColorFormat{RGBA, U8}, bytesPerBlock: 4, blockWidth: 1, blockHeight: 1, unpack: unpackBGRA8, pack: packBGRA8},
	FormatBGRX8:    {color: ColorFormat{RGB, U8}, bytesPerBlock: 4, blockWidth: 1, blockHeight: 1, unpack: unpackBGRX8, pack: packBGRX8},
	FormatRGB8:     {color: ColorFormat{RGB, U8}, bytesPerBlock: 3, blockWidth: 1, blockHeight: 1, unpack: unpackRGB8, pack: packRGB8},
	FormatBGR8:     {color: ColorFormat{RGB, U8}, bytesPerBlock: 3, blockWidth: 1, blockHeight: 1, unpack: unpackBGR8, pack: packBGR8},
	FormatR8:       {color: ColorFormat{Grayscale, U8}, bytesPerBlock: 1, blockWidth: 1, blockHeight: 1, unpack: unpackR8, pack: packR8},
	FormatRG8:      {color: ColorFormat{RGB, U8}, bytesPerBlock: 2, blockWidth: 1, blockHeight: 1, unpack: unpackRG8, pack: packRG8},
	FormatA8:       {color: ColorFormat{GrayscaleAlpha, U8}, bytesPerBlock: 1, blockWidth: 1, blockHeight: 1, unpack: unpackA8, pack: packA8},
	FormatB5G6R5:   {color: ColorFormat{RGB, U8}, bytesPerBlock: 2, blockWidth: 1, blockHeight: 1, unpack: unpackB5G6R5, pack: packB5G6R5},
	FormatB5G5R5A1: {color: ColorFormat{RGBA, U8}, bytesPerBlock: 2, blockWidth: 1, blockHeight: 1, unpack: unpackB5G5R5A1, pack: packB5G5R5A1},
	FormatB4G4R4A4: {color: ColorFormat{RGBA, U8}, bytesPerBlock: 2, blockWidth: 1, blockHeight: 1, unpack: unpackB4G4R4A4, pack: packB4G4R4A4},
	FormatRGB10A2:  {color: ColorFormat{RGBA, U16}, bytesPerBlock: 4, blockWidth: 1, blockHeight: 1, unpack: unpackRGB10A2},
	FormatR16:      {color: ColorFormat{Grayscale, U16}, bytesPerBlock: 2, blockWidth: 1, blockHeight: 1, unpack: unpackR16, pack: packR16},
	FormatRG16:     {color: ColorFormat{RGB, U16}, bytesPerBlock: 4, blockWidth: 1, blockHeight: 1, unpack: unpackRG16, pack: packRG16},
	FormatRGBA16:   {color: ColorFormat{RGBA, U16}, bytesPerBlock: 8, blockWidth: 1, blockHeight: 1, unpack: unpackRGBA16, pack: packRGBA16},
	FormatR16F:     {color: ColorFormat{Grayscale, F32}, bytesPerBlock: 2, blockWidth: 1, blockHeight: 1, unpack: unpackGrayF16, pack: packGrayF16},
	FormatRG16F:    {color: ColorFormat{RGB, F32}, bytesPerBlock: 4, blockWidth: 1, blockHeight: 1, unpack: unpackF16(2), pack: packF16(2)},
	FormatRGBA16F:  {color: ColorFormat{RGBA, F32}, bytesPerBlock: 8, blockWidth: 1, blockHeight: 1, unpack: unpackF16(4), pack: packF16(4)},
	FormatR32F:     {color: ColorFormat{Grayscale, F32}, bytesPerBlock: 4, blockWidth: 1, blockHeight: 1, unpack: unpackGrayF32, pack: packGrayF32},
	FormatRG32F:    {color: ColorFormat{RGB, F32}, bytesPerBlock: 8, blockWidth: 1, blockHeight: 1, unpack: unpackF32(2), pack: packF32(2)},
	FormatRGB32F:   {color: ColorFormat{RGB, F32}, bytesPerBlock: 12, blockWidth: 1, blockHeight: 1, unpack: unpackF32(3), pack: packF32(3)},
	FormatRGBA32F:  {color: ColorFormat{RGBA, F32}, bytesPerBlock: 16, blockWidth: 1, blockHeight: 1, unpack: unpackF32(4), pack: packF32(4)},
}

// encodeBlockBC1 applies the optional 1-bit alpha dither before the
// BC1 kernel runs.
func encodeBlockBC1(b *bcn.Block, o *EncodeOptions, dst []byte) {
	if o.Dithering.alpha() {
		var alpha [16]float32
		for i, p := range b {
			alpha[i] = p[3]
		}
		bcn.BlockDither(&alpha, func(i int, v float32) float32 {
			a := float32(0)
			if v >= 0.5 {
				a = 1
			}
			b[i][3] = a
			return a
		})
	}
	out := bcn.EncodeBC1Block(b, bcn.BC1Options{Dither: o.Dithering.color()})
	copy(dst, out[:])
}

// encodeBlockBC4 sources the single channel from luminance.
func encodeBlockBC4(b *bcn.Block, o *EncodeOptions, dst []byte, snorm bool) {
	var gray [16]float32
	for i, p := range b {
		gray[i] = bcn.Grayscale(p)
	}
	out := bcn.EncodeBC4Block(&gray, bcn.BC4Options{Dither: o.Dithering.color(), SNorm: snorm})
	copy(dst, out[:])
}

// decodeBlockBC4 replicates the decoded channel into R, G, and B.
func decodeBlockBC4(src []byte, snorm bool) bcn.Block {
	vals := bcn.DecodeBC4Block(src, snorm)
	var block bcn.Block
	for i, v := range vals {
		block[i] = [4]float32{v, v, v, 1}
	}
	return block
}

// codecScratch holds the per-handle scratch buffers reused across
// surfaces. Buffers only grow.
type codecScratch struct {
	stripe [][4]float32
	rowBuf []byte
}

// ensure grows the scratch buffers, enforcing the memory limit when
// one is set. pixels is the intermediate float32 pixel count and
// rowBytes the encoded row size.
func (s *codecScratch) ensure(pixels, rowBytes int, limit uint64) error {
	if limit > 0 && (uint64(pixels)*16 > limit || uint64(rowBytes) > limit) {
		return ErrMemoryLimitExceeded
	}
	if cap(s.stripe) < pixels {
		s.stripe = make([][4]float32, pixels)
	}
	s.stripe = s.stripe[:cap(s.stripe)]
	if cap(s.rowBuf) < rowBytes {
		s.rowBuf = make([]byte, rowBytes)
	}
	s.rowBuf = s.rowBuf[:cap(s.rowBuf)]
	return nil
}

// gatherBlock copies a 4x4 tile starting at column x out of a stripe
// of the given pixel width, replicating the last column into any
// missing ones.
func gatherBlock(stripe [][4]float32, x, width int) bcn.Block {
	var b bcn.Block
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			sc := x + c
			if sc >= width {
				sc = width - 1
			}
			b[r*4+c] = stripe[r*width+sc]
		}
	}
	return b
}

// scatterBlock writes a decoded 4x4 tile into a stripe, dropping
// columns beyond the surface width.
func scatterBlock(block *bcn.Block, stripe [][4]float32, x, width int) {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			sc := x + c
			if sc < width {
				stripe[r*width+sc] = block[r*4+c]
			}
		}
	}
}

// encodeSurface writes one surface of the given format.
func encodeSurface(w io.Writer, img ImageView, fi *formatInfo, opts *EncodeOptions, scratch *codecScratch) error {
	if fi.isBlock() {
		return encodeBlockSurface(w, img, fi, opts, scratch)
	}
	return encodePixelSurface(w, img, fi, scratch)
}

func encodePixelSurface(w io.Writer, img ImageView, fi *formatInfo, scratch *codecScratch) error {
	width := int(img.Size.Width)
	if err := scratch.ensure(width, width*int(fi.bytesPerBlock), 0); err != nil {
		return err
	}
	stripe := scratch.stripe[:width]
	rowBuf := scratch.rowBuf[:width*int(fi.bytesPerBlock)]

	for y := uint32(0); y < img.Size.Height; y++ {
		rowToF32(img.Color, img.row(y), stripe)
		fi.pack(stripe, rowBuf)
		if _, err := w.Write(rowBuf); err != nil {
			return fmt.Errorf("writing surface row: %w", err)
		}
	}
	return nil
}

// encodeBlockSurface tiles the image into 4-row stripes and encodes
// them block by block. Missing rows of the last stripe replicate the
// last real row and missing columns of the last block replicate the
// last real column, so edge padding never biases the endpoints.
func encodeBlockSurface(w io.Writer, img ImageView, fi *formatInfo, opts *EncodeOptions, scratch *codecScratch) error {
	width := int(img.Size.Width)
	height := int(img.Size.Height)
	bh := int(fi.blockHeight)
	bw := int(fi.blockWidth)
	bpb := int(fi.bytesPerBlock)
	blocksX := (width + bw - 1) / bw

	if err := scratch.ensure(width*bh, blocksX*bpb, 0); err != nil {
		return err
	}
	stripe := scratch.stripe[:width*bh]
	rowBuf := scratch.rowBuf[:blocksX*bpb]

	for y := 0; y < height; y += bh {
		rows := min(bh, height-y)
		for r := 0; r < rows; r++ {
			rowToF32(img.Color, img.row(uint32(y+r)), stripe[r*width:(r+1)*width])
		}
		for r := rows; r < bh; r++ {
			copy(stripe[r*width:(r+1)*width], stripe[(rows-1)*width:rows*width])
		}

		for bx := 0; bx < blocksX; bx++ {
			block := gatherBlock(stripe, bx*bw, width)
			fi.encodeBlock(&block, opts, rowBuf[bx*bpb:(bx+1)*bpb])
		}
		if _, err := w.Write(rowBuf); err != nil {
			return fmt.Errorf("writing block row: %w", err)
		}
	}
	return nil
}

// decodeSurface reads one surface of the given format into the image.
func decodeSurface(r io.Reader, img ImageView, fi *formatInfo, opts *DecodeOptions, scratch *codecScratch) error {
	if fi.isBlock() {
		return decodeBlockSurface(r, img, fi, opts, scratch)
	}
	return decodePixelSurface(r, img, fi, opts, scratch)
}

func decodePixelSurface(r io.Reader, img ImageView, fi *formatInfo, opts *DecodeOptions, scratch *codecScratch) error {
	width := int(img.Size.Width)
	if err := scratch.ensure(width, width*int(fi.bytesPerBlock), opts.MemoryLimit); err != nil {
		return err
	}
	stripe := scratch.stripe[:width]
	rowBuf := scratch.rowBuf[:width*int(fi.bytesPerBlock)]

	for y := uint32(0); y < img.Size.Height; y++ {
		if _, err := io.ReadFull(r, rowBuf); err != nil {
			return fmt.Errorf("reading surface row: %w", err)
		}
		fi.unpack(rowBuf, stripe)
		rowFromF32(img.Color, stripe, img.row(y))
	}
	return nil
}

func decodeBlockSurface(r io.Reader, img ImageView, fi *formatInfo, opts *DecodeOptions, scratch *codecScratch) error {
	width := int(img.Size.Width)
	height := int(img.Size.Height)
	bh := int(fi.blockHeight)
	bw := int(fi.blockWidth)
	bpb := int(fi.bytesPerBlock)
	blocksX := (width + bw - 1) / bw

	if err := scratch.ensure(width*bh, blocksX*bpb, opts.MemoryLimit); err != nil {
		return err
	}
	stripe := scratch.stripe[:width*bh]
	rowBuf := scratch.rowBuf[:blocksX*bpb]

	for y := 0; y < height; y += bh {
		if _, err := io.ReadFull(r, rowBuf); err != nil {
			return fmt.Errorf("reading block row: %w", err)
		}
		for bx := 0; bx < blocksX; bx++ {
			block := fi.decodeBlock(rowBuf[bx*bpb : (bx+1)*bpb])
			scatterBlock(&block, stripe, bx*bw, width)
		}
		rows := min(bh, height-y)
		for r0 := 0; r0 < rows; r0++ {
			rowFromF32(img.Color, stripe[r0*width:(r0+1)*width], img.row(uint32(y+r0)))
		}
	}
	return nil
}

// decodeSurfaceRect reads only the parts of a surface that intersect
// rect, writing the clipped pixels into buf. It consumes the entire
// surface from the reader.
func decodeSurfaceRect(r io.Reader, size Size, fi *formatInfo, buf []byte, rowPitch int, rect Rect, color ColorFormat, opts *DecodeOptions, scratch *codecScratch) error {
	surfaceLen := int64(fi.surfaceLength(size))
	if rect.IsEmpty() {
		return skipBytes(r, surfaceLen)
	}
	if fi.isBlock() {
		return decodeBlockRect(r, size, fi, buf, rowPitch, rect, color, opts, scratch)
	}
	return decodePixelRect(r, size, fi, buf, rowPitch, rect, color, opts, scratch)
}

func decodePixelRect(r io.Reader, size Size, fi *formatInfo, buf []byte, rowPitch int, rect Rect, color ColorFormat, opts *DecodeOptions, scratch *codecScratch) error {
	bpp := int(fi.bytesPerBlock)
	fileRow := int64(size.Width) * int64(bpp)
	total := fileRow * int64(size.Height)
	rectW := int(rect.Width)

	if err := scratch.ensure(rectW, rectW*bpp, opts.MemoryLimit); err != nil {
		return err
	}
	stripe := scratch.stripe[:rectW]
	rowBuf := scratch.rowBuf[:rectW*bpp]

	var pos int64
	for y := uint32(0); y < rect.Height; y++ {
		target := int64(rect.Y+y)*fileRow + int64(rect.X)*int64(bpp)
		if err := skipBytes(r, target-pos); err != nil {
			return err
		}
		pos = target
		if _, err := io.ReadFull(r, rowBuf); err != nil {
			return fmt.Errorf("reading surface row: %w", err)
		}
		pos += int64(len(rowBuf))

		fi.unpack(rowBuf, stripe)
		out := buf[int(y)*rowPitch:]
		rowFromF32(color, stripe, out[:rectW*int(color.BytesPerPixel())])
	}
	return skipBytes(r, total-pos)
}

func decodeBlockRect(r io.Reader, size Size, fi *formatInfo, buf []byte, rowPitch int, rect Rect, color ColorFormat, opts *DecodeOptions, scratch *codecScratch) error {
	bw := int(fi.blockWidth)
	bh := int(fi.blockHeight)
	bpb := int(fi.bytesPerBlock)
	width := int(size.Width)
	blocksX := (width + bw - 1) / bw
	blocksY := (int(size.Height) + bh - 1) / bh
	total := int64(blocksX) * int64(blocksY) * int64(bpb)

	bx0 := int(rect.X) / bw
	bx1 := (int(rect.X) + int(rect.Width) + bw - 1) / bw
	by0 := int(rect.Y) / bh
	by1 := (int(rect.Y) + int(rect.Height) + bh - 1) / bh
	stripeW := (bx1 - bx0) * bw

	if err := scratch.ensure(stripeW*bh, (bx1-bx0)*bpb, opts.MemoryLimit); err != nil {
		return err
	}
	stripe := scratch.stripe[:stripeW*bh]
	rowBuf := scratch.rowBuf[:(bx1-bx0)*bpb]

	var pos int64
	for by := by0; by < by1; by++ {
		target := (int64(by)*int64(blocksX) + int64(bx0)) * int64(bpb)
		if err := skipBytes(r, target-pos); err != nil {
			return err
		}
		pos = target
		if _, err := io.ReadFull(r, rowBuf); err != nil {
			return fmt.Errorf("reading block row: %w", err)
		}
		pos += int64(len(rowBuf))

		for bx := 0; bx < bx1-bx0; bx++ {
			block := fi.decodeBlock(rowBuf[bx*bpb : (bx+1)*bpb])
			scatterBlock(&block, stripe, bx*bw, stripeW)
		}

		yLo := max(int(rect.Y), by*bh)
		yHi := min(int(rect.Y)+int(rect.Height), by*bh+bh)
		for fy := yLo; fy < yHi; fy++ {
			sr := fy - by*bh
			sc := int(rect.X) - bx0*bw
			src := stripe[sr*stripeW+sc : sr*stripeW+sc+int(rect.Width)]
			out := buf[(fy-int(rect.Y))*rowPitch:]
			rowFromF32(color, src, out[:int(rect.Width)*int(color.BytesPerPixel())])
		}
	}
	return skipBytes(r, total-pos)
}

// surfaceLength returns the encoded byte length of a surface.
func (fi *formatInfo) surfaceLength(size Size) uint64 {
	blocksX := uint64(ceilDiv(size.Width, fi.blockWidth))
	blocksY := uint64(ceilDiv(size.Height, fi.blockHeight))
	return blocksX * blocksY * uint64(fi.bytesPerBlock)
}

// skipBytes moves a reader forward, seeking when possible and
// draining otherwise.
func skipBytes(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(n, io.SeekCurrent); err != nil {
			return fmt.Errorf("seeking surface data: %w", err)
		}
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("skipping surface data: %w", err)
	}
	return nil
}
