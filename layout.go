package dds

// maxDataLength caps the total data section size a layout may declare.
// Headers are 32-bit fields, so a hostile header can describe sizes
// far beyond anything real; everything past this cap is rejected.
const maxDataLength = 1 << 48

// LayoutKind is the top-level shape of the data section.
type LayoutKind uint8

const (
	// LayoutTexture is N array slices, each with a mipmap chain.
	LayoutTexture LayoutKind = iota
	// LayoutCubeMap is 6 faces per array element, each with a chain.
	LayoutCubeMap
	// LayoutVolume is a mipmap chain of 3D levels stored depth slice
	// by depth slice.
	LayoutVolume
)

// SurfaceKind tells which slot a surface belongs to.
type SurfaceKind uint8

const (
	// ArraySlice is an element of a texture array.
	ArraySlice SurfaceKind = iota
	// CubeFace is one of the six cube map faces, in +X -X +Y -Y +Z -Z
	// order.
	CubeFace
	// DepthSlice is a z-slice of a volume mip level.
	DepthSlice
)

// Surface describes the location of one 2D plane of pixels within the
// data section. Offset is relative to the end of the header.
type Surface struct {
	Width    uint32
	Height   uint32
	Offset   uint64
	Length   uint64
	MipLevel uint8
	Slot     uint32
	Kind     SurfaceKind
}

// DataLayout is the byte layout of the data section, fully determined
// by a header and a format. It is immutable once constructed.
//
// Surfaces are stored in canonical order: for textures and cube maps,
// the full mipmap chain of each slot in turn (faces of an array of
// cubes are interleaved per element); for volumes, all depth slices of
// each mip level in turn.
type DataLayout struct {
	kind     LayoutKind
	mainSize Size
	mipCount uint8
	slots    uint32 // array slices, or total cube faces
	depth    uint32 // volume depth at level 0, else 1

	mipSize []Size   // per-level surface size
	mipLen  []uint64 // per-level byte length of one surface
	mipOff  []uint64 // texture/cube: offset within a slot; volume: level start
	slotLen uint64   // texture/cube: byte length of one full chain

	surfaceCount uint64
	dataLen      uint64
}

// NewDataLayout computes the data layout for a header and format.
func NewDataLayout(h *Header, format Format) (*DataLayout, error) {
	fi := format.info()
	if fi == nil {
		return nil, &FormatError{Kind: UnsupportedPixelFormat}
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, &LayoutError{Kind: ZeroDimension}
	}

	mips := h.mipCount()
	if mips > 255 {
		return nil, &LayoutError{Kind: TooManyMipMaps, Value: mips}
	}

	l := &DataLayout{
		kind:     LayoutTexture,
		mainSize: Size{Width: h.Width, Height: h.Height},
		mipCount: uint8(mips),
		slots:    h.ArraySize(),
		depth:    1,
	}

	switch {
	case h.isCubeMap():
		if h.isVolume() {
			return nil, &LayoutError{Kind: InvalidCubeMapFaces}
		}
		if h.DX10 == nil && h.Caps2&Caps2AllFaces != Caps2AllFaces {
			return nil, &LayoutError{Kind: IncompleteCubeMap}
		}
		faces := uint64(h.ArraySize()) * 6
		if faces > 1<<32-1 {
			return nil, &LayoutError{Kind: ArraySizeTooBig, Value: h.ArraySize()}
		}
		l.kind = LayoutCubeMap
		l.slots = uint32(faces)
	case h.isVolume():
		if h.Depth == 0 {
			return nil, &LayoutError{Kind: MissingDepth}
		}
		l.kind = LayoutVolume
		l.slots = 1
		l.depth = h.Depth
	}

	l.mipSize = make([]Size, mips)
	l.mipLen = make([]uint64, mips)
	l.mipOff = make([]uint64, mips)

	for i := uint32(0); i < mips; i++ {
		size := l.mainSize.mip(uint8(i))
		l.mipSize[i] = size

		blocksX := uint64(ceilDiv(size.Width, fi.blockWidth))
		blocksY := uint64(ceilDiv(size.Height, fi.blockHeight))
		blocks := blocksX * blocksY
		if blocks > maxDataLength/uint64(fi.bytesPerBlock) {
			return nil, &LayoutError{Kind: DataLayoutTooBig}
		}
		l.mipLen[i] = blocks * uint64(fi.bytesPerBlock)
	}

	var total uint64
	if l.kind == LayoutVolume {
		for i := uint32(0); i < mips; i++ {
			l.mipOff[i] = total
			slices := uint64(max(1, l.depth>>i))
			levelLen := slices * l.mipLen[i]
			if levelLen/slices != l.mipLen[i] || levelLen > maxDataLength || total > maxDataLength-levelLen {
				return nil, &LayoutError{Kind: DataLayoutTooBig}
			}
			total += levelLen
			l.surfaceCount += slices
		}
	} else {
		for i := uint32(0); i < mips; i++ {
			l.mipOff[i] = l.slotLen
			if l.slotLen > maxDataLength-l.mipLen[i] {
				return nil, &LayoutError{Kind: DataLayoutTooBig}
			}
			l.slotLen += l.mipLen[i]
		}
		slots := uint64(l.slots)
		if l.slotLen != 0 && slots > maxDataLength/l.slotLen {
			return nil, &LayoutError{Kind: DataLayoutTooBig}
		}
		total = slots * l.slotLen
		l.surfaceCount = slots * uint64(mips)
	}
	l.dataLen = total

	return l, nil
}

// Kind returns the top-level shape.
func (l *DataLayout) Kind() LayoutKind {
	return l.kind
}

// MainSize returns the size of the level 0 surface: the texture or
// face size, or the size of a depth slice for volumes.
func (l *DataLayout) MainSize() Size {
	return l.mainSize
}

// MipCount returns the number of mipmap levels.
func (l *DataLayout) MipCount() uint8 {
	return l.mipCount
}

// ArraySize returns the number of array elements.
func (l *DataLayout) ArraySize() uint32 {
	if l.kind == LayoutCubeMap {
		return l.slots / 6
	}
	return l.slots
}

// SurfaceCount returns the total number of 2D surfaces.
func (l *DataLayout) SurfaceCount() uint64 {
	return l.surfaceCount
}

// DataLength returns the total byte length of the data section.
func (l *DataLayout) DataLength() uint64 {
	return l.dataLen
}

// depthAt returns the number of depth slices at a mip level.
func (l *DataLayout) depthAt(mip uint8) uint32 {
	return max(1, l.depth>>mip)
}

// surfaceKind returns the slot kind of every surface in this layout.
func (l *DataLayout) surfaceKind() SurfaceKind {
	switch l.kind {
	case LayoutCubeMap:
		return CubeFace
	case LayoutVolume:
		return DepthSlice
	default:
		return ArraySlice
	}
}

// SurfaceAt returns the k-th surface in canonical order.
func (l *DataLayout) SurfaceAt(index uint64) (Surface, bool) {
	if index >= l.surfaceCount {
		return Surface{}, false
	}

	var mip uint8
	var slot uint32
	var offset uint64
	if l.kind == LayoutVolume {
		// Walk the at most 255 levels to find the one containing index.
		var first uint64
		for {
			slices := uint64(l.depthAt(mip))
			if index < first+slices {
				slice := index - first
				slot = uint32(slice)
				offset = l.mipOff[mip] + slice*l.mipLen[mip]
				break
			}
			first += slices
			mip++
		}
	} else {
		mips := uint64(l.mipCount)
		slot = uint32(index / mips)
		mip = uint8(index % mips)
		offset = uint64(slot)*l.slotLen + l.mipOff[mip]
	}

	size := l.mipSize[mip]
	return Surface{
		Width:    size.Width,
		Height:   size.Height,
		Offset:   offset,
		Length:   l.mipLen[mip],
		MipLevel: mip,
		Slot:     slot,
		Kind:     l.surfaceKind(),
	}, true
}
