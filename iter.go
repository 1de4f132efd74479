package dds

// SurfaceInfo describes the surface a cursor currently points at. It
// is a value copy; it stays valid after the iterator advances.
type SurfaceInfo struct {
	// Size is the surface size in pixels.
	Size Size
	// DataLen is the encoded byte length of the surface.
	DataLen uint64
	// MipLevel is 0 for a level 0 surface and grows per halving.
	MipLevel uint8
	// Slot is the array slice, cube face, or depth slice index.
	Slot uint32
	// Kind tells what Slot indexes.
	Kind SurfaceKind
}

// IsMipmap reports whether the surface is a mipmap (level > 0).
func (s SurfaceInfo) IsMipmap() bool {
	return s.MipLevel > 0
}

// SurfaceIterator is a cursor over the surfaces of a data layout in
// canonical order. The zero cursor points at the first surface.
type SurfaceIterator struct {
	layout *DataLayout
	index  uint64
	mip    uint8
	slot   uint32 // array slice or face; depth slice for volumes
	offset uint64
}

// NewSurfaceIterator returns a cursor at the first surface.
func NewSurfaceIterator(layout *DataLayout) SurfaceIterator {
	return SurfaceIterator{layout: layout}
}

// Current returns the surface the cursor points at, or false when all
// surfaces have been consumed.
func (it *SurfaceIterator) Current() (SurfaceInfo, bool) {
	l := it.layout
	if it.index >= l.surfaceCount {
		return SurfaceInfo{}, false
	}
	return SurfaceInfo{
		Size:     l.mipSize[it.mip],
		DataLen:  l.mipLen[it.mip],
		MipLevel: it.mip,
		Slot:     it.slot,
		Kind:     l.surfaceKind(),
	}, true
}

// Advance moves the cursor to the next surface. It has no effect once
// the cursor is exhausted.
func (it *SurfaceIterator) Advance() {
	l := it.layout
	if it.index >= l.surfaceCount {
		return
	}
	it.offset += l.mipLen[it.mip]
	it.index++

	if l.kind == LayoutVolume {
		it.slot++
		if it.slot >= l.depthAt(it.mip) {
			it.slot = 0
			it.mip++
		}
		return
	}
	it.mip++
	if it.mip >= l.mipCount {
		it.mip = 0
		it.slot++
	}
}

// SkipMipmaps fast-forwards the cursor past all mipmap surfaces up to
// the next level 0 surface or the end, returning the total byte length
// skipped. If the cursor is already at a level 0 surface or exhausted,
// this is a no-op.
//
// For volume layouts this is only valid on the first depth slice of a
// level (or when exhausted); anywhere else it fails with
// ErrCannotSkipMipmapsInVolume. Since every surface after level 0 of a
// volume is a mipmap, a valid skip runs to the end of the data.
func (it *SurfaceIterator) SkipMipmaps() (uint64, error) {
	l := it.layout
	if it.index >= l.surfaceCount {
		return 0, nil
	}
	if l.kind == LayoutVolume && it.slot != 0 {
		return 0, ErrCannotSkipMipmapsInVolume
	}

	var skipped uint64
	for {
		cur, ok := it.Current()
		if !ok || !cur.IsMipmap() {
			break
		}
		skipped += cur.DataLen
		it.Advance()
	}
	return skipped, nil
}
