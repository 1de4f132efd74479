// Package edds reads and writes the Enfusion EDDS texture container.
//
// An EDDS file is a DDS header followed by one block per mipmap
// level: a table of [magic][size] entries and then the block bodies,
// both ordered from the smallest mip to the largest. A block is either
// a raw copy of the surface bytes or an LZ4 chunk stream of 64 KiB
// chunks decoded with a rolling dictionary.
package edds

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

const (
	// BlockMagicCOPY marks an uncompressed block.
	BlockMagicCOPY = "COPY"
	// BlockMagicLZ4 marks an LZ4 chunk-stream block.
	BlockMagicLZ4 = "LZ4 "

	// ChunkSize is the uncompressed data size per LZ4 chunk.
	ChunkSize = 64 * 1024

	maxInt32 = int(^uint32(0) >> 1)
)

// block is one mipmap payload.
type block struct {
	Magic            string
	Data             []byte
	Size             int32
	UncompressedSize int32
}

// compressBlock compresses surface bytes into 64 KiB LZ4 HC chunks,
// falling back to a raw copy when compression does not pay off.
func compressBlock(data []byte) (*block, error) {
	if len(data) > maxInt32 {
		return nil, fmt.Errorf("input data too large: %d bytes", len(data))
	}
	uncompressedSize := int32(len(data))

	// Small blocks cause more overhead than they save.
	if len(data) < 1024 {
		return &block{Magic: BlockMagicCOPY, Size: uncompressedSize, Data: data}, nil
	}

	var chunkStream bytes.Buffer
	compressBuf := make([]byte, lz4.CompressBlockBound(ChunkSize))

	for i := 0; i < len(data); i += ChunkSize {
		end := min(i+ChunkSize, len(data))
		srcChunk := data[i:end]
		isLast := end == len(data)

		cn, err := lz4.CompressBlockHC(srcChunk, compressBuf, 0, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("LZ4 compression failed: %w", err)
		}

		// A chunk that barely compresses desyncs some parsers; fall
		// back to a raw copy of the whole block.
		if cn == 0 || float64(cn) > float64(len(srcChunk))*0.85 {
			return &block{Magic: BlockMagicCOPY, Size: uncompressedSize, Data: data}, nil
		}
		if cn > 0x7fffff {
			return nil, fmt.Errorf("compressed chunk too large: %d", cn)
		}

		// Chunk header: int24 size + flags byte, 0x80 on the last.
		chunkStream.WriteByte(byte(cn))
		chunkStream.WriteByte(byte(cn >> 8))
		chunkStream.WriteByte(byte(cn >> 16))
		if isLast {
			chunkStream.WriteByte(0x80)
		} else {
			chunkStream.WriteByte(0x00)
		}
		chunkStream.Write(compressBuf[:cn])
	}

	compressed := chunkStream.Bytes()
	total := 4 + len(compressed) // u32 uncompressed size prefix
	if total > maxInt32 {
		return nil, fmt.Errorf("compressed data too large: %d bytes", total)
	}
	if float64(total) > float64(len(data))*0.85 {
		return &block{Magic: BlockMagicCOPY, Size: uncompressedSize, Data: data}, nil
	}

	return &block{
		Magic:            BlockMagicLZ4,
		Size:             int32(total),
		UncompressedSize: uncompressedSize,
		Data:             compressed,
	}, nil
}

// writeBlockBody writes a block body: the uncompressed size prefix and
// chunk stream for LZ4, or the raw bytes for a copy.
func writeBlockBody(w io.Writer, b *block) error {
	if b.Magic == BlockMagicLZ4 {
		if err := binary.Write(w, binary.LittleEndian, b.UncompressedSize); err != nil {
			return fmt.Errorf("writing uncompressed size: %w", err)
		}
	}
	if _, err := w.Write(b.Data); err != nil {
		return fmt.Errorf("writing block body: %w", err)
	}
	return nil
}

// decompressBlock expands a block body to expectedSize surface bytes.
// LZ4 blocks are chunk streams decoded with a rolling 64 KiB
// dictionary; the target size may be embedded as a u32 prefix.
func decompressBlock(b *block, expectedSize int) ([]byte, error) {
	if b.Magic == BlockMagicCOPY {
		if len(b.Data) != expectedSize {
			return nil, fmt.Errorf("COPY block size mismatch: expected %d, got %d", expectedSize, len(b.Data))
		}
		out := make([]byte, len(b.Data))
		copy(out, b.Data)
		return out, nil
	}
	if b.Magic != BlockMagicLZ4 {
		return nil, fmt.Errorf("unknown block magic: %q", b.Magic)
	}

	targetSize := expectedSize
	if b.UncompressedSize > 0 {
		targetSize = int(b.UncompressedSize)
	}
	if targetSize <= 0 {
		return nil, fmt.Errorf("invalid target size: %d", targetSize)
	}

	data := b.Data
	if len(data) >= 8 {
		peek := int(binary.LittleEndian.Uint32(data[:4]))
		c0 := int(data[4]) | int(data[5])<<8 | int(data[6])<<16
		if (peek == expectedSize || peek == targetSize) && c0 > 0 && c0 < 1<<20 {
			targetSize = peek
			data = data[4:]
		}
	}

	const dictCap = 64 * 1024
	dict := make([]byte, dictCap)
	dictSize := 0

	target := make([]byte, targetSize)
	outIdx := 0
	r := bytes.NewReader(data)

	for {
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}
		cSize := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		flags := hdr[3]
		if flags&^0x80 != 0 {
			return nil, fmt.Errorf("unknown LZ4 flags: 0x%02x", flags)
		}
		if cSize <= 0 || cSize > r.Len() {
			return nil, fmt.Errorf("invalid compressed chunk size: %d (remaining %d)", cSize, r.Len())
		}

		compressed := make([]byte, cSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("reading chunk data: %w", err)
		}

		remaining := targetSize - outIdx
		if remaining <= 0 {
			return nil, fmt.Errorf("decoded LZ4 overruns target buffer")
		}
		want := min(ChunkSize, remaining)

		n, err := lz4.UncompressBlockWithDict(compressed, target[outIdx:outIdx+want], dict[:dictSize])
		if err != nil {
			return nil, fmt.Errorf("LZ4 chunk decode failed: %w", err)
		}
		outIdx += n

		// Roll the dictionary forward over the decoded bytes.
		decoded := target[outIdx-n : outIdx]
		if len(decoded) >= dictCap {
			copy(dict, decoded[len(decoded)-dictCap:])
			dictSize = dictCap
		} else {
			avail := dictCap - dictSize
			if len(decoded) <= avail {
				copy(dict[dictSize:], decoded)
				dictSize += len(decoded)
			} else {
				shift := len(decoded) - avail
				copy(dict, dict[shift:dictSize])
				copy(dict[dictCap-len(decoded):], decoded)
				dictSize = dictCap
			}
		}

		if flags&0x80 != 0 {
			break
		}
	}

	if outIdx != targetSize {
		return nil, fmt.Errorf("LZ4 decoded size mismatch: expected %d, got %d", targetSize, outIdx)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("LZ4 block length mismatch: %d bytes left after decode", r.Len())
	}
	return target, nil
}

// blockHeader is one Magic+Size entry of the block table.
type blockHeader struct {
	Magic string
	Size  int32
}

// readBlockTable reads the per-mip table of magic and size entries.
func readBlockTable(r io.Reader, mipMapCount uint32) ([]blockHeader, error) {
	hdrs := make([]blockHeader, 0, mipMapCount)
	for i := uint32(0); i < mipMapCount; i++ {
		var magicBytes [4]byte
		if _, err := io.ReadFull(r, magicBytes[:]); err != nil {
			return nil, fmt.Errorf("reading block table magic %d: %w", i, err)
		}
		magic := string(magicBytes[:])

		var size int32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("reading block table size %d: %w", i, err)
		}

		if magic != BlockMagicCOPY && magic != BlockMagicLZ4 {
			return nil, fmt.Errorf("unknown block magic in table %d: %q", i, magic)
		}
		if size < 0 {
			return nil, fmt.Errorf("invalid block size in table %d: %d", i, size)
		}
		hdrs = append(hdrs, blockHeader{Magic: magic, Size: size})
	}
	return hdrs, nil
}

// readBlockBody reads one block body described by a table entry.
func readBlockBody(r io.Reader, h blockHeader) (*block, error) {
	data := make([]byte, h.Size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("reading %s body: %w", h.Magic, err)
	}
	return &block{Magic: h.Magic, Size: h.Size, Data: data}, nil
}
