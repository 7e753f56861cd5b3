package compression

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
)

// maxDecodedSize bounds the length header so a corrupt blob cannot make
// Decompress allocate without limit.
const maxDecodedSize = 64 << 20

var ErrCorrupt = errors.New("compression: corrupt block")

// NoCompressor stores data unchanged.
type NoCompressor struct{}

func (NoCompressor) Name() string { return "none" }

func (NoCompressor) Compress(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

func (NoCompressor) Decompress(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

// LZ4Compressor writes the uvarint decoded length followed by an lz4 block.
// Input lz4 cannot shrink is stored raw after a zero-length block marker.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string { return "lz4" }

func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	header := binary.AppendUvarint(nil, uint64(len(data)))
	if len(data) == 0 {
		return header, nil
	}

	block := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, block, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(data) {
		// incompressible
		out := append(header, 0)
		return append(out, data...), nil
	}

	out := append(header, 1)
	return append(out, block[:n]...), nil
}

func (LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	size, n := binary.Uvarint(data)
	if n <= 0 || size > maxDecodedSize {
		return nil, ErrCorrupt
	}
	data = data[n:]
	if size == 0 {
		return []byte{}, nil
	}
	if len(data) == 0 {
		return nil, ErrCorrupt
	}

	mode, body := data[0], data[1:]
	switch mode {
	case 0:
		if uint64(len(body)) != size {
			return nil, ErrCorrupt
		}
		return bytes.Clone(body), nil
	case 1:
		out := make([]byte, size)
		m, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if uint64(m) != size {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, ErrCorrupt
	}
}
