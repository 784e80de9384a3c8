package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type selects the block compression algorithm.
type Type uint8

const (
	// None stores the block as is.
	None Type = 0
	// LZ4 is fast block compression, good for snapshots that are reloaded often.
	LZ4 Type = 1
	// ZSTD trades speed for ratio, good for snapshots shipped to object storage.
	ZSTD Type = 2
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

// Valid reports whether t is a known algorithm.
func (t Type) Valid() bool {
	return t <= ZSTD
}

var (
	// ErrShortBlock is returned when a block is smaller than its header claims.
	ErrShortBlock = errors.New("compress: block too small")
	// ErrSizeMismatch is returned when the decoded length differs from the header.
	ErrSizeMismatch = errors.New("compress: decompressed size mismatch")
	// ErrUnknownType is returned for an unsupported Type.
	ErrUnknownType = errors.New("compress: unknown compression type")
	// ErrTooLarge is returned when a block decodes to more bytes than the
	// caller allows.
	ErrTooLarge = errors.New("compress: decompressed size exceeds limit")
)

// HeaderSize is the size of the block header.
// Layout: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the data is stored uncompressed.
const HeaderSize = 8

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	// DecodeAll writes at most cap(dst) bytes, and Decode sizes dst from the
	// checked block header.
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(math.MaxUint32),
		zstd.WithDecodeAllCapLimit(true),
	)
}

// Encode compresses data into a self-describing block.
// If compression saves less than 10%, the block is stored uncompressed.
func Encode(data []byte, t Type) ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}

	var (
		compressed []byte
		err        error
	)

	switch t {
	case LZ4:
		compressed, err = encodeLZ4(data)
	case ZSTD:
		compressed, err = encodeZSTD(data)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, HeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:], 0)
		copy(out[HeaderSize:], data)
		return out, nil
	}

	out := make([]byte, HeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[HeaderSize:], compressed)
	return out, nil
}

func encodeLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return dst[:n], nil
}

func encodeZSTD(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

// Decode reverses Encode. t must be the algorithm the block was written with.
//
// Blocks claiming more than maxRaw decoded bytes fail with ErrTooLarge before
// anything is allocated.
func Decode(block []byte, t Type, maxRaw uint64) ([]byte, error) {
	if len(block) < HeaderSize {
		return nil, ErrShortBlock
	}

	rawSize := binary.LittleEndian.Uint32(block[0:])
	packedSize := binary.LittleEndian.Uint32(block[4:])
	if uint64(rawSize) > maxRaw {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, rawSize, maxRaw)
	}

	if packedSize == 0 {
		if uint64(len(block)) < HeaderSize+uint64(rawSize) {
			return nil, ErrShortBlock
		}
		return block[HeaderSize : HeaderSize+rawSize], nil
	}

	if uint64(len(block)) < HeaderSize+uint64(packedSize) {
		return nil, ErrShortBlock
	}
	packed := block[HeaderSize : HeaderSize+packedSize]
	out := make([]byte, rawSize)

	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(packed, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != rawSize {
			return nil, ErrSizeMismatch
		}
		return out, nil

	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(packed, out[:0])
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, fmt.Errorf("%w: frame exceeds %d bytes", ErrTooLarge, rawSize)
		}
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != rawSize {
			return nil, ErrSizeMismatch
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}
