// Package block implements framed block compression for column chunks.
//
// Every block starts with an 8-byte header:
//
//	[UncompressedSize uint32][CompressedSize uint32][Data...]
//
// CompressedSize == 0 means the payload is stored uncompressed. Blocks are
// self-describing with respect to size but not codec; the containing file
// records which codec was used.
package block

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression algorithm for a block.
type Codec uint8

const (
	// CodecNone stores blocks uncompressed.
	CodecNone Codec = 0
	// CodecLZ4 uses LZ4 block compression (fast).
	CodecLZ4 Codec = 1
	// CodecZSTD uses zstd (better ratio).
	CodecZSTD Codec = 2
)

// ErrUnknownCodec is returned for a codec byte this package does not know.
var ErrUnknownCodec = errors.New("block: unknown codec")

const headerSize = 8

// String returns the codec name as used in file directories.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "uncompressed"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// CodecByName maps a directory entry back to a Codec.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "uncompressed":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Compress frames data as a block using the given codec. When compression
// does not pay off (ratio above 0.9) the payload is stored uncompressed
// regardless of the requested codec.
func Compress(data []byte, codec Codec) ([]byte, error) {
	var compressed []byte
	var err error

	switch codec {
	case CodecNone:
	case CodecLZ4:
		compressed, err = compressLZ4(data)
	case CodecZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(codec))
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		return frame(uint32(len(data)), data, 0), nil
	}
	return frame(uint32(len(data)), compressed, uint32(len(compressed))), nil
}

func frame(rawSize uint32, payload []byte, compressedSize uint32) []byte {
	out := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], rawSize)
	binary.LittleEndian.PutUint32(out[4:], compressedSize)
	copy(out[headerSize:], payload)
	return out
}

func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	dst := make([]byte, bound)
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return dst[:n], nil
}

// Decompress unframes a block. The codec must match the one used at write
// time; blocks whose header marks them uncompressed are returned as-is for
// any codec.
func Decompress(data []byte, codec Codec) ([]byte, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("block: truncated header: %d bytes", len(data))
	}
	rawSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	payload := data[headerSize:]

	if compressedSize == 0 {
		if uint32(len(payload)) != rawSize {
			return nil, fmt.Errorf("block: payload size %d does not match header %d", len(payload), rawSize)
		}
		return payload, nil
	}
	if uint32(len(payload)) != compressedSize {
		return nil, fmt.Errorf("block: payload size %d does not match header %d", len(payload), compressedSize)
	}

	switch codec {
	case CodecLZ4:
		dst := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	case CodecZSTD:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(payload, make([]byte, 0, rawSize))
		zstdDecoderPool.Put(dec)
		return out, err
	default:
		return nil, fmt.Errorf("%w: compressed block with codec %d", ErrUnknownCodec, uint8(codec))
	}
}
