package store

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec is the block compressor applied to the encoded columns. Its id is
// stored in the artifact header so readers need no other configuration.
type Codec uint8

const (
	CodecNone Codec = 0
	CodecZstd Codec = 1
	CodecGzip Codec = 2
)

// maxDecodedSize bounds decompression of a damaged or hostile artifact.
const maxDecodedSize = 1 << 30

// ParseCodec maps a configuration value to a Codec.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zstd":
		return CodecZstd, nil
	case "gzip":
		return CodecGzip, nil
	case "none":
		return CodecNone, nil
	}
	return 0, fmt.Errorf("unknown codec %q (want zstd, gzip or none)", name)
}

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecGzip:
		return "gzip"
	}
	return fmt.Sprintf("codec(%d)", uint8(c))
}

func (c Codec) valid() bool {
	return c == CodecNone || c == CodecZstd || c == CodecGzip
}

func (c Codec) compress(src []byte) ([]byte, error) {
	switch c {
	case CodecNone:
		return src, nil
	case CodecZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
	case CodecGzip:
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(src); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported codec %s", c)
}

func (c Codec) decompress(src []byte) ([]byte, error) {
	switch c {
	case CodecNone:
		return src, nil
	case CodecZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(src, nil)
	case CodecGzip:
		zr, err := gzip.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		out, err := io.ReadAll(io.LimitReader(zr, maxDecodedSize+1))
		if err != nil {
			return nil, err
		}
		if len(out) > maxDecodedSize {
			return nil, fmt.Errorf("decoded payload exceeds %d bytes", maxDecodedSize)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported codec %s", c)
}
