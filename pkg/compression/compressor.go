package compression

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Compressor defines the contract for data compression
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// GzipCompressor implements gzip compression
type GzipCompressor struct {
	// MaxOutput caps Decompress output; zero means unlimited.
	MaxOutput int64
}

func NewGzipCompressor() *GzipCompressor {
	return &GzipCompressor{}
}

func (g *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	// Hidden messages are short and carrier space is scarce: favour size.
	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (g *GzipCompressor) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var r io.Reader = reader
	if g.MaxOutput > 0 {
		r = io.LimitReader(reader, g.MaxOutput)
	}
	return io.ReadAll(r)
}
