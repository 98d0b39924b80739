// Package imageio converts between image containers and stego pixel buffers.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoding
	"image/png"
	"io"
	"os"

	"github.com/Beastly713/steganoweb/pkg/stego"
	"github.com/gen2brain/jpegn"
	_ "golang.org/x/image/bmp"  // Register BMP decoding
	_ "golang.org/x/image/webp" // Register WebP decoding
)

// Format is the container name reported by the image registry.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatWebP Format = "webp"
)

// IsEncodable reports whether images of this format are accepted as carriers.
// Output is always PNG regardless.
func IsEncodable(f Format) bool {
	return f == FormatPNG || f == FormatJPEG
}

// MimeType returns the media type for f, defaulting to image/png.
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	case FormatWebP:
		return "image/webp"
	}
	return "image/png"
}

// Info is what can be learned from a container header.
type Info struct {
	Width  int
	Height int
	Format Format
}

// Metadata reads dimensions and format without decoding pixels.
func Metadata(data []byte) (Info, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, stego.WrapError(stego.KindUnreadableImage, err, "unable to read image metadata")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, stego.NewError(stego.KindUnreadableImage, "image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: Format(name)}, nil
}

// Read decodes any supported container into an RGBA pixel buffer.
func Read(data []byte) (stego.PixelBuffer, Info, error) {
	info, err := Metadata(data)
	if err != nil {
		return stego.PixelBuffer{}, Info{}, err
	}

	var img image.Image
	if info.Format == FormatJPEG {
		img, err = jpegn.Decode(bytes.NewReader(data), &jpegn.Options{ToRGBA: true})
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return stego.PixelBuffer{}, Info{}, stego.WrapError(stego.KindUnreadableImage, err, fmt.Sprintf("failed to decode %s image", info.Format))
	}

	buf := stego.FromImage(img)
	if err := buf.Validate(); err != nil {
		return stego.PixelBuffer{}, Info{}, err
	}
	info.Width, info.Height = buf.Width, buf.Height
	return buf, info, nil
}

// WritePNG writes buf losslessly as PNG.
func WritePNG(w io.Writer, buf stego.PixelBuffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, buf.Image()); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// EncodePNG returns buf as PNG bytes.
func EncodePNG(buf stego.PixelBuffer) ([]byte, error) {
	var out bytes.Buffer
	if err := WritePNG(&out, buf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Load reads and decodes an image file. Files larger than maxBytes are
// rejected with PayloadTooLarge before any parsing; at most maxBytes+1 bytes
// are read.
func Load(path string, maxBytes int) (stego.PixelBuffer, Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return stego.PixelBuffer{}, Info{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, int64(maxBytes)+1))
	if err != nil {
		return stego.PixelBuffer{}, Info{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > maxBytes {
		return stego.PixelBuffer{}, Info{}, stego.NewError(stego.KindPayloadTooLarge, "image exceeds %dMB limit", maxBytes>>20)
	}
	return Read(data)
}

// Save writes buf to path as PNG.
func Save(path string, buf stego.PixelBuffer) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := WritePNG(file, buf); err != nil {
		return err
	}
	return file.Close()
}
