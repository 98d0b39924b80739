package stego

import (
	"image"
	"image/color"
)

// PixelBuffer is a row-major RGBA pixel grid, 8 bits per channel.
type PixelBuffer struct {
	Pix    []byte
	Width  int
	Height int
}

// NewPixelBuffer allocates a zeroed buffer of the given dimensions.
func NewPixelBuffer(width, height int) PixelBuffer {
	return PixelBuffer{
		Pix:    make([]byte, width*height*4),
		Width:  width,
		Height: height,
	}
}

// Validate checks that the declared dimensions agree with the byte length.
func (b PixelBuffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return NewError(KindUnreadableImage, "invalid dimensions %dx%d", b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return NewError(KindUnreadableImage, "buffer holds %d bytes, %dx%d RGBA needs %d",
			len(b.Pix), b.Width, b.Height, b.Width*b.Height*4)
	}
	return nil
}

// PixelCount is Width*Height.
func (b PixelBuffer) PixelCount() int {
	return b.Width * b.Height
}

// Clone returns a deep copy.
func (b PixelBuffer) Clone() PixelBuffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return PixelBuffer{Pix: pix, Width: b.Width, Height: b.Height}
}

// Image exposes the buffer as an *image.NRGBA sharing the same memory.
func (b PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FromImage copies img into a fresh PixelBuffer. NRGBA sources are copied
// byte for byte so LSBs of translucent pixels survive; anything else goes
// through the NRGBA color model (alpha 255 for opaque formats).
func FromImage(img image.Image) PixelBuffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := NewPixelBuffer(width, height)

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			start := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(out.Pix[y*width*4:(y+1)*width*4], src.Pix[start:start+width*4])
		}
		return out
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Pix[i] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = c.A
			i += 4
		}
	}
	return out
}
