// Package stego hides text in the least significant bits of RGBA pixel data
// and recovers it again, recognising several embedding conventions on decode.
package stego

import (
	"encoding/binary"
	"image"
	"strings"
	"unicode/utf8"
)

// Payload builds the wire form of a message: a 32-bit big-endian byte length
// followed by the UTF-8 bytes.
func Payload(message string) []byte {
	payload := make([]byte, 4+len(message))
	binary.BigEndian.PutUint32(payload[:4], uint32(len(message)))
	copy(payload[4:], message)
	return payload
}

// Encode hides message in a copy of buf and returns the copy. The message is
// sanitised first; one still holding C1 control characters is rejected since
// no decoder would accept it. Each payload bit replaces the LSB of the next
// R, G or B channel in row-major order. Alpha and every channel after the last payload
// bit are left as they were. buf itself is never modified.
func Encode(buf PixelBuffer, message string, lim Limits) (PixelBuffer, error) {
	lim = lim.WithDefaults()

	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, err
	}

	if n := utf8.RuneCountInString(message); n > lim.MaxMessageChars {
		return PixelBuffer{}, NewError(KindInvalidInput, "message has %d characters, limit is %d", n, lim.MaxMessageChars)
	}

	clean := Sanitize(message)
	if len(clean) == 0 {
		return PixelBuffer{}, NewError(KindInvalidInput, "message is empty")
	}
	if strings.IndexFunc(clean, isRejected) >= 0 {
		return PixelBuffer{}, NewError(KindInvalidInput, "message contains control characters that cannot be decoded")
	}

	bits := BytesToBits(Payload(clean))

	// Nothing is written until we know the whole payload fits.
	if err := EnsureCapacity(buf.PixelCount(), len(bits)); err != nil {
		return PixelBuffer{}, err
	}

	out := buf.Clone()
	writeRGB(out.Pix, bits)
	return out, nil
}

// writeRGB overwrites R, G, B LSBs in scan order until bits run out.
func writeRGB(pix []byte, bits []byte) {
	bitIndex := 0
	for i := 0; i < len(pix) && bitIndex < len(bits); i += 4 {
		for ch := 0; ch < channelsPerPixel && bitIndex < len(bits); ch++ {
			pix[i+ch] = (pix[i+ch] & 0xFE) | bits[bitIndex]
			bitIndex++
		}
	}
}

// EncodeImage is Encode for any image.Image. The result is always NRGBA.
func EncodeImage(carrier image.Image, message string, lim Limits) (*image.NRGBA, error) {
	out, err := Encode(FromImage(carrier), message, lim)
	if err != nil {
		return nil, err
	}
	return out.Image(), nil
}

// DecodeImage is Decode for any image.Image.
func DecodeImage(img image.Image, lim Limits) (DecodedMessage, error) {
	return Decode(FromImage(img), lim)
}
