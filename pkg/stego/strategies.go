package stego

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// Channel offsets within an RGBA pixel.
var (
	rgbChannels   = []int{0, 1, 2}
	alphaChannels = []int{3}
)

var replacementChar = []byte(string(utf8.RuneError))

// endMarkers are checked in this order by the delimiter strategy.
var endMarkers = [][]byte{
	[]byte("###END###"),
	[]byte("<<<END>>>"),
	[]byte("---END---"),
	{0x00, 0x00, 0x00},
}

// tryLengthPrefixed reads a 32-bit big-endian byte count from the first R, G, B
// LSBs followed by that many bytes of UTF-8 text.
func tryLengthPrefixed(buf PixelBuffer, lim Limits) (string, bool) {
	capacity := Capacity(buf.Width, buf.Height)
	if capacity < lengthPrefixBits {
		return "", false
	}

	header := BitsToBytes(rgbBits(buf.Pix, lengthPrefixBits))
	length := binary.BigEndian.Uint32(header)
	if length == 0 || uint64(length) > uint64(lim.MaxDecodedLength) {
		return "", false
	}

	total := lengthPrefixBits + 8*int(length)
	if total > capacity {
		return "", false
	}

	message := BitsToBytes(rgbBits(buf.Pix, total)[lengthPrefixBits:])
	if !Printable(message) {
		return "", false
	}
	return string(message), true
}

func tryAlphaNull(buf PixelBuffer, lim Limits) (string, bool) {
	return scanNullTerminated(buf.Pix, alphaChannels, lim)
}

func tryRGBNull(buf PixelBuffer, lim Limits) (string, bool) {
	return scanNullTerminated(buf.Pix, rgbChannels, lim)
}

// scanNullTerminated collects LSBs from the given channels of every pixel and
// stops at the first whole zero byte. Only that first terminator is considered:
// if the bytes before it are not acceptable text the strategy gives up.
func scanNullTerminated(pix []byte, channels []int, lim Limits) (string, bool) {
	var (
		message []byte
		current byte
		scanned int
	)

	for i := 0; i+3 < len(pix); i += 4 {
		for _, ch := range channels {
			if scanned >= lim.ScanCeilingBits {
				return "", false
			}
			current = current<<1 | pix[i+ch]&1
			scanned++

			if scanned%8 != 0 {
				continue
			}
			if current == 0 {
				return acceptTerminated(message, lim)
			}
			message = append(message, current)
			current = 0
		}
	}
	return "", false
}

func acceptTerminated(message []byte, lim Limits) (string, bool) {
	if len(message) == 0 || !Printable(message) {
		return "", false
	}
	if utf8.RuneCount(message) >= lim.MaxDecodedLength {
		return "", false
	}
	return string(message), true
}

// tryDelimiter decodes the first ScanCeilingBits R, G, B LSBs as one block and
// returns the text before the first end marker that yields acceptable text.
// Invalid UTF-8 in the block becomes U+FFFD, so only control characters
// disqualify a prefix. A marker at offset 0 never matches.
func tryDelimiter(buf PixelBuffer, lim Limits) (string, bool) {
	region := BitsToBytes(rgbBits(buf.Pix, lim.ScanCeilingBits))
	region = bytes.ToValidUTF8(region, replacementChar)

	for _, marker := range endMarkers {
		end := bytes.Index(region, marker)
		if end <= 0 {
			continue
		}
		prefix := region[:end]
		if Printable(prefix) {
			return string(prefix), true
		}
	}
	return "", false
}
