package stego

// channelsPerPixel is the number of channels (R, G, B) carrying payload bits.
const channelsPerPixel = 3

// lengthPrefixBits is the size of the big-endian length header.
const lengthPrefixBits = 32

// Capacity returns the number of payload bits a width x height carrier holds.
func Capacity(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return width * height * channelsPerPixel
}

// MaxMessageBytes is the largest message, in UTF-8 bytes, that fits with its
// length prefix.
func MaxMessageBytes(width, height int) int {
	free := Capacity(width, height) - lengthPrefixBits
	if free < 0 {
		return 0
	}
	return free / 8
}

// PixelsRequired is the minimum pixel count for a message of n bytes.
func PixelsRequired(n int) int {
	bits := lengthPrefixBits + 8*n
	return (bits + channelsPerPixel - 1) / channelsPerPixel
}

// EnsureCapacity fails with KindCapacityExceeded when bitLength does not fit
// in pixelCount pixels.
func EnsureCapacity(pixelCount, bitLength int) error {
	capacity := pixelCount * channelsPerPixel
	if bitLength > capacity {
		return NewError(KindCapacityExceeded,
			"message too long for selected image: need %d bits, have %d (try a larger image)",
			bitLength, capacity)
	}
	return nil
}
