package stego

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToBits(t *testing.T) {
	assert.Equal(t, []byte{1, 0, 1, 0, 0, 1, 0, 1}, BytesToBits([]byte{0xA5}))
	assert.Empty(t, BytesToBits(nil))
}

func TestBitsToBytesPadsShortGroup(t *testing.T) {
	// 101 -> 1010_0000
	assert.Equal(t, []byte{0xA0}, BitsToBytes([]byte{1, 0, 1}))
	assert.Equal(t, []byte{0xFF, 0x80}, BitsToBytes([]byte{1, 1, 1, 1, 1, 1, 1, 1, 1}))
}

func TestBitsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 300; n += 13 {
		data := make([]byte, n)
		rng.Read(data)
		assert.Equal(t, data, BitsToBytes(BytesToBits(data)), "length %d", n)
	}
}

func TestRGBBitsSkipsAlpha(t *testing.T) {
	pix := []byte{1, 0, 1, 0, 0, 1, 1, 1}
	assert.Equal(t, []byte{1, 0, 1, 0, 1, 1}, rgbBits(pix, 100))
	assert.Equal(t, []byte{1, 0}, rgbBits(pix, 2))
}
