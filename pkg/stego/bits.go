package stego

// BytesToBits expands each byte into 8 single-bit values, most significant first.
func BytesToBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for pos := 7; pos >= 0; pos-- {
			bits = append(bits, (b>>pos)&1)
		}
	}
	return bits
}

// BitsToBytes packs bits back into bytes. Bit 0 of each group of 8 becomes the
// most significant bit; a short final group is zero padded on the right.
func BitsToBytes(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit&1 == 1 {
			out[i/8] |= 1 << (7 - i%8)
		}
	}
	return out
}

// rgbBits reads up to n LSBs from the R, G, B channels in scan order.
func rgbBits(pix []byte, n int) []byte {
	bits := make([]byte, 0, n)
	for i := 0; i+3 < len(pix) && len(bits) < n; i += 4 {
		for ch := 0; ch < 3 && len(bits) < n; ch++ {
			bits = append(bits, pix[i+ch]&1)
		}
	}
	return bits
}
