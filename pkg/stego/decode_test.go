package stego

import (
	"bytes"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAlpha overwrites alpha LSBs in scan order.
func writeAlpha(pix []byte, bits []byte) {
	for i, bit := range bits {
		pix[i*4+3] = (pix[i*4+3] & 0xFE) | bit
	}
}

// noisyBackground is a carrier whose every LSB is 1, so no stray zero bytes
// appear after a planted message.
func noisyBackground(width, height int) PixelBuffer {
	return solidBuffer(width, height, color.NRGBA{R: 201, G: 13, B: 77, A: 255})
}

func TestDecodeAlphaNull(t *testing.T) {
	buf := noisyBackground(20, 20)
	writeAlpha(buf.Pix, BytesToBits([]byte("alpha secret\x00")))

	decoded, err := Decode(buf, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "alpha secret", decoded.Text)
	assert.Equal(t, FormatAlphaNull, decoded.Format)
}

func TestDecodeRGBNull(t *testing.T) {
	buf := noisyBackground(20, 20)
	writeRGB(buf.Pix, BytesToBits([]byte("rgb secret\x00")))

	decoded, err := Decode(buf, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "rgb secret", decoded.Text)
	assert.Equal(t, FormatRGBNull, decoded.Format)
}

func TestDecodeDelimiter(t *testing.T) {
	for _, marker := range []string{"###END###", "<<<END>>>", "---END---"} {
		t.Run(marker, func(t *testing.T) {
			buf := noisyBackground(30, 30)
			writeRGB(buf.Pix, BytesToBits([]byte("marked secret"+marker)))

			decoded, err := Decode(buf, DefaultLimits())
			require.NoError(t, err)
			assert.Equal(t, "marked secret", decoded.Text)
			assert.Equal(t, FormatDelimiter, decoded.Format)
		})
	}
}

func TestDecodeDelimiterTripleNul(t *testing.T) {
	buf := noisyBackground(20, 20)
	writeRGB(buf.Pix, BytesToBits([]byte("nul marked\x00\x00\x00")))

	decoded, err := DecodeWith(buf, DefaultLimits(), FormatDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "nul marked", decoded.Text)
}

func TestDecodeDelimiterAtOffsetZero(t *testing.T) {
	buf := noisyBackground(20, 20)
	writeRGB(buf.Pix, BytesToBits([]byte("###END###")))

	_, err := DecodeWith(buf, DefaultLimits(), FormatDelimiter)
	assert.ErrorIs(t, err, ErrNoPayloadDetected)
}

func TestDecodeDelimiterSkipsUnprintablePrefix(t *testing.T) {
	buf := noisyBackground(30, 30)
	// The first marker found has a control character before it; the next
	// marker in the list still gets its chance.
	writeRGB(buf.Pix, BytesToBits([]byte("ok text<<<END>>>\x01###END###")))

	decoded, err := DecodeWith(buf, DefaultLimits(), FormatDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "ok text", decoded.Text)
}

func TestDecodeDelimiterReplacesInvalidUTF8(t *testing.T) {
	buf := noisyBackground(30, 30)
	// Latin-1 text written by a legacy encoder.
	writeRGB(buf.Pix, BytesToBits([]byte("caf\xe9 secret###END###")))

	decoded, err := DecodeWith(buf, DefaultLimits(), FormatDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "caf\uFFFD secret", decoded.Text)

	decoded, err = Decode(buf, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, FormatDelimiter, decoded.Format)
}

func TestDecodeAlphaNullRejectsInvalidUTF8(t *testing.T) {
	buf := noisyBackground(30, 30)
	writeAlpha(buf.Pix, BytesToBits([]byte("caf\xe9 secret\x00")))

	_, err := DecodeWith(buf, DefaultLimits(), FormatAlphaNull)
	assert.ErrorIs(t, err, ErrNoPayloadDetected)
}

func TestStrategyPriority(t *testing.T) {
	carrier := solidBuffer(40, 40, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	encoded, err := Encode(carrier, "primary", DefaultLimits())
	require.NoError(t, err)

	// A second, valid alpha-channel message must not win over the prefix.
	writeAlpha(encoded.Pix, BytesToBits([]byte("decoy\x00")))

	decoded, err := Decode(encoded, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "primary", decoded.Text)
	assert.Equal(t, FormatLengthPrefixed, decoded.Format)

	alt, err := DecodeWith(encoded, DefaultLimits(), FormatAlphaNull)
	require.NoError(t, err)
	assert.Equal(t, "decoy", alt.Text)
}

func TestLengthPrefixedBounds(t *testing.T) {
	message := bytes.Repeat([]byte("z"), 50)

	buf := noisyBackground(40, 40)
	writeRGB(buf.Pix, BytesToBits(Payload(string(message))))

	_, err := DecodeWith(buf, Limits{MaxDecodedLength: 49}, FormatLengthPrefixed)
	assert.ErrorIs(t, err, ErrNoPayloadDetected)

	decoded, err := DecodeWith(buf, Limits{MaxDecodedLength: 50}, FormatLengthPrefixed)
	require.NoError(t, err)
	assert.Equal(t, string(message), decoded.Text)
}

func TestLengthPrefixedRejectsOverCapacity(t *testing.T) {
	// Header claims 10 bytes but a 10x2 image only holds 60 bits.
	buf := noisyBackground(10, 2)
	writeRGB(buf.Pix, BytesToBits([]byte{0, 0, 0, 10}))

	_, err := DecodeWith(buf, DefaultLimits(), FormatLengthPrefixed)
	assert.ErrorIs(t, err, ErrNoPayloadDetected)
}

func TestLengthPrefixedRejectsControlCharacters(t *testing.T) {
	buf := noisyBackground(20, 20)
	writeRGB(buf.Pix, BytesToBits(Payload("bad\x02text")))

	_, err := DecodeWith(buf, DefaultLimits(), FormatLengthPrefixed)
	assert.ErrorIs(t, err, ErrNoPayloadDetected)
}

func TestNullTerminatedScanCeiling(t *testing.T) {
	buf := noisyBackground(200, 1)
	writeAlpha(buf.Pix, BytesToBits([]byte("0123456789\x00")))

	// 11 bytes = 88 bits are needed to reach the terminator.
	_, err := DecodeWith(buf, Limits{ScanCeilingBits: 87}, FormatAlphaNull)
	assert.ErrorIs(t, err, ErrNoPayloadDetected)

	decoded, err := DecodeWith(buf, Limits{ScanCeilingBits: 88}, FormatAlphaNull)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", decoded.Text)
}

func TestNullTerminatedStopsAtFirstTerminator(t *testing.T) {
	buf := noisyBackground(20, 20)
	writeRGB(buf.Pix, BytesToBits([]byte("\x00later text\x00")))

	_, err := DecodeWith(buf, DefaultLimits(), FormatRGBNull)
	assert.ErrorIs(t, err, ErrNoPayloadDetected)
}

func TestDecodeUniformImage(t *testing.T) {
	for _, c := range []color.NRGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}, {R: 120, G: 110, B: 200, A: 255}} {
		_, err := Decode(solidBuffer(64, 64, c), DefaultLimits())
		assert.ErrorIs(t, err, ErrNoPayloadDetected, "colour %v", c)
	}
}

func TestDecodeRandomNoise(t *testing.T) {
	const trials = 200
	hits := 0
	for seed := int64(0); seed < trials; seed++ {
		rng := rand.New(rand.NewSource(seed))
		buf := NewPixelBuffer(64, 64)
		rng.Read(buf.Pix)

		if _, err := Decode(buf, DefaultLimits()); err == nil {
			hits++
		} else {
			require.ErrorIs(t, err, ErrNoPayloadDetected)
		}
	}
	// Short accidental runs of printable bytes ahead of a zero byte are possible,
	// but must stay rare.
	assert.LessOrEqual(t, hits, trials/20, "too many false positives on noise")
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []Format{FormatLengthPrefixed, FormatAlphaNull, FormatRGBNull, FormatDelimiter}, Formats())

	f, ok := ParseFormat("RGB-Null")
	assert.True(t, ok)
	assert.Equal(t, FormatRGBNull, f)

	_, ok = ParseFormat("jsteg")
	assert.False(t, ok)
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte{0, 0, 0, 0}, 1)
	f.Add(bytes.Repeat([]byte{0xff}, 64), 4)
	f.Add(bytes.Repeat([]byte{0x01, 0x00}, 128), 8)

	f.Fuzz(func(t *testing.T, pix []byte, width int) {
		if width <= 0 || width > 1024 || len(pix) == 0 || len(pix)%(width*4) != 0 {
			return
		}
		buf := PixelBuffer{Pix: pix, Width: width, Height: len(pix) / (width * 4)}

		// Garbage in is fine; we only care that it never panics.
		decoded, err := Decode(buf, DefaultLimits())
		if err == nil {
			assert.NotEmpty(t, decoded.Text)
		}
	})
}
