package stego

import (
	"strings"
)

// Format names one of the embedding conventions the decoder understands.
type Format string

const (
	// FormatLengthPrefixed is the convention Encode writes.
	FormatLengthPrefixed Format = "length-prefixed"
	// FormatAlphaNull is a NUL-terminated message in the alpha LSBs.
	FormatAlphaNull Format = "alpha-null"
	// FormatRGBNull is a NUL-terminated message in the R, G, B LSBs.
	FormatRGBNull Format = "rgb-null"
	// FormatDelimiter is a message followed by a literal end marker.
	FormatDelimiter Format = "delimiter"
)

// DecodedMessage is a recovered message and the format it was found in.
type DecodedMessage struct {
	Text   string
	Format Format
}

type strategy struct {
	format Format
	run    func(buf PixelBuffer, lim Limits) (string, bool)
}

// strategies are tried in this order; the first accepted candidate wins.
var strategies = []strategy{
	{FormatLengthPrefixed, tryLengthPrefixed},
	{FormatAlphaNull, tryAlphaNull},
	{FormatRGBNull, tryRGBNull},
	{FormatDelimiter, tryDelimiter},
}

// Formats lists every known format in detection order.
func Formats() []Format {
	out := make([]Format, len(strategies))
	for i, s := range strategies {
		out[i] = s.format
	}
	return out
}

// ParseFormat maps a name back to a Format.
func ParseFormat(name string) (Format, bool) {
	for _, s := range strategies {
		if strings.EqualFold(string(s.format), name) {
			return s.format, true
		}
	}
	return "", false
}

// Decode runs every detection strategy against buf in priority order.
func Decode(buf PixelBuffer, lim Limits) (DecodedMessage, error) {
	return DecodeWith(buf, lim)
}

// DecodeWith is Decode restricted to the given formats. Detection order is
// always the fixed priority order regardless of the order of formats; no
// formats means all of them.
func DecodeWith(buf PixelBuffer, lim Limits, formats ...Format) (DecodedMessage, error) {
	lim = lim.WithDefaults()
	if err := buf.Validate(); err != nil {
		return DecodedMessage{}, err
	}

	for _, s := range strategies {
		if len(formats) > 0 && !containsFormat(formats, s.format) {
			continue
		}
		if text, ok := s.run(buf, lim); ok && text != "" {
			return DecodedMessage{Text: text, Format: s.format}, nil
		}
	}

	return DecodedMessage{}, NewError(KindNoPayloadDetected, "no hidden payload detected or payload corrupted")
}

func containsFormat(formats []Format, f Format) bool {
	for _, candidate := range formats {
		if candidate == f {
			return true
		}
	}
	return false
}
