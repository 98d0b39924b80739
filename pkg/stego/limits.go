package stego

// Limits are the bounds applied by Encode, Decode and the byte-level guards.
// A zero field falls back to the matching DefaultLimits value.
type Limits struct {
	// MaxMessageChars caps the raw message length in runes, before sanitisation.
	MaxMessageChars int
	// MaxDecodedLength caps the byte length read from a length prefix and the
	// rune length of terminator-delimited candidates.
	MaxDecodedLength int
	// ScanCeilingBits bounds how many bits the heuristic strategies read.
	ScanCeilingBits int
	// MaxEncodeBytes and MaxDecodeBytes guard the raw container size.
	MaxEncodeBytes int
	MaxDecodeBytes int
}

const (
	DefaultMaxMessageChars  = 1000
	DefaultMaxDecodedLength = 10000
	DefaultScanCeilingBits  = 80000
	DefaultMaxEncodeBytes   = 15 << 20
	DefaultMaxDecodeBytes   = 25 << 20
)

// DefaultLimits returns the production bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxMessageChars:  DefaultMaxMessageChars,
		MaxDecodedLength: DefaultMaxDecodedLength,
		ScanCeilingBits:  DefaultScanCeilingBits,
		MaxEncodeBytes:   DefaultMaxEncodeBytes,
		MaxDecodeBytes:   DefaultMaxDecodeBytes,
	}
}

// WithDefaults fills unset fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxMessageChars <= 0 {
		l.MaxMessageChars = d.MaxMessageChars
	}
	if l.MaxDecodedLength <= 0 {
		l.MaxDecodedLength = d.MaxDecodedLength
	}
	if l.ScanCeilingBits <= 0 {
		l.ScanCeilingBits = d.ScanCeilingBits
	}
	if l.MaxEncodeBytes <= 0 {
		l.MaxEncodeBytes = d.MaxEncodeBytes
	}
	if l.MaxDecodeBytes <= 0 {
		l.MaxDecodeBytes = d.MaxDecodeBytes
	}
	return l
}
