package format

import (
	"errors"
	"fmt"
	"regexp"
)

// Standard Markers used to delineate sections in the text-friendly format
const (
	// MagicHeader is the human readable introduction at the top of an envelope
	MagicHeader = `# STEGANOWEB SHARD %d OF %d.
# ANY %d SHARDS TOGETHER RECOVER THE HIDDEN MESSAGE.
`
	// HeaderMarker indicates the start of the JSON metadata
	HeaderMarker = "-- HEADER --"

	// BodyMarker indicates the start of the base64 shard content
	BodyMarker = "-- BODY --"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{8,64}$`)

// Header contains all the metadata required to gather shards together.
type Header struct {
	// ID groups the shards of one scattered message.
	ID string `json:"id"`

	// Index is the shard index (1-based)
	Index int `json:"index"`

	// Total is the total number of shards created
	Total int `json:"total"`

	// Threshold is the number of shards required to recover the message
	Threshold int `json:"threshold"`

	// Size is the length of the compressed stream before erasure coding.
	Size int `json:"size"`

	// Checksum is the CRC-32 (IEEE) of the compressed stream, hex encoded.
	Checksum string `json:"checksum"`
}

// Validate checks if the header contains sane values.
func (h *Header) Validate() error {
	if !hexID.MatchString(h.ID) {
		return fmt.Errorf("invalid shard id %q", h.ID)
	}
	if h.Total < 2 || h.Total > 256 {
		return fmt.Errorf("invalid total %d", h.Total)
	}
	if h.Index < 1 || h.Index > h.Total {
		return fmt.Errorf("invalid index %d for total %d", h.Index, h.Total)
	}
	if h.Threshold < 1 || h.Threshold > h.Total {
		return fmt.Errorf("invalid threshold %d for total %d", h.Threshold, h.Total)
	}
	if h.Size <= 0 {
		return errors.New("header is missing payload size")
	}
	if len(h.Checksum) != 8 {
		return errors.New("header is missing checksum")
	}
	return nil
}

// Compatible reports whether two headers describe shards of the same message.
func (h *Header) Compatible(other *Header) bool {
	return h.ID == other.ID &&
		h.Total == other.Total &&
		h.Threshold == other.Threshold &&
		h.Size == other.Size &&
		h.Checksum == other.Checksum
}
