package format

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Writer handles the writing of a single shard envelope.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new Writer around an io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write serializes the header and base64 encoded content. The result is
// plain printable text so it can travel as an ordinary hidden message.
func (hw *Writer) Write(header *Header, content []byte) error {
	// 1. Validate the header before writing anything
	if err := header.Validate(); err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}

	// 2. Format and write the "Magic Header" text.
	magicText := fmt.Sprintf(MagicHeader, header.Index, header.Total, header.Threshold)
	if _, err := fmt.Fprint(hw.w, magicText); err != nil {
		return fmt.Errorf("failed to write magic header: %w", err)
	}

	// 3. Write the Header Marker
	if _, err := fmt.Fprintln(hw.w, HeaderMarker); err != nil {
		return fmt.Errorf("failed to write header marker: %w", err)
	}

	// 4. Marshal and write the Header JSON
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if _, err := fmt.Fprintln(hw.w, string(headerBytes)); err != nil {
		return fmt.Errorf("failed to write json header: %w", err)
	}

	// 5. Write the Body Marker
	if _, err := fmt.Fprintln(hw.w, BodyMarker); err != nil {
		return fmt.Errorf("failed to write body marker: %w", err)
	}

	// 6. Write the shard itself
	if _, err := fmt.Fprint(hw.w, base64.StdEncoding.EncodeToString(content)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}

	return nil
}

// Envelope renders header and content into a string.
func Envelope(header *Header, content []byte) (string, error) {
	var sb strings.Builder
	if err := NewWriter(&sb).Write(header, content); err != nil {
		return "", err
	}
	return sb.String(), nil
}
