package format

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reader separates the metadata header of an envelope from its body.
type Reader struct {
	Header *Header
	// Body yields the decoded shard bytes.
	Body io.Reader
}

// NewReader attempts to parse a shard envelope.
// It consumes the text header and returns a Reader with the populated Header
// and a Body reader that decodes the base64 content.
func NewReader(r io.Reader) (*Reader, error) {
	bufReader := bufio.NewReader(r)

	// 1. Scan for the Header Marker
	// The magic text is only a few lines; anything longer is not an envelope.
	foundHeader := false
	for i := 0; i < 10; i++ {
		line, err := bufReader.ReadString('\n')
		if strings.TrimSpace(line) == HeaderMarker {
			foundHeader = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read stream while looking for header: %w", err)
		}
	}

	if !foundHeader {
		return nil, fmt.Errorf("invalid format: could not find %q marker", HeaderMarker)
	}

	// 2. Read the JSON content until the Body Marker
	var jsonBuilder bytes.Buffer
	for {
		line, err := bufReader.ReadString('\n')
		if strings.TrimSpace(line) == BodyMarker {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid format: could not find %q marker: %w", BodyMarker, err)
		}
		jsonBuilder.WriteString(line)
	}

	// 3. Unmarshal the Header
	header := &Header{}
	if err := json.Unmarshal(jsonBuilder.Bytes(), header); err != nil {
		return nil, fmt.Errorf("failed to parse header json: %w", err)
	}

	// 4. Validate the parsed header
	if err := header.Validate(); err != nil {
		return nil, fmt.Errorf("header validation failed: %w", err)
	}

	return &Reader{
		Header: header,
		// The base64 decoder skips the line breaks around the body.
		Body: base64.NewDecoder(base64.StdEncoding, bufReader),
	}, nil
}

// Parse reads a complete envelope from text.
func Parse(text string) (*Header, []byte, error) {
	r, err := NewReader(strings.NewReader(text))
	if err != nil {
		return nil, nil, err
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode shard body: %w", err)
	}
	if len(body) == 0 {
		return nil, nil, errors.New("shard body is empty")
	}
	return r.Header, body, nil
}
