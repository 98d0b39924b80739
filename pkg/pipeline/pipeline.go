// Package pipeline scatters one message across several carrier images so that
// any threshold of them recovers it: Compress -> Checksum -> Shard -> Envelope
// on the way out and the reverse on the way back.
package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"sort"
	"unicode/utf8"

	"github.com/Beastly713/steganoweb/pkg/compression"
	"github.com/Beastly713/steganoweb/pkg/format"
	"github.com/Beastly713/steganoweb/pkg/sharding"
	"github.com/Beastly713/steganoweb/pkg/stego"
	"golang.org/x/sync/errgroup"
)

// maxGathered caps the decompressed size of a gathered message.
const maxGathered = 64 << 20

// Config holds the parameters for the scatter operation
type Config struct {
	Total     int
	Threshold int
}

// Scatter compresses and erasure codes message into cfg.Total printable
// envelopes, any cfg.Threshold of which recover it.
func Scatter(message []byte, cfg Config) ([]string, error) {
	if len(message) == 0 {
		return nil, stego.NewError(stego.KindInvalidInput, "message cannot be empty")
	}
	if cfg.Total < 2 {
		return nil, stego.NewError(stego.KindInvalidInput, "need at least 2 carriers to scatter, got %d", cfg.Total)
	}

	// 1. Compress
	compressed, err := compression.NewGzipCompressor().Compress(message)
	if err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}

	// 2. Shard (Reed-Solomon)
	splitter, err := sharding.NewSplitter(cfg.Total, cfg.Threshold)
	if err != nil {
		return nil, stego.WrapError(stego.KindInvalidInput, err, "failed to initialize splitter")
	}
	shards, err := splitter.Split(compressed)
	if err != nil {
		return nil, fmt.Errorf("sharding failed: %w", err)
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}

	// 3. Wrap every shard in its envelope
	envelopes := make([]string, len(shards))
	for i, shard := range shards {
		header := &format.Header{
			ID:        id,
			Index:     shard.Index + 1,
			Total:     cfg.Total,
			Threshold: cfg.Threshold,
			Size:      len(compressed),
			Checksum:  checksum(compressed),
		}
		envelopes[i], err = format.Envelope(header, shard.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to write shard %d: %w", header.Index, err)
		}
	}

	return envelopes, nil
}

// Group is the set of collected shards belonging to one scattered message.
type Group struct {
	Header format.Header
	// Shards is keyed by 0-based shard index.
	Shards map[int][]byte
}

// Ready reports whether enough shards are present to Join.
func (g *Group) Ready() bool {
	return len(g.Shards) >= g.Header.Threshold
}

// Collect parses envelopes and groups them by message id. Texts that are not
// envelopes, or that contradict the first header seen for their id, are
// counted in rejected.
func Collect(texts []string) (groups []*Group, rejected int) {
	byID := make(map[string]*Group)

	for _, text := range texts {
		header, body, err := format.Parse(text)
		if err != nil {
			rejected++
			continue
		}

		g, ok := byID[header.ID]
		if !ok {
			g = &Group{Header: *header, Shards: make(map[int][]byte)}
			byID[header.ID] = g
		} else if !g.Header.Compatible(header) {
			rejected++
			continue
		}
		g.Shards[header.Index-1] = body
	}

	for _, g := range byID {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Header.ID < groups[j].Header.ID })
	return groups, rejected
}

// Join reconstructs, verifies and decompresses the message held by g.
func Join(g *Group) ([]byte, error) {
	h := g.Header
	if !g.Ready() {
		return nil, stego.NewError(stego.KindNoPayloadDetected,
			"message %s needs %d shards, found %d", h.ID, h.Threshold, len(g.Shards))
	}

	// 1. Unshard (Reed-Solomon Join)
	splitter, err := sharding.NewSplitter(h.Total, h.Threshold)
	if err != nil {
		return nil, err
	}
	compressed, err := splitter.Join(g.Shards, h.Size)
	if err != nil {
		return nil, stego.WrapError(stego.KindNoPayloadDetected, err, "reconstruction failed")
	}

	// 2. Verify
	if sum := checksum(compressed); sum != h.Checksum {
		return nil, stego.NewError(stego.KindNoPayloadDetected,
			"checksum mismatch for message %s: got %s, want %s", h.ID, sum, h.Checksum)
	}

	// 3. Decompress
	decompressor := &compression.GzipCompressor{MaxOutput: maxGathered}
	message, err := decompressor.Decompress(compressed)
	if err != nil {
		return nil, stego.WrapError(stego.KindNoPayloadDetected, err, "decompression failed")
	}
	return message, nil
}

// EmbedEnvelope hides one envelope in buf with the length-prefixed format.
// The message limits are raised to whatever the carrier can hold.
func EmbedEnvelope(buf stego.PixelBuffer, envelope string) (stego.PixelBuffer, error) {
	lim := stego.DefaultLimits()
	if n := utf8.RuneCountInString(envelope); n > lim.MaxMessageChars {
		lim.MaxMessageChars = n
	}
	return stego.Encode(buf, envelope, lim)
}

// Embed hides envelopes[i] in carriers[i], at most workers at a time.
func Embed(ctx context.Context, carriers []stego.PixelBuffer, envelopes []string, workers int) ([]stego.PixelBuffer, error) {
	if len(carriers) != len(envelopes) {
		return nil, stego.NewError(stego.KindInvalidInput,
			"have %d carriers for %d shards", len(carriers), len(envelopes))
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]stego.PixelBuffer, len(carriers))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range carriers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			encoded, err := EmbedEnvelope(carriers[i], envelopes[i])
			if err != nil {
				return fmt.Errorf("carrier %d: %w", i+1, err)
			}
			out[i] = encoded
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Extract reads an envelope written by EmbedEnvelope.
func Extract(buf stego.PixelBuffer) (string, error) {
	lim := stego.DefaultLimits()
	if n := stego.MaxMessageBytes(buf.Width, buf.Height); n > lim.MaxDecodedLength {
		lim.MaxDecodedLength = n
	}
	msg, err := stego.DecodeWith(buf, lim, stego.FormatLengthPrefixed)
	if err != nil {
		return "", err
	}
	return msg.Text, nil
}

func checksum(data []byte) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(data))
}

func newID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate shard id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
