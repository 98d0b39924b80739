// Package service exposes encode and decode over raw image container bytes:
// size guards, container checks, the optional AI collaborator and logging
// wrapped around the stego codec.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/Beastly713/steganoweb/pkg/enhance"
	"github.com/Beastly713/steganoweb/pkg/imageio"
	"github.com/Beastly713/steganoweb/pkg/stego"
	"github.com/rs/zerolog"
)

// FormatAI marks messages read by the external service instead of the codec.
const FormatAI stego.Format = "ai"

// Service is safe for concurrent use.
type Service struct {
	limits    stego.Limits
	log       zerolog.Logger
	enhancer  enhance.Enhancer
	aiTimeout time.Duration
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithEnhancer plugs in an external image service.
func WithEnhancer(e enhance.Enhancer, timeout time.Duration) Option {
	return func(s *Service) {
		s.enhancer = e
		s.aiTimeout = timeout
	}
}

// New returns a Service enforcing lim.
func New(lim stego.Limits, opts ...Option) *Service {
	s := &Service{
		limits:   lim.WithDefaults(),
		log:      zerolog.Nop(),
		enhancer: enhance.Disabled{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the bounds this service enforces.
func (s *Service) Limits() stego.Limits {
	return s.limits
}

// EncodeOptions select the optional AI pre-processing step.
type EncodeOptions struct {
	UseAI  bool
	Prompt string
}

// EncodeResult is the PNG carrying the message plus what was learned about
// the input.
type EncodeResult struct {
	PNG      []byte
	Input    imageio.Info
	Enhanced bool
}

// Encode hides message in the image held by data and returns a PNG.
func (s *Service) Encode(ctx context.Context, data []byte, message string, opts EncodeOptions) (*EncodeResult, error) {
	if len(data) > s.limits.MaxEncodeBytes {
		s.log.Warn().Int("bytes", len(data)).Msg("encode input rejected by size guard")
		return nil, stego.NewError(stego.KindPayloadTooLarge, "image exceeds %dMB limit", s.limits.MaxEncodeBytes>>20)
	}

	enhanced := false
	if opts.UseAI {
		data, enhanced = s.enhance(ctx, data, stego.Sanitize(message), opts.Prompt)
	}

	info, err := imageio.Metadata(data)
	if err != nil {
		return nil, err
	}
	if !imageio.IsEncodable(info.Format) {
		return nil, stego.NewError(stego.KindUnreadableImage, "unsupported image format %q, use JPEG or PNG", info.Format)
	}

	pixels, info, err := imageio.Read(data)
	if err != nil {
		return nil, err
	}

	encoded, err := stego.Encode(pixels, message, s.limits)
	if err != nil {
		return nil, err
	}

	out, err := imageio.EncodePNG(encoded)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("input_format", string(info.Format)).
		Int("width", info.Width).
		Int("height", info.Height).
		Bool("enhanced", enhanced).
		Msg("encoded message into image")

	return &EncodeResult{PNG: out, Input: info, Enhanced: enhanced}, nil
}

// enhance runs the external service, falling back to the original bytes on
// any failure.
func (s *Service) enhance(ctx context.Context, data []byte, message, prompt string) ([]byte, bool) {
	ctx, cancel := s.aiContext(ctx)
	defer cancel()

	out, err := s.enhancer.Enhance(ctx, data, message, prompt)
	if err != nil {
		s.log.Error().Err(err).Msg("ai enhancement failed, using original image")
		return data, false
	}
	return out, true
}

func (s *Service) aiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.aiTimeout > 0 {
		return context.WithTimeout(ctx, s.aiTimeout)
	}
	return context.WithCancel(ctx)
}

// DecodeOptions select the decode path.
type DecodeOptions struct {
	// UseAI asks the external service instead of running the codec.
	UseAI bool
	// MimeType is forwarded to the external service.
	MimeType string
	// Formats restricts the codec to these strategies; empty means all.
	Formats []stego.Format
}

// Decode recovers a hidden message from the image held by data.
func (s *Service) Decode(ctx context.Context, data []byte, opts DecodeOptions) (stego.DecodedMessage, error) {
	if len(data) > s.limits.MaxDecodeBytes {
		s.log.Warn().Int("bytes", len(data)).Msg("decode input rejected by size guard")
		return stego.DecodedMessage{}, stego.NewError(stego.KindPayloadTooLarge, "image exceeds %dMB limit", s.limits.MaxDecodeBytes>>20)
	}

	if opts.UseAI {
		return s.reveal(ctx, data, opts.MimeType)
	}

	pixels, info, err := imageio.Read(data)
	if err != nil {
		return stego.DecodedMessage{}, err
	}

	msg, err := stego.DecodeWith(pixels, s.limits, opts.Formats...)
	if err != nil {
		s.log.Debug().Str("input_format", string(info.Format)).Msg("no payload detected")
		return stego.DecodedMessage{}, err
	}

	s.log.Info().Str("format", string(msg.Format)).Msg("decoded message using format")
	return msg, nil
}

func (s *Service) reveal(ctx context.Context, data []byte, mimeType string) (stego.DecodedMessage, error) {
	ctx, cancel := s.aiContext(ctx)
	defer cancel()

	text, err := s.enhancer.Reveal(ctx, data, mimeType)
	switch {
	case err == nil:
		s.log.Info().Str("format", string(FormatAI)).Msg("decoded message using format")
		return stego.DecodedMessage{Text: text, Format: FormatAI}, nil
	case errors.Is(err, enhance.ErrNoMessage):
		return stego.DecodedMessage{}, stego.NewError(stego.KindNoPayloadDetected, "no hidden message detected")
	default:
		s.log.Error().Err(err).Msg("ai decode failed")
		return stego.DecodedMessage{}, stego.WrapError(stego.KindNoPayloadDetected, err, "ai decode failed")
	}
}

// Capacity describes how much text an image can carry.
type Capacity struct {
	Info     imageio.Info
	Pixels   int
	Bits     int
	MaxBytes int
}

// Inspect reads container metadata and reports carrying capacity.
func (s *Service) Inspect(data []byte) (Capacity, error) {
	if len(data) > s.limits.MaxDecodeBytes {
		return Capacity{}, stego.NewError(stego.KindPayloadTooLarge, "image exceeds %dMB limit", s.limits.MaxDecodeBytes>>20)
	}
	info, err := imageio.Metadata(data)
	if err != nil {
		return Capacity{}, err
	}
	return Capacity{
		Info:     info,
		Pixels:   info.Width * info.Height,
		Bits:     stego.Capacity(info.Width, info.Height),
		MaxBytes: stego.MaxMessageBytes(info.Width, info.Height),
	}, nil
}
