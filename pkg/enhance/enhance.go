// Package enhance is the boundary to an optional external image model that
// can retouch carriers before encoding or try to read a message directly.
package enhance

import (
	"context"
	"errors"
)

var (
	// ErrDisabled is returned when no external service is configured.
	ErrDisabled = errors.New("ai enhancement disabled")
	// ErrNoMessage means the service looked and found nothing.
	ErrNoMessage = errors.New("no hidden message found by ai decoder")
)

// NoMessageSentinel is the answer the decode prompt asks for when the model
// finds nothing.
const NoMessageSentinel = "NO_MESSAGE"

// Enhancer is implemented by external image services.
type Enhancer interface {
	// Enhance returns a retouched copy of image that still depicts the same
	// content. message is available to the default prompt; prompt overrides it.
	Enhance(ctx context.Context, image []byte, message, prompt string) ([]byte, error)
	// Reveal asks the service for a hidden message in image.
	Reveal(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Disabled is the Enhancer used when AI support is off.
type Disabled struct{}

func (Disabled) Enhance(_ context.Context, image []byte, _, _ string) ([]byte, error) {
	return image, nil
}

func (Disabled) Reveal(context.Context, []byte, string) (string, error) {
	return "", ErrDisabled
}
