// Package generation executes composed requests against the external
// generation provider, serialized through the admission gate, and returns
// either a raw success payload or a classified error.
package generation

import (
	"context"

	"github.com/adalundhe/forgecraft/core/errors"
)

// ImageOptions configures a text-to-image call.
type ImageOptions struct {
	Count       int
	MIMEType    string
	AspectRatio string
}

// TransformOptions configures an image-conditioned call.
type TransformOptions struct {
	ResponseModalities []string
}

// Part is one ordered element of a transform request: either raw image
// bytes or instruction text.
type Part struct {
	Text      string
	ImageData []byte
	MIMEType  string
}

// TransformResult is the raw outcome of a transform call. A non-stop
// finish reason means the provider ended generation without usable output.
type TransformResult struct {
	ImageBytes   []byte
	ImageMIME    string
	Text         string
	FinishReason string
	SafetyFlags  []errors.SafetyFlag
}

// Provider is the external generation service. Implementations perform
// the network call only; classification and gating happen in the Client.
type Provider interface {
	CreateImage(ctx context.Context, prompt string, opts ImageOptions) ([][]byte, error)
	TransformImage(ctx context.Context, parts []Part, opts TransformOptions) (*TransformResult, error)
	GenerateStructured(ctx context.Context, prompt string) (string, error)
}
