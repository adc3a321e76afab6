package generation

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/adalundhe/forgecraft/core/errors"
	"github.com/adalundhe/forgecraft/core/gate"
)

const defaultImageMIME = "image/png"

// Result is a raw success payload: an image as a data URI, or the
// document text for structured mode.
type Result struct {
	DataURI string
	Text    string
}

// Client executes request descriptors against the provider. Every call
// holds the admission gate for its full duration; a busy gate surfaces as
// gate.ErrBusy, which callers treat as "try again later". Failures are
// always classified before they reach the caller. The client never writes
// the asset store; persisting a success is the caller's job.
type Client struct {
	provider Provider
	gate     *gate.Gate
	logger   *slog.Logger
}

func NewClient(provider Provider, g *gate.Gate, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{provider: provider, gate: g, logger: logger}
}

// Execute runs one composed request. The provider call may suspend for an
// unbounded duration; there is no timeout or cancellation policy here.
func (c *Client) Execute(ctx context.Context, desc *assets.RequestDescriptor) (*Result, error) {
	var result *Result
	err := c.gate.With(func() error {
		c.logger.Info("generation started",
			"request_id", desc.ID,
			"category", desc.Category,
			"mode", desc.Mode,
			"references", len(desc.ReferenceImages),
		)
		var err error
		result, err = c.execute(ctx, desc)
		if err != nil {
			c.logger.Warn("generation failed",
				"request_id", desc.ID,
				"kind", errors.KindOf(err).String(),
				"error", err,
			)
			return err
		}
		c.logger.Info("generation succeeded", "request_id", desc.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) execute(ctx context.Context, desc *assets.RequestDescriptor) (*Result, error) {
	switch desc.Mode {
	case assets.ModeCreateImage:
		return c.createImage(ctx, desc)
	case assets.ModeTransformImage:
		return c.transformImage(ctx, desc)
	case assets.ModeStructuredText:
		return c.generateStructured(ctx, desc)
	default:
		return nil, errors.Newf(errors.KindInvalidInput, "unknown request mode %q", desc.Mode)
	}
}

func (c *Client) createImage(ctx context.Context, desc *assets.RequestDescriptor) (*Result, error) {
	images, err := c.provider.CreateImage(ctx, desc.PromptText, ImageOptions{
		Count:       1,
		MIMEType:    defaultImageMIME,
		AspectRatio: desc.Contract.AspectRatio,
	})
	if err != nil {
		return nil, errors.Classify(err)
	}
	if len(images) == 0 {
		return nil, errors.New(errors.KindNoOutputData, "provider returned no images")
	}
	return &Result{DataURI: assets.EncodeDataURI(defaultImageMIME, images[0])}, nil
}

// transformImage sends reference images in their original role order
// followed by the instruction text.
func (c *Client) transformImage(ctx context.Context, desc *assets.RequestDescriptor) (*Result, error) {
	parts := make([]Part, 0, len(desc.ReferenceImages)+1)
	for _, ref := range desc.ReferenceImages {
		parts = append(parts, Part{ImageData: ref, MIMEType: defaultImageMIME})
	}
	parts = append(parts, Part{Text: desc.PromptText})

	resp, err := c.provider.TransformImage(ctx, parts, TransformOptions{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return nil, errors.Classify(err)
	}

	if stoppedAbnormally(resp.FinishReason) {
		return nil, errors.ClassifyFinish(resp.FinishReason, resp.SafetyFlags)
	}
	if len(resp.ImageBytes) == 0 {
		return nil, errors.New(errors.KindNoOutputData, "response contained no generated image")
	}

	mime := resp.ImageMIME
	if mime == "" {
		mime = defaultImageMIME
	}
	return &Result{DataURI: assets.EncodeDataURI(mime, resp.ImageBytes), Text: resp.Text}, nil
}

func (c *Client) generateStructured(ctx context.Context, desc *assets.RequestDescriptor) (*Result, error) {
	text, err := c.provider.GenerateStructured(ctx, desc.PromptText)
	if err != nil {
		return nil, errors.Classify(err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.KindNoOutputData, "response contained no text")
	}

	cleaned := stripFences(text)
	if !json.Valid([]byte(cleaned)) {
		return nil, errors.New(errors.KindInvalidInput, "structured response is not valid JSON")
	}
	return &Result{Text: cleaned}, nil
}

func stoppedAbnormally(reason string) bool {
	switch strings.ToUpper(reason) {
	case "", "STOP", "FINISH_REASON_UNSPECIFIED":
		return false
	default:
		return true
	}
}

// stripFences removes a markdown code fence the model sometimes wraps
// around JSON output despite the response MIME type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
