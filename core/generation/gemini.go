package generation

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/adalundhe/forgecraft/core/errors"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider over the Gemini API. One client, one
// API key: the reason all traffic goes through the gate.
type GeminiProvider struct {
	client     *genai.Client
	textModel  string
	imageModel string
	editModel  string
}

// GeminiConfig names the models used for each call shape.
type GeminiConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string
	EditModel  string
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiProvider{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		editModel:  cfg.EditModel,
	}, nil
}

func (p *GeminiProvider) CreateImage(ctx context.Context, prompt string, opts ImageOptions) ([][]byte, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: int32(opts.Count),
		OutputMIMEType: opts.MIMEType,
	}
	if opts.AspectRatio != "" {
		config.AspectRatio = opts.AspectRatio
	}

	resp, err := p.client.Models.GenerateImages(ctx, p.imageModel, prompt, config)
	if err != nil {
		return nil, wrapAPIError(err)
	}

	out := make([][]byte, 0, len(resp.GeneratedImages))
	for _, img := range resp.GeneratedImages {
		if img.Image != nil && len(img.Image.ImageBytes) > 0 {
			out = append(out, img.Image.ImageBytes)
		}
	}
	return out, nil
}

func (p *GeminiProvider) TransformImage(ctx context.Context, parts []Part, opts TransformOptions) (*TransformResult, error) {
	genParts := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.ImageData != nil {
			genParts = append(genParts, genai.NewPartFromBytes(part.ImageData, part.MIMEType))
			continue
		}
		genParts = append(genParts, genai.NewPartFromText(part.Text))
	}
	contents := []*genai.Content{genai.NewContentFromParts(genParts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseModalities: opts.ResponseModalities,
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.editModel, contents, config)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	return decodeTransformResponse(resp), nil
}

func (p *GeminiProvider) GenerateStructured(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.textModel, genai.Text(prompt), config)
	if err != nil {
		return "", wrapAPIError(err)
	}
	return resp.Text(), nil
}

func decodeTransformResponse(resp *genai.GenerateContentResponse) *TransformResult {
	result := &TransformResult{}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil {
			result.FinishReason = string(resp.PromptFeedback.BlockReason)
			result.SafetyFlags = toSafetyFlags(resp.PromptFeedback.SafetyRatings)
		}
		return result
	}

	cand := resp.Candidates[0]
	result.FinishReason = string(cand.FinishReason)
	result.SafetyFlags = toSafetyFlags(cand.SafetyRatings)

	if cand.Content == nil {
		return result
	}
	for _, part := range cand.Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 && result.ImageBytes == nil {
			result.ImageBytes = part.InlineData.Data
			result.ImageMIME = part.InlineData.MIMEType
		}
		if part.Text != "" {
			result.Text += part.Text
		}
	}
	return result
}

func toSafetyFlags(ratings []*genai.SafetyRating) []errors.SafetyFlag {
	if len(ratings) == 0 {
		return nil
	}
	flags := make([]errors.SafetyFlag, 0, len(ratings))
	for _, r := range ratings {
		severity := string(r.Severity)
		if severity == "" {
			severity = string(r.Probability)
		}
		flags = append(flags, errors.SafetyFlag{
			Category: string(r.Category),
			Severity: severity,
		})
	}
	return flags
}

// wrapAPIError pre-classifies provider error envelopes so the numeric
// status code survives; everything else goes to the classifier as-is.
func wrapAPIError(err error) error {
	var apiErr genai.APIError
	if goerrors.As(err, &apiErr) {
		return errors.ClassifyStatus(apiErr.Code, apiErr.Message, err)
	}
	return err
}
