// Package composer turns a user intent plus an asset category into a
// provider request carrying that category's exact technical contract.
// Composition is pure: no network, no store access. Validation failures
// surface before the gate is ever touched.
package composer

import (
	"fmt"
	"strings"

	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/adalundhe/forgecraft/core/errors"
	"github.com/google/uuid"
)

// Compose builds a request descriptor for the given category. Reference
// images are optional for create-mode categories and required for
// transform-mode categories unless the category declares a text-only
// fallback. Reference order is preserved into the descriptor.
func Compose(category assets.Category, userText string, refs [][]byte) (*assets.RequestDescriptor, error) {
	def, ok := assets.Lookup(category)
	if !ok {
		return nil, errors.Newf(errors.KindInvalidInput, "unknown asset category %q", category)
	}
	if strings.TrimSpace(userText) == "" {
		return nil, errors.New(errors.KindInvalidInput, "empty prompt text")
	}
	for i, ref := range refs {
		if len(ref) == 0 {
			return nil, errors.Newf(errors.KindInvalidInput, "reference image %d is empty", i+1)
		}
	}

	// Any raster category accepts references; attaching one switches the
	// call shape to transform. A transform-only category with no reference
	// and no text-only default fails here, before the gate.
	mode := def.Mode
	if def.Shape == assets.ShapeRaster {
		switch {
		case len(refs) > 0:
			mode = assets.ModeTransformImage
		case def.Mode == assets.ModeTransformImage && !def.AllowCreateFallback:
			return nil, errors.Newf(errors.KindInvalidInput,
				"category %q requires at least one reference image", category)
		default:
			mode = assets.ModeCreateImage
		}
	}

	desc := &assets.RequestDescriptor{
		ID:              uuid.New().String(),
		Category:        category,
		Mode:            mode,
		ReferenceImages: refs,
		Contract:        def.Contract,
		Schema:          def.Schema,
	}

	switch def.Shape {
	case assets.ShapeDocument:
		desc.Mode = assets.ModeStructuredText
		desc.PromptText = structuredPrompt(category, userText, def.Schema)
	default:
		desc.PromptText = rasterPrompt(def, userText, len(refs))
	}
	return desc, nil
}

// SynthesisRefs carries the optional reference images for character
// synthesis. Role order is fixed: head, pose, clothing.
type SynthesisRefs struct {
	Head     []byte
	Pose     []byte
	Clothing []byte
}

func (r SynthesisRefs) empty() bool {
	return len(r.Head) == 0 && len(r.Pose) == 0 && len(r.Clothing) == 0
}

// ComposeSynthesis builds a character request combining up to three
// reference images. For each present reference the prompt states, in
// attachment order, which body aspect that image governs; absent aspects
// are invented from the description alone. With no references at all the
// request degrades to plain text-to-image composition.
func ComposeSynthesis(userText string, refs SynthesisRefs) (*assets.RequestDescriptor, error) {
	if refs.empty() {
		return Compose(assets.CategoryCharacter, userText, nil)
	}

	def, _ := assets.Lookup(assets.CategoryCharacter)

	roles := []struct {
		name string
		data []byte
	}{
		{"the head and face", refs.Head},
		{"the body pose", refs.Pose},
		{"the clothing and outfit", refs.Clothing},
	}

	var ordered [][]byte
	var b strings.Builder
	b.WriteString("Create one new game character by combining the attached reference images.\n")
	n := 0
	for _, role := range roles {
		if len(role.data) == 0 {
			fmt.Fprintf(&b, "No reference is attached for %s: invent it from the description below.\n", role.name)
			continue
		}
		n++
		ordered = append(ordered, role.data)
		fmt.Fprintf(&b, "Attached image %d governs %s of the character.\n", n, role.name)
	}
	b.WriteString("\nDescription: ")
	b.WriteString(strings.TrimSpace(userText))
	b.WriteString("\n\n")
	writeContract(&b, def.Contract, def.Subject)

	return &assets.RequestDescriptor{
		ID:              uuid.New().String(),
		Category:        assets.CategoryCharacter,
		Mode:            assets.ModeTransformImage,
		PromptText:      b.String(),
		ReferenceImages: ordered,
		Contract:        def.Contract,
	}, nil
}

// ComposeAdjustment builds a transform request that refines an existing
// raster record. The relationship to the source is recorded in the prompt
// text; the result is stored as a new record.
func ComposeAdjustment(rec assets.Record, instruction string) (*assets.RequestDescriptor, error) {
	def, ok := assets.Lookup(rec.Category)
	if !ok {
		return nil, errors.Newf(errors.KindInvalidInput, "unknown asset category %q", rec.Category)
	}
	if def.Shape != assets.ShapeRaster {
		return nil, errors.Newf(errors.KindInvalidInput,
			"category %q holds documents and cannot be adjusted as an image", rec.Category)
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, errors.New(errors.KindInvalidInput, "empty adjustment instruction")
	}

	_, data, err := assets.DecodeDataURI(rec.Payload)
	if err != nil {
		return nil, errors.Wrap(errors.KindInvalidInput, "stored payload is not a decodable image", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Adjust the attached image (adjusted from #%d). %s\n", rec.ID, strings.TrimSpace(instruction))
	b.WriteString("Keep everything not mentioned above unchanged.\n\n")
	writeContract(&b, def.Contract, def.Subject)

	return &assets.RequestDescriptor{
		ID:              uuid.New().String(),
		Category:        rec.Category,
		Mode:            assets.ModeTransformImage,
		PromptText:      b.String(),
		ReferenceImages: [][]byte{data},
		Contract:        def.Contract,
	}, nil
}

func rasterPrompt(def assets.Definition, userText string, refCount int) string {
	var b strings.Builder
	if refCount > 0 {
		fmt.Fprintf(&b, "Using the %d attached reference image(s) in order, create %s.\n", refCount, def.Subject)
	} else {
		fmt.Fprintf(&b, "Create %s.\n", def.Subject)
	}
	b.WriteString("Description: ")
	b.WriteString(strings.TrimSpace(userText))
	b.WriteString("\n\n")
	writeContract(&b, def.Contract, def.Subject)
	return b.String()
}

func structuredPrompt(category assets.Category, userText string, schema string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Design a %s for a role-playing game based on this idea: %s\n\n", categoryNoun(category), strings.TrimSpace(userText))
	b.WriteString(schema)
	b.WriteString("\nRespond with the JSON object only, no prose and no markdown fences.")
	return b.String()
}

func categoryNoun(category assets.Category) string {
	switch category {
	case assets.CategorySkill:
		return "skill"
	case assets.CategoryStats:
		return "character stat block"
	case assets.CategoryGamePlan:
		return "complete game plan"
	default:
		return string(category)
	}
}

// writeContract renders the category's technical contract as explicit
// instructions. The wording is fixed; user text never overrides it.
func writeContract(b *strings.Builder, c assets.OutputContract, subject string) {
	b.WriteString("Technical requirements:\n")
	switch {
	case c.Columns > 0 && c.Rows > 1:
		fmt.Fprintf(b, "- A %dx%d grid of %d frames, each frame exactly %dx%d pixels, total image %dx%d pixels.\n",
			c.Columns, c.Rows, c.Frames, c.FrameWidth, c.FrameHeight, c.Width, c.Height)
	case c.Frames > 1:
		fmt.Fprintf(b, "- Exactly %d frames arranged horizontally, each frame %dx%d pixels, total image %dx%d pixels.\n",
			c.Frames, c.FrameWidth, c.FrameHeight, c.Width, c.Height)
	case c.Width > 0 && c.Width == c.Height:
		fmt.Fprintf(b, "- A square image, exactly %dx%d pixels.\n", c.Width, c.Height)
	case c.Width > 0:
		fmt.Fprintf(b, "- Image exactly %dx%d pixels.\n", c.Width, c.Height)
	case c.FrameWidth > 0:
		fmt.Fprintf(b, "- Align everything to a strict %dx%d pixel tile grid.\n", c.FrameWidth, c.FrameHeight)
	}
	if c.AspectRatio != "" {
		fmt.Fprintf(b, "- Aspect ratio %s.\n", c.AspectRatio)
	}
	if c.Transparent {
		if c.FrameWidth > 0 && c.Width == 0 {
			b.WriteString("- Ground tiles fully opaque; overlay objects on a transparent background.\n")
		} else {
			b.WriteString("- Fully transparent background, no backdrop of any kind.\n")
		}
	} else {
		b.WriteString("- Opaque, fully painted composition edge to edge.\n")
	}
	if c.NoText {
		b.WriteString("- No text, watermarks, UI elements, or signatures anywhere in the image.\n")
	}
	if strings.Contains(subject, "facing left") {
		b.WriteString("- The subject faces left.\n")
	}
	if strings.Contains(subject, "frontal neutral pose") {
		b.WriteString("- Frontal view, neutral standing pose, arms at the sides.\n")
	}
}
