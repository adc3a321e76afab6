package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/adalundhe/forgecraft/core/composer"
	"github.com/adalundhe/forgecraft/core/errors"
	"github.com/adalundhe/forgecraft/core/gate"
	"github.com/spf13/cobra"
)

var (
	generateRefs     []string
	generateFrom     int64
	generateHeadRef  string
	generatePoseRef  string
	generateClothRef string
)

var generateCmd = &cobra.Command{
	Use:   "generate <category> <description...>",
	Short: "Generate an asset and store it",
	Long: `Generate an asset of the given category from a free-text description.

Categories: ` + categoryList() + `

Reference images are attached in the order given and their order is
meaningful. For character synthesis, --head, --pose and --clothing bind
each image to the body aspect it governs; any subset may be omitted.
Use --from to adjust an existing stored asset instead of creating one
from scratch.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringArrayVar(&generateRefs, "ref", nil, "reference image file (repeatable, order preserved)")
	generateCmd.Flags().Int64Var(&generateFrom, "from", 0, "adjust the stored asset with this id")
	generateCmd.Flags().StringVar(&generateHeadRef, "head", "", "head reference image (character synthesis)")
	generateCmd.Flags().StringVar(&generatePoseRef, "pose", "", "pose reference image (character synthesis)")
	generateCmd.Flags().StringVar(&generateClothRef, "clothing", "", "clothing reference image (character synthesis)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	category := assets.Category(args[0])
	userText := strings.Join(args[1:], " ")

	manager, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(manager, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()

	desc, err := composeRequest(cmd, st, category, userText)
	if err != nil {
		return err
	}

	client, err := newGenerationClient(ctx, manager, logger)
	if err != nil {
		return err
	}

	result, err := client.Execute(ctx, desc)
	if stderrors.Is(err, gate.ErrBusy) {
		return fmt.Errorf("another generation is in flight, try again in a moment")
	}
	if err != nil {
		return describeFailure(err)
	}

	payload := result.DataURI
	if payload == "" {
		payload = result.Text
	}

	id, err := st.Add(ctx, desc.Category, desc.PromptText, payload)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "stored %s asset #%d\n", desc.Category, id)
	return nil
}

func composeRequest(cmd *cobra.Command, st recordGetter, category assets.Category, userText string) (*assets.RequestDescriptor, error) {
	if generateFrom > 0 {
		source, err := st.GetByID(cmd.Context(), generateFrom)
		if err != nil {
			return nil, err
		}
		return composer.ComposeAdjustment(source, userText)
	}

	if category == assets.CategoryCharacter && (generateHeadRef != "" || generatePoseRef != "" || generateClothRef != "") {
		refs := composer.SynthesisRefs{}
		var err error
		if refs.Head, err = readOptionalRef(generateHeadRef); err != nil {
			return nil, err
		}
		if refs.Pose, err = readOptionalRef(generatePoseRef); err != nil {
			return nil, err
		}
		if refs.Clothing, err = readOptionalRef(generateClothRef); err != nil {
			return nil, err
		}
		return composer.ComposeSynthesis(userText, refs)
	}

	refs := make([][]byte, 0, len(generateRefs))
	for _, path := range generateRefs {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read reference %s: %w", path, err)
		}
		refs = append(refs, data)
	}
	return composer.Compose(category, userText, refs)
}

func readOptionalRef(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference %s: %w", path, err)
	}
	return data, nil
}

type recordGetter interface {
	GetByID(ctx context.Context, id int64) (assets.Record, error)
}

func categoryList() string {
	names := make([]string, len(assets.AllCategories))
	for i, c := range assets.AllCategories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// describeFailure renders a classified failure for the terminal.
func describeFailure(err error) error {
	var pe *errors.PipelineError
	if !stderrors.As(err, &pe) {
		return err
	}
	switch pe.Kind {
	case errors.KindSafetyRejection:
		msg := "the provider declined to generate this content"
		if len(pe.SafetyFlags) > 0 {
			flags := make([]string, 0, len(pe.SafetyFlags))
			for _, f := range pe.SafetyFlags {
				flags = append(flags, fmt.Sprintf("%s (%s)", f.Category, f.Severity))
			}
			msg += ": " + strings.Join(flags, ", ")
		}
		return fmt.Errorf("%s", msg)
	case errors.KindRateLimited:
		return fmt.Errorf("the provider is rate limiting requests, wait before retrying")
	case errors.KindBillingRequired:
		return fmt.Errorf("image generation requires a billed provider account")
	case errors.KindNoOutputData:
		return fmt.Errorf("the provider returned no output, try rephrasing the description")
	default:
		return err
	}
}
