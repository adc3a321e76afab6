package cmd

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/adalundhe/forgecraft/core/composer"
	"github.com/adalundhe/forgecraft/core/errors"
	"github.com/adalundhe/forgecraft/core/gate"
	"github.com/spf13/cobra"
)

var blueprintCmd = &cobra.Command{
	Use:   "blueprint <idea...>",
	Short: "Generate a structured game design document",
	Long: `Generate a complete design document (story, actors, enemies, items,
maps, quests) from a game idea and store it as a game-plan asset. The
document is produced whole; regenerating replaces it with a new record.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBlueprint,
}

func init() {
	rootCmd.AddCommand(blueprintCmd)
}

func runBlueprint(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	idea := strings.Join(args, " ")

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

	desc, err := composer.Compose(assets.CategoryGamePlan, idea, nil)
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

	blueprint, err := assets.ParseBlueprint(result.Text)
	if err != nil {
		return errors.Wrap(errors.KindInvalidInput, "provider returned an unusable design document", err)
	}

	id, err := st.Add(ctx, assets.CategoryGamePlan, desc.PromptText, result.Text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "stored game plan #%d: %s\n", id, blueprint.Title)
	fmt.Fprintf(out, "  %s\n", blueprint.Story.Tagline)
	fmt.Fprintf(out, "  actors %d, enemies %d, items %d, maps %d, quests %d\n",
		len(blueprint.Actors), len(blueprint.Enemies), len(blueprint.Items),
		len(blueprint.Maps), len(blueprint.Quests))
	return nil
}
