package cmd

import (
	"fmt"
	"os"

	"github.com/adalundhe/forgecraft/core/archive"
	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/adalundhe/forgecraft/core/errors"
	"github.com/spf13/cobra"
)

var (
	exportPlanID    int64
	exportHeroID    int64
	exportVillainID int64
	exportItemID    int64
	exportOutput    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a design document and bound assets as a project archive",
	Long: `Export a stored game plan plus one asset per slot (hero, villain,
item) as an engine-importable zip archive. Exports are deterministic:
the same plan and bindings always produce the same bytes.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Int64Var(&exportPlanID, "plan", 0, "game-plan asset id")
	exportCmd.Flags().Int64Var(&exportHeroID, "hero", 0, "character asset id for the hero slot")
	exportCmd.Flags().Int64Var(&exportVillainID, "villain", 0, "monster asset id for the villain slot")
	exportCmd.Flags().Int64Var(&exportItemID, "item", 0, "item asset id for the item slot")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output zip path (default from config)")
	_ = exportCmd.MarkFlagRequired("plan")
	_ = exportCmd.MarkFlagRequired("hero")
	_ = exportCmd.MarkFlagRequired("villain")
	_ = exportCmd.MarkFlagRequired("item")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
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

	plan, err := st.GetByID(ctx, exportPlanID)
	if err != nil {
		return err
	}
	if plan.Category != assets.CategoryGamePlan {
		return errors.Newf(errors.KindInvalidInput, "asset #%d is a %q, not a game plan", plan.ID, plan.Category)
	}
	blueprint, err := assets.ParseBlueprint(plan.Payload)
	if err != nil {
		return errors.Wrap(errors.KindInvalidInput, "stored game plan is unreadable", err)
	}

	bindings := make(map[archive.Slot]assets.Record, 3)
	for slot, id := range map[archive.Slot]int64{
		archive.SlotHero:    exportHeroID,
		archive.SlotVillain: exportVillainID,
		archive.SlotItem:    exportItemID,
	} {
		rec, err := st.GetByID(ctx, id)
		if err != nil {
			return err
		}
		bindings[slot] = rec
	}

	output := exportOutput
	if output == "" {
		output = manager.Current().Export.OutputName
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}

	if err := archive.NewAssembler(st).Build(out, blueprint, bindings); err != nil {
		// Leave no partial archive behind.
		out.Close()
		os.Remove(output)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}

	logger.Info("archive exported", "path", output, "plan", plan.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", output)
	return nil
}
