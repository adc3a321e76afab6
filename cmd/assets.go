package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/adalundhe/forgecraft/core/assets"
	"github.com/spf13/cobra"
)

var listCategory string

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Inspect and manage stored assets",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assets, newest first",
	Args:  cobra.NoArgs,
	RunE:  runAssetsList,
}

var assetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored asset by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetsDelete,
}

func init() {
	assetsListCmd.Flags().StringVar(&listCategory, "category", "", "only list this category")
	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsDeleteCmd)
	rootCmd.AddCommand(assetsCmd)
}

func runAssetsList(cmd *cobra.Command, _ []string) error {
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
	var records []assets.Record
	if listCategory != "" {
		records, err = st.ListByCategory(ctx, assets.Category(listCategory))
	} else {
		records, err = st.ListAll(ctx)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no assets stored")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tCREATED\tPROMPT")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			rec.ID,
			rec.Category,
			time.Unix(rec.CreatedAt, 0).Format("2006-01-02 15:04"),
			truncate(rec.PromptText, 60),
		)
	}
	return tw.Flush()
}

func runAssetsDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

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

	if err := st.DeleteByID(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted asset #%d\n", id)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
