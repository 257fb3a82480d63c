package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quicksight-tools/qssync/internal/bundle"
	"github.com/quicksight-tools/qssync/internal/export"
	"github.com/quicksight-tools/qssync/internal/qsapi"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var byName bool

	cmd := &cobra.Command{
		Use:   "get <analysis-id>",
		Short: "Export an analysis and its dependencies to a dump file",
		Long: `Export a QuickSight analysis together with every asset it depends on:
the datasets it declares, the row-level-security datasets those reference,
and all data sources any of them use. The result is one self-contained JSON
dump file that "put" can import into another account.`,
		Example: `  # Export an analysis from the dev profile into the current directory
  qssync get 4f1cbe66-... -p dev

  # Export into a specific directory
  qssync get 4f1cbe66-... -p prod -o dumps/

  # Look the analysis up by display name instead of ID
  qssync get "Sales overview" --by-name -p dev`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], byName)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output directory (default: output_dir from config)")
	cmd.Flags().BoolVar(&byName, "by-name", false, "Treat the argument as a display name and resolve it via search")

	return cmd
}

func runGet(cmd *cobra.Command, analysisID string, byName bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if byName {
		analysisID, err = resolveAnalysisByName(cmd, cmdCtx, analysisID)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exporting QuickSight assets for %s:analysis/%s...\n",
		cmdCtx.Session.AccountID, analysisID)

	exporter := &export.Exporter{
		API:       cmdCtx.API,
		AccountID: cmdCtx.Session.AccountID,
		Logger:    cmdCtx.Logger,
	}

	dump, err := exporter.Dump(ctx, analysisID)
	if err != nil {
		return err
	}

	outputDir := cmdCtx.Cfg.OutputDir
	if cmd.Flags().Changed("output") {
		outputDir, _ = cmd.Flags().GetString("output")
	}

	outputFile := filepath.Join(outputDir, analysisID+".json")
	if err := bundle.Write(outputFile, dump); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d analysis datasets,\n", len(dump.AnalysisDatasets))
	fmt.Fprintf(out, "      %d security datasets,\n", len(dump.SecurityDatasets))
	fmt.Fprintf(out, "  and %d data sources.\n", len(dump.DataSources))
	fmt.Fprintf(out, "Exported assets to %s\n", outputFile)
	fmt.Fprintln(out, "Done.")

	return nil
}

// resolveAnalysisByName finds exactly one analysis whose display name matches.
// Zero or multiple matches abort the export.
func resolveAnalysisByName(cmd *cobra.Command, cmdCtx *CommandContext, name string) (string, error) {
	filters := []qsapi.Document{{
		"Operator": "StringEquals",
		"Name":     "ANALYSIS_NAME",
		"Value":    name,
	}}

	id, err := qsapi.FindAssetID(cmd.Context(), cmdCtx.API, qsapi.OpSearchAnalyses,
		cmdCtx.Session.AccountID, filters, "AnalysisSummaryList", "AnalysisId")
	if err != nil {
		return "", err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Resolved %q to analysis %s\n", name, id)
	return id, nil
}
