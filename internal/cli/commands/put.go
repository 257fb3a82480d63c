package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/quicksight-tools/qssync/internal/bundle"
	"github.com/quicksight-tools/qssync/internal/importer"
)

// NewPutCommand creates the put command.
func NewPutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <dump-file>",
		Short: "Import a dump file into the target account",
		Long: `Import the assets from a dump file produced by "get" into the account
behind the selected profile. Assets are recreated in dependency order (data
sources, security datasets, analysis datasets, analysis) with the import
suffix appended to every name and identifier, and a dashboard is published
from the imported analysis.

Already-existing assets are updated in place. A failed step aborts the
import; assets created before the failure are left in the target account.`,
		Example: `  # Import a dump into the staging account
  qssync put 4f1cbe66-....json -p staging`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(cmd, args[0])
		},
	}

	return cmd
}

func runPut(cmd *cobra.Command, dumpFile string) error {
	dump, err := bundle.Read(dumpFile)
	if err != nil {
		return err
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Importing QuickSight assets from %s to %s...\n",
		dumpFile, cmdCtx.Session.AccountID)

	imp := &importer.Importer{
		API:             cmdCtx.API,
		AccountID:       cmdCtx.Session.AccountID,
		Suffix:          cmdCtx.Cfg.ImportSuffix,
		DashboardGrants: cmdCtx.Cfg.Dashboard.Permissions,
		Logger:          cmdCtx.Logger,
	}

	result, err := imp.Run(cmd.Context(), dump)
	if err != nil {
		return err
	}

	renderResult(cmd.OutOrStdout(), result)
	return nil
}

// renderResult prints every imported object with its kind and resulting ARN,
// plus the published dashboard version.
func renderResult(w io.Writer, result *importer.Result) {
	fmt.Fprintln(w, "Imported:")

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Name", "ARN"})

	for _, ds := range result.DataSources {
		t.AppendRow(table.Row{"datasource", ds.Name, ds.ARN})
	}
	for _, ds := range result.SecurityDatasets {
		t.AppendRow(table.Row{"security dataset", ds.Name, ds.ARN})
	}
	for _, ds := range result.AnalysisDatasets {
		t.AppendRow(table.Row{"analysis dataset", ds.Name, ds.ARN})
	}
	t.AppendRow(table.Row{"analysis", result.Analysis.Name, result.Analysis.ARN})
	t.AppendRow(table.Row{"dashboard", result.Dashboard.ID, fmt.Sprintf("%s v%d", result.Dashboard.ARN, result.Dashboard.Version)})
	t.Render()

	fmt.Fprintf(w, "Published dashboard %s.v%d... %d\n",
		result.Dashboard.ID, result.Dashboard.Version, result.Dashboard.PublishStatus)
	fmt.Fprintln(w, "Done.")
}
