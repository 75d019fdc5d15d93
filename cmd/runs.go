package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/bridgepsci/internal/cases"
	"github.com/alexiusacademia/bridgepsci/internal/catalog"
	"github.com/alexiusacademia/bridgepsci/internal/config"
)

var (
	runsCatalog string
	runsCase    string
	runsLimit   int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs recorded in the catalog",
	Long: `List completed runs from the SQLite run catalog, newest first.

Examples:
  bridgepsci runs --catalog runs.db
  bridgepsci runs --catalog runs.db --case case2 --limit 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := runsCatalog
		if path == "" {
			path = appConfig.Catalog.Path
		}
		if path == "" {
			return errors.New("no catalog: pass --catalog, set catalog.path or " + config.EnvCatalog)
		}
		cat, err := catalog.Open(path)
		if err != nil {
			return err
		}
		defer cat.Close()

		entries, err := cat.List(cmd.Context(), cases.Normalize(runsCase), runsLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tCASE\tSTAGES\tF1 (Hz)\tPEAK (g)\tFILES\tOUTPUT\tID")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				e.Started.Local().Format("2006-01-02 15:04:05"), e.Case, strings.Join(e.Stages, "+"),
				optional(e.F1, "%.4f"), optional(e.PeakAccel, "%.5f"), e.Files, e.OutputDir, e.ID)
		}
		return w.Flush()
	},
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().StringVar(&runsCatalog, "catalog", "", "Run catalog database (default from config)")
	runsCmd.Flags().StringVarP(&runsCase, "case", "c", "", "Only runs of this case")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 0, "Show at most n runs")
}
