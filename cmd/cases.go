package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/bridgepsci/internal/params"
	"github.com/alexiusacademia/bridgepsci/internal/pipeline"
)

var (
	casesExcel string
	casesFile  string
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the analysis cases and their overrides",
	Long: `List every known case label with the override rows applied to it, in
the order they are applied. Without --excel or --cases the built-in cases
are listed.

Examples:
  bridgepsci cases
  bridgepsci cases --excel bridge.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := pipeline.LoadInputs(casesExcel, casesFile)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Printf("CASES (%s):\n", in.Source)
		fmt.Println("───────────────────────────────────────────────────────────────")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  CASE\tKEY\tVALUE\tDESCRIPTION")
		for _, label := range in.Cases.Labels() {
			rows := in.Cases.RowsFor(label)
			if len(rows) == 0 {
				fmt.Fprintf(w, "  %s\t-\t-\t%s\n", label, "defaults")
				continue
			}
			for _, r := range rows {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", label, r.Key, params.Format(r.Value), r.Description)
			}
		}
		w.Flush()
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(casesCmd)

	casesCmd.Flags().StringVarP(&casesExcel, "excel", "x", "", "Input workbook (.xlsx)")
	casesCmd.Flags().StringVar(&casesFile, "cases", "", "YAML case table")
}
