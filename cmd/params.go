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
	paramsExcel string
	paramsCases string
	paramsCase  string
	paramsKeys  []string
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show the resolved parameters of a case",
	Long: `Resolve a case (workbook or defaults, case overrides, derived section
properties and bearing stiffness) and print the resulting parameters.

Examples:
  bridgepsci params --case case2 --key Bearing_Stiffness
  bridgepsci params --excel bridge.xlsx --key yt3 --key Ix_t`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := pipeline.LoadInputs(paramsExcel, paramsCases)
		if err != nil {
			return err
		}
		s, err := in.Resolve(paramsCase)
		if err != nil {
			return err
		}
		for _, k := range in.Ignored {
			fmt.Fprintf(os.Stderr, "warning: derived key %s in %s ignored\n", k, in.Source)
		}
		if in.FallbackOnly(paramsCase) {
			fmt.Fprintf(os.Stderr, "warning: case %s has no overrides in %s\n", paramsCase, in.Source)
		}

		keys := paramsKeys
		if len(keys) == 0 {
			keys = s.Keys()
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tTYPE\tVALUE")
		for _, k := range keys {
			v, ok := s.Get(k)
			if !ok {
				return &params.MissingParameterError{Keys: []string{k}}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", k, params.TypeOf(v), params.Format(v))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)

	paramsCmd.Flags().StringVarP(&paramsExcel, "excel", "x", "", "Input workbook (.xlsx)")
	paramsCmd.Flags().StringVar(&paramsCases, "cases", "", "YAML case table")
	paramsCmd.Flags().StringVarP(&paramsCase, "case", "c", "baseline", "Case label")
	paramsCmd.Flags().StringArrayVarP(&paramsKeys, "key", "k", nil, "Parameter to show (repeatable; default all)")
}
