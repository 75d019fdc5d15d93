package cmd

import (
	"github.com/spf13/cobra"

	"github.com/alexiusacademia/bridgepsci/internal/pipeline"
)

var (
	modalCase  string
	modalCases string
	modalOut   string
)

var modalCmd = &cobra.Command{
	Use:   "modal",
	Short: "Static check and natural frequencies on the built-in defaults",
	Long: `Build the model from the built-in parameters and a case, apply the
static check load split over two girder midspans, and extract the
eigenvalues. Frequencies are f = √λ / 2π.

Built-in cases: baseline, case1, case2, case5, case6, case9.

Examples:
  bridgepsci modal
  bridgepsci modal --case case6
  bridgepsci modal --cases studies.yaml --case soft-bearings`,
	RunE: runModal,
}

func init() {
	rootCmd.AddCommand(modalCmd)

	modalCmd.Flags().StringVarP(&modalCase, "case", "c", "baseline", "Case label")
	modalCmd.Flags().StringVar(&modalCases, "cases", "", "YAML case table")
	modalCmd.Flags().StringVarP(&modalOut, "out", "o", "", "Output directory (default from config)")
}

func runModal(cmd *cobra.Command, args []string) error {
	in, err := pipeline.LoadInputs("", modalCases)
	if err != nil {
		return err
	}
	p, done, err := newPipeline(modalOut, "", false)
	if err != nil {
		return err
	}
	defer done()

	rep, err := p.Run(cmd.Context(), in, pipeline.Options{Case: modalCase, Modal: true})
	if err != nil {
		return err
	}
	printReport(rep)
	return nil
}
