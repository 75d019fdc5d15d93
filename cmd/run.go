package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/bridgepsci/internal/diagram"
	"github.com/alexiusacademia/bridgepsci/internal/pipeline"
	"github.com/alexiusacademia/bridgepsci/internal/results"
)

var (
	runExcel      string
	runCases      string
	runCase       string
	runOut        string
	runSkipModal  bool
	runSkipMoving bool
	runPlot       bool
	runCatalog    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run modal and moving-load analyses for one case",
	Long: `Load the parameters from a workbook (v3 multi-sheet or v2 Inputs
layout), apply the overrides of the chosen case and run the modal and
moving-load analyses. Files are written to <out>/<case>/ only when every
requested stage succeeded.

Examples:
  # Both stages for the baseline case
  bridgepsci run --excel bridge.xlsx

  # Softer bearings, moving load only, with a plot
  bridgepsci run --excel bridge.xlsx --case case2 --skip-modal --plot

  # Record the run in a catalog
  bridgepsci run --excel bridge.xlsx --case case5 --catalog runs.db`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runExcel, "excel", "x", "", "Input workbook (.xlsx) [required]")
	runCmd.Flags().StringVar(&runCases, "cases", "", "YAML case table replacing the workbook Cases sheet")
	runCmd.Flags().StringVarP(&runCase, "case", "c", "baseline", "Case label")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Output directory (default from config)")
	runCmd.Flags().BoolVar(&runSkipModal, "skip-modal", false, "Skip the modal analysis")
	runCmd.Flags().BoolVar(&runSkipMoving, "skip-moving", false, "Skip the moving-load analysis")
	runCmd.Flags().BoolVar(&runPlot, "plot", false, "Write the acceleration plot")
	runCmd.Flags().StringVar(&runCatalog, "catalog", "", "Run catalog database (default from config)")

	runCmd.MarkFlagRequired("excel")
}

func runRun(cmd *cobra.Command, args []string) error {
	in, err := pipeline.LoadInputs(runExcel, runCases)
	if err != nil {
		return err
	}
	p, done, err := newPipeline(runOut, runCatalog, runPlot)
	if err != nil {
		return err
	}
	defer done()

	rep, err := p.Run(cmd.Context(), in, pipeline.Options{
		Case:   runCase,
		Modal:  !runSkipModal,
		Moving: !runSkipMoving,
	})
	if err != nil {
		return err
	}
	printReport(rep)
	return nil
}

func printReport(rep *pipeline.Report) {
	r := rep.Run
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("     PSCI BRIDGE ANALYSIS - CASE %s\n", r.Case)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Run id:\t%s\n", r.ID)
	fmt.Fprintf(w, "  Source:\t%s\n", rep.Entry.Source)
	fmt.Fprintf(w, "  Girders:\t%d × %.0f mm\n", rep.Bridge.Config.Girders, rep.Bridge.Config.Length)
	fmt.Fprintf(w, "  Model nodes:\t%d\n", len(rep.Bridge.Nodes()))
	w.Flush()

	if m := r.Modal; m != nil {
		fmt.Println()
		fmt.Println("MODAL ANALYSIS:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Point load:\t%.0f N at nodes %d, %d\n", m.PointLoad, m.LoadNodes[0], m.LoadNodes[1])
		for i, l := range m.Eigenvalues {
			fmt.Fprintf(w, "  Mode %d:\tλ = %.6g\tf = %.4f Hz\n", i+1, l, m.Frequencies[i])
		}
		w.Flush()

		labels := make([]string, len(m.CheckNodes))
		for i, n := range m.CheckNodes {
			labels[i] = fmt.Sprintf("node %d", n)
		}
		fmt.Print(diagram.DrawBars("Static deflection (mm)", labels, m.Deflections, "%.3f"))
	}

	if mv := r.Moving; mv != nil {
		fmt.Println()
		fmt.Println("MOVING-LOAD ANALYSIS:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Rayleigh α_M:\t%.6g\n", mv.AlphaM)
		fmt.Fprintf(w, "  Rayleigh β_K:\t%.6g\n", mv.BetaK)
		fmt.Fprintf(w, "  Steps:\t%d × %.3g s\n", mv.Steps, mv.Dt)
		for _, tr := range mv.Traces {
			fmt.Fprintf(w, "  Girder %d midspan (node %d):\tpeak %.5f g\n", tr.Girder, tr.Node, results.PeakG(tr))
		}
		w.Flush()

		fmt.Println()
		fmt.Print(diagram.DrawGraph("midspan acceleration (g)", results.AccelSeries(mv.Traces), 72, 12))
	}

	fmt.Println()
	fmt.Print(diagram.DrawSummaryBox("Results in "+rep.Entry.OutputDir, rep.Paths))
	fmt.Println()
}
