package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/bridgepsci/internal/catalog"
	"github.com/alexiusacademia/bridgepsci/internal/config"
	"github.com/alexiusacademia/bridgepsci/internal/opensees"
	"github.com/alexiusacademia/bridgepsci/internal/pipeline"
	"github.com/alexiusacademia/bridgepsci/internal/results"
	"github.com/alexiusacademia/bridgepsci/internal/version"
)

var (
	configFile string
	envFile    string
	quiet      bool

	appConfig *config.Config
	logger    *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bridgepsci",
	Short: "PSCI girder bridge modal and moving-load analysis",
	Long: `bridgepsci - PSCI girder bridge analysis pipeline

Builds an OpenSees model of a prestressed concrete I-girder bridge from a
spreadsheet (or the built-in defaults), applies the overrides of a named
case, and runs:
  - a static check load and eigen analysis (natural frequencies)
  - a moving-truck transient analysis (midspan accelerations)

Results are written per case as JSON and CSV files. Settings are read from
bridgepsci.toml, .env and BRIDGEPSCI_* environment variables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, envFile)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		appConfig = cfg
		logger = log.New(os.Stderr, "bridgepsci: ", log.LstdFlags)
		if quiet {
			logger.SetOutput(io.Discard)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   bridgepsci v%-44s║\n", version.Version)
		fmt.Println("  ║   PSCI Girder Bridge Analysis                             ║")
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  Commands:")
		fmt.Println("    • run       modal and moving-load analysis from a workbook")
		fmt.Println("    • modal     static check and natural frequencies")
		fmt.Println("    • moving    moving-truck transient analysis")
		fmt.Println("    • template  write an input workbook")
		fmt.Println("    • cases     list analysis cases")
		fmt.Println("    • params    show resolved parameters")
		fmt.Println("    • runs      list catalogued runs")
		fmt.Println()
		fmt.Println("  Use 'bridgepsci --help' to see all flags.")
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./"+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file (default ./.env)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress logging")
}

// newPipeline wires the engine, result writer and optional catalog. The
// returned function closes the catalog.
func newPipeline(outDir, catalogPath string, plot bool) (*pipeline.Pipeline, func(), error) {
	timeout, err := appConfig.EngineTimeout()
	if err != nil {
		return nil, nil, err
	}
	if outDir == "" {
		outDir = appConfig.Output.Dir
	}
	if catalogPath == "" {
		catalogPath = appConfig.Catalog.Path
	}

	p := &pipeline.Pipeline{
		Engine: &opensees.Runner{
			Binary:  appConfig.Engine.Binary,
			WorkDir: appConfig.Engine.WorkDir,
			Keep:    appConfig.Engine.KeepWorkDir,
			Logger:  logger,
		},
		Timeout: timeout,
		Writer: &results.Writer{
			Dir:     outDir,
			Plot:    plot || appConfig.Output.Plot,
			PlotExt: appConfig.PlotExt(),
		},
		Logger: logger,
	}
	closeFn := func() {}
	if catalogPath != "" {
		cat, err := catalog.Open(catalogPath)
		if err != nil {
			return nil, nil, err
		}
		p.Catalog = cat
		closeFn = func() {
			if err := cat.Close(); err != nil {
				logger.Printf("close catalog: %v", err)
			}
		}
	}
	return p, closeFn, nil
}
