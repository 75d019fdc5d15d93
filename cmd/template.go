package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/bridgepsci/internal/cases"
	"github.com/alexiusacademia/bridgepsci/internal/params"
	"github.com/alexiusacademia/bridgepsci/internal/version"
	"github.com/alexiusacademia/bridgepsci/internal/workbook"
)

var templateOut string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an input workbook filled with the defaults",
	Long: `Write a multi-sheet input workbook holding every parameter with its
default value, unit, type and description, the base bearing table and the
built-in cases.

Example:
  bridgepsci template --out bridge_input_template_v3.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := workbook.CreateTemplate(templateOut, params.Defaults(), cases.Builtin()); err != nil {
			return err
		}
		abs, err := filepath.Abs(templateOut)
		if err != nil {
			abs = templateOut
		}
		fmt.Printf("Wrote %s template: %s\n", version.TemplateVersion, abs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().StringVarP(&templateOut, "out", "o", "bridge_input_template_v3.xlsx", "Output .xlsx path")
}
