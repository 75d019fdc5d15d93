package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/bridgepsci/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bridgepsci",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bridgepsci v%s\n", version.Version)
		fmt.Printf("Built %s from %s\n", version.BuildTime, version.GitCommit)
		fmt.Printf("Workbook template layout %s\n", version.TemplateVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
