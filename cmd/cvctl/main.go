// Package main provides the entry point for cvctl, a terminal editor for CVs stored
// on the remote CV service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cvctl",
	Short: "Create, edit and generate CVs",
	Long: `cvctl edits CV documents stored on the CV service. Edits are saved automatically
a few seconds after you stop typing, and finished CVs can be rendered to PDF.

Configuration can be loaded from a JSON file using --config, from CVCTL_* environment
variables (a .env file is read if present) and from flags. Flags win over the
environment, which wins over the config file.`,
	SilenceUsage: true,
}

var (
	flagConfigPath string
	flagAPIURL     string
	flagLogMode    string
	flagOutputDir  string
	flagYes        bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config.json file")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "CV service base URL (defaults to CVCTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagLogMode, "log-mode", "", "Log mode: dev, prod or quiet (defaults to CVCTL_LOG_MODE)")
	rootCmd.PersistentFlags().StringVarP(&flagOutputDir, "output-dir", "o", "", "Directory generated PDFs are written to")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Answer yes to every confirmation")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
