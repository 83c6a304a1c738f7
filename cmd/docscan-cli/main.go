package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vrsandeep/docscan/internal/core"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docscan-cli",
	Short: "Offline OCR and field extraction for transport documents",
	Long: `docscan-cli runs the docscan page pipeline without the server: it rasterizes
PDFs, runs OCR, classifies each page and extracts its fields, printing one
JSON line per page.`,
	Version:       core.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
