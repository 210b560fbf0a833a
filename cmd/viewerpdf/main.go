// viewerpdf captures documents from a paginated web viewer into PDF files.
//
// Usage:
//
//	viewerpdf capture --config batch.yaml
//	viewerpdf assemble --dir temp_images/book --pages 40 --out book.pdf
//	viewerpdf info book.pdf
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "viewerpdf",
	Short:         "Capture paginated web viewer documents into PDF",
	Long:          "viewerpdf walks a web document viewer page by page, saves each page raster and assembles the pages into a single PDF sized page by page to the captured images.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
