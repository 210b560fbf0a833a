package main

import (
	"fmt"

	viewerpdf "github.com/porticus-lab/go-viewer-pdf"
	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble captured page files into a PDF",
	Long:  "Reads page_1.png .. page_N.png from a directory and writes one PDF page per file found, each page sized to its image.",
	RunE:  runAssemble,
}

var (
	assembleDir   string
	assemblePages int
	assembleOut   string
)

func init() {
	assembleCmd.Flags().StringVarP(&assembleDir, "dir", "d", "", "Directory holding the page files (required)")
	assembleCmd.Flags().IntVarP(&assemblePages, "pages", "n", 0, "Expected number of pages (required)")
	assembleCmd.Flags().StringVarP(&assembleOut, "out", "o", "", "Output PDF path (required)")

	for _, name := range []string{"dir", "pages", "out"} {
		if err := assembleCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, _ []string) error {
	cfg := viewerpdf.DocumentConfig{
		TotalPages: assemblePages,
		TempDir:    assembleDir,
		OutputPath: assembleOut,
	}
	res, err := viewerpdf.NewAssembler(newLogger()).AssembleFile(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages", assembleOut, res.PageCount())
	if len(res.Skipped) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", missing %v", res.Skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
