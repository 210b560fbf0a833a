package main

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.pdf>",
	Short: "Display page count and page dimensions of a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	f, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputFile, err)
	}
	defer f.Close()

	dims, err := api.PageDims(f, model.NewDefaultConfiguration())
	if err != nil {
		return fmt.Errorf("reading pages: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:    %s\n", inputFile)
	fmt.Fprintf(out, "Pages:   %d\n", len(dims))

	if len(dims) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Page dimensions:")
		for i, d := range dims {
			fmt.Fprintf(out, "  Page %d: %.0f x %.0f pt\n", i+1, d.Width, d.Height)
		}
	}
	return nil
}
