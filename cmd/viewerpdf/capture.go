package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	viewerpdf "github.com/porticus-lab/go-viewer-pdf"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture every document listed in a batch configuration",
	Long:  "Opens each configured document URL with the saved session cookies, captures its pages and writes one PDF per document.",
	RunE:  runCapture,
}

var captureConfigPath string

func init() {
	captureCmd.Flags().StringVarP(&captureConfigPath, "config", "c", "viewerpdf.yaml", "Batch configuration file (YAML)")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, _ []string) error {
	cfg, err := viewerpdf.LoadBatchConfig(captureConfigPath)
	if err != nil {
		return err
	}
	log := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opener, err := viewerpdf.NewBrowserOpener(cfg, log)
	if err != nil {
		return err
	}
	defer opener.Close()

	reports, runErr := viewerpdf.NewRunner(opener, cfg, log).Run(ctx)

	failed := 0
	out := cmd.OutOrStdout()
	for _, r := range reports {
		switch {
		case r.Document != nil:
			fmt.Fprintf(out, "%s: %d pages -> %s", r.URL, r.Document.PageCount(), r.Config.OutputPath)
			if n := len(r.Document.Skipped); n > 0 {
				fmt.Fprintf(out, " (%d missing)", n)
			}
			var navErr *viewerpdf.NavigationError
			if errors.As(r.Err, &navErr) {
				fmt.Fprintf(out, " (stopped after page %d)", navErr.Page)
			}
			fmt.Fprintln(out)
		default:
			failed++
			fmt.Fprintf(out, "%s: failed: %v\n", r.URL, r.Err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(reports))
	}
	return nil
}
