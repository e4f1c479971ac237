package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/schools-cli/internal/model"
	"github.com/sells-group/schools-cli/internal/pipeline"
	"github.com/sells-group/schools-cli/internal/sources"
	"github.com/sells-group/schools-cli/internal/store"
)

var (
	crawlSource string
	crawlDryRun bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Fetch every source page and refresh its record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		all, err := sources.Default()
		if err != nil {
			return err
		}
		selected := sources.Filter(all, crawlSource)
		if len(selected) == 0 {
			return eris.Errorf("no source matches %q", crawlSource)
		}

		gen, err := initGenerator()
		if err != nil {
			return err
		}

		var st store.Store
		if !crawlDryRun {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		p := pipeline.New(initScraper(), gen, st, pipeline.Options{
			Delay:           time.Duration(cfg.Pipeline.DelaySecs * float64(time.Second)),
			DryRun:          crawlDryRun,
			MaxContentChars: cfg.Extract.MaxContentChars,
		})

		res, runErr := p.Run(ctx, selected)
		if res != nil {
			formatRunResult(os.Stdout, res)
		}
		if runErr != nil {
			return eris.Wrap(runErr, "crawl")
		}
		return nil
	},
}

func init() {
	crawlCmd.Flags().StringVar(&crawlSource, "source", "", "only crawl sources whose name or link contains this text")
	crawlCmd.Flags().BoolVar(&crawlDryRun, "dry-run", false, "extract without writing to the store")
	rootCmd.AddCommand(crawlCmd)
}

// formatRunResult writes a short run summary to out.
func formatRunResult(out io.Writer, res *model.RunResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", res.RunID)
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", res.Status)
	_, _ = fmt.Fprintf(w, "Duration:\t%s\n", res.Duration().Round(time.Second))
	_, _ = fmt.Fprintf(w, "Sources:\t%d\n", res.Sources)
	_, _ = fmt.Fprintf(w, "Fetched:\t%d\n", res.Fetched)
	_, _ = fmt.Fprintf(w, "Skipped:\t%d\n", res.Skipped)
	_, _ = fmt.Fprintf(w, "Model failures:\t%d\n", res.ModelFailures)
	_, _ = fmt.Fprintf(w, "Written:\t%d\n", res.Written)
	for _, link := range res.SkippedLinks {
		_, _ = fmt.Fprintf(w, "  skipped\t%s\n", link)
	}
	_ = w.Flush()
}
