package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/schools-cli/internal/model"
	"github.com/sells-group/schools-cli/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the curated source pages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		all, err := sources.Default()
		if err != nil {
			return err
		}
		query, _ := cmd.Flags().GetString("filter")
		formatSources(os.Stdout, sources.Filter(all, query))
		return nil
	},
}

func init() {
	sourcesCmd.Flags().String("filter", "", "only show sources whose name or link contains this text")
	rootCmd.AddCommand(sourcesCmd)
}

// formatSources writes a tabular list of sources to out.
func formatSources(out io.Writer, srcs []model.Source) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tLINK")
	_, _ = fmt.Fprintln(w, "----\t----")
	for _, s := range srcs {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Link)
	}
	_ = w.Flush()
}
