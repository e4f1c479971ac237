package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/schools-cli/internal/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show stored school records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		recs, err := st.List(ctx)
		if err != nil {
			return eris.Wrap(err, "list records")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if recs == nil {
				recs = []model.Record{}
			}
			return enc.Encode(recs)
		}

		if len(recs) == 0 {
			fmt.Fprintln(os.Stderr, "No records found.")
			return nil
		}
		formatRecords(os.Stdout, recs)
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("json", false, "print records as JSON")
	rootCmd.AddCommand(listCmd)
}

// formatRecords writes a tabular list of records to out. Unknown values
// print as "-".
func formatRecords(out io.Writer, recs []model.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVENUE\tSTART\tEND\tDEADLINE\tSTATUS")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t---\t--------\t------")
	for _, r := range recs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(r.Name, 40),
			truncate(orDash(r.Venue), 40),
			orDash(r.StartDate),
			orDash(r.EndDate),
			orDash(r.ApplicationDeadline),
			orDash(r.RegistrationStatus),
		)
	}
	_ = w.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
