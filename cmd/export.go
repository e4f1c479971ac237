package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/schools-cli/internal/model"
	"github.com/sells-group/schools-cli/internal/tabular"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored records as CSV, XLSX or Markdown",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if exportFormat == "xlsx" && (exportOut == "" || exportOut == "-") {
			return eris.New("export: xlsx output needs --out")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		recs, err := st.List(ctx)
		if err != nil {
			return eris.Wrap(err, "export: list records")
		}

		if exportOut == "" || exportOut == "-" {
			return writeExport(os.Stdout, exportFormat, recs)
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", exportOut)
		}
		if err := writeExport(f, exportFormat, recs); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "export: close %s", exportOut)
		}

		zap.L().Info("export complete",
			zap.Int("records", len(recs)),
			zap.String("format", exportFormat),
			zap.String("out", exportOut),
		)
		return nil
	},
}

// writeExport renders recs to w in the named format.
func writeExport(w io.Writer, format string, recs []model.Record) error {
	switch format {
	case "csv":
		return tabular.WriteCSV(w, recs)
	case "xlsx":
		return tabular.WriteXLSX(w, recs)
	case "md", "markdown":
		return tabular.WriteMarkdown(w, recs)
	default:
		return eris.Errorf("export: unknown format %q (want csv, xlsx or md)", format)
	}
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv, xlsx or md")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
