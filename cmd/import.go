package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/schools-cli/internal/model"
	"github.com/sells-group/schools-cli/internal/tabular"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load records from a CSV or XLSX file into the store",
	Long:  "Reads a tabular export (including the older name,link,venue,date,application_deadline layout) and upserts every row by link.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		recs, err := readImport(importFile)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.UpsertMany(ctx, recs)
		if err != nil {
			return eris.Wrap(err, "import: upsert records")
		}

		zap.L().Info("import complete",
			zap.Int("records", n),
			zap.String("file", importFile),
		)
		return nil
	},
}

// readImport decodes records from path, choosing the codec by extension.
func readImport(path string) ([]model.Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return tabular.ReadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "import: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return tabular.ReadCSV(f)
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to CSV or XLSX file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
