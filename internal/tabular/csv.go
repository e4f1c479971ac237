package tabular

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schools-cli/internal/model"
)

// ReadCSV parses records from r. The first row is the header; both the
// current layout and the legacy name,link,venue,date,application_deadline
// layout are accepted. An empty input yields no records.
func ReadCSV(r io.Reader) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	first, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "tabular: read csv header")
	}
	h, err := parseHeader(first)
	if err != nil {
		return nil, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "tabular: read csv row")
	}
	return toRecords(h, rows), nil
}

// WriteCSV writes the header followed by one row per record.
func WriteCSV(w io.Writer, recs []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "tabular: write csv header")
	}
	for _, r := range recs {
		if err := cw.Write(Row(r)); err != nil {
			return eris.Wrapf(err, "tabular: write csv row %s", r.Link)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "tabular: flush csv")
	}
	return nil
}
