// Package tabular reads and writes school records as CSV, XLSX and Markdown
// tables.
package tabular

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/schools-cli/internal/extract"
	"github.com/sells-group/schools-cli/internal/model"
)

// Columns is the header written for every export.
var Columns = []string{
	"name",
	"link",
	"venue",
	"start_date",
	"end_date",
	"application_deadline",
	"registration_status",
	"description",
}

// legacyDateColumn is the single free-form date column of older exports. It
// is read into start_date when it parses as a date.
const legacyDateColumn = "date"

// Row renders a record in Columns order. Unknown values become "".
func Row(r model.Record) []string {
	return []string{
		r.Name,
		r.Link,
		model.Deref(r.Venue),
		model.Deref(r.StartDate),
		model.Deref(r.EndDate),
		model.Deref(r.ApplicationDeadline),
		model.Deref(r.RegistrationStatus),
		model.Deref(r.Description),
	}
}

// nullable maps a cell to a value pointer. Empty cells and "N/A" read as nil.
func nullable(cell string) *string {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "n/a") {
		return nil
	}
	return &cell
}

// header indexes column names. The first row must contain name and link.
type header map[string]int

func parseHeader(row []string) (header, error) {
	h := make(header, len(row))
	for i, c := range row {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	for _, required := range []string{"name", "link"} {
		if _, ok := h[required]; !ok {
			return nil, eris.Errorf("tabular: header missing %q column", required)
		}
	}
	return h, nil
}

func (h header) cell(row []string, col string) (string, bool) {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

func (h header) value(row []string, col string) *string {
	c, ok := h.cell(row, col)
	if !ok {
		return nil
	}
	return nullable(c)
}

// date reads a date cell as YYYY-MM-DD. Cells that do not parse as a single
// calendar date read as nil.
func (h header) date(row []string, col string) *string {
	v := h.value(row, col)
	if v == nil {
		return nil
	}
	d, ok := extract.NormalizeDate(*v)
	if !ok {
		zap.L().Debug("tabular: dropping unparseable date",
			zap.String("column", col),
			zap.String("value", *v),
		)
		return nil
	}
	return &d
}

// toRecords converts data rows under h. Rows without a link are skipped.
func toRecords(h header, rows [][]string) []model.Record {
	out := make([]model.Record, 0, len(rows))
	for i, row := range rows {
		link := model.Deref(h.value(row, "link"))
		if link == "" {
			zap.L().Warn("tabular: skipping row without link", zap.Int("row", i+2))
			continue
		}
		rec := model.Record{
			Name:                strings.TrimSpace(model.Deref(h.value(row, "name"))),
			Link:                link,
			Venue:               h.value(row, "venue"),
			StartDate:           h.date(row, "start_date"),
			EndDate:             h.date(row, "end_date"),
			ApplicationDeadline: h.date(row, "application_deadline"),
			RegistrationStatus:  h.value(row, "registration_status"),
			Description:         h.value(row, "description"),
		}
		if rec.StartDate == nil {
			rec.StartDate = h.date(row, legacyDateColumn)
		}
		out = append(out, rec)
	}
	return out
}
