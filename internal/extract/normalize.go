package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/schools-cli/internal/model"
)

// nullTokens are strings the model uses to mean "unknown".
var nullTokens = map[string]bool{
	"n/a":     true,
	"na":      true,
	"null":    true,
	"none":    true,
	"unknown": true,
	"tbd":     true,
	"tba":     true,
}

// Normalize maps a parsed reply onto the extraction schema. It never fails:
// missing or unusable values become nil, extra keys are dropped, dates are
// coerced to YYYY-MM-DD, and the description is fit to exactly three slots.
func Normalize(parsed map[string]any) model.Fields {
	var f model.Fields
	if parsed == nil {
		return f
	}

	f.Venue = normalizeText(parsed[model.FieldVenue])
	f.StartDate = normalizeDateValue(parsed[model.FieldStartDate])
	f.EndDate = normalizeDateValue(parsed[model.FieldEndDate])
	f.ApplicationDeadline = normalizeDateValue(parsed[model.FieldApplicationDeadline])
	f.RegistrationStatus = normalizeStatus(parsed[model.FieldRegistrationStatus])
	f.Description = normalizeDescription(parsed[model.FieldDescription])
	return f
}

func normalizeText(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || nullTokens[strings.ToLower(s)] {
		return nil
	}
	return &s
}

func normalizeDateValue(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	d, ok := NormalizeDate(s)
	if !ok {
		return nil
	}
	return &d
}

func normalizeStatus(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case model.StatusOpen:
		st := model.StatusOpen
		return &st
	case model.StatusClosed:
		st := model.StatusClosed
		return &st
	default:
		return nil
	}
}

func normalizeDescription(v any) [model.DescriptionSlots]*string {
	var out [model.DescriptionSlots]*string

	var items []any
	switch d := v.(type) {
	case nil:
		return out
	case []any:
		items = d
	case []string:
		for _, s := range d {
			items = append(items, s)
		}
	default:
		items = []any{d}
	}

	for i := 0; i < len(items) && i < model.DescriptionSlots; i++ {
		out[i] = sentence(items[i])
	}
	return out
}

// sentence renders one description element as trimmed text, or nil.
func sentence(v any) *string {
	var s string
	switch e := v.(type) {
	case nil:
		return nil
	case string:
		s = e
	case float64:
		s = strconv.FormatFloat(e, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(e)
	default:
		b, err := json.Marshal(e)
		if err != nil {
			s = fmt.Sprint(e)
		} else {
			s = string(b)
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
