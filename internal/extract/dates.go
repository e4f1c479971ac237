package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const monthNames = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

// datePattern captures year, month and day from a free-form date. Group
// indexes are 1-based; month may be a name or a number.
type datePattern struct {
	name                    string
	re                      *regexp.Regexp
	yearGrp, monGrp, dayGrp int
}

// datePatterns are tried in order; the first match that is a real calendar
// date wins even if a later pattern would also match.
var datePatterns = []datePattern{
	{
		name:    "month_day_year",
		re:      regexp.MustCompile(`(?i)\b` + monthNames + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`),
		yearGrp: 3, monGrp: 1, dayGrp: 2,
	},
	{
		name:    "day_month_year",
		re:      regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`),
		yearGrp: 3, monGrp: 2, dayGrp: 1,
	},
	{
		name:    "year_month_day",
		re:      regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`),
		yearGrp: 1, monGrp: 2, dayGrp: 3,
	},
	{
		name:    "day_monthname_year",
		re:      regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthNames + `\.?,?\s+(\d{4})\b`),
		yearGrp: 3, monGrp: 2, dayGrp: 1,
	},
}

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// NormalizeDate returns s as YYYY-MM-DD. Strings already in that shape are
// returned unchanged. Otherwise the free-form patterns are tried in order.
// ok is false when nothing yields a valid calendar date.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if isoDateRe.MatchString(s) {
		return s, true
	}

	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(s, -1) {
			if d, ok := p.build(m); ok {
				return d, true
			}
		}
	}
	return "", false
}

func (p datePattern) build(m []string) (string, bool) {
	year, err := strconv.Atoi(m[p.yearGrp])
	if err != nil {
		return "", false
	}
	if len(m[p.yearGrp]) <= 2 {
		year += 2000
	}

	var month time.Month
	if n, err := strconv.Atoi(m[p.monGrp]); err == nil {
		month = time.Month(n)
	} else {
		name := strings.ToLower(m[p.monGrp])
		if len(name) < 3 {
			return "", false
		}
		month = monthByPrefix[name[:3]]
	}

	day, err := strconv.Atoi(m[p.dayGrp])
	if err != nil {
		return "", false
	}

	t, ok := calendarDate(year, month, day)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}

// calendarDate builds a date and rejects values time.Date would roll over,
// such as month 13 or February 30.
func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
