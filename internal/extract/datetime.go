package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the canonical UTC timestamp form.
const TimestampLayout = "2006-01-02T15:04:05Z"

// now is replaced in tests.
var now = time.Now

// Accepted inputs, most specific first. Zone-less values are taken as UTC.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizeDatetime converts an ISO-8601 timestamp into TimestampLayout in
// UTC. Empty input is returned unchanged.
func NormalizeDatetime(ts string) (string, error) {
	if ts == "" {
		return ts, nil
	}
	value := strings.TrimSpace(ts)
	var lastErr error
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC().Format(TimestampLayout), nil
		}
		lastErr = err
	}
	return "", &DateParseError{Value: ts, Cause: lastErr}
}

var (
	svnYear     = regexp.MustCompile(`^\$Date: (?P<year>\d{4})`)
	svnDate     = regexp.MustCompile(`^\$Date: (?P<date>\d{4}-\d{2}-\d{2}) (?P<time>\d{2}:\d{2}:\d{2})`)
	svnEmbedded = regexp.MustCompile(`^(?P<start>.*)\$Date: (?P<year>\d{4}).*\$(?P<end>.*)$`)
)

// NormalizeDatestring turns a date-ish value into an ISO string.
//
// Supported inputs are time values, 4-digit integer years, the magic tokens
// $date$, $datetime$ and $year$ (also embedded), and revision-control $Date
// markers. mode "year" reduces $Date markers to the year. Anything else is
// returned as a string unchanged.
func NormalizeDatestring(value any, mode string) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case time.Time:
		var out string
		if v.Year() < 1900 {
			out = fmt.Sprintf("%02d.%02d.%4d", v.Day(), int(v.Month()), v.Year())
		} else {
			out = v.UTC().Format(TimestampLayout)
		}
		return strings.TrimSuffix(out, "T00:00:00Z"), nil
	case int:
		return year(v, value)
	case int64:
		return year(int(v), value)
	case float64:
		if v != float64(int(v)) {
			return "", &InvalidDateStringError{Value: value}
		}
		return year(int(v), value)
	case string:
		return normalizeDateToken(v, mode)
	default:
		return "", &InvalidDateStringError{Value: value}
	}
}

// year accepts only 4-digit integers.
func year(y int, raw any) (string, error) {
	s := strconv.Itoa(y)
	if len(s) != 4 {
		return "", &InvalidDateStringError{Value: raw}
	}
	return s, nil
}

func normalizeDateToken(s, mode string) (string, error) {
	today := now().UTC()

	switch {
	case s == "$date$":
		return today.Format("2006-01-02"), nil
	case s == "$datetime$":
		return today.Format(TimestampLayout), nil
	case s == "$year$":
		return today.Format("2006"), nil
	case strings.Contains(s, "$year$"):
		return strings.ReplaceAll(s, "$year$", today.Format("2006")), nil
	case strings.HasPrefix(s, "$Date"):
		if mode == "year" {
			m := svnYear.FindStringSubmatch(s)
			if m == nil {
				return "", &InvalidDateStringError{Value: s}
			}
			return m[svnYear.SubexpIndex("year")], nil
		}
		m := svnDate.FindStringSubmatch(s)
		if m == nil {
			return "", &InvalidDateStringError{Value: s}
		}
		return m[svnDate.SubexpIndex("date")] + "T" + m[svnDate.SubexpIndex("time")], nil
	case strings.Contains(s, "$Date") && mode == "year":
		m := svnEmbedded.FindStringSubmatch(s)
		if m == nil {
			return "", &InvalidDateStringError{Value: s}
		}
		return m[svnEmbedded.SubexpIndex("start")] +
			m[svnEmbedded.SubexpIndex("year")] +
			m[svnEmbedded.SubexpIndex("end")], nil
	}
	return s, nil
}
