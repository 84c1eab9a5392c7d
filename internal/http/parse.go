package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// parseDate accepts both a bare day (2006-01-02) and a full RFC 3339
// timestamp. Bare days are taken at midnight in loc, matching how the
// engine buckets days.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use 2006-01-02 or RFC 3339", s)
	}
	return t, nil
}

// parseRange reads optional from/to query parameters. A bare-day "to"
// is extended to the end of that day so the range is inclusive.
func parseRange(query url.Values, loc *time.Location) (from, to time.Time, err error) {
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		from, err = parseDate(v, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		to, err = parseDate(v, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if len(v) == len("2006-01-02") {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("'to' precedes 'from'")
	}
	return from, to, nil
}

// parseYearMonth reads year and month query parameters. Year defaults
// to the current year in loc; month defaults to 0, meaning the whole
// year.
func parseYearMonth(query url.Values, loc *time.Location) (year, month int, err error) {
	year = time.Now().In(loc).Year()
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil || year < 1 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
	}
	return year, month, nil
}
