package ledger

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts tried before the component heuristic, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var dateComponentSep = regexp.MustCompile(`[/\-.]`)

// ParseDate normalizes the date strings found in upstream records. It tries
// the ISO layouts first, then splits the value into three numeric parts and
// decides between yyyy/mm/dd and dd/mm/yyyy by whichever part exceeds 31.
// Values that fit neither return nil.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return &t
		}
	}

	return parseDateComponents(value)
}

func parseDateComponents(value string) *time.Time {
	// Ignore a trailing time of day, e.g. "15/01/2024 10:30".
	datePart := strings.Fields(value)[0]

	parts := dateComponentSep.Split(datePart, -1)
	if len(parts) != 3 {
		return nil
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil
		}
		nums[i] = n
	}

	var year, month, day int
	switch {
	case nums[0] > 31:
		year, month, day = nums[0], nums[1], nums[2]
	case nums[2] > 31:
		day, month, year = nums[0], nums[1], nums[2]
	default:
		return nil
	}

	if month < 1 || month > 12 || day < 1 {
		return nil
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31/02 into March; reject instead.
	if t.Day() != day || int(t.Month()) != month {
		return nil
	}
	return &t
}

// ResolveDate returns the record's date, preferring an explicit time value.
func (r Record) ResolveDate() *time.Time {
	if r.Time != nil && !r.Time.IsZero() {
		t := *r.Time
		return &t
	}
	return ParseDate(r.Date)
}

// dayOf truncates t to its calendar day so range bounds compare inclusively.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
