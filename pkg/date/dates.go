package date

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Formats supported by elasticsearch
// https://www.elastic.co/guide/en/elasticsearch/reference/7.17/mapping-date-format.html
//
// Typesense has no date type; timestamps are stored as int64 and compared
// numerically, so every range bound has to end up as a number.

// Layouts tried, in order, for date strings.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Epoch converts a range bound to the number Typesense compares against.
// Numbers and numeric strings are returned as given; format only says how
// they were written (epoch_millis, epoch_second) and does not rescale them.
// Date strings become Unix seconds, or Unix milliseconds when format is
// epoch_millis.
func Epoch(format string, v interface{}) (string, error) {
	switch d := v.(type) {
	case json.Number:
		return d.String(), nil
	case int64:
		return strconv.FormatInt(d, 10), nil
	case int:
		return strconv.Itoa(d), nil
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return "", fmt.Errorf("unsupported date value %v", v)
		}
		return strconv.FormatFloat(d, 'f', -1, 64), nil
	case string:
		return epochString(format, d)
	default:
		return "", fmt.Errorf("unsupported date value %v", v)
	}
}

func epochString(format, s string) (string, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%q is not a finite number", s)
		}
		return s, nil
	}
	tm, err := Parse(s)
	if err != nil {
		return "", err
	}
	if format == "epoch_millis" {
		return strconv.FormatInt(tm.UnixMilli(), 10), nil
	}
	return strconv.FormatInt(tm.Unix(), 10), nil
}

// Parse reads a date string in one of the layouts ES accepts by default
// (strict_date_optional_time). Strings without a zone are taken as UTC.
func Parse(s string) (time.Time, error) {
	for _, l := range layouts {
		if tm, err := time.Parse(l, s); err == nil {
			return tm.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("couldn't parse %q as a date", s)
}
