package util

import (
    "fmt"
    "math"
    "strconv"
    "time"
)

// Day is the length of one cache partition.
const Day = 24 * time.Hour

// DayStemLayout is the layout of a cache file stem (YYYYMMDD).
const DayStemLayout = "20060102"

// ISOLayout is the upstream datetime layout used in query parameters.
const ISOLayout = "2006-01-02T15:04:05Z"

// ParseTime tries RFC3339, RFC3339Nano, plain dates and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t.UTC(), true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t.UTC(), true
    }
    if t, err := time.Parse(time.DateOnly, s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0).UTC(), true
    }
    return time.Time{}, false
}

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
    u := t.UTC()
    return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays shifts t by n whole days.
func AddDays(t time.Time, n int) time.Time {
    return t.Add(time.Duration(n) * Day)
}

// DaysBetween lists every calendar day from the day of start up to and including the day of end.
func DaysBetween(start, end time.Time) []time.Time {
    first, last := DayStart(start), DayStart(end)
    if last.Before(first) {
        return nil
    }
    days := make([]time.Time, 0, int(last.Sub(first)/Day)+1)
    for d := first; !d.After(last); d = AddDays(d, 1) {
        days = append(days, d)
    }
    return days
}

// ToEpoch returns t as float epoch seconds.
func ToEpoch(t time.Time) float64 {
    return float64(t.UnixNano()) / float64(time.Second)
}

// FromEpoch converts float epoch seconds to a UTC time.
func FromEpoch(sec float64) time.Time {
    whole, frac := math.Modf(sec)
    return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}

// FromMillis converts epoch milliseconds to a UTC time.
func FromMillis(ms int64) time.Time {
    return time.UnixMilli(ms).UTC()
}

// FormatDayStem renders a day as a YYYYMMDD file stem.
func FormatDayStem(day time.Time) string {
    return day.UTC().Format(DayStemLayout)
}

// ParseDayStem parses a YYYYMMDD file stem back into a calendar day.
func ParseDayStem(stem string) (time.Time, error) {
    if len(stem) != len(DayStemLayout) {
        return time.Time{}, fmt.Errorf("day stem %q: want %d digits", stem, len(DayStemLayout))
    }
    t, err := time.Parse(DayStemLayout, stem)
    if err != nil {
        return time.Time{}, fmt.Errorf("day stem %q: %w", stem, err)
    }
    return t, nil
}

// FormatISO renders t in the upstream ISO-8601 UTC layout.
func FormatISO(t time.Time) string {
    return t.UTC().Format(ISOLayout)
}
