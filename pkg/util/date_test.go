package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeDateOnly(t *testing.T) {
    got, ok := ParseTime("2020-01-05")
    if !ok {
        t.Fatalf("expected ok")
    }
    if !got.Equal(time.Date(2020, 1, 5, 0, 0, 0, 0, time.UTC)) {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestDayStartUsesUTC(t *testing.T) {
    loc := time.FixedZone("UTC+5", 5*3600)
    in := time.Date(2020, 1, 2, 3, 0, 0, 0, loc) // 2020-01-01 22:00 UTC
    got := DayStart(in)
    want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Fatalf("got %v want %v", got, want)
    }
}

func TestDaysBetweenInclusive(t *testing.T) {
    start := time.Date(2020, 1, 30, 15, 0, 0, 0, time.UTC)
    end := time.Date(2020, 2, 2, 1, 0, 0, 0, time.UTC)
    days := DaysBetween(start, end)
    if len(days) != 4 {
        t.Fatalf("expected 4 days, got %d", len(days))
    }
    if FormatDayStem(days[0]) != "20200130" || FormatDayStem(days[3]) != "20200202" {
        t.Fatalf("unexpected bounds %v..%v", days[0], days[3])
    }
    if DaysBetween(end, start) != nil {
        t.Fatalf("expected nil for reversed range")
    }
}

func TestDayStemRoundTrip(t *testing.T) {
    day := time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC)
    got, err := ParseDayStem(FormatDayStem(day))
    if err != nil {
        t.Fatalf("parse: %v", err)
    }
    if !got.Equal(day) {
        t.Fatalf("got %v want %v", got, day)
    }
    for _, bad := range []string{"2019074", "2019-07-04", "20191340", "abcdefgh"} {
        if _, err := ParseDayStem(bad); err == nil {
            t.Fatalf("expected error for %q", bad)
        }
    }
}

func TestEpochConversions(t *testing.T) {
    ts := time.Date(2020, 1, 1, 1, 0, 0, 0, time.UTC)
    if ToEpoch(ts) != 1577840400 {
        t.Fatalf("unexpected epoch %v", ToEpoch(ts))
    }
    if !FromEpoch(1577840400.5).Equal(ts.Add(500 * time.Millisecond)) {
        t.Fatalf("unexpected time %v", FromEpoch(1577840400.5))
    }
    if !FromMillis(1577840400000).Equal(ts) {
        t.Fatalf("unexpected millis time")
    }
    if FormatISO(ts) != "2020-01-01T01:00:00Z" {
        t.Fatalf("unexpected iso %s", FormatISO(ts))
    }
}
