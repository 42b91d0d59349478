package binance

import (
	"sort"
	"strconv"
)

// intervals maps a bin size in seconds to the kline interval name.
var intervals = map[int]string{
	60:    "1m",
	180:   "3m",
	300:   "5m",
	900:   "15m",
	1800:  "30m",
	3600:  "1h",
	7200:  "2h",
	14400: "4h",
	21600: "6h",
	28800: "8h",
	43200: "12h",
	86400: "1d",
}

// IntervalFor returns the kline interval for binSize seconds.
func IntervalFor(binSize int) (string, bool) {
	iv, ok := intervals[binSize]
	return iv, ok
}

// SupportedBinSizes lists the accepted bin sizes, ascending.
func SupportedBinSizes() []string {
	secs := make([]int, 0, len(intervals))
	for s := range intervals {
		secs = append(secs, s)
	}
	sort.Ints(secs)
	out := make([]string, len(secs))
	for i, s := range secs {
		out[i] = strconv.Itoa(s)
	}
	return out
}
