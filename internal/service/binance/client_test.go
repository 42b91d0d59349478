package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"SentiPull/internal/domain/models"
	"SentiPull/internal/repository"
	"SentiPull/internal/service/upstream"
	xhttp "SentiPull/pkg/http"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/retry"
	"SentiPull/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBinance serves candles on a fixed grid between startTime and endTime.
type fakeBinance struct {
	mu      sync.Mutex
	bin     int64
	skip    map[int64]bool // open times (s) to leave out
	shift   int64          // seconds added to every open time
	now     int64          // when set, no candle opens after it
	windows [][2]int64
}

func (f *fakeBinance) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.URL.Path {
	case "/api/v3/exchangeInfo":
		fmt.Fprint(w, `{"timezone":"UTC","symbols":[{"symbol":"BTCUSDT","status":"TRADING"},{"symbol":"ETHUSDT","status":"TRADING"}]}`)
	case "/api/v3/klines":
		q := r.URL.Query()
		from, _ := strconv.ParseInt(q.Get("startTime"), 10, 64)
		to, _ := strconv.ParseInt(q.Get("endTime"), 10, 64)
		limit, _ := strconv.Atoi(q.Get("limit"))
		f.windows = append(f.windows, [2]int64{from / 1000, to / 1000})

		var rows []string
		for t := from / 1000; t <= to/1000 && len(rows) < limit; t += f.bin {
			if f.skip[t] || (f.now > 0 && t > f.now) {
				continue
			}
			ot := (t + f.shift) * 1000
			rows = append(rows, fmt.Sprintf(`[%d,"%d.5","2","1","%d","10",%d,"0",%d,"0","0","0"]`,
				ot, t, t, ot+f.bin*1000-1, t%7))
		}
		fmt.Fprint(w, "["+strings.Join(rows, ",")+"]")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, limit int, opts ...Option) (*Client, *repository.FileDayStore) {
	t.Helper()
	store := repository.NewFileDayStore(nil, applogger.Nop())
	policy := retry.New(retry.WithMaxAttempts(2), retry.WithBackoff(time.Millisecond, time.Millisecond, 1))
	caller := upstream.NewCaller(Name, xhttp.NewClient(xhttp.WithBaseURL(srv.URL)), policy, nil, applogger.Nop())
	return New(caller, store, append([]Option{WithLimit(limit), WithPageDelay(0)}, opts...)...), store
}

var (
	d0     = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	btcusd = models.InstrumentParams{Symbol: "BTCUSDT"}
)

func TestFetchAndCacheWindows(t *testing.T) {
	fake := &fakeBinance{bin: 3600}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	c, store := newTestClient(t, srv, 20)
	dir := t.TempDir()

	require.NoError(t, c.FetchAndCache(context.Background(), dir, btcusd, 3600, d0, util.AddDays(d0, 2)))

	tStart := d0.Unix()
	tLast := util.AddDays(d0, 2).Unix() - 3600
	require.Len(t, fake.windows, 3)
	assert.Equal(t, [2]int64{tStart, tStart + 19*3600}, fake.windows[0])
	assert.Equal(t, [2]int64{tStart + 20*3600, tStart + 39*3600}, fake.windows[1])
	assert.Equal(t, [2]int64{tStart + 40*3600, tLast}, fake.windows[2])

	days, err := store.ListDays(dir)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d0, util.AddDays(d0, 1)}, days)

	var second []models.Candle
	ok, err := store.ReadDay(dir, util.AddDays(d0, 1), &second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, second, 24)
	assert.Equal(t, util.AddDays(d0, 1).Unix()*1000, second[0].OpenTime)
	assert.Equal(t, tLast*1000, second[23].OpenTime)
}

func TestFetchAndCacheFillsGaps(t *testing.T) {
	fake := &fakeBinance{bin: 3600, skip: map[int64]bool{d0.Unix() + 3600: true}}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	c, store := newTestClient(t, srv, 1000)
	dir := t.TempDir()

	require.NoError(t, c.FetchAndCache(context.Background(), dir, btcusd, 3600, d0, util.AddDays(d0, 1)))

	var got []models.Candle
	ok, err := store.ReadDay(dir, d0, &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 24)
	assert.Equal(t, (d0.Unix()+3600)*1000, got[1].OpenTime)
	assert.Equal(t, got[0].Close, got[1].Close)
	assert.Equal(t, got[0].Trades, got[1].Trades)
}

func TestFetchAndCacheRangeConsistency(t *testing.T) {
	cases := map[string]*fakeBinance{
		"missing first": {bin: 3600, skip: map[int64]bool{d0.Unix(): true}},
		"missing last":  {bin: 3600, skip: map[int64]bool{d0.Unix() + 23*3600: true}},
		"shifted":       {bin: 3600, shift: 60},
	}
	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(fake)
			defer srv.Close()
			c, store := newTestClient(t, srv, 1000)
			dir := t.TempDir()

			err := c.FetchAndCache(context.Background(), dir, btcusd, 3600, d0, util.AddDays(d0, 1))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrRangeConsistency)

			days, err := store.ListDays(dir)
			require.NoError(t, err)
			assert.Empty(t, days, "a failed batch writes nothing")
		})
	}
}

func TestFetchAndCacheStopsAtCurrentCandle(t *testing.T) {
	now := util.AddDays(d0, 2).Add(10*time.Hour + 30*time.Minute)
	fake := &fakeBinance{bin: 3600, now: now.Unix()}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	c, store := newTestClient(t, srv, 1000, WithClock(func() time.Time { return now }))
	dir := t.TempDir()

	// the batch ends the day after today
	require.NoError(t, c.FetchAndCache(context.Background(), dir, btcusd, 3600, d0, util.AddDays(d0, 3)))

	require.Len(t, fake.windows, 1)
	assert.Equal(t, [2]int64{d0.Unix(), util.AddDays(d0, 2).Unix() + 10*3600}, fake.windows[0])

	days, err := store.ListDays(dir)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d0, util.AddDays(d0, 1), util.AddDays(d0, 2)}, days)

	var today []models.Candle
	ok, err := store.ReadDay(dir, util.AddDays(d0, 2), &today)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, today, 11)
	assert.Equal(t, (util.AddDays(d0, 2).Unix()+10*3600)*1000, today[10].OpenTime)
}

func TestFetchAndCacheFutureRange(t *testing.T) {
	srv := httptest.NewServer(&fakeBinance{bin: 3600})
	defer srv.Close()
	c, store := newTestClient(t, srv, 1000, WithClock(func() time.Time { return d0.Add(-time.Hour) }))
	dir := t.TempDir()

	err := c.FetchAndCache(context.Background(), dir, btcusd, 3600, d0, util.AddDays(d0, 1))
	assert.ErrorIs(t, err, models.ErrRangeConsistency)

	days, err := store.ListDays(dir)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestFetchAndCacheValidation(t *testing.T) {
	srv := httptest.NewServer(&fakeBinance{bin: 3600})
	defer srv.Close()
	c, _ := newTestClient(t, srv, 1000)
	ctx := context.Background()

	err := c.FetchAndCache(ctx, t.TempDir(), models.InstrumentParams{Symbol: "DOGEBTC"}, 3600, d0, util.AddDays(d0, 1))
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	err = c.FetchAndCache(ctx, t.TempDir(), btcusd, 1234, d0, util.AddDays(d0, 1))
	var ip *models.InvalidParameterError
	require.ErrorAs(t, err, &ip)
	assert.Equal(t, "bin_size", ip.Param)
}

func TestLoadCachedAndKeys(t *testing.T) {
	srv := httptest.NewServer(&fakeBinance{bin: 86400})
	defer srv.Close()
	c, _ := newTestClient(t, srv, 1000)
	ctx := context.Background()
	dir := t.TempDir()

	// a one-candle batch at the daily bin
	require.NoError(t, c.FetchAndCache(ctx, dir, btcusd, 86400, d0, util.AddDays(d0, 3)))

	s, report, err := c.LoadCached(ctx, dir, d0, util.AddDays(d0, 2), models.ReadPolicyBestEffort)
	require.NoError(t, err)
	assert.Equal(t, models.CandleKeys, s.Keys)
	assert.Equal(t, []float64{util.ToEpoch(d0), util.ToEpoch(util.AddDays(d0, 1)), util.ToEpoch(util.AddDays(d0, 2))}, s.Timestamps)
	assert.Equal(t, 3, report.DaysRead)
	assert.Empty(t, report.MissingDays)

	closes, ok := s.Column("close")
	require.True(t, ok)
	assert.Equal(t, float64(d0.Unix()), closes[0])

	keys, err := c.LoadKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"open": 0, "close": 1, "high": 2, "low": 3, "volume": 4, "trades": 5}, keys)
}
