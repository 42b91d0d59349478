// Package binance fetches klines and caches them by day.
package binance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	"SentiPull/internal/repository"
	"SentiPull/internal/service/upstream"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"
)

// Name is the source type of the price cache tree.
const Name = models.SourceTypePrice

// Client implements a Source backed by the Binance REST API.
type Client struct {
	caller    *upstream.Caller
	store     drepo.DayStore
	log       *applogger.Logger
	limit     int
	pageDelay time.Duration
	now       func() time.Time
}

// Option configures Client.
type Option func(*Client)

// WithLimit sets the number of candles per request, at most 1000.
func WithLimit(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= 1000 {
			c.limit = n
		}
	}
}

// WithPageDelay sets the pause between two kline requests.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pageDelay = d
		}
	}
}

// WithClock replaces the clock that caps requests at the current candle.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Binance source.
func New(caller *upstream.Caller, store drepo.DayStore, opts ...Option) *Client {
	c := &Client{
		caller:    caller,
		store:     store,
		log:       caller.Log(),
		limit:     1000,
		pageDelay: 2 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return Name }

// CacheKey returns binance/<symbol>/<bin_size>.
func (c *Client) CacheKey(p models.InstrumentParams, binSize int) (models.CacheKey, error) {
	if p.Symbol == "" {
		return models.CacheKey{}, &models.InvalidParameterError{Source: Name, Param: "symbol", Value: p.Symbol}
	}
	if _, ok := IntervalFor(binSize); !ok {
		return models.CacheKey{}, &models.InvalidParameterError{Source: Name, Param: "bin_size", Value: strconv.Itoa(binSize), Allowed: SupportedBinSizes()}
	}
	return models.CacheKey{SourceType: Name, InstrumentID: p.Symbol, BinSize: binSize}, nil
}

type exchangeInfo struct {
	Symbols []struct {
		Symbol string `json:"symbol"`
	} `json:"symbols"`
}

// FetchAndCache requests every candle from day(start) up to one bin before
// day(end), or up to the current open candle when day(end) lies in the
// future. It checks the result covers exactly that range, fills gaps and
// writes one file per day, empty days included. A batch failing the range
// check writes nothing.
func (c *Client) FetchAndCache(ctx context.Context, dir string, p models.InstrumentParams, binSize int, start, end time.Time) error {
	key, err := c.CacheKey(p, binSize)
	if err != nil {
		return err
	}
	interval, _ := IntervalFor(binSize)
	if err := c.validateSymbol(ctx, p.Symbol); err != nil {
		return err
	}

	start, end = util.DayStart(start), util.DayStart(end)
	bin := int64(binSize)
	tStart := start.Unix()
	tLast := end.Unix() - bin
	if cur := c.now().Unix() / bin * bin; tLast > cur {
		tLast = cur
	}
	if tLast < tStart {
		return fmt.Errorf("%w: empty range %s..%s", models.ErrRangeConsistency,
			util.FormatDayStem(start), util.FormatDayStem(end))
	}

	var candles []models.Candle
	span := int64(c.limit) * bin
	for ws := tStart; ws <= tLast; ws += span {
		if ws > tStart {
			if err := upstream.Pause(ctx, c.pageDelay); err != nil {
				return err
			}
		}
		we := ws + span - bin
		if we > tLast {
			we = tLast
		}
		page, err := c.klines(ctx, p.Symbol, interval, ws, we)
		if err != nil {
			return err
		}
		if len(page) > 0 {
			c.log.Debug("binance page",
				applogger.String("symbol", p.Symbol),
				applogger.Time("first", util.FromMillis(page[0].OpenTime)),
				applogger.Time("last", util.FromMillis(page[len(page)-1].OpenTime)),
				applogger.Int("candles", len(page)),
			)
		}
		candles = append(candles, page...)
	}

	if len(candles) == 0 || candles[0].OpenTime != tStart*1000 || candles[len(candles)-1].OpenTime != tLast*1000 {
		got := "no candles"
		if len(candles) > 0 {
			got = fmt.Sprintf("%d..%d", candles[0].OpenTime/1000, candles[len(candles)-1].OpenTime/1000)
		}
		return fmt.Errorf("%w: %s %s: want %d..%d, got %s", models.ErrRangeConsistency,
			p.Symbol, interval, tStart, tLast, got)
	}

	filled := fillGaps(candles, binSize)
	if n := len(filled) - len(candles); n > 0 {
		c.log.Warn("binance candles missing upstream, filled",
			applogger.String("symbol", p.Symbol),
			applogger.Int("filled", n),
		)
	}

	through := end
	if next := util.AddDays(util.DayStart(time.Unix(tLast, 0)), 1); next.Before(through) {
		through = next
	}
	buckets := repository.PartitionByDay(filled, func(k models.Candle) float64 { return float64(k.OpenTime) / 1000 }, start, through)
	n, err := repository.WriteBuckets(ctx, c.store, key, dir, buckets)
	c.caller.Metrics().RecordDaysWritten(Name, n)
	if err != nil {
		return fmt.Errorf("binance cache write: %w", err)
	}
	c.log.Info("binance batch cached",
		applogger.String("key", key.String()),
		applogger.Day("from", start),
		applogger.Day("to", through),
		applogger.Int("candles", len(filled)),
		applogger.Int("days", n),
	)
	return nil
}

func (c *Client) klines(ctx context.Context, symbol, interval string, from, to int64) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("startTime", strconv.FormatInt(from*1000, 10))
	q.Set("endTime", strconv.FormatInt(to*1000, 10))
	q.Set("limit", strconv.Itoa(c.limit))

	rows, err := upstream.Get[[]rawKline](ctx, c.caller, "klines", "/api/v3/klines", q)
	if err != nil {
		return nil, err
	}
	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		k, err := row.candle()
		if err != nil {
			return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
		}
		out = append(out, k)
	}
	return out, nil
}

func (c *Client) validateSymbol(ctx context.Context, symbol string) error {
	info, err := upstream.Get[exchangeInfo](ctx, c.caller, "exchange_info", "/api/v3/exchangeInfo", nil)
	if err != nil {
		return err
	}
	known := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Symbol == symbol {
			return nil
		}
		known = append(known, s.Symbol)
	}
	return &models.InvalidParameterError{Source: Name, Param: "symbol", Value: symbol, Allowed: known}
}

// LoadKeys returns the fixed candle feature mapping.
func (c *Client) LoadKeys(ctx context.Context) (map[string]int, error) {
	return models.KeyIndex(models.CandleKeys), nil
}

// LoadCached reads every day from start through end. Timestamps are candle
// open times in seconds.
func (c *Client) LoadCached(ctx context.Context, dir string, start, end time.Time, policy models.ReadPolicy) (*models.Series, *models.ReadReport, error) {
	candles, report, err := repository.ReadRange[models.Candle](ctx, c.store, dir, start, end, policy, c.log)
	if err != nil {
		return nil, report, err
	}
	s := &models.Series{
		Keys:       append([]string(nil), models.CandleKeys...),
		Timestamps: make([]float64, 0, len(candles)),
		Features:   make([][]float64, 0, len(candles)),
	}
	for _, k := range candles {
		s.Timestamps = append(s.Timestamps, float64(k.OpenTime)/1000)
		s.Features = append(s.Features, k.Features())
	}
	return s, report, nil
}
