// Package augmento fetches aggregated sentiment event counts and caches them by day.
package augmento

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	"SentiPull/internal/repository"
	"SentiPull/internal/service/upstream"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"
)

// Name is the source type of the sentiment cache tree.
const Name = models.SourceTypeSentiment

// Client implements a Source backed by the Augmento REST API.
type Client struct {
	caller    *upstream.Caller
	store     drepo.DayStore
	log       *applogger.Logger
	pageSize  int
	pageDelay time.Duration
}

// Option configures Client.
type Option func(*Client)

// WithPageSize sets count_ptr, the number of records requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithPageDelay sets the pause between two page requests.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pageDelay = d
		}
	}
}

// New creates an Augmento source.
func New(caller *upstream.Caller, store drepo.DayStore, opts ...Option) *Client {
	c := &Client{
		caller:    caller,
		store:     store,
		log:       caller.Log(),
		pageSize:  1000,
		pageDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return Name }

// CacheKey returns augmento/<source>/<coin>/<bin_size>.
func (c *Client) CacheKey(p models.InstrumentParams, binSize int) (models.CacheKey, error) {
	if p.Source == "" {
		return models.CacheKey{}, &models.InvalidParameterError{Source: Name, Param: "source", Value: p.Source}
	}
	if p.Coin == "" {
		return models.CacheKey{}, &models.InvalidParameterError{Source: Name, Param: "coin", Value: p.Coin}
	}
	return models.CacheKey{SourceType: Name, SourceID: p.Source, InstrumentID: p.Coin, BinSize: binSize}, nil
}

// FetchAndCache validates the request against the live vocabularies, pages
// through every aggregated event between the day starts of start and end
// and writes one file per day of the batch, empty days included.
func (c *Client) FetchAndCache(ctx context.Context, dir string, p models.InstrumentParams, binSize int, start, end time.Time) error {
	key, err := c.CacheKey(p, binSize)
	if err != nil {
		return err
	}
	label, err := c.validate(ctx, p, binSize)
	if err != nil {
		return err
	}

	start, end = util.DayStart(start), util.DayStart(end)
	events, err := c.fetchAll(ctx, p, label, start, end)
	if err != nil {
		return err
	}

	buckets := repository.PartitionByDay(events, func(e models.SentimentEvent) float64 { return e.TEpoch }, start, end)
	n, err := repository.WriteBuckets(ctx, c.store, key, dir, buckets)
	c.caller.Metrics().RecordDaysWritten(Name, n)
	if err != nil {
		return fmt.Errorf("augmento cache write: %w", err)
	}
	c.log.Info("augmento batch cached",
		applogger.String("key", key.String()),
		applogger.Day("from", start),
		applogger.Day("to", end),
		applogger.Int("records", len(events)),
		applogger.Int("days", n),
	)
	return nil
}

func (c *Client) fetchAll(ctx context.Context, p models.InstrumentParams, label string, start, end time.Time) ([]models.SentimentEvent, error) {
	var events []models.SentimentEvent
	for ptr := 0; ; ptr += c.pageSize {
		if ptr > 0 {
			if err := upstream.Pause(ctx, c.pageDelay); err != nil {
				return nil, err
			}
		}
		q := url.Values{}
		q.Set("source", p.Source)
		q.Set("coin", p.Coin)
		q.Set("bin_size", label)
		q.Set("count_ptr", strconv.Itoa(c.pageSize))
		q.Set("start_ptr", strconv.Itoa(ptr))
		q.Set("start_datetime", util.FormatISO(start))
		q.Set("end_datetime", util.FormatISO(end))

		page, err := upstream.Get[[]models.SentimentEvent](ctx, c.caller, "events", "/events/aggregated", q)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return events, nil
		}
		events = append(events, page...)
		c.log.Debug("augmento page",
			applogger.Int("start_ptr", ptr),
			applogger.Int("records", len(page)),
			applogger.String("first", page[0].Datetime),
			applogger.String("last", page[len(page)-1].Datetime),
		)
	}
}

// validate checks source, coin and bin size against the upstream lists and
// returns the bin size label sent with data requests.
func (c *Client) validate(ctx context.Context, p models.InstrumentParams, binSize int) (string, error) {
	sources, err := upstream.Get[[]string](ctx, c.caller, "sources", "/sources", nil)
	if err != nil {
		return "", err
	}
	if !upstream.Contains(sources, p.Source) {
		return "", &models.InvalidParameterError{Source: Name, Param: "source", Value: p.Source, Allowed: sources}
	}

	coins, err := upstream.Get[[]string](ctx, c.caller, "coins", "/coins", nil)
	if err != nil {
		return "", err
	}
	if !upstream.Contains(coins, p.Coin) {
		return "", &models.InvalidParameterError{Source: Name, Param: "coin", Value: p.Coin, Allowed: coins}
	}

	bins, err := upstream.Get[map[string]int](ctx, c.caller, "bin_sizes", "/bin_sizes", nil)
	if err != nil {
		return "", err
	}
	allowed := make([]string, 0, len(bins))
	for label, secs := range bins {
		if secs == binSize {
			return label, nil
		}
		allowed = append(allowed, strconv.Itoa(secs))
	}
	sort.Strings(allowed)
	return "", &models.InvalidParameterError{Source: Name, Param: "bin_size", Value: strconv.Itoa(binSize), Allowed: allowed}
}

// LoadKeys returns the topic name to column index mapping.
func (c *Client) LoadKeys(ctx context.Context) (map[string]int, error) {
	topics, err := upstream.Get[map[string]string](ctx, c.caller, "topics", "/topics", nil)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]int, len(topics))
	for idx, name := range topics {
		i, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("augmento topics: bad index %q: %w", idx, err)
		}
		keys[name] = i
	}
	return keys, nil
}

// LoadCached reads every day from start through end. Columns are the event
// counts, named count_<i> until a topic mapping is applied. Rows shorter
// than the widest one are padded with zero counts.
func (c *Client) LoadCached(ctx context.Context, dir string, start, end time.Time, policy models.ReadPolicy) (*models.Series, *models.ReadReport, error) {
	events, report, err := repository.ReadRange[models.SentimentEvent](ctx, c.store, dir, start, end, policy, c.log)
	if err != nil {
		return nil, report, err
	}

	s := &models.Series{
		Timestamps: make([]float64, 0, len(events)),
		Features:   make([][]float64, 0, len(events)),
	}
	width := 0
	for _, e := range events {
		s.Timestamps = append(s.Timestamps, e.TEpoch)
		s.Features = append(s.Features, e.Counts)
		if len(e.Counts) > width {
			width = len(e.Counts)
		}
	}
	for i, row := range s.Features {
		if len(row) < width {
			padded := make([]float64, width)
			copy(padded, row)
			s.Features[i] = padded
		}
	}
	s.Keys = make([]string, width)
	for i := range s.Keys {
		s.Keys[i] = "count_" + strconv.Itoa(i)
	}
	return s, report, nil
}
