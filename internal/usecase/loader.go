package usecase

import (
	"context"
	"fmt"
	"os"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	applogger "SentiPull/pkg/logger"
	pkgmetrics "SentiPull/pkg/metrics"
	"SentiPull/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Loader brings the cache up to date for a request and reads both series back.
type Loader struct {
	sentiment     drepo.Source
	price         drepo.Source
	store         drepo.DayStore
	metrics       drepo.Metrics
	log           *applogger.Logger
	validate      *validator.Validate
	freshnessDays int
	now           func() time.Time
}

// LoaderOption configures Loader.
type LoaderOption func(*Loader)

// WithFreshnessDays sets the trailing window that is always re-fetched.
func WithFreshnessDays(n int) LoaderOption {
	return func(l *Loader) {
		if n >= 0 {
			l.freshnessDays = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLoader creates a Loader over the sentiment and price sources.
func NewLoader(sentiment, price drepo.Source, store drepo.DayStore, metrics drepo.Metrics, l *applogger.Logger, opts ...LoaderOption) *Loader {
	if l == nil {
		l = applogger.Nop()
	}
	if metrics == nil {
		metrics = pkgmetrics.Nop{}
	}
	ld := &Loader{
		sentiment:     sentiment,
		price:         price,
		store:         store,
		metrics:       metrics,
		log:           l,
		validate:      validator.New(),
		freshnessDays: DefaultFreshnessDays,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load fills any missing cache days for both sources, reads the requested
// range back and trims both series to their common window.
func (l *Loader) Load(ctx context.Context, req models.LoadRequest) (*models.LoadResult, error) {
	started := time.Now()
	if err := defaults.Set(&req); err != nil {
		return nil, fmt.Errorf("apply request defaults: %w", err)
	}
	if err := l.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: load request: %v", models.ErrInvalidParameter, err)
	}

	res := &models.LoadResult{}
	sentDir, n, err := l.ensureCached(ctx, l.sentiment, req)
	if err != nil {
		return nil, err
	}
	res.BatchesFetched += n
	priceDir, n, err := l.ensureCached(ctx, l.price, req)
	if err != nil {
		return nil, err
	}
	res.BatchesFetched += n

	sent, sentReport, err := l.readBack(ctx, l.sentiment, sentDir, req)
	if err != nil {
		return nil, err
	}
	price, priceReport, err := l.readBack(ctx, l.price, priceDir, req)
	if err != nil {
		return nil, err
	}

	res.Sentiment, res.Price, res.TMin, res.TMax = TrimToOverlap(sent, price, util.ToEpoch(req.Start), util.ToEpoch(req.End))
	res.SentimentReport = sentReport
	res.PriceReport = priceReport

	l.metrics.RecordLatency("load", time.Since(started).Seconds())
	l.log.Info("load complete",
		applogger.String("source", req.Source),
		applogger.String("coin", req.Coin),
		applogger.String("symbol", req.Symbol),
		applogger.Int("batches", res.BatchesFetched),
		applogger.Int("sentiment_rows", res.Sentiment.Len()),
		applogger.Int("price_rows", res.Price.Len()),
		applogger.Float64("t_min", res.TMin),
		applogger.Float64("t_max", res.TMax),
		applogger.Duration("duration_ms", time.Since(started)),
	)
	return res, nil
}

// ensureCached fetches every missing batch of src for req and returns the
// cache directory and the number of batches fetched.
func (l *Loader) ensureCached(ctx context.Context, src drepo.Source, req models.LoadRequest) (string, int, error) {
	key, err := src.CacheKey(req.Params(), req.BinSize)
	if err != nil {
		return "", 0, fmt.Errorf("%s cache key: %w", src.Name(), err)
	}
	dir := key.Dir(req.CacheRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create cache dir %s: %w", dir, err)
	}

	existing, err := l.store.ListDays(dir)
	if err != nil {
		return "", 0, err
	}
	required := util.DaysBetween(req.Start, req.End)
	missing := MissingDays(existing, required, l.now(), l.freshnessDays)
	l.metrics.RecordCacheDays(src.Name(), len(required)-len(missing), len(missing))

	batches := PlanBatches(missing)
	if len(batches) == 0 {
		l.log.Debug("cache complete", applogger.String("key", key.String()))
		return dir, 0, nil
	}

	for i, b := range batches {
		l.log.Info("fetching batch",
			applogger.String("key", key.String()),
			applogger.Int("batch", i+1),
			applogger.Int("of", len(batches)),
			applogger.Day("from", b.Start()),
			applogger.Int("days", b.Len()),
		)
		fetchStart := time.Now()
		if err := src.FetchAndCache(ctx, dir, req.Params(), req.BinSize, b.Start(), b.End()); err != nil {
			return "", i, fmt.Errorf("%s fetch %s..%s: %w", src.Name(),
				util.FormatDayStem(b.Start()), util.FormatDayStem(b.End()), err)
		}
		l.metrics.RecordLatency(src.Name()+"_batch", time.Since(fetchStart).Seconds())
	}
	return dir, len(batches), nil
}

func (l *Loader) readBack(ctx context.Context, src drepo.Source, dir string, req models.LoadRequest) (*models.Series, *models.ReadReport, error) {
	series, report, err := src.LoadCached(ctx, dir, req.Start, req.End, req.ReadPolicy)
	if err != nil {
		return nil, report, fmt.Errorf("%s read cache: %w", src.Name(), err)
	}
	if report != nil && len(report.MissingDays) > 0 {
		l.metrics.RecordReadGap(src.Name(), len(report.MissingDays))
	}

	mapping, err := src.LoadKeys(ctx)
	if err != nil {
		l.log.Warn("key mapping unavailable, keeping positional names",
			applogger.String("source", src.Name()),
			applogger.Error(err),
		)
		return series, report, nil
	}
	if keys := models.OrderedKeys(mapping); len(keys) == len(series.Keys) || series.Len() == 0 {
		series.Keys = keys
	} else {
		l.log.Warn("key mapping does not match cached columns",
			applogger.String("source", src.Name()),
			applogger.Int("keys", len(keys)),
			applogger.Int("columns", len(series.Keys)),
		)
	}
	return series, report, nil
}
