package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	"SentiPull/internal/handler/api"
	"SentiPull/internal/usecase"
	"SentiPull/pkg/config"
	xhttp "SentiPull/pkg/http"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"

	"github.com/robfig/cron/v3"
)

// Loader is the use case the app drives.
type Loader interface {
	Load(ctx context.Context, req models.LoadRequest) (*models.LoadResult, error)
}

// App encapsulates the application lifecycle: one load, or a scheduled
// refresh loop with a status server.
type App struct {
	cfg       *config.Config
	loader    Loader
	publisher drepo.Publisher
	log       *applogger.Logger
	now       func() time.Time

	mu     sync.Mutex
	status models.RunStatus
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, loader *usecase.Loader, publisher drepo.Publisher, l *applogger.Logger) *App {
	return newApp(cfg, loader, publisher, l)
}

func newApp(cfg *config.Config, loader Loader, publisher drepo.Publisher, l *applogger.Logger) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, loader: loader, publisher: publisher, log: l, now: time.Now}
}

// Request builds a load request for [start, end] from the load section.
func (a *App) Request(start, end time.Time) models.LoadRequest {
	return models.LoadRequest{
		CacheRoot:  a.cfg.Cache.Root,
		Source:     a.cfg.Load.Source,
		Coin:       a.cfg.Load.Coin,
		Symbol:     a.cfg.Load.Symbol,
		BinSize:    a.cfg.Load.BinSize,
		Start:      start,
		End:        end,
		ReadPolicy: models.ReadPolicy(a.cfg.Cache.ReadPolicy),
	}
}

// Range resolves the configured load range. An empty end means now.
func (a *App) Range() (time.Time, time.Time, error) {
	start, ok := util.ParseTime(a.cfg.Load.Start)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("load.start: invalid time %q", a.cfg.Load.Start)
	}
	end := a.now().UTC()
	if a.cfg.Load.End != "" {
		if end, ok = util.ParseTime(a.cfg.Load.End); !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("load.end: invalid time %q", a.cfg.Load.End)
		}
	}
	return start, end, nil
}

// RunOnce performs one load and records its outcome.
func (a *App) RunOnce(ctx context.Context, start, end time.Time) (*models.LoadResult, error) {
	a.mu.Lock()
	a.status.Runs++
	a.status.Running = true
	a.status.StartedAt = a.now().UTC()
	a.mu.Unlock()

	res, err := a.loader.Load(ctx, a.Request(start, end))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Running = false
	a.status.FinishedAt = a.now().UTC()
	a.status.Error = ""
	if err != nil {
		a.status.Error = err.Error()
		return nil, err
	}
	a.status.BatchesFetched = res.BatchesFetched
	a.status.SentimentRows = res.Sentiment.Len()
	a.status.PriceRows = res.Price.Len()
	return res, nil
}

// LastRun returns a snapshot of the most recent run.
func (a *App) LastRun() models.RunStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// RunScheduled loads once immediately, then again on every tick of the cron
// spec until ctx is done. Ticks never overlap. With metrics enabled the
// status server runs alongside.
func (a *App) RunScheduled(ctx context.Context) error {
	spec := a.cfg.Schedule.Cron
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	job := func() {
		start, end, err := a.Range()
		if err != nil {
			a.log.Error("scheduled load skipped", applogger.Error(err))
			return
		}
		if _, err := a.RunOnce(ctx, start, end); err != nil {
			a.log.Error("scheduled load failed", applogger.Error(err))
		}
	}
	if _, err := c.AddFunc(spec, job); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	var srv *xhttp.Server
	if a.cfg.Metrics.Enabled {
		srv = xhttp.NewServer(api.NewStatusHandler(a), a.log,
			xhttp.WithPort(a.cfg.Metrics.Port),
			xhttp.WithMetricsPath(a.cfg.Metrics.Path),
		)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("status server: %w", err)
		}
	}

	job()
	c.Start()
	a.log.Info("scheduler started", applogger.String("schedule", spec))

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	stopped := c.Stop()
	<-stopped.Done()

	if srv != nil {
		if err := srv.Stop(context.Background()); err != nil {
			a.log.Error("status server shutdown error", applogger.Error(err))
		}
	}
	return nil
}

// Close releases the event publisher.
func (a *App) Close() error {
	if a.publisher == nil {
		return nil
	}
	if err := a.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}
