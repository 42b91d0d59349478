package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SentiPull/internal/di"
	"SentiPull/internal/domain/models"
	"SentiPull/internal/usecase"
	"SentiPull/pkg/config"
	"SentiPull/pkg/util"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse flags
	configPath := flag.String("config", "", "config file path (defaults and env only when empty)")
	start := flag.String("start", "", "range start, RFC3339 or YYYY-MM-DD (overrides load.start)")
	end := flag.String("end", "", "range end, RFC3339 or YYYY-MM-DD (overrides load.end)")
	once := flag.Bool("once", false, "run a single load even when a schedule is configured")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Printf("config load failed: %v", err)
		return 2
	}
	if *start != "" {
		cfg.Load.Start = *start
	}
	if *end != "" {
		cfg.Load.End = *end
	}

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Printf("app initialization failed: %v", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule.Cron != "" && !*once {
		if err := app.RunScheduled(ctx); err != nil {
			log.Printf("app error: %v", err)
			return 1
		}
		return 0
	}

	from, to, err := app.Range()
	if err != nil {
		log.Printf("load range: %v", err)
		return 2
	}
	res, err := app.RunOnce(ctx, from, to)
	if err != nil {
		log.Printf("load failed: %v", err)
		if errors.Is(err, models.ErrInvalidParameter) {
			return 2
		}
		return 1
	}
	printSummary(res)
	return 0
}

func printSummary(res *models.LoadResult) {
	fmt.Printf("batches fetched: %d\n", res.BatchesFetched)
	if res.Sentiment.Len() == 0 || res.Price.Len() == 0 {
		fmt.Println("no overlapping data in range")
		return
	}
	fmt.Printf("window: %s .. %s\n",
		util.FromEpoch(res.TMin).Format(time.RFC3339),
		util.FromEpoch(res.TMax).Format(time.RFC3339))
	for _, s := range []struct {
		name   string
		series *models.Series
		report *models.ReadReport
	}{
		{"sentiment", res.Sentiment, res.SentimentReport},
		{"price", res.Price, res.PriceReport},
	} {
		missing := 0
		if s.report != nil {
			missing = len(s.report.MissingDays)
		}
		fmt.Printf("%-9s rows=%d columns=%d missing_days=%d\n", s.name, s.series.Len(), len(s.series.Keys), missing)
		stats, err := usecase.Summarize(s.series)
		if err != nil {
			fmt.Printf("  summary unavailable: %v\n", err)
			continue
		}
		for _, st := range stats {
			fmt.Printf("  %-16s mean=%.6g std=%.6g min=%.6g max=%.6g\n", st.Key, st.Mean, st.StdDev, st.Min, st.Max)
		}
	}
}
