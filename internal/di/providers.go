package di

import (
	"fmt"

	"SentiPull/internal/domain/repository"
	internalrepo "SentiPull/internal/repository"
	"SentiPull/internal/service/augmento"
	"SentiPull/internal/service/binance"
	"SentiPull/internal/service/upstream"
	"SentiPull/internal/usecase"
	"SentiPull/pkg/config"
	xhttp "SentiPull/pkg/http"
	pkgkafka "SentiPull/pkg/kafka"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/metrics"
	"SentiPull/pkg/retry"
	"SentiPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideRetryPolicy creates the retry policy shared by every upstream call.
func ProvideRetryPolicy(cfg *config.Config) *retry.Policy {
	return retry.New(
		retry.WithMaxAttempts(cfg.Retry.MaxAttempts),
		retry.WithBackoff(cfg.Retry.InitialInterval, cfg.Retry.MaxInterval, cfg.Retry.Multiplier),
	)
}

// ProvidePublisher creates the cache event publisher: Kafka when events are
// enabled, otherwise a no-op.
func ProvidePublisher(cfg *config.Config, l *applogger.Logger) (repository.Publisher, error) {
	if !cfg.Events.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithTopic(cfg.Events.Topic),
		pkgkafka.WithCompression(cfg.Events.Compression),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("cache events enabled",
		applogger.Strings("brokers", cfg.Events.Brokers),
		applogger.String("topic", cfg.Events.Topic),
	)
	return internalrepo.NewKafkaPublisher(producer), nil
}

// ProvideDayStore creates the file-backed day store.
func ProvideDayStore(pub repository.Publisher, l *applogger.Logger) repository.DayStore {
	return internalrepo.NewFileDayStore(pub, l)
}

// ProvideAugmento creates the sentiment source.
func ProvideAugmento(cfg *config.Config, policy *retry.Policy, m repository.Metrics, store repository.DayStore, l *applogger.Logger) *augmento.Client {
	hc := xhttp.NewClient(
		xhttp.WithBaseURL(cfg.Augmento.BaseURL),
		xhttp.WithTimeout(cfg.Augmento.Timeout),
	)
	caller := upstream.NewCaller(augmento.Name, hc, policy, m, l.With(applogger.String("source", augmento.Name)))
	return augmento.New(caller, store,
		augmento.WithPageSize(cfg.Augmento.PageSize),
		augmento.WithPageDelay(cfg.Augmento.PageDelay),
	)
}

// ProvideBinance creates the price source.
func ProvideBinance(cfg *config.Config, policy *retry.Policy, m repository.Metrics, store repository.DayStore, l *applogger.Logger) *binance.Client {
	hc := xhttp.NewClient(
		xhttp.WithBaseURL(cfg.Binance.BaseURL),
		xhttp.WithTimeout(cfg.Binance.Timeout),
	)
	caller := upstream.NewCaller(binance.Name, hc, policy, m, l.With(applogger.String("source", binance.Name)))
	return binance.New(caller, store,
		binance.WithLimit(cfg.Binance.Limit),
		binance.WithPageDelay(cfg.Binance.PageDelay),
	)
}

// ProvideLoader creates the load use case.
func ProvideLoader(
	cfg *config.Config,
	sentiment *augmento.Client,
	price *binance.Client,
	store repository.DayStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Loader {
	return usecase.NewLoader(sentiment, price, store, m, l,
		usecase.WithFreshnessDays(cfg.Cache.FreshnessDays),
	)
}

// ProvideApp creates the application.
func ProvideApp(cfg *config.Config, loader *usecase.Loader, pub repository.Publisher, l *applogger.Logger) *server.App {
	return server.New(cfg, loader, pub, l)
}
