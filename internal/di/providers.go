package di

import (
	"fmt"
	"image/color"

	"PairPulse/internal/chart"
	"PairPulse/internal/domain/repository"
	"PairPulse/internal/handler/api"
	"PairPulse/internal/handler/ws"
	mid "PairPulse/internal/middleware"
	internalrepo "PairPulse/internal/repository"
	icache "PairPulse/internal/service/cache"
	"PairPulse/internal/service/dexscreener"
	"PairPulse/internal/service/ratelimit"
	"PairPulse/internal/usecase"
	pkgcache "PairPulse/pkg/cache"
	"PairPulse/pkg/config"
	xhttp "PairPulse/pkg/http"
	pkgkafka "PairPulse/pkg/kafka"
	applogger "PairPulse/pkg/logger"
	"PairPulse/pkg/metrics"
	"PairPulse/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// chartImageEntries bounds the rendered PNG cache.
const chartImageEntries = 32

// ProvideLogger creates the application logger from the log section.
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

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideResolveCache creates the cache in front of token resolution.
func ProvideResolveCache(cfg *config.Config) (pkgcache.Service, error) {
	switch cfg.Cache.Type {
	case "redis":
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, nil
	default:
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(1024)), nil
	}
}

// ProvideQuoteSource creates the rate limited Dexscreener client.
func ProvideQuoteSource(cfg *config.Config, cache pkgcache.Service, l *applogger.Logger) repository.QuoteSource {
	dx := cfg.Dexscreener
	return dexscreener.New(dx.BaseURL,
		xhttp.NewClient(xhttp.WithTimeout(dx.Timeout)),
		dexscreener.WithLimiter(ratelimit.New(dx.RateLimit.Burst, dx.RateLimit.PerSecond)),
		dexscreener.WithCache(cache, dx.CacheTTL),
		dexscreener.WithLogger(l),
	)
}

// ProvideSamplePublisher creates the buffered Kafka publisher, or nil when disabled.
func ProvideSamplePublisher(cfg *config.Config, rec *metrics.Recorder, l *applogger.Logger) (repository.SamplePublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.Producer.MaxAttempts),
		pkgkafka.WithBatching(k.Producer.BatchSize, k.Producer.Linger),
		pkgkafka.WithWriteTimeout(k.Producer.WriteTimeout),
		pkgkafka.WithAsync(k.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return mid.NewPublishPipeline(
		internalrepo.NewKafkaSamplePublisher(producer, k.Topic),
		rec,
		mid.WithBufferSize(k.Producer.RetryBuffer),
		mid.WithRetryTimeout(k.Producer.WriteTimeout),
		mid.WithLogger(l),
	), nil
}

// ProvideHub creates the websocket hub.
func ProvideHub(l *applogger.Logger, rec *metrics.Recorder) *ws.Hub {
	return ws.NewHub(l, rec)
}

// ProvideSession creates the chart session and subscribes the hub to it.
func ProvideSession(
	cfg *config.Config,
	source repository.QuoteSource,
	rec *metrics.Recorder,
	l *applogger.Logger,
	pub repository.SamplePublisher,
	hub *ws.Hub,
) *usecase.Session {
	opts := []usecase.SessionOption{usecase.WithObserver(hub)}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	return usecase.NewSession(source, rec, l, usecase.SessionConfig{
		PollInterval:     cfg.Session.PollInterval,
		FetchTimeout:     cfg.Dexscreener.Timeout,
		DefaultTimeframe: cfg.Session.DefaultTimeframe,
		MaxSamples:       cfg.Session.MaxSamples,
	}, opts...)
}

// ProvidePalette parses the configured candle colours.
func ProvidePalette(cfg *config.Config) (chart.Palette, error) {
	up, err := chart.ParseHexColor(cfg.Chart.UpColor)
	if err != nil {
		return chart.Palette{}, err
	}
	down, err := chart.ParseHexColor(cfg.Chart.DownColor)
	if err != nil {
		return chart.Palette{}, err
	}
	return chart.Palette{Up: up, Down: down}, nil
}

// ProvideChartHandler creates the REST handler with its PNG cache.
func ProvideChartHandler(cfg *config.Config, l *applogger.Logger, session *usecase.Session, palette chart.Palette) *api.ChartEchoHandler {
	return api.NewChartEchoHandler(l, session, icache.NewTTLCache(chartImageEntries), api.ImageOptions{
		Width:      cfg.Chart.Width,
		Height:     cfg.Chart.Height,
		Palette:    palette,
		Background: color.Black,
		CacheTTL:   cfg.Chart.CacheTTL,
	})
}

// ProvideHTTPServer creates the echo server with every route registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, chartH *api.ChartEchoHandler, hub *ws.Hub) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, []xhttp.Handler{chartH, hub},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithMetrics(metricsPath, prometheus.DefaultRegisterer, prometheus.DefaultGatherer),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	session *usecase.Session,
	httpServer *xhttp.Server,
	hub *ws.Hub,
	pub repository.SamplePublisher,
	cache pkgcache.Service,
) *server.App {
	return server.New(cfg, l, session, httpServer, hub, pub, cache)
}
