package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rescuedogs/rescue-edge/internal/api"
	"github.com/rescuedogs/rescue-edge/internal/backend"
	"github.com/rescuedogs/rescue-edge/internal/cache/redisstore"
	"github.com/rescuedogs/rescue-edge/internal/core/config"
	"github.com/rescuedogs/rescue-edge/internal/core/health"
	"github.com/rescuedogs/rescue-edge/internal/core/observability"
	"github.com/rescuedogs/rescue-edge/internal/core/server"
	"github.com/rescuedogs/rescue-edge/internal/imagecache"
	"github.com/rescuedogs/rescue-edge/internal/imageurl"
	"github.com/rescuedogs/rescue-edge/internal/invalidation/kafkaconsumer"
	"github.com/rescuedogs/rescue-edge/internal/logger"
	"github.com/rescuedogs/rescue-edge/internal/metrics"
	"github.com/rescuedogs/rescue-edge/internal/placeholder"
	"github.com/rescuedogs/rescue-edge/internal/resolver"
	"github.com/rescuedogs/rescue-edge/internal/seo"
	"github.com/rescuedogs/rescue-edge/internal/telemetry"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:   cfg.LogLevel,
		Console: cfg.LogConsole,
		SampleN: cfg.LogSampleN,
		Service: "rescue-edge",
	}, os.Stdout)
	appLog := logger.NewComponentSlog(&zl, "server")

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting rescue-edge",
		"addr", cfg.Addr,
		"version", Version,
		"cdn", cfg.CDNDomain,
		"api", cfg.APIURL,
		"redis", cfg.RedisEnabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var checks []health.Check
	resOpts := resolver.Options{Logger: appLog, TTL: cfg.CacheTTL, OpTimeout: cfg.CacheOpTimeout}
	if cfg.RedisEnabled {
		rc, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			// memory tier keeps serving
			appLog.Warn("redis unavailable, continuing without shared cache", "addr", cfg.RedisAddr, "err", err)
		} else {
			defer func() { _ = rc.Close() }()
			resOpts.Shared = rc
			checks = append(checks, health.Check{Name: "redis", Ping: rc.Ping})
		}
	}

	builder := imageurl.NewBuilder(cfg.CDNDomain, cfg.SlowQuality)
	res := resolver.New(builder, imagecache.New(cfg.ImageCacheSize), resOpts)

	reporters := telemetry.MultiReporter{telemetry.LogReporter{Logger: appLog}}
	if cfg.Telemetry.KafkaEnabled {
		kr, err := telemetry.NewKafkaReporter(cfg.Kafka.Brokers, cfg.Telemetry.Topic, cfg.Telemetry.QueueSize,
			logger.NewComponentSlog(&zl, "telemetry"))
		if err != nil {
			appLog.Error("telemetry kafka reporter", "err", err)
			return 1
		}
		defer func() { _ = kr.Close() }()
		reporters = append(reporters, kr)
	}
	tracker := telemetry.New(
		telemetry.WithReporter(reporters),
		telemetry.WithReportEvery(cfg.Telemetry.ReportEvery),
	)

	catalog, err := backend.New(appLog, cfg.APIURL)
	if err != nil {
		appLog.Error("failed to initialize backend client", "err", err)
		return 1
	}

	handlers := api.New(api.Deps{
		Logger:      appLog,
		Resolver:    res,
		Telemetry:   tracker,
		Catalog:     catalog,
		SEO:         seo.New(cfg.SiteURL, builder),
		Placeholder: placeholder.New(cfg.PlaceholderColor),
		SiteURL:     cfg.SiteURL,
	})

	if cfg.Invalidation.Enabled {
		c := kafkaconsumer.New(kafkaconsumer.FromConfig(cfg), logger.NewComponentSlog(&zl, "invalidation"), res)
		go func() {
			if err := c.Start(ctx); err != nil {
				appLog.Error("invalidation consumer stopped", "err", err)
			}
		}()
	}

	if cfg.MetricsEnabled {
		p := metrics.Init(metrics.Config{
			Addr: cfg.MetricsAddr,
			Path: cfg.MetricsPath,
			Build: metrics.BuildInfo{
				Version:   Version,
				Revision:  os.Getenv("BUILD_REVISION"),
				Branch:    os.Getenv("BUILD_BRANCH"),
				BuildDate: os.Getenv("BUILD_DATE"),
			},
			Collectors: observability.Collectors(),
		})
		go serveMetrics(ctx, appLog, cfg.MetricsAddr, cfg.MetricsPath, p)
	}

	router := server.NewRouter(appLog, handlers.Routes, checks...)
	if err := server.Run(ctx, cfg, appLog, router); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
