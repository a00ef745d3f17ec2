package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yasno-exporter/internal/config"
	"yasno-exporter/internal/fetch"
	"yasno-exporter/internal/logging"
	"yasno-exporter/internal/metrics"
	"yasno-exporter/internal/mq"
	"yasno-exporter/internal/notify"
	"yasno-exporter/internal/probe"
	"yasno-exporter/internal/schedule"
	"yasno-exporter/internal/snapshot"
	"yasno-exporter/internal/store"
	"yasno-exporter/internal/watch"
)

func main() {
	// Load .env if present.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.Setup(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Metrics registry ---
	// Own registry: no process/go collectors, like the upstream exporter.
	reg := prometheus.NewRegistry()
	health := metrics.NewHealth(reg)

	// --- Fetch + normalize pipeline ---
	fetcher := fetch.New(cfg.UpstreamURL, cfg.UpstreamToken, time.Duration(cfg.FetchTimeout)*time.Second)
	refresh := func(ctx context.Context) (*schedule.Schedule, error) {
		raw, err := fetcher.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return schedule.Normalize(raw, time.Now())
	}

	// --- Warm-start store (optional) ---
	var snapStore *store.Store
	if cfg.RedisURL != "" {
		var err error
		snapStore, err = store.New(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis")
		}
		defer snapStore.Close()
		log.Info().Msg("redis connected")
	}

	var onUpdate func(*schedule.Schedule)
	if snapStore != nil {
		onUpdate = func(s *schedule.Schedule) {
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer saveCancel()
			if err := snapStore.Save(saveCtx, s); err != nil {
				log.Error().Err(err).Msg("persist snapshot")
			}
		}
	}

	// --- Schedule cache ---
	cache := snapshot.New(snapshot.Config{
		Fetch:    refresh,
		TTL:      time.Duration(cfg.CacheTTL) * time.Second,
		Reporter: health,
		OnUpdate: onUpdate,
		Logger:   log,
	})

	if snapStore != nil {
		if seed, err := snapStore.Load(ctx); err != nil {
			log.Error().Err(err).Msg("load stored snapshot")
		} else if seed != nil {
			cache.Seed(seed)
			log.Info().Int("groups", len(seed.Groups)).Msg("warm-started from stored snapshot")
		}
	}

	go cache.Start(ctx, time.Duration(cfg.RefreshInterval)*time.Second)
	log.Info().Int("interval", cfg.RefreshInterval).Msg("schedule refresh loop started")

	// --- Status change watcher ---
	var sinks []watch.Sink
	if cfg.RabbitMQURL != "" {
		publisher, err := mq.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq")
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
		log.Info().Msg("rabbitmq connected")
	}
	if cfg.BotToken != "" && cfg.NotifyChatID != 0 {
		telegram, err := notify.NewTelegram(cfg.BotToken, cfg.NotifyChatID, log)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram")
		}
		sinks = append(sinks, telegram)
		log.Info().Msg("telegram notifier started")
	}
	watcher := watch.New(cache, time.Duration(cfg.WatchInterval)*time.Second, log, sinks...)
	go watcher.Start(ctx)

	// --- Upstream reachability probe ---
	if host := fetcher.Host(); host != "" {
		go probe.New(host, time.Duration(cfg.ProbeInterval)*time.Second, health, log).Start(ctx)
	}

	// --- Schedule gauges ---
	reg.MustRegister(metrics.NewCollector(cache))

	// --- Fiber HTTP server ---
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		s := cache.Current()
		return c.JSON(fiber.Map{
			"status":     "ok",
			"groups":     len(s.Groups),
			"fetched_at": s.FetchedAt,
			"failures":   cache.Failures(),
		})
	})

	// --- Graceful shutdown ---
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	log.Info().Str("port", cfg.Port).Msg("exporter starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
