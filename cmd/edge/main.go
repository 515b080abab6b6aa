package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openglam/tilegate/internal/core/config"
	"github.com/openglam/tilegate/internal/core/observability"
	"github.com/openglam/tilegate/internal/core/router"
	"github.com/openglam/tilegate/internal/core/server"
	"github.com/openglam/tilegate/internal/invalidation/kafkaconsumer"
	"github.com/openglam/tilegate/internal/logger"
	"github.com/openglam/tilegate/internal/resolve"
	"github.com/openglam/tilegate/internal/store"
	"github.com/openglam/tilegate/internal/store/filestore"
	"github.com/openglam/tilegate/internal/store/redisstore"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	modeFlag := flag.String("mode", "", "serving mode (resolve|sendfile), overrides MODE")
	flag.Parse()

	cfg := config.FromEnv()
	if *modeFlag != "" {
		cfg.Mode = strings.TrimSpace(*modeFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Mode:      cfg.Mode,
		Component: "edge",
	}, os.Stdout)

	appLog := logger.NewSlog(&zl)

	observability.SetMode(cfg.Mode)
	observability.ExposeBuildInfo(Version)
	appLog.Info("starting tilegate",
		"addr", cfg.Addr,
		"version", Version,
		"mode", cfg.Mode,
		"data_path", cfg.DataPath)

	imageTemplate := cfg.ImagePathTemplate
	if imageTemplate == "" {
		imageTemplate = resolve.DefaultImageTemplate
	}
	infoTemplate := cfg.InfoPathTemplate
	if infoTemplate == "" {
		infoTemplate = resolve.DefaultInfoTemplate
	}
	resolver, err := resolve.New(imageTemplate, infoTemplate)
	if err != nil {
		appLog.Error("invalid path templates", "err", err)
		return 1
	}

	files, err := filestore.New(cfg.DataPath)
	if err != nil {
		appLog.Error("tile data path unusable", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tiles store.TileStore = files
	if cfg.RedisAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		rc, err := redisstore.New(dialCtx, cfg.RedisAddr)
		cancel()
		if err != nil {
			appLog.Error("redis unavailable", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()

		cached := store.NewCached(rc, files, cfg.CacheTTL, cfg.CacheOpTimeout, appLog)
		tiles = cached

		if cfg.Invalidation.Enabled {
			consumer := kafkaconsumer.New(
				kafkaconsumer.NewConfig(cfg.Invalidation.Brokers, cfg.Invalidation.Topic, cfg.Invalidation.GroupID),
				appLog, cached)
			go func() {
				if err := consumer.Start(ctx); err != nil {
					appLog.Error("invalidation consumer exited", "err", err)
				}
			}()
		}
	} else if cfg.Invalidation.Enabled {
		appLog.Warn("invalidation enabled without redis cache; nothing to purge")
	}

	handler := router.New(appLog, cfg, resolver, tiles)

	if err := server.Run(ctx, cfg, appLog, handler); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
