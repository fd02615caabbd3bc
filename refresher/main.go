package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/rudratech/blog-aggregator/internal/config"
	"github.com/rudratech/blog-aggregator/internal/embedding"
	"github.com/rudratech/blog-aggregator/internal/feeds"
	"github.com/rudratech/blog-aggregator/internal/logger"
	"github.com/rudratech/blog-aggregator/internal/store"
)

// The refresher keeps the snapshot warm so API instances can cold-start from
// disk instead of hitting the upstream feeds. With REFRESH_INTERVAL unset it
// runs a single forced refresh and exits, which suits cron.
func main() {
	log := logger.New("refresher")
	cfg, err := config.LoadRefresher()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	sources := []feeds.Source{
		feeds.NewBlogger(cfg.Feeds, cfg.Content, log),
		feeds.NewMedium(cfg.Feeds, cfg.Content, log),
	}
	posts := store.New(cfg.Common, sources, embedding.Disabled{}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.Interval == 0 {
		if !runOnce(ctx, log, posts) {
			os.Exit(1)
		}
		return
	}

	log.Info("refresher running", slog.Duration("interval", cfg.Interval))

	// Run immediately on start; a failed pass is retried on the next tick.
	runOnce(ctx, log, posts)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, posts)
		}
	}
}

func runOnce(ctx context.Context, log *slog.Logger, posts *store.Store) bool {
	refreshed, err := posts.Posts(ctx, true)
	if err != nil {
		log.Warn("refresh failed (will retry on next interval)", slog.Any("err", err))
		return false
	}

	log.Info("refresh run completed", slog.Int("posts", len(refreshed)))
	return true
}
