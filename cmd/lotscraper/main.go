// Command lotscraper scrapes vehicle listings and photos from dealer websites
// into the MongoDB vehicles collection.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/WessleyAI/lotscraper/engine/detail"
	"github.com/WessleyAI/lotscraper/engine/infer"
	"github.com/WessleyAI/lotscraper/engine/listing"
	"github.com/WessleyAI/lotscraper/engine/persist"
	"github.com/WessleyAI/lotscraper/engine/run"
	"github.com/WessleyAI/lotscraper/engine/vehicle"
	"github.com/WessleyAI/lotscraper/pkg/cache"
	"github.com/WessleyAI/lotscraper/pkg/config"
	"github.com/WessleyAI/lotscraper/pkg/fetch"
	"github.com/WessleyAI/lotscraper/pkg/metrics"
	"github.com/WessleyAI/lotscraper/pkg/mongostore"
	"github.com/WessleyAI/lotscraper/pkg/natsutil"
)

type options struct {
	envFile string
	dealers string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "lotscraper",
		Short:         "Scrape dealer inventory photos into MongoDB",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			err := scrape(ctx, opts, out)
			if err != nil {
				slog.Error("lotscraper failed", "err", err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file read before the environment (empty to skip)")
	cmd.Flags().StringVar(&opts.dealers, "dealers", "", "YAML file with a dealers list (default: built-in dealers)")
	return cmd
}

func scrape(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	dealers, err := config.LoadDealers(opts.dealers)
	if err != nil {
		return err
	}

	store, err := mongostore.Connect(ctx, cfg.MongoURL, cfg.DBName)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warn("index setup skipped", "err", err)
	}

	images, err := cache.NewBytes(cfg.ImageCacheBytes)
	if err != nil {
		return fmt.Errorf("image cache: %w", err)
	}
	defer images.Close()

	reg := metrics.New()
	if cfg.MetricsPort > 0 {
		go func() {
			if err := reg.Serve(ctx, fmt.Sprintf(":%d", cfg.MetricsPort), logger); err != nil {
				logger.Error("metrics server", "err", err)
			}
		}()
	}

	gateCfg := persist.Config{MinImageBytes: cfg.MinImageBytes, Logger: logger}
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("lotscraper"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		topic := natsutil.NewTopic[vehicle.Saved](nc, cfg.NATSSubject)
		gateCfg.Notifier = topic
		logger.Info("publishing saved vehicles", "subject", topic.Subject())
	}

	client := fetch.New(fetch.Config{UserAgent: cfg.UserAgent})

	o := run.New(
		listing.NewCrawler(client, listing.Config{
			MaxLinks: cfg.MaxVehiclesPerDealer,
			Timeout:  cfg.ListingTimeout,
			Logger:   logger,
		}),
		detail.NewExtractor(client, detail.Config{
			PageTimeout:   cfg.DetailTimeout,
			ImageTimeout:  cfg.ImageTimeout,
			MinImageBytes: cfg.MinImageBytes,
			Cache:         images,
			Logger:        logger,
		}),
		infer.New(infer.Config{}),
		persist.NewGate(store, gateCfg),
		store,
		run.Config{
			Dealers:     dealers,
			DetailDelay: cfg.DetailDelay,
			Out:         out,
			Logger:      logger,
			Metrics:     metrics.NewScrape(reg),
		},
	)

	logger.Info("starting run", "dealers", len(dealers), "db", cfg.DBName)
	sum := o.Run(ctx)
	logger.Info("run complete",
		"processed", sum.Processed,
		"saved", sum.Result.Saved,
		"duplicates", sum.Result.Duplicates,
		"rejected", sum.Result.Rejected,
		"failed", sum.Result.Failed,
	)
	return ctx.Err()
}
