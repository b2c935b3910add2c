package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/statelet/statelet"
	"github.com/statelet/statelet/config"
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// watchCmd keeps a resource's list refreshed and prints changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a configured resource's list",
	Long: `Watch a configured resource, refreshing its cached list on an interval
and printing every change.

The command will:
  - Load configuration from the specified YAML file
  - Fetch the resource's list immediately, then on the configured interval
  - Print the cached list whenever it changes

With --reload, the config file is watched for changes and the watch loop
is rebuilt when it is rewritten.

Runs until interrupted (Ctrl+C) or SIGTERM.

Example:
  statelet watch -c config.yaml -r tasks
  statelet watch -c config.yaml -r tasks --reload`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	watchCmd.Flags().StringP("resource", "r", "", "resource name to watch (required)")
	watchCmd.Flags().Bool("reload", false, "reload the config file when it changes")
	_ = watchCmd.MarkFlagRequired("config")
	_ = watchCmd.MarkFlagRequired("resource")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	resourceName, _ := cmd.Flags().GetString("resource")
	reload, _ := cmd.Flags().GetBool("reload")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// config hot-reload: each successful reload restarts the watch loop
	reloads := make(chan *config.Config, 1)
	if reload {
		watcher, err := config.NewWatcher(configFile, func(next *config.Config) {
			select {
			case reloads <- next:
			default:
				// a reload is already pending, keep the newest later
			}
		}, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("config watcher failed", "error", err)
			}
		}()
	}

	for {
		watchCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- watchResource(watchCtx, cfg, resourceName, logger)
		}()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			logger.Info("statelet stopped")
			return nil

		case next := <-reloads:
			cancel()
			<-done
			cfg = next
			logger.Info("restarting watch with reloaded config", "resource", resourceName)

		case err := <-done:
			cancel()
			return err
		}
	}
}

// watchResource runs one refresh loop against the named resource until
// ctx is cancelled.
func watchResource(ctx context.Context, cfg *config.Config, name string, logger *slog.Logger) error {
	rc, ok := cfg.Resource(name)
	if !ok {
		return fmt.Errorf("resource %q not found in config", name)
	}

	client, err := config.BuildClient(cfg, logger)
	if err != nil {
		return err
	}
	resources, err := config.BuildResources(cfg, client)
	if err != nil {
		return err
	}
	resource := resources[name]

	store, err := statelet.NewStore(statelet.RecordFactory,
		statelet.WithLogger[statelet.Record](logger),
		statelet.WithListKey[statelet.Record](resource.ListKey()),
	)
	if err != nil {
		return err
	}

	sub := store.List().Subscribe(func(records []statelet.Record) {
		ids := make([]uint64, len(records))
		for i, r := range records {
			ids[i] = r.ID
		}
		logger.Info("list updated", "resource", name, "count", len(records), "ids", ids)
	})
	defer sub.Cancel()

	logger.Info("watching resource",
		"resource", name,
		"path", resource.Path(),
		"interval", cfg.ResourceInterval(rc).String(),
	)

	refresher, err := statelet.NewRefresher(cfg.ResourceInterval(rc), func(ctx context.Context) error {
		_, err := store.FetchKeyedList(ctx, resource.List(nil))
		return err
	}, logger)
	if err != nil {
		return err
	}
	return refresher.Run(ctx)
}
