package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmynk/kinship/internal/config"
	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/notify"
	"github.com/mmynk/kinship/internal/reminder"
	"github.com/mmynk/kinship/internal/storage/sqlite"
	"github.com/mmynk/kinship/pkg/logging"
)

// app holds the components every command shares.
type app struct {
	cfg    *config.Config
	broker *events.Broker
	store  *sqlite.SQLiteStore
	queue  *notify.Queue
	syncer *reminder.Syncer
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Configure(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	return cfg, nil
}

// openApp opens the record store and the notification queue.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	a := &app{cfg: cfg, broker: events.NewBroker()}
	a.store, err = sqlite.New(cfg.Database.Path, sqlite.WithPublisher(a.broker))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	slog.Debug("Storage initialized", "database", cfg.Database.Path)

	var sink reminder.Sink = notify.Disabled{}
	if cfg.Notify.Enabled {
		a.queue, err = notify.Open(notify.Options{Dir: cfg.Notify.Dir})
		if err != nil {
			a.store.Close()
			return nil, fmt.Errorf("opening notification queue: %w", err)
		}
		sink = a.queue
	}
	a.syncer = reminder.NewSyncer(a.store, sink)
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.queue != nil {
		errs = append(errs, a.queue.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("Failed to close", "error", err)
		}
	}()
	return fn(cmd.Context(), a)
}
