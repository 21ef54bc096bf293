package library

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	debounce time.Duration
	logger   *zap.Logger
}

// WithDebounce sets how long a bundle must stay quiet before fn is called.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		if d > 0 {
			c.debounce = d
		}
	}
}

func WithLogger(logger *zap.Logger) WatchOption {
	return func(c *watchConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Watch calls fn with the contract name whenever a bundle in the directory is
// created or written. Bursts of events for one name collapse into one call.
// Watch blocks until ctx is done.
func (l *Library) Watch(ctx context.Context, fn func(name string), opts ...WatchOption) error {
	cfg := watchConfig{debounce: defaultDebounce, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch %s: %w", l.dir, err)
	}
	cfg.logger.Info("watching contracts", zap.String("dir", l.dir))

	ticker := time.NewTicker(cfg.debounce / 2)
	defer ticker.Stop()
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name, ok := NameFromPath(event.Name)
			if !ok {
				continue
			}
			pending[name] = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cfg.logger.Warn("contract watcher error", zap.Error(err))
		case now := <-ticker.C:
			for name, last := range pending {
				if now.Sub(last) < cfg.debounce {
					continue
				}
				delete(pending, name)
				cfg.logger.Debug("contract changed", zap.String("name", name))
				fn(name)
			}
		}
	}
}
