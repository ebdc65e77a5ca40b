package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/internal/config"
)

// rebuildDelay coalesces the burst of events editors emit on save.
const rebuildDelay = 100 * time.Millisecond

func cmdWatch(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("watch", stderr)
	cfg, flags, log, err := setup(fs, args)
	if err != nil {
		return err
	}
	path := config.Path(flags)
	if path == "" {
		return errors.New("watch needs a config file: pass -config or create glbforge.yaml")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(stdout, "Watching %s (Ctrl+C to stop)\n", path)
	return watch(ctx, path, flags, cfg, log, func(out string) {
		fmt.Fprintf(stdout, "Wrote: %s\n", out)
	})
}

// watch writes the demo once and again after every change to the config file
// at path, until ctx is done. A config that fails to load is logged and the
// previous output is left in place.
func watch(ctx context.Context, path string, flags *config.Flags, cfg *config.Config, log *zap.Logger, built func(string)) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory; editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	rebuild := func(cfg *config.Config) {
		start := time.Now()
		out, err := writeDemo(cfg, log)
		if err != nil {
			log.Error("rebuild failed", zap.Error(err))
			return
		}
		log.Info("rebuilt", zap.String("path", out), zap.Duration("took", time.Since(start)))
		built(out)
	}
	rebuild(cfg)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || name != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log.Debug("config changed", zap.String("op", ev.Op.String()))
			pending = time.After(rebuildDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			next, err := config.Load(flags)
			if err != nil {
				log.Error("reloading config", zap.Error(err))
				continue
			}
			rebuild(next)
		}
	}
}
