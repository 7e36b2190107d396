// Package reload rebuilds the installed dataset from the data directory on
// demand, on file changes and on a schedule.
package reload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"phone-dashboard-go/internal/dataset"
	"phone-dashboard-go/internal/logger"
)

type Reloader struct {
	Store    *dataset.Store
	Dir      string
	Options  dataset.LoadOptions
	Debounce time.Duration

	mu sync.Mutex
}

func New(store *dataset.Store, dir string, opts dataset.LoadOptions) *Reloader {
	return &Reloader{Store: store, Dir: dir, Options: opts, Debounce: 2 * time.Second}
}

// Reload scans Dir, loads it and installs the result. On any error the
// installed dataset is left as it was.
func (r *Reloader) Reload(ctx context.Context) (*dataset.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := logger.New().WithField("component", "reload").WithField("dir", r.Dir)

	paths, err := dataset.ScanDir(r.Dir)
	if err != nil {
		log.WithError(err).Error("scan failed")
		return nil, err
	}
	ds, err := dataset.Load(ctx, paths, r.Options)
	if err != nil {
		log.WithError(err).WithField("files", len(paths)).Error("load failed, keeping previous dataset")
		return nil, fmt.Errorf("load %s: %w", r.Dir, err)
	}
	prev := r.Store.Swap(ds)
	entry := log.WithField("dataset_id", ds.ID)
	if prev != nil {
		entry = entry.WithField("replaced", prev.ID)
	}
	entry.Info("dataset installed")
	return ds, nil
}

// Watcher reloads when data files in the directory change.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

// Watch starts watching Dir. Bursts of events within Debounce trigger a
// single reload.
func (r *Reloader) Watch(ctx context.Context) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(r.Dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", r.Dir, err)
	}
	w := &Watcher{fs: fw, done: make(chan struct{})}
	log := logger.New().WithField("component", "reload.watch").WithField("dir", r.Dir)

	go func() {
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if !dataset.IsDataFile(ev.Name) || !ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) {
					continue
				}
				log.WithField("file", ev.Name).WithField("op", ev.Op.String()).Debug("data file changed")
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(r.Debounce, func() {
					r.Reload(ctx)
				})
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				log.WithError(err).Error("watcher error")
			case <-ctx.Done():
				w.Stop()
				return
			case <-w.done:
				return
			}
		}
	}()
	log.Info("watching data directory")
	return w, nil
}

func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

// Schedule runs Reload on a standard five-field cron spec and starts the
// scheduler.
func (r *Reloader) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		r.Reload(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}
	c.Start()
	logger.New().WithField("component", "reload.cron").WithField("schedule", spec).Info("scheduled reloads started")
	return c, nil
}
