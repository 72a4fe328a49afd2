// Package refresh keeps a generated moonday calendar current for serve
// mode. The generation window starts at "now", so the cached result is
// rebuilt on a cron schedule and whenever the config file changes.
package refresh

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"moonday/internal/config"
	"moonday/internal/ics"
	appLog "moonday/internal/log"
	"moonday/internal/model"
	"moonday/internal/moonday"
)

// Snapshot is one generation result. Snapshots are never mutated after
// being published.
type Snapshot struct {
	Config      *config.Config
	Options     moonday.Options
	Events      []model.EventDescriptor
	ICS         []byte
	GeneratedAt time.Time
}

// Preview returns the first moonday.PreviewLimit rows.
func (s *Snapshot) Preview() []moonday.PreviewRow {
	return moonday.Preview(s.Events, moonday.PreviewLimit, s.Options.Display)
}

// Generate runs the pipeline for cfg at now and renders the calendar.
func Generate(gen *moonday.Generator, cfg *config.Config, now time.Time) (*Snapshot, error) {
	if err := cfg.Validate(now); err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	events, err := gen.Generate(opts, now)
	if err != nil {
		return nil, err
	}

	body := ics.Export(events, ics.ExportOptions{
		Name:     cfg.CalendarName,
		Domain:   cfg.Domain,
		Timezone: opts.Location.String(),
		Now:      now,
	})

	return &Snapshot{
		Config:      cfg.Clone(),
		Options:     opts,
		Events:      events,
		ICS:         []byte(body),
		GeneratedAt: now,
	}, nil
}

// Refresher owns the current config and the last published snapshot.
type Refresher struct {
	path      string
	gen       *moonday.Generator
	now       func() time.Time
	overrides func(*config.Config)

	mu      sync.RWMutex
	cfg     *config.Config
	snap    *Snapshot
	cron    *cron.Cron
	entryID cron.EntryID
}

// New constructs a Refresher. path may be empty, which disables config
// reloads.
func New(cfg *config.Config, path string, gen *moonday.Generator) *Refresher {
	return &Refresher{
		path: path,
		gen:  gen,
		now:  time.Now,
		cfg:  cfg.Clone(),
	}
}

// SetClock replaces the source of "now". Call before Run.
func (r *Refresher) SetClock(now func() time.Time) {
	r.now = now
}

// SetOverrides registers a hook applied to every reloaded config before it
// is validated, so command-line overrides survive file edits. Call before
// Run.
func (r *Refresher) SetOverrides(fn func(*config.Config)) {
	r.overrides = fn
}

// Config returns a copy of the active config.
func (r *Refresher) Config() *config.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Clone()
}

// Generator returns the generator used for refreshes.
func (r *Refresher) Generator() *moonday.Generator {
	return r.gen
}

// Snapshot returns the last published snapshot, generating one on first use.
func (r *Refresher) Snapshot() (*Snapshot, error) {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return r.Refresh()
}

// Refresh regenerates from the active config and publishes the result. On
// failure the previous snapshot stays in place.
func (r *Refresher) Refresh() (*Snapshot, error) {
	cfg := r.Config()
	snap, err := Generate(r.gen, cfg, r.now())
	if err != nil {
		appLog.Error("refresh: generation failed", err)
		return nil, err
	}

	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()

	appLog.Info("refresh: calendar regenerated",
		"events", len(snap.Events),
		"up_to_year", snap.Options.UpToYear,
		"timezone", snap.Options.Location.String(),
	)
	return snap, nil
}

// Reload re-reads the config file, reapplies the overrides hook, then
// regenerates. An invalid file is logged and the previous config kept.
//
// Only generation settings, the calendar identity and the refresh schedule
// take effect; the listen address, basic auth and the schedule's time zone
// are fixed when Run starts.
func (r *Refresher) Reload() error {
	if r.path == "" {
		return errors.New("refresh: no config path")
	}
	cfg, err := config.Load(r.path)
	if err != nil {
		return err
	}
	if r.overrides != nil {
		r.overrides(cfg)
	}
	if err := cfg.Validate(r.now()); err != nil {
		return err
	}

	r.mu.Lock()
	prevCron := r.cfg.RefreshCron
	r.cfg = cfg
	r.mu.Unlock()

	if cfg.RefreshCron != prevCron {
		if err := r.schedule(cfg.RefreshCron); err != nil {
			appLog.Error("refresh: reschedule failed", err, "refresh", cfg.RefreshCron)
		}
	}

	_, err = r.Refresh()
	return err
}

// Run publishes an initial snapshot, then keeps it current until ctx is
// canceled.
func (r *Refresher) Run(ctx context.Context) error {
	if _, err := r.Refresh(); err != nil {
		return err
	}

	cfg := r.Config()
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cron = cron.New(cron.WithLocation(loc))
	r.mu.Unlock()

	if err := r.schedule(cfg.RefreshCron); err != nil {
		return err
	}
	r.cron.Start()
	appLog.Info("refresh: scheduler started", "refresh", cfg.RefreshCron, "config_path", r.path)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		<-r.cron.Stop().Done()
		return nil
	})
	if r.path != "" {
		g.Go(func() error {
			return r.watch(gctx)
		})
	}

	err = g.Wait()
	appLog.Info("refresh: scheduler stopped")
	return err
}

func (r *Refresher) schedule(spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron == nil {
		return nil
	}

	id, err := r.cron.AddFunc(spec, func() {
		_, _ = r.Refresh()
	})
	if err != nil {
		return err
	}
	if r.entryID != 0 {
		r.cron.Remove(r.entryID)
	}
	r.entryID = id
	return nil
}

// watch reloads on changes to the config file. The parent directory is
// watched so that editors replacing the file by rename are noticed.
func (r *Refresher) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(r.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			appLog.Info("refresh: config changed", "path", ev.Name, "op", ev.Op.String())
			if err := r.Reload(); err != nil {
				appLog.Error("refresh: reload failed; keeping previous config", err, "path", r.path)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			appLog.Error("refresh: watcher error", err)
		}
	}
}
