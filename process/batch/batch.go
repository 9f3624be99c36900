// Package batch rates directories of status screenshots, once or as they
// arrive.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"statrater/pkg/ocr"
	"statrater/pkg/rating"
	"statrater/pkg/stats"
)

// Debounce windows for watch mode: pending files are checked every
// watchTick and handed out once unchanged for watchSettle.
const (
	watchTick   = 250 * time.Millisecond
	watchSettle = 300 * time.Millisecond
)

// Options configures Run.
type Options struct {
	Dir    string
	Locale string
	Buffs  stats.BuffSet
	// Workers bounds concurrent recognitions; 0 means NumCPU.
	Workers int
	Watch   bool
	// Processed receives successfully rated files. Empty leaves them in place.
	Processed string
	// MaxArchiveBytes shrinks archived images above this size; 0 disables it.
	MaxArchiveBytes int64
	Verbose         bool
}

// Result is the outcome for one file.
type Result struct {
	File    string
	Outcome rating.Outcome
	Err     error
}

// Sink receives results. Implementations must be safe for concurrent use.
type Sink interface {
	// Claim reports whether name should be rated now. A true result reserves
	// name until the matching Put, so concurrent claims for it return false.
	Claim(name string) bool
	Put(r Result) error
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

func (o Options) logV(format string, args ...any) {
	if o.Verbose {
		log.Printf(format, args...)
	}
}

// Run rates every screenshot in opts.Dir. In watch mode it keeps rating new
// files until ctx is cancelled, which is not reported as an error.
func Run(ctx context.Context, svc *rating.Service, sink Sink, opts Options) error {
	files, err := ListImages(opts.Dir)
	if err != nil {
		return err
	}
	if opts.Processed != "" {
		if err := os.MkdirAll(opts.Processed, 0o755); err != nil {
			return err
		}
	}
	log.Printf("Scanning %d files in %s (workers=%d)", len(files), opts.Dir, opts.workers())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, name := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return processFile(gctx, svc, sink, opts, name) })
	}
	// the watcher must not hold a worker slot
	var werr error
	if opts.Watch {
		werr = watch(gctx, g, svc, sink, opts)
	}
	err = g.Wait()
	if err == nil {
		err = werr
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// ListImages returns the supported screenshot names in dir, sorted.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !ocr.SupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// processFile rates one file. Rating failures go to the sink; only sink
// failures and cancellation stop the run.
func processFile(ctx context.Context, svc *rating.Service, sink Sink, opts Options, name string) error {
	if !sink.Claim(name) {
		opts.logV("SKIP already rated or in progress %s", name)
		return nil
	}
	path := filepath.Join(opts.Dir, name)
	out, err := svc.Image(ctx, opts.Locale, path, opts.Buffs)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		opts.logV("RATE fail %s: %v", name, err)
	} else {
		opts.logV("RATE %s score=%.1f guidance=%s", name, out.Report.Result.Score, out.Report.Result.GuidanceCode)
	}
	if perr := sink.Put(Result{File: name, Outcome: out, Err: err}); perr != nil {
		return fmt.Errorf("sink %s: %w", name, perr)
	}
	if err == nil && opts.Processed != "" {
		if merr := archive(path, filepath.Join(opts.Processed, name), opts.MaxArchiveBytes); merr != nil {
			log.Printf("WARN failed to move processed file %s: %v", name, merr)
		} else {
			opts.logV("moved processed %s to %s", name, opts.Processed)
		}
	}
	return nil
}

// watch feeds newly created files into g once they stop changing.
func watch(ctx context.Context, g *errgroup.Group, svc *rating.Service, sink Sink, opts Options) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(opts.Dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", opts.Dir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if ocr.SupportedExt(name) {
				pending[name] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) <= watchSettle {
					continue
				}
				delete(pending, name)
				g.Go(func() error { return processFile(ctx, svc, sink, opts, name) })
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}
