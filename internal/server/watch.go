package server

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/treefile"
)

// DefaultDebounce coalesces the burst of events editors emit per save.
const DefaultDebounce = 150 * time.Millisecond

// reloadBackoff is the first retry delay when a changed document does not
// parse, usually because it is still being written.
var reloadBackoff = 200 * time.Millisecond

// LoadFile reads a document from disk and registers it as an instance.
func (s *Server) LoadFile(path string) (string, error) {
	spec, hash, err := readDocument(path)
	if err != nil {
		return "", err
	}
	return s.Load(spec, hash)
}

// readDocument decodes path and hashes its bytes.
func readDocument(path string) (tree.Spec, string, error) {
	spec, data, err := treefile.ReadFileRaw(path)
	if err != nil {
		return tree.Spec{}, "", err
	}
	return spec, cache.Hash(data), nil
}

// reloadFile re-reads path into instance id. Parse failures are retried
// with backoff.
func (s *Server) reloadFile(ctx context.Context, path, id string) error {
	return cache.RetryWithBackoff(ctx, reloadBackoff, func() error {
		spec, hash, err := readDocument(path)
		if err != nil {
			if errors.Is(err, errors.ErrCodeFileNotFound) {
				return err
			}
			return cache.Retryable(err)
		}
		return s.Replace(id, spec, hash)
	})
}

// Watch reloads instance id whenever the document at path changes. It
// blocks until ctx is cancelled.
func (s *Server) Watch(ctx context.Context, path, id string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer fsw.Close()

	// Watch the directory so atomic rename-on-save is seen.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", filepath.Dir(abs))
	}
	s.logger.Info("watching", "path", abs, "id", id)

	d := newDebouncer(DefaultDebounce)
	defer d.cancel()
	target := filepath.Base(abs)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				s.logger.Warn("watched document removed", "path", abs)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				d.trigger(func() {
					if err := s.reloadFile(ctx, abs, id); err != nil {
						s.logger.Error("reload failed", "path", abs, "error", err)
					}
				})
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", err)
		}
	}
}

// debouncer runs only the last function triggered within its window.
type debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window}
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
