// Package watcher keeps a directory tree in sync with the document index.
//
// Files that appear or change are re-ingested after a quiet period; files that
// disappear are removed from the index. Hidden files and directories are ignored.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before it is processed.
const DefaultDebounce = 500 * time.Millisecond

// ErrNotDirectory is returned when the watched path is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Watcher ingests files from a directory and follows changes to it.
type Watcher struct {
	dir       string
	ingest    driving.IngestService
	documents driving.DocumentService
	debounce  time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan fsnotify.Event
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed path is processed.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService, documents driving.DocumentService, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	w := &Watcher{
		dir:       abs,
		ingest:    ingest,
		documents: documents,
		debounce:  DefaultDebounce,
		timers:    make(map[string]*time.Timer),
		ready:     make(chan fsnotify.Event, 64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the absolute path being watched.
func (w *Watcher) Dir() string {
	return w.dir
}

// Scan ingests every supported file under the directory that is not already
// indexed at its current modification time. It returns the number ingested.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	var ingested int
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path != w.dir && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("watch: stat %s: %v", path, err)
			return nil
		}
		if w.upToDate(ctx, path, info.ModTime()) {
			logger.Debug("watch: %s unchanged", path)
			return nil
		}
		if w.reindex(ctx, path) {
			ingested++
		}
		return nil
	})
	return ingested, err
}

// Run watches the directory until ctx is cancelled.
// Events for the same path are coalesced and handled one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.dir); err != nil {
		return err
	}
	logger.Info("watch: watching %s", w.dir)

	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch: stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && !isHidden(filepath.Base(event.Name)) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						logger.Warn("watch: %v", err)
					}
					continue
				}
			}
			w.schedule(ctx, event)

		case event := <-w.ready:
			w.handleEvent(ctx, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// addTree adds dir and its non-hidden subdirectories to fw.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// schedule delivers event to the run loop once its path has been quiet for the debounce period.
func (w *Watcher) schedule(ctx context.Context, event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[event.Name]; ok {
		t.Stop()
	}
	w.timers[event.Name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, event.Name)
		w.mu.Unlock()
		select {
		case w.ready <- event:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// handleEvent applies one filesystem event to the index.
// It reports whether the index was changed.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) || w.inHiddenDir(event.Name) {
		return false
	}

	switch {
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Already gone again; a Remove event follows.
			return false
		}
		if info.IsDir() {
			return false
		}
		return w.reindex(ctx, event.Name)

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return w.remove(ctx, event.Name)

	default:
		return false
	}
}

// reindex replaces any indexed version of path with a fresh ingestion.
func (w *Watcher) reindex(ctx context.Context, path string) bool {
	w.remove(ctx, path)

	rec, err := w.ingest.IngestFile(ctx, path, filepath.Base(path))
	if errors.Is(err, domain.ErrUnsupportedFileType) {
		logger.Debug("watch: skipping %s: %v", path, err)
		return false
	}
	if err != nil {
		logger.Warn("watch: ingest %s: %v", path, err)
		return rec != nil
	}
	logger.Info("watch: indexed %s as %s (%d chunks)", path, rec.ID, rec.ChunkCount)
	return true
}

// remove deletes the indexed document for path, if any.
func (w *Watcher) remove(ctx context.Context, path string) bool {
	rec, err := w.documents.GetByPath(ctx, path)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			logger.Warn("watch: lookup %s: %v", path, err)
		}
		return false
	}
	removed, err := w.documents.Delete(ctx, rec.ID)
	if err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
		logger.Warn("watch: remove %s: %v", path, err)
		return false
	}
	logger.Info("watch: removed %s (%d chunks)", path, removed)
	return true
}

// upToDate reports whether path was ingested successfully after its last modification.
func (w *Watcher) upToDate(ctx context.Context, path string, modTime time.Time) bool {
	rec, err := w.documents.GetByPath(ctx, path)
	if err != nil {
		return false
	}
	return rec.Status == domain.IngestionCompleted && !modTime.After(rec.CreatedAt)
}

// inHiddenDir reports whether path sits below a hidden directory inside the watched tree.
func (w *Watcher) inHiddenDir(path string) bool {
	rel, err := filepath.Rel(w.dir, filepath.Dir(path))
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if isHidden(part) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
