// Package filesystem reads documents from local folders and watches them
// for changes with fsnotify.
package filesystem

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

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/logger"
	"github.com/custodia-labs/veritas/internal/normalisers"
)

// DefaultSettle is how long a path must be quiet before its change is emitted.
const DefaultSettle = 300 * time.Millisecond

// ErrClosed is returned when using a closed connector.
var ErrClosed = errors.New("connector closed")

// ChangeType describes a file change.
type ChangeType int

// Change types.
const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

// String returns the change name.
func (t ChangeType) String() string {
	switch t {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one settled file change. Document is nil for deletions.
type Change struct {
	Type     ChangeType
	Path     string
	Document *domain.RawDocument
}

// Connector scans and watches one root folder. Hidden files and folders and
// files without a parser are ignored.
type Connector struct {
	rootPath string
	settle   time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// minSettle bounds the settle period so the ticker interval stays positive.
const minSettle = 10 * time.Millisecond

// Option configures a Connector.
type Option func(*Connector)

// WithSettle overrides the quiet period before a change is emitted.
func WithSettle(d time.Duration) Option {
	return func(c *Connector) {
		c.settle = d
	}
}

// New creates a connector for rootPath. The path is validated on use.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{rootPath: rootPath, settle: DefaultSettle}
	for _, opt := range opts {
		opt(c)
	}
	if c.settle < minSettle {
		c.settle = minSettle
	}
	return c
}

// Root returns the watched folder.
func (c *Connector) Root() string {
	return c.rootPath
}

// LoadFile reads one file into a raw document. Source is the base name and
// the MIME type comes from the extension.
func LoadFile(path string) (*domain.RawDocument, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &domain.RawDocument{
		Source:   filepath.Base(abs),
		URI:      abs,
		MIMEType: normalisers.MIMETypeForPath(abs),
		Content:  content,
	}, nil
}

// Scan walks the root folder and emits every supported file. Both channels
// are closed when the walk ends.
func (c *Connector) Scan(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.checkRoot(); err != nil {
			errs <- err
			return
		}

		err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !normalisers.IsSupportedPath(path) {
				return nil
			}

			raw, err := LoadFile(path)
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				return nil
			}
			select {
			case docs <- *raw:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			errs <- err
		}
	}()

	return docs, errs
}

// Watch emits settled changes under the root folder until ctx is done or
// the connector is closed. New subfolders are watched as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.checkRoot(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}
	if c.watcher != nil {
		c.watcher.Close()
	}
	c.watcher = watcher

	changes := make(chan Change)
	go c.watchLoop(ctx, watcher, changes)
	return changes, nil
}

// Close stops any active watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

func (c *Connector) checkRoot() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root path error: %s does not exist", c.rootPath)
		}
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// watchLoop coalesces raw events per path and emits each path once it has
// been quiet for the settle period.
func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Change) {
	defer close(out)

	pending := make(map[string]ChangeType)
	ticker := time.NewTicker(c.settle / 2)
	defer ticker.Stop()
	lastSeen := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			c.record(watcher, event, pending, lastSeen)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)

		case now := <-ticker.C:
			for path, typ := range pending {
				if now.Sub(lastSeen[path]) < c.settle {
					continue
				}
				delete(pending, path)
				delete(lastSeen, path)

				change, ok := buildChange(path, typ)
				if !ok {
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (c *Connector) record(watcher *fsnotify.Watcher, event fsnotify.Event, pending map[string]ChangeType, lastSeen map[string]time.Time) {
	path := event.Name
	if isHidden(filepath.Base(path)) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := addTree(watcher, path); err != nil {
				logger.Warn("Cannot watch %s: %v", path, err)
			}
			return
		}
	}
	if !normalisers.IsSupportedPath(path) {
		return
	}

	var typ ChangeType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = ChangeDeleted
	case event.Has(fsnotify.Create):
		typ = ChangeCreated
	case event.Has(fsnotify.Write):
		typ = ChangeUpdated
		if prev, ok := pending[path]; ok && prev == ChangeCreated {
			typ = ChangeCreated
		}
	default:
		return
	}

	pending[path] = typ
	lastSeen[path] = time.Now()
}

// buildChange loads the file for created and updated paths. A path that
// vanished before it settled is reported as deleted.
func buildChange(path string, typ ChangeType) (Change, bool) {
	if typ == ChangeDeleted {
		if _, err := os.Stat(path); err == nil {
			typ = ChangeUpdated
		} else {
			return Change{Type: ChangeDeleted, Path: path}, true
		}
	}

	raw, err := LoadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Change{Type: ChangeDeleted, Path: path}, true
		}
		logger.Warn("Skipping %s: %v", path, err)
		return Change{}, false
	}
	return Change{Type: typ, Path: path, Document: raw}, true
}

// addTree watches root and every non-hidden folder beneath it.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether a file or folder name is hidden.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
