package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"raven/domain/core/schema"
)

const defaultDebounce = 500 * time.Millisecond

// LoadSchemas replaces the registry contents with the built-in schemas plus
// those in path. An empty path keeps only the built-ins.
func LoadSchemas(registry *schema.Registry, path string) error {
	schemas := schema.DefaultSchemas()
	if path != "" {
		loaded, err := schema.LoadFile(path)
		if err != nil {
			return err
		}
		schemas = append(schemas, loaded...)
	}
	return registry.Replace(schemas)
}

// SchemaWatcher reloads the schema file into a registry whenever it changes.
// A file that fails to load leaves the previous schemas in place.
type SchemaWatcher struct {
	path     string
	registry *schema.Registry
	logger   *zap.Logger
	debounce time.Duration

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSchemaWatcher creates a watcher for path. Call Start to begin watching.
func NewSchemaWatcher(path string, registry *schema.Registry, logger *zap.Logger) *SchemaWatcher {
	return &SchemaWatcher{
		path:     path,
		registry: registry,
		logger:   logger,
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start watches the file's directory, so editors that replace the file on
// save are still seen
func (w *SchemaWatcher) Start() error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	w.logger.Info("Schema hot reloading enabled", zap.String("file", w.path))
	return nil
}

// Reload loads the file now and swaps it into the registry
func (w *SchemaWatcher) Reload() error {
	if err := LoadSchemas(w.registry, w.path); err != nil {
		w.logger.Error("Schema reload failed, keeping previous schemas",
			zap.String("file", w.path),
			zap.Error(err),
		)
		return err
	}

	w.logger.Info("Schemas reloaded",
		zap.String("file", w.path),
		zap.Strings("types", w.registry.Types()),
	)
	return nil
}

// Stop ends watching; it is safe to call more than once
func (w *SchemaWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			<-w.done
		}
	})
}

func (w *SchemaWatcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	target := filepath.Clean(w.path)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.logger.Debug("Schema file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				_ = w.Reload()
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			w.logger.Info("Stopping schema watcher")
			return
		}
	}
}
