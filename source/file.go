package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/routecore/observability"
	"github.com/vyrodovalexey/routecore/template"
)

// Manifest is the YAML document a FileSource reads.
type Manifest struct {
	Endpoints []Endpoint `yaml:"endpoints"`
}

// ErrorCallback is called when a reload fails.
type ErrorCallback func(error)

// FileSource reads the endpoint set from a YAML manifest and watches it
// for changes. Every successful reload increments the version token;
// failed reloads keep the last good endpoint set.
type FileSource struct {
	path          string
	watcher       *fsnotify.Watcher
	logger        observability.Logger
	errorCallback ErrorCallback
	debounceDelay time.Duration

	mu        sync.RWMutex
	endpoints []Endpoint
	version   int64

	stopCh    chan struct{}
	stoppedCh chan struct{}
	running   bool
}

// FileSourceOption is a functional option for configuring a FileSource.
type FileSourceOption func(*FileSource)

// WithDebounceDelay sets the debounce delay for file changes.
func WithDebounceDelay(delay time.Duration) FileSourceOption {
	return func(s *FileSource) {
		s.debounceDelay = delay
	}
}

// WithLogger sets the logger for the source.
func WithLogger(logger observability.Logger) FileSourceOption {
	return func(s *FileSource) {
		s.logger = logger
	}
}

// WithErrorCallback sets the callback invoked when a reload fails.
func WithErrorCallback(callback ErrorCallback) FileSourceOption {
	return func(s *FileSource) {
		s.errorCallback = callback
	}
}

// NewFileSource creates a FileSource for the given manifest path and
// performs the initial load.
func NewFileSource(path string, opts ...FileSourceOption) (*FileSource, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	s := &FileSource{
		path:          absPath,
		logger:        observability.NopLogger(),
		debounceDelay: 100 * time.Millisecond,
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	endpoints, err := loadManifest(absPath)
	if err != nil {
		return nil, err
	}
	s.endpoints = endpoints
	s.version = 1

	return s, nil
}

// Snapshot implements EndpointSource.
func (s *FileSource) Snapshot() ([]Endpoint, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Endpoint, len(s.endpoints))
	copy(out, s.endpoints)
	return out, s.version
}

// Version returns the current version token.
func (s *FileSource) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Start begins watching the manifest file for changes. On failure the
// source stays stopped: Start may be retried and Stop is a no-op.
func (s *FileSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: editors replace files on save, which drops
	// watches attached to the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	s.watcher = watcher
	s.running = true

	s.logger.Info("started watching endpoint manifest",
		observability.String("path", s.path),
	)

	go s.watch(ctx)

	return nil
}

// Stop stops watching the manifest file.
func (s *FileSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	<-s.stoppedCh

	return s.watcher.Close()
}

// ForceReload reloads the manifest immediately.
func (s *FileSource) ForceReload() error {
	endpoints, err := loadManifest(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.endpoints = endpoints
	s.version++
	s.mu.Unlock()

	return nil
}

// watch is the main watch loop.
func (s *FileSource) watch(ctx context.Context) {
	defer close(s.stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("endpoint manifest watcher stopped due to context cancellation")
			return

		case <-s.stopCh:
			s.logger.Info("endpoint manifest watcher stopped")
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			debounceTimer, debounceCh = s.handleFileEvent(event, debounceTimer, debounceCh)

		case <-debounceCh:
			debounceCh = nil
			s.reload()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("endpoint manifest watcher error",
				observability.Error(err),
			)
			if s.errorCallback != nil {
				s.errorCallback(err)
			}
		}
	}
}

// handleFileEvent processes a file system event and returns the updated
// debounce timer.
func (s *FileSource) handleFileEvent(
	event fsnotify.Event,
	debounceTimer *time.Timer,
	debounceCh <-chan time.Time,
) (timer *time.Timer, ch <-chan time.Time) {
	if filepath.Clean(event.Name) != s.path {
		return debounceTimer, debounceCh
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return debounceTimer, debounceCh
	}

	s.logger.Debug("endpoint manifest changed",
		observability.String("path", event.Name),
		observability.String("op", event.Op.String()),
	)

	if debounceTimer != nil {
		debounceTimer.Stop()
	}
	debounceTimer = time.NewTimer(s.debounceDelay)
	return debounceTimer, debounceTimer.C
}

// reload attempts to reload the manifest, keeping the last good
// endpoint set on failure.
func (s *FileSource) reload() {
	endpoints, err := loadManifest(s.path)
	if err != nil {
		s.logger.Error("failed to reload endpoint manifest",
			observability.String("path", s.path),
			observability.Error(err),
		)
		if s.errorCallback != nil {
			s.errorCallback(err)
		}
		return
	}

	s.mu.Lock()
	s.endpoints = endpoints
	s.version++
	version := s.version
	s.mu.Unlock()

	s.logger.Info("endpoint manifest reloaded",
		observability.Int("endpoints", len(endpoints)),
		observability.Int64("version", version),
	)
}

// loadManifest reads, parses and validates a manifest file.
func loadManifest(path string) ([]Endpoint, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is resolved via filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoint manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse endpoint manifest %s: %w", path, err)
	}

	for i, ep := range manifest.Endpoints {
		if ep.Template == "" {
			return nil, fmt.Errorf("endpoint %d: template is required", i)
		}
		if _, err := template.Parse(ep.Template); err != nil {
			return nil, fmt.Errorf("endpoint %d: %w", i, err)
		}
	}

	return manifest.Endpoints, nil
}
