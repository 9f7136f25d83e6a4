package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/secretshields/secretshields/internal/logging"
)

// Source supplies live settings to a session.
type Source interface {
	Settings() Settings
	// SetEnabled persists the master switch.
	SetEnabled(on bool) error
}

// Static is an in-memory Source.
type Static struct {
	mu sync.Mutex
	s  Settings
}

// NewStatic returns a Source fixed at s until SetEnabled is called.
func NewStatic(s Settings) *Static { return &Static{s: s.Clone()} }

func (st *Static) Settings() Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s.Clone()
}

func (st *Static) SetEnabled(on bool) error {
	st.mu.Lock()
	st.s.Enabled = on
	st.mu.Unlock()
	return nil
}

// Update replaces the held settings.
func (st *Static) Update(s Settings) {
	st.mu.Lock()
	st.s = s.Clone()
	st.mu.Unlock()
}

// FileSource resolves settings from the global and local config files and
// re-resolves them whenever either file changes on disk.
type FileSource struct {
	dir      string
	override func(*Settings)
	debounce time.Duration
	log      *log.Logger

	mu       sync.RWMutex
	cur      Settings
	onChange []func(Settings)

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// SourceOption configures a FileSource.
type SourceOption func(*FileSource)

// WithOverride applies fn to every resolved Settings, e.g. CLI flags.
func WithOverride(fn func(*Settings)) SourceOption {
	return func(fs *FileSource) { fs.override = fn }
}

// WithSourceLogger sets the logger.
func WithSourceLogger(l *log.Logger) SourceOption {
	return func(fs *FileSource) { fs.log = l }
}

// WithDebounce sets the minimum gap between reloads.
func WithDebounce(d time.Duration) SourceOption {
	return func(fs *FileSource) { fs.debounce = d }
}

// NewFileSource loads settings for the local directory dir.
func NewFileSource(dir string, opts ...SourceOption) *FileSource {
	fs := &FileSource{dir: dir, debounce: 100 * time.Millisecond}
	for _, o := range opts {
		o(fs)
	}
	fs.log = logging.Or(fs.log)
	fs.cur = fs.resolve()
	return fs
}

func (fs *FileSource) resolve() Settings {
	fc, warnings := Load(fs.dir)
	s, more := Resolve(fc)
	for _, w := range append(warnings, more...) {
		fs.log.Warn("config value ignored", "reason", w)
	}
	if fs.override != nil {
		fs.override(&s)
	}
	return s
}

func (fs *FileSource) Settings() Settings {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.cur.Clone()
}

// OnChange registers fn to receive settings after each reload.
func (fs *FileSource) OnChange(fn func(Settings)) {
	fs.mu.Lock()
	fs.onChange = append(fs.onChange, fn)
	fs.mu.Unlock()
}

// Reload re-reads both files.
func (fs *FileSource) Reload() {
	s := fs.resolve()
	fs.mu.Lock()
	fs.cur = s
	fns := make([]func(Settings), len(fs.onChange))
	copy(fns, fs.onChange)
	fs.mu.Unlock()
	fs.log.Debug("settings reloaded", "enabled", s.Enabled, "autoMask", s.AutoMask)
	for _, fn := range fns {
		fn(s.Clone())
	}
}

// WritePath is the file SetEnabled writes: the local file when one
// exists, else the global file.
func (fs *FileSource) WritePath() (string, error) {
	if p, ok := LocalPath(fs.dir); ok {
		return p, nil
	}
	return GlobalPath()
}

// SetEnabled writes enabled into the config file and updates the live
// settings immediately.
func (fs *FileSource) SetEnabled(on bool) error {
	p, err := fs.WritePath()
	if err != nil {
		return err
	}
	if err := setKey(p, "enabled", on); err != nil {
		return fmt.Errorf("update %s: %w", p, err)
	}
	fs.mu.Lock()
	fs.cur.Enabled = on
	fs.mu.Unlock()
	fs.log.Info("monitoring switch saved", "enabled", on, "path", p)
	return nil
}

// Watch starts reloading on changes to either config file. Directories
// are watched so editors that replace files by rename are seen.
func (fs *FileSource) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	targets := map[string]bool{}
	dirs := map[string]bool{}
	for _, name := range LocalNames {
		p := filepath.Join(fs.dir, name)
		targets[p] = true
		dirs[filepath.Dir(p)] = true
	}
	if gp, err := GlobalPath(); err == nil {
		targets[gp] = true
		dirs[filepath.Dir(gp)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			fs.log.Debug("cannot watch config dir", "dir", d, "err", err)
		}
	}
	fs.watcher = w
	fs.done = make(chan struct{})
	fs.wg.Add(1)
	go fs.run(targets)
	return nil
}

func (fs *FileSource) run(targets map[string]bool) {
	defer fs.wg.Done()
	timer := time.NewTimer(fs.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-fs.done:
			return
		case ev, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if !targets[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// editors often write in several steps; reload once they settle
			timer.Reset(fs.debounce)
		case <-timer.C:
			fs.Reload()
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			fs.log.Debug("watcher error", "err", err)
		}
	}
}

// Close stops watching.
func (fs *FileSource) Close() error {
	if fs.watcher == nil {
		return nil
	}
	close(fs.done)
	err := fs.watcher.Close()
	fs.wg.Wait()
	fs.watcher = nil
	return err
}
