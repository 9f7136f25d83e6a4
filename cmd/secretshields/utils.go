package secretshields

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/secretshields/secretshields/internal/audit"
	"github.com/secretshields/secretshields/internal/config"
	"github.com/secretshields/secretshields/internal/detectors"
	"github.com/secretshields/secretshields/internal/exposure"
	"github.com/secretshields/secretshields/internal/logging"
	"github.com/secretshields/secretshields/internal/report"
	"github.com/secretshields/secretshields/internal/state"
)

// workDir is where the local config file is looked up.
func workDir() string {
	if flagDir != "" {
		return flagDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// defaultStatePath is ~/.secretshields/state.json.
func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".secretshields", "state.json")
	}
	return filepath.Join(home, ".secretshields", "state.json")
}

// applyGlobalFlags overlays persistent flags on resolved settings.
func applyGlobalFlags(s *config.Settings) {
	s.StatePath = pickString(flagStatePath, s.StatePath, defaultStatePath())
	s.LogLevel = pickString(flagLogLevel, s.LogLevel, "info")
	s.EnablePatterns = append(s.EnablePatterns, detectors.SplitList(flagEnable)...)
	s.DisablePatterns = append(s.DisablePatterns, detectors.SplitList(flagDisable)...)
}

// loadSettings resolves config files plus flags for one-shot commands.
func loadSettings(logger *log.Logger) config.Settings {
	fc, warnings := config.Load(workDir())
	s, more := config.Resolve(fc)
	for _, w := range append(warnings, more...) {
		logger.Warn("config value ignored", "reason", w)
	}
	applyGlobalFlags(&s)
	return s
}

func newLogger(prefix string) *log.Logger {
	opts := logging.DefaultOptions()
	configured := ""
	if fc, _ := config.Load(workDir()); fc.LogLevel != nil {
		configured = *fc.LogLevel
	}
	opts.Level = pickString(flagLogLevel, configured, "info")
	opts.Prefix = prefix
	return logging.New(opts)
}

// checkSelectors rejects malformed --enable/--disable globs and
// selections that leave nothing to detect.
func checkSelectors() error {
	enable, disable := detectors.SplitList(flagEnable), detectors.SplitList(flagDisable)
	if len(enable) == 0 && len(disable) == 0 {
		return nil
	}
	sel, err := detectors.Select(enable, disable)
	if err != nil {
		return err
	}
	if sel != nil && len(sel) == 0 {
		return fmt.Errorf("no patterns left after --enable/--disable")
	}
	return nil
}

// openExposures opens the exposure log at the settings' state path. The
// returned function closes the backend.
func openExposures(s config.Settings, logger *log.Logger) (*exposure.Store, state.Store, error) {
	backend, err := state.Open(s.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open state %s: %w", s.StatePath, err)
	}
	store, err := exposure.Open(backend, exposure.WithLogger(logger))
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return store, backend, nil
}

// auditPath keeps the activity trail next to the exposure log.
func auditPath(s config.Settings) string {
	return filepath.Join(filepath.Dir(s.StatePath), "audit.jsonl")
}

// recordAudit appends r to the trail beside the configured state path.
func recordAudit(r audit.Record) {
	logger := newLogger("audit")
	l := audit.NewLog(auditPath(loadSettings(logger)))
	if err := l.Record(r); err != nil {
		logger.Warn("audit record not written", "err", err)
	}
}

func printOptions() report.PrintOptions {
	return report.PrintOptions{NoColor: flagNoColor || !isTerminal(os.Stdout)}
}

// readInput reads the named file, or stdin when name is empty or "-".
func readInput(stdin io.Reader, name string) (string, error) {
	if name == "" || name == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(name)
	return string(b), err
}

func pickString(cli, configured, fallback string) string {
	if cli != "" {
		return cli
	}
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return fallback
}

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
