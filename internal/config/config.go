package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape. Nil fields are
// unset and fall through to the next layer.
type FileConfig struct {
	Enabled           *bool            `yaml:"enabled,omitempty"`
	AutoMask          *bool            `yaml:"autoMask,omitempty"`
	PollIntervalMs    *int             `yaml:"pollIntervalMs,omitempty"`
	RestoreTTLSeconds *int             `yaml:"restoreTTLSeconds,omitempty"`
	CountdownMinutes  *CountdownConfig `yaml:"countdownMinutes,omitempty"`
	Detectors         map[string]bool  `yaml:"detectors,omitempty"`
	DisablePatterns   []string         `yaml:"disablePatterns,omitempty"`
	PasteMasking      *string          `yaml:"pasteMasking,omitempty"`
	StatePath         *string          `yaml:"statePath,omitempty"`
	LogLevel          *string          `yaml:"logLevel,omitempty"`

	invalid []string
}

// CountdownConfig holds per-severity reminder delays in minutes.
type CountdownConfig struct {
	Critical *int `yaml:"critical,omitempty"`
	High     *int `yaml:"high,omitempty"`
	Medium   *int `yaml:"medium,omitempty"`
}

// Invalid lists values that could not be decoded and were ignored.
func (fc FileConfig) Invalid() []string { return fc.invalid }

// LoadFile reads a YAML config file. Values of the wrong type leave their
// field unset and are reported by Invalid; only unreadable or unparsable
// files fail.
func LoadFile(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return FileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return decodeFile(&doc), nil
}

// LocalNames are the file names searched by LoadLocal, in order.
var LocalNames = []string{".secretshields.yml", ".secretshields.yaml"}

// LocalPath returns the first local config file present in dir.
func LocalPath(dir string) (string, bool) {
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// LoadLocal loads the local config file from dir.
func LoadLocal(dir string) (FileConfig, error) {
	p, ok := LocalPath(dir)
	if !ok {
		return FileConfig{}, errors.New("no local config")
	}
	return LoadFile(p)
}

// GlobalPath returns $XDG_CONFIG_HOME/secretshields/config.yml, falling
// back to ~/.config. The file need not exist.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "secretshields", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, err
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, errors.New("no global config")
	}
	return LoadFile(p)
}

// Merge overlays local on top of global field by field. Detector toggles
// merge per category.
func Merge(global, local FileConfig) FileConfig {
	out := global
	if local.Enabled != nil {
		out.Enabled = local.Enabled
	}
	if local.AutoMask != nil {
		out.AutoMask = local.AutoMask
	}
	if local.PollIntervalMs != nil {
		out.PollIntervalMs = local.PollIntervalMs
	}
	if local.RestoreTTLSeconds != nil {
		out.RestoreTTLSeconds = local.RestoreTTLSeconds
	}
	if local.CountdownMinutes != nil {
		cm := CountdownConfig{}
		if global.CountdownMinutes != nil {
			cm = *global.CountdownMinutes
		}
		if local.CountdownMinutes.Critical != nil {
			cm.Critical = local.CountdownMinutes.Critical
		}
		if local.CountdownMinutes.High != nil {
			cm.High = local.CountdownMinutes.High
		}
		if local.CountdownMinutes.Medium != nil {
			cm.Medium = local.CountdownMinutes.Medium
		}
		out.CountdownMinutes = &cm
	}
	if len(local.Detectors) > 0 {
		d := make(map[string]bool, len(global.Detectors)+len(local.Detectors))
		for k, v := range global.Detectors {
			d[k] = v
		}
		for k, v := range local.Detectors {
			d[k] = v
		}
		out.Detectors = d
	}
	if local.DisablePatterns != nil {
		out.DisablePatterns = local.DisablePatterns
	}
	if local.PasteMasking != nil {
		out.PasteMasking = local.PasteMasking
	}
	if local.StatePath != nil {
		out.StatePath = local.StatePath
	}
	if local.LogLevel != nil {
		out.LogLevel = local.LogLevel
	}
	out.invalid = append(append([]string(nil), global.invalid...), local.invalid...)
	return out
}

// Load reads and merges the global file and the local file in dir. A
// missing file is not an error; an unparsable one is skipped and reported
// in the returned warnings.
func Load(dir string) (FileConfig, []string) {
	var warnings []string
	var global, local FileConfig
	if p, err := GlobalPath(); err == nil {
		if _, statErr := os.Stat(p); statErr == nil {
			if global, err = LoadFile(p); err != nil {
				warnings = append(warnings, err.Error())
			}
		}
	}
	if p, ok := LocalPath(dir); ok {
		var err error
		if local, err = LoadFile(p); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return Merge(global, local), warnings
}

// Save writes fc as YAML to path, creating its directory.
func Save(path string, fc FileConfig) error {
	b, err := yaml.Marshal(fc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, b, 0644)
}
