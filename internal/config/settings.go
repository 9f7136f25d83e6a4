package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/secretshields/secretshields/internal/detectors"
	"github.com/secretshields/secretshields/internal/paste"
	"github.com/secretshields/secretshields/internal/types"
)

// Settings are the resolved values a session runs with.
type Settings struct {
	Enabled          bool
	AutoMask         bool
	PollInterval     time.Duration
	RestoreTTL       time.Duration
	CountdownMinutes map[types.Severity]int
	Detectors        map[detectors.Category]bool
	DisablePatterns  []string
	// EnablePatterns narrows detection to matching ids or categories. It
	// is only set from the command line.
	EnablePatterns []string
	PasteMasking   paste.Mode
	StatePath      string
	LogLevel       string
}

// Default values.
const (
	DefaultPollInterval = 1000 * time.Millisecond
	DefaultRestoreTTL   = 60 * time.Second
)

// DefaultCountdownMinutes returns the reminder delay per severity.
func DefaultCountdownMinutes() map[types.Severity]int {
	return map[types.Severity]int{
		types.SevCritical: 15,
		types.SevHigh:     60,
		types.SevMedium:   240,
	}
}

// Defaults returns the settings used when no file sets anything.
func Defaults() Settings {
	dets := make(map[detectors.Category]bool)
	for _, c := range detectors.Categories() {
		dets[c] = true
	}
	return Settings{
		Enabled:          true,
		AutoMask:         true,
		PollInterval:     DefaultPollInterval,
		RestoreTTL:       DefaultRestoreTTL,
		CountdownMinutes: DefaultCountdownMinutes(),
		Detectors:        dets,
		PasteMasking:     paste.ModeOffer,
		LogLevel:         "info",
	}
}

// Resolve applies fc on top of Defaults. Malformed values keep the
// default and are described in the returned warnings.
func Resolve(fc FileConfig) (Settings, []string) {
	s := Defaults()
	warn := append([]string(nil), fc.invalid...)

	if fc.Enabled != nil {
		s.Enabled = *fc.Enabled
	}
	if fc.AutoMask != nil {
		s.AutoMask = *fc.AutoMask
	}
	if fc.PollIntervalMs != nil {
		if *fc.PollIntervalMs > 0 {
			s.PollInterval = time.Duration(*fc.PollIntervalMs) * time.Millisecond
		} else {
			warn = append(warn, fmt.Sprintf("pollIntervalMs must be positive, got %d", *fc.PollIntervalMs))
		}
	}
	if fc.RestoreTTLSeconds != nil {
		if *fc.RestoreTTLSeconds > 0 {
			s.RestoreTTL = time.Duration(*fc.RestoreTTLSeconds) * time.Second
		} else {
			warn = append(warn, fmt.Sprintf("restoreTTLSeconds must be positive, got %d", *fc.RestoreTTLSeconds))
		}
	}
	if cm := fc.CountdownMinutes; cm != nil {
		for sev, v := range map[types.Severity]*int{
			types.SevCritical: cm.Critical,
			types.SevHigh:     cm.High,
			types.SevMedium:   cm.Medium,
		} {
			if v == nil {
				continue
			}
			if *v > 0 {
				s.CountdownMinutes[sev] = *v
			} else {
				warn = append(warn, fmt.Sprintf("countdownMinutes.%s must be positive, got %d", sev, *v))
			}
		}
	}
	known := make(map[detectors.Category]bool)
	for _, c := range detectors.Categories() {
		known[c] = true
	}
	for k, on := range fc.Detectors {
		c := detectors.Category(k)
		if !known[c] {
			warn = append(warn, fmt.Sprintf("unknown detector category %q", k))
			continue
		}
		s.Detectors[c] = on
	}
	for _, g := range fc.DisablePatterns {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if !doublestar.ValidatePattern(g) {
			warn = append(warn, fmt.Sprintf("invalid disablePatterns entry %q", g))
			continue
		}
		s.DisablePatterns = append(s.DisablePatterns, g)
	}
	if fc.PasteMasking != nil {
		m, ok := paste.ParseMode(*fc.PasteMasking)
		if !ok {
			warn = append(warn, fmt.Sprintf("unknown pasteMasking mode %q", *fc.PasteMasking))
		}
		s.PasteMasking = m
	}
	if fc.StatePath != nil {
		s.StatePath = *fc.StatePath
	}
	if fc.LogLevel != nil {
		s.LogLevel = *fc.LogLevel
	}
	return s, warn
}

// Countdown returns the reminder delay in minutes for sev.
func (s Settings) Countdown(sev types.Severity) int {
	if m, ok := s.CountdownMinutes[sev]; ok && m > 0 {
		return m
	}
	if m, ok := DefaultCountdownMinutes()[sev]; ok {
		return m
	}
	return DefaultCountdownMinutes()[types.SevMedium]
}

// EnabledPatterns derives the engine's pattern set from the detector
// toggles and disablePatterns. It is nil when every pattern is on.
func (s Settings) EnabledPatterns() detectors.Set {
	set := detectors.CategorySet(s.Detectors)
	if len(s.DisablePatterns) == 0 && len(s.EnablePatterns) == 0 {
		return set
	}
	sel, err := detectors.Select(s.EnablePatterns, s.DisablePatterns)
	if err != nil {
		return set
	}
	return detectors.Intersect(set, sel)
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	out.CountdownMinutes = make(map[types.Severity]int, len(s.CountdownMinutes))
	for k, v := range s.CountdownMinutes {
		out.CountdownMinutes[k] = v
	}
	out.Detectors = make(map[detectors.Category]bool, len(s.Detectors))
	for k, v := range s.Detectors {
		out.Detectors[k] = v
	}
	out.DisablePatterns = append([]string(nil), s.DisablePatterns...)
	out.EnablePatterns = append([]string(nil), s.EnablePatterns...)
	return out
}
