// Package paste adapts the detection engine to paste-time masking: text on
// its way into an editor or terminal is masked before it lands.
package paste

import (
	"fmt"
	"strings"

	"github.com/secretshields/secretshields/internal/detectors"
	"github.com/secretshields/secretshields/internal/engine"
	"github.com/secretshields/secretshields/internal/types"
)

// Mode controls how paste masking is applied.
type Mode string

const (
	// ModeOffer keeps the plain paste as the default and offers the masked
	// text as an alternative.
	ModeOffer Mode = "offer"
	// ModeAuto applies masking automatically.
	ModeAuto Mode = "auto"
	// ModeOff disables paste masking.
	ModeOff Mode = "off"
)

// Modes lists every mode.
func Modes() []Mode { return []Mode{ModeOffer, ModeAuto, ModeOff} }

// ParseMode converts a setting value to a Mode. Unknown values yield
// ModeOffer and false.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOffer, ModeAuto, ModeOff:
		return m, true
	}
	return ModeOffer, false
}

// Result is the masked form of pasted text.
type Result struct {
	Masked     string
	Count      int
	Detections []types.Detection
}

// Process scans text and reports false when it holds no secrets.
func Process(text string, enabled detectors.Set) (Result, bool) {
	res := engine.Scan(text, enabled)
	if !res.Found() {
		return Result{}, false
	}
	return Result{Masked: res.Masked, Count: len(res.Detections), Detections: res.Detections}, true
}

// Label describes the masked paste alternative.
func Label(count int) string {
	plural := ""
	if count > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Paste with SecretShields masking (%d secret%s masked)", count, plural)
}

// Outcome is what a paste produces under a mode.
type Outcome struct {
	Text string
	// Masked reports whether Text is the masked form.
	Masked bool
	// Offer is set when a masked alternative exists but was not applied.
	Offer *Result
	Count int
}

// Apply decides what a paste of text yields. accept takes the masked
// alternative in offer mode.
func Apply(mode Mode, text string, enabled detectors.Set, accept bool) Outcome {
	if mode == ModeOff {
		return Outcome{Text: text}
	}
	res, ok := Process(text, enabled)
	if !ok {
		return Outcome{Text: text}
	}
	if mode == ModeAuto || accept {
		return Outcome{Text: res.Masked, Masked: true, Count: res.Count}
	}
	return Outcome{Text: text, Offer: &res, Count: res.Count}
}
