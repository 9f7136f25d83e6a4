package engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/secretshields/secretshields/internal/detectors"
	"pgregory.net/rapid"
)

func TestScan_PlainTextUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-z .,;\n]{0,200}`).Draw(t, "text")
		res := Scan(text, nil)
		if res.Masked != text {
			t.Fatalf("plain text modified: %q -> %q", text, res.Masked)
		}
		if len(res.Detections) != 0 {
			t.Fatalf("unexpected detections: %v", res.Detections)
		}
	})
}

func TestScan_SingleKeyPreservesLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		key := "AKIA" + rapid.StringMatching(`[A-Z0-9]{16}`).
			Filter(func(s string) bool { return !detectors.Allowlisted("AKIA" + s) }).
			Draw(t, "key")
		before := rapid.StringMatching(`[a-zé ]{0,30}`).Draw(t, "before")
		after := rapid.StringMatching(`[a-zü ]{0,30}`).Draw(t, "after")
		text := before + " " + key + " " + after

		res := Scan(text, nil)
		if len(res.Detections) != 1 {
			t.Fatalf("want 1 detection in %q, got %d", text, len(res.Detections))
		}
		if utf8.RuneCountInString(res.Masked) != utf8.RuneCountInString(text) {
			t.Fatalf("length changed: %q -> %q", text, res.Masked)
		}
		if strings.Contains(res.Masked, key) {
			t.Fatalf("raw key survived masking: %q", res.Masked)
		}
		if !strings.HasPrefix(res.Masked, before+" "+key[:4]) || !strings.HasSuffix(res.Masked, key[16:]+" "+after) {
			t.Fatalf("literal prefix/suffix or surrounding text lost: %q", res.Masked)
		}
	})
}
