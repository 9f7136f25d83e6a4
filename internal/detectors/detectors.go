package detectors

import (
	"fmt"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// registry order is also the tie-break order when two patterns claim the
// exact same span.
var all = concat(
	awsPatterns, githubPatterns, stripePatterns, openAIPatterns, anthropicPatterns,
	googlePatterns, dbURIPatterns, privateKeyPatterns, jwtPatterns,
)

var byID = func() map[string]SecretPattern {
	m := make(map[string]SecretPattern, len(all))
	for _, p := range all {
		if _, dup := m[p.ID]; dup {
			panic("detectors: duplicate pattern id " + p.ID)
		}
		m[p.ID] = p
	}
	return m
}()

func concat(groups ...[]SecretPattern) []SecretPattern {
	var out []SecretPattern
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// All returns a copy of the registry in priority order.
func All() []SecretPattern {
	out := make([]SecretPattern, len(all))
	copy(out, all)
	return out
}

// ByID looks up a pattern by its identifier.
func ByID(id string) (SecretPattern, bool) {
	p, ok := byID[id]
	return p, ok
}

// IDs returns every pattern identifier in priority order.
func IDs() []string {
	ids := make([]string, len(all))
	for i, p := range all {
		ids[i] = p.ID
	}
	return ids
}

// Set is the collection of active pattern identifiers. Keys may be pattern
// IDs or category names. A nil Set means every pattern is active.
type Set map[string]bool

// NewSet builds a Set from pattern IDs and/or category names.
func NewSet(keys ...string) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}

// Enabled reports whether p is active under s.
func (s Set) Enabled(p SecretPattern) bool {
	if s == nil {
		return true
	}
	return s[p.ID] || s[string(p.Category)]
}

// Active returns the patterns enabled by s, in priority order.
func Active(s Set) []SecretPattern {
	if s == nil {
		return all
	}
	var out []SecretPattern
	for _, p := range all {
		if s.Enabled(p) {
			out = append(out, p)
		}
	}
	return out
}

// CategorySet converts per-category toggles into a Set. Categories missing
// from toggles are enabled. When nothing is disabled it returns nil so the
// engine can skip per-pattern filtering.
func CategorySet(toggles map[Category]bool) Set {
	s := Set{}
	allOn := true
	for _, c := range Categories() {
		if on, ok := toggles[c]; ok && !on {
			allOn = false
			continue
		}
		s[string(c)] = true
	}
	if allOn {
		return nil
	}
	return s
}

// Select narrows the registry with glob selectors matched against pattern
// IDs and category names (e.g. "openai-*", "jwts"). An empty enable list
// starts from every pattern. The result is expressed in pattern IDs, or
// nil when every pattern survives.
func Select(enable, disable []string) (Set, error) {
	picked := make(map[string]bool, len(all))
	for _, p := range all {
		on := len(enable) == 0
		if !on {
			m, err := matchAny(enable, p)
			if err != nil {
				return nil, err
			}
			on = m
		}
		if on {
			off, err := matchAny(disable, p)
			if err != nil {
				return nil, err
			}
			on = !off
		}
		picked[p.ID] = on
	}
	s := Set{}
	for id, on := range picked {
		if on {
			s[id] = true
		}
	}
	if len(s) == len(all) {
		return nil, nil
	}
	return s, nil
}

// Intersect returns the patterns active under both sets.
func Intersect(a, b Set) Set {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	s := Set{}
	for _, p := range all {
		if a.Enabled(p) && b.Enabled(p) {
			s[p.ID] = true
		}
	}
	return s
}

func matchAny(globs []string, p SecretPattern) (bool, error) {
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		for _, name := range []string{p.ID, string(p.Category)} {
			ok, err := doublestar.Match(g, name)
			if err != nil {
				return false, fmt.Errorf("bad detector selector %q: %w", g, err)
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// SplitList splits a comma-separated selector list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
