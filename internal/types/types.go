package types

// Severity is the risk level of a credential family. It also selects the
// rotation countdown applied when a secret of that family is re-exposed.
type Severity string

const (
	SevCritical Severity = "critical"
	SevHigh     Severity = "high"
	SevMedium   Severity = "medium"
)

// Severities lists every severity from most to least urgent.
func Severities() []Severity {
	return []Severity{SevCritical, SevHigh, SevMedium}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SevCritical, SevHigh, SevMedium:
		return true
	}
	return false
}

// Span is a half-open byte range [Start, End) into scanned text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Detection describes one surviving match of a secret pattern. It carries
// the rendered masked substring and the span it replaced, never the raw
// secret value.
type Detection struct {
	PatternID   string   `json:"pattern_id"`
	Name        string   `json:"name"`
	Provider    string   `json:"provider"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Masked      string   `json:"masked"`
	RotationURL string   `json:"rotation_url,omitempty"`
}

// Span returns the byte range of the original text that was masked.
func (d Detection) Span() Span { return Span{Start: d.Start, End: d.End} }
