package detectors

import (
	"regexp"
	"strings"

	"github.com/secretshields/secretshields/internal/types"
)

// Category groups patterns under one user-facing detector toggle.
type Category string

const (
	CatAWS            Category = "awsKeys"
	CatGitHub         Category = "githubTokens"
	CatStripe         Category = "stripeKeys"
	CatOpenAI         Category = "openaiKeys"
	CatAnthropic      Category = "anthropicKeys"
	CatGoogle         Category = "googleApiKeys"
	CatDatabase       Category = "databaseUrls"
	CatSSHPrivateKeys Category = "sshPrivateKeys"
	CatJWT            Category = "jwts"
)

// Categories returns every detector category in display order.
func Categories() []Category {
	return []Category{CatAWS, CatGitHub, CatStripe, CatOpenAI, CatAnthropic, CatGoogle, CatDatabase, CatSSHPrivateKeys, CatJWT}
}

// Matcher finds candidate secrets in text. Spans cover the secret portion
// only (not surrounding context such as "key=") and never overlap each other.
type Matcher interface {
	FindAll(text string) []types.Span
}

// SecretPattern is one credential signature.
type SecretPattern struct {
	ID               string
	Name             string
	Provider         string
	Matcher          Matcher
	Severity         types.Severity
	RotationURL      string
	PrefixLen        int     // runes kept literal at the start when masking
	SuffixLen        int     // runes kept literal at the end when masking
	EntropyThreshold float64 // 0 disables the check
	Category         Category
}

// regexMatcher reports the first capture group of each match, or the whole
// match when the expression has no groups.
type regexMatcher struct {
	re    *regexp.Regexp
	group int
}

func newRegexMatcher(expr string) regexMatcher {
	re := regexp.MustCompile(expr)
	g := 0
	if re.NumSubexp() > 0 {
		g = 1
	}
	return regexMatcher{re: re, group: g}
}

func (m regexMatcher) FindAll(text string) []types.Span {
	var out []types.Span
	for _, idx := range m.re.FindAllStringSubmatchIndex(text, -1) {
		s, e := idx[2*m.group], idx[2*m.group+1]
		if s < 0 || e <= s {
			continue
		}
		out = append(out, types.Span{Start: s, End: e})
	}
	return out
}

// blockMatcher finds armored blocks such as PEM private keys. The END line
// must carry the same label as the BEGIN line.
type blockMatcher struct {
	labels []string // e.g. "RSA " or "" for an unlabelled block
	kind   string   // e.g. "PRIVATE KEY"
}

func (m blockMatcher) FindAll(text string) []types.Span {
	const begin = "-----BEGIN "
	var out []types.Span
	pos := 0
	for pos < len(text) {
		i := strings.Index(text[pos:], begin)
		if i < 0 {
			break
		}
		start := pos + i
		rest := text[start+len(begin):]
		label, ok := m.label(rest)
		if !ok {
			pos = start + len(begin)
			continue
		}
		header := begin + label + m.kind + "-----"
		footer := "-----END " + label + m.kind + "-----"
		j := strings.Index(text[start+len(header):], footer)
		if j < 0 {
			pos = start + len(header)
			continue
		}
		end := start + len(header) + j + len(footer)
		out = append(out, types.Span{Start: start, End: end})
		pos = end
	}
	return out
}

// label returns which configured label prefixes rest, preferring the
// longest so "" never shadows "RSA ".
func (m blockMatcher) label(rest string) (string, bool) {
	best, found := "", false
	for _, l := range m.labels {
		if strings.HasPrefix(rest, l+m.kind+"-----") && (!found || len(l) > len(best)) {
			best, found = l, true
		}
	}
	return best, found
}
