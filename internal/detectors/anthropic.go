package detectors

import "github.com/secretshields/secretshields/internal/types"

var anthropicPatterns = []SecretPattern{
	{
		ID:          "anthropic-api-key",
		Name:        "Anthropic API Key",
		Provider:    "Anthropic",
		Matcher:     newRegexMatcher(`\b(sk-ant-api03-[A-Za-z0-9_-]{93})\b`),
		Severity:    types.SevCritical,
		RotationURL: "https://console.anthropic.com/settings/keys",
		PrefixLen:   13,
		SuffixLen:   4,
		Category:    CatAnthropic,
	},
}
