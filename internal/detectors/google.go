package detectors

import "github.com/secretshields/secretshields/internal/types"

var googlePatterns = []SecretPattern{
	{
		ID:          "google-api-key",
		Name:        "Google API Key",
		Provider:    "Google",
		Matcher:     newRegexMatcher(`\b(AIza[A-Za-z0-9_-]{35})\b`),
		Severity:    types.SevHigh,
		RotationURL: "https://console.cloud.google.com/apis/credentials",
		PrefixLen:   4,
		SuffixLen:   4,
		Category:    CatGoogle,
	},
}
