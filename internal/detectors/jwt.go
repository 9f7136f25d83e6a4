package detectors

import "github.com/secretshields/secretshields/internal/types"

// Both header and payload must be base64url JSON objects ("eyJ" prefix).
// The entropy floor rejects placeholder tokens built from repeated characters.
var jwtPatterns = []SecretPattern{
	{
		ID:               "jwt",
		Name:             "JSON Web Token",
		Provider:         "JWT",
		Matcher:          newRegexMatcher(`\b(eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,})\b`),
		Severity:         types.SevHigh,
		PrefixLen:        10,
		SuffixLen:        4,
		EntropyThreshold: 3.0,
		Category:         CatJWT,
	},
}
