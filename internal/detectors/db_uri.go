package detectors

import "github.com/secretshields/secretshields/internal/types"

// The whole URI is treated as the secret: host and database names are
// frequently as sensitive as the password, so only the scheme and the start
// of the user name stay readable.
var dbURIPatterns = []SecretPattern{
	{
		ID:        "database-url",
		Name:      "Database URL with Password",
		Provider:  "Database",
		Matcher:   newRegexMatcher(`\b((?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|mssql)://[^\s:]+:[^\s@]+@\S+)\b`),
		Severity:  types.SevCritical,
		PrefixLen: 15,
		Category:  CatDatabase,
	},
}
