package detectors

import "github.com/secretshields/secretshields/internal/types"

// PAT formats evolve; cover ghp_, gho_, ghu_, ghs_, ghr_ and fine-grained github_pat_.
var githubPatterns = []SecretPattern{
	{
		ID:          "github-token",
		Name:        "GitHub Token",
		Provider:    "GitHub",
		Matcher:     newRegexMatcher(`\b(gh[pousr]_[A-Za-z0-9]{36}|github_pat_[A-Za-z0-9]{22}_[A-Za-z0-9]{59})\b`),
		Severity:    types.SevCritical,
		RotationURL: "https://github.com/settings/tokens",
		PrefixLen:   4,
		SuffixLen:   4,
		Category:    CatGitHub,
	},
}
