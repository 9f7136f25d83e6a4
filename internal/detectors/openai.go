package detectors

import "github.com/secretshields/secretshields/internal/types"

const openAIRotationURL = "https://platform.openai.com/api-keys"

var openAIPatterns = []SecretPattern{
	{
		// Legacy keys embed the base64 of "openai" (T3BlbkFJ) mid-string.
		ID:          "openai-api-key",
		Name:        "OpenAI API Key",
		Provider:    "OpenAI",
		Matcher:     newRegexMatcher(`\b(sk-[A-Za-z0-9]{20}T3BlbkFJ[A-Za-z0-9]{20})\b`),
		Severity:    types.SevCritical,
		RotationURL: openAIRotationURL,
		PrefixLen:   3,
		SuffixLen:   4,
		Category:    CatOpenAI,
	},
	{
		ID:          "openai-api-key-v2",
		Name:        "OpenAI API Key (v2 format)",
		Provider:    "OpenAI",
		Matcher:     newRegexMatcher(`\b(sk-proj-[A-Za-z0-9_-]{40,200})\b`),
		Severity:    types.SevCritical,
		RotationURL: openAIRotationURL,
		PrefixLen:   8,
		SuffixLen:   4,
		Category:    CatOpenAI,
	},
}
