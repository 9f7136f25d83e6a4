package detectors

import "github.com/secretshields/secretshields/internal/types"

const awsRotationURL = "https://console.aws.amazon.com/iam/home#/security_credentials"

var awsPatterns = []SecretPattern{
	{
		ID:          "aws-access-key-id",
		Name:        "AWS Access Key ID",
		Provider:    "AWS",
		Matcher:     newRegexMatcher(`\b((?:AKIA|ABIA|ACCA|ASIA)[A-Z0-9]{16})\b`),
		Severity:    types.SevCritical,
		RotationURL: awsRotationURL,
		PrefixLen:   4,
		SuffixLen:   4,
		Category:    CatAWS,
	},
	{
		// The secret key alone is indistinguishable from base64 noise, so it
		// only counts next to one of its usual assignment names.
		ID:               "aws-secret-access-key",
		Name:             "AWS Secret Access Key",
		Provider:         "AWS",
		Matcher:          newRegexMatcher(`(?:aws_secret_access_key|secret_access_key|aws_secret|secretAccessKey)\s*[:=]\s*['"]?([A-Za-z0-9/+=]{40})['"]?`),
		Severity:         types.SevCritical,
		RotationURL:      awsRotationURL,
		PrefixLen:        4,
		SuffixLen:        4,
		EntropyThreshold: 3.5,
		Category:         CatAWS,
	},
}
