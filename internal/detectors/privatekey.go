package detectors

import "github.com/secretshields/secretshields/internal/types"

var privateKeyPatterns = []SecretPattern{
	{
		ID:       "ssh-private-key",
		Name:     "SSH Private Key",
		Provider: "SSH",
		Matcher: blockMatcher{
			labels: []string{"", "RSA ", "EC ", "DSA ", "OPENSSH "},
			kind:   "PRIVATE KEY",
		},
		Severity: types.SevCritical,
		Category: CatSSHPrivateKeys,
	},
}
