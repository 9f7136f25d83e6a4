package detectors

import "github.com/secretshields/secretshields/internal/types"

const stripeRotationURL = "https://dashboard.stripe.com/apikeys"

// Test-mode keys (sk_test_, pk_test_) are deliberately not matched.
var stripePatterns = []SecretPattern{
	{
		ID:          "stripe-secret-key",
		Name:        "Stripe Secret Key",
		Provider:    "Stripe",
		Matcher:     newRegexMatcher(`\b(sk_live_[A-Za-z0-9]{24,99})\b`),
		Severity:    types.SevCritical,
		RotationURL: stripeRotationURL,
		PrefixLen:   8,
		SuffixLen:   4,
		Category:    CatStripe,
	},
	{
		ID:          "stripe-publishable-key",
		Name:        "Stripe Publishable Key",
		Provider:    "Stripe",
		Matcher:     newRegexMatcher(`\b(pk_live_[A-Za-z0-9]{24,99})\b`),
		Severity:    types.SevMedium,
		RotationURL: stripeRotationURL,
		PrefixLen:   8,
		SuffixLen:   4,
		Category:    CatStripe,
	},
}
