package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// built from parts so the fixture does not trip push protection
var stripeLive = "sk" + "_live_" + "51HqLyjWDarjtT1zdp7dcXyZ9"

func TestStripeSecretKey(t *testing.T) {
	p, ok := ByID("stripe-secret-key")
	require.True(t, ok)
	text := "STRIPE_KEY=" + stripeLive
	spans := p.Matcher.FindAll(text)
	require.Len(t, spans, 1)
	assert.Equal(t, stripeLive, text[spans[0].Start:spans[0].End])
}

func TestStripe_TestModeKeysIgnored(t *testing.T) {
	for _, id := range []string{"stripe-secret-key", "stripe-publishable-key"} {
		p, _ := ByID(id)
		assert.Empty(t, p.Matcher.FindAll("sk"+"_test_"+"51HqLyjWDarjtT1zdp7dcXyZ9"), id)
		assert.Empty(t, p.Matcher.FindAll("pk"+"_test_"+"51HqLyjWDarjtT1zdp7dcXyZ9"), id)
	}
}

func TestStripePublishableKey_Severity(t *testing.T) {
	p, ok := ByID("stripe-publishable-key")
	require.True(t, ok)
	text := "pk" + "_live_" + "51HqLyjWDarjtT1zdp7dcXyZ9"
	require.Len(t, p.Matcher.FindAll(text), 1)
	assert.Equal(t, "medium", string(p.Severity))
	assert.Equal(t, CatStripe, p.Category)
}
