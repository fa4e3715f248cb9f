package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForLinkIsDeterministic(t *testing.T) {
	link := "https://deals.example.com/offers/iphone-15-case"

	first := ForLink(link)
	second := ForLink(link)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestForLinkRoundTrips(t *testing.T) {
	link := "https://deals.example.com/offers/espresso-machine?ref=home"

	id := ForLink(link)
	decoded, err := LinkFor(id)

	require.NoError(t, err)
	assert.Equal(t, link, decoded)
}

func TestForLinkDistinguishesLinks(t *testing.T) {
	assert.NotEqual(t,
		ForLink("https://deals.example.com/a"),
		ForLink("https://deals.example.com/b"))
}

func TestForParamsIgnoresInsertionOrder(t *testing.T) {
	a := ForParams(map[string]string{"days": "7", "limit": "100"})
	b := ForParams(map[string]string{"limit": "100", "days": "7"})

	assert.Equal(t, a, b)
}

func TestForParamsDistinguishesValues(t *testing.T) {
	a := ForParams(map[string]string{"days": "7", "limit": "100"})
	b := ForParams(map[string]string{"days": "7", "limit": "200"})

	assert.NotEqual(t, a, b)
}
