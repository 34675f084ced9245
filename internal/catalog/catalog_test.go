package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Default(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Len(t, c.Practitioners(), 2)
	assert.Len(t, c.GameTypes(), 6)

	gt, ok := c.GameType("1")
	require.True(t, ok)
	assert.Equal(t, 10, gt.DurationMinutes)
	assert.True(t, gt.BasePrice.Equal(decimal.NewFromInt(10)))

	p, ok := c.Practitioner("2")
	require.True(t, ok)
	assert.True(t, p.Affiliate())
	assert.True(t, p.Payout(decimal.NewFromInt(30)).Equal(decimal.NewFromInt(15)))

	principal, _ := c.Practitioner("1")
	assert.False(t, principal.Affiliate())
	assert.True(t, principal.Payout(decimal.NewFromInt(30)).IsZero())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `
practitioners:
  - id: p1
    name: Ana
    commission_multiplier: 0.7
game_types:
  - id: g1
    name: Quick
    base_price: 12.5
    duration_minutes: 5
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Duration("g1"))
	assert.Equal(t, 0, c.Duration("missing"))
	assert.Equal(t, "Ana", c.PractitionerName("p1"))
	assert.Equal(t, "missing", c.GameTypeName("missing"))
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"no practitioners": `game_types: [{id: g, name: G, base_price: 1, duration_minutes: 1}]`,
		"duplicate practitioner": `
practitioners: [{id: p, name: A, commission_multiplier: 1}, {id: p, name: B, commission_multiplier: 1}]
game_types: [{id: g, name: G, base_price: 1, duration_minutes: 1}]`,
		"zero duration": `
practitioners: [{id: p, name: A, commission_multiplier: 1}]
game_types: [{id: g, name: G, base_price: 1, duration_minutes: 0}]`,
		"multiplier above one": `
practitioners: [{id: p, name: A, commission_multiplier: 1.5}]
game_types: [{id: g, name: G, base_price: 1, duration_minutes: 1}]`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
