package tile

import (
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIsComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range All() {
		info := id.Info()
		assert.Equal(t, id, info.ID)
		assert.NotEmpty(t, info.Key, id)
		assert.NotEmpty(t, info.Icons, id)
		assert.NotEmpty(t, info.Glyph, id)
		assert.False(t, seen[id.String()], "duplicate %s", id)
		seen[id.String()] = true

		for _, name := range info.Icons {
			assert.Equal(t, ".png", path.Ext(name), id)
		}
	}
	assert.Len(t, InGroup(GroupUART), 9)
	assert.Len(t, InGroup(GroupInternal), 4)
	assert.Len(t, All(), len(InGroup(GroupUART))+len(InGroup(GroupInternal)))
}

func TestCanonicalNameComesFirst(t *testing.T) {
	// Canonical names carry no underscores; aliases are snake_case.
	for _, id := range All() {
		icons := id.Info().Icons
		assert.NotContains(t, icons[0], "_", id)
		for _, alias := range icons[1:] {
			assert.Contains(t, alias, "_", id)
		}
	}
	assert.Equal(t, []string{"wifiscanattack.png", "wifi_scan_attack.png"}, WiFiScanAttack.Info().Icons)
	assert.Equal(t, []string{"adhoc.png", "adhoc_portal.png"}, AdhocPortal.Info().Icons)
}

func TestInfoReturnsCopy(t *testing.T) {
	info := Karma.Info()
	info.Icons[0] = "mutated.png"
	assert.Equal(t, "karma.png", Karma.Info().Icons[0])
}

func TestLookupIsGroupScoped(t *testing.T) {
	uart, ok := Lookup(GroupUART, "settings")
	require.True(t, ok)
	internal, ok := Lookup(GroupInternal, "settings")
	require.True(t, ok)
	assert.NotEqual(t, uart, internal)

	_, ok = Lookup(GroupInternal, "karma")
	assert.False(t, ok)
	_, ok = Lookup(GroupUART, "Karma")
	assert.False(t, ok)
}

func TestStringParseRoundTrip(t *testing.T) {
	for _, id := range All() {
		got, ok := Parse(id.String())
		require.True(t, ok, id)
		assert.Equal(t, id, got)
	}
	_, ok := Parse("karma")
	assert.False(t, ok)
	_, ok = Parse("other_tiles/karma")
	assert.False(t, ok)
}

func TestInvalidID(t *testing.T) {
	bad := ID(99)
	assert.False(t, bad.Valid())
	assert.True(t, strings.HasPrefix(bad.String(), "tile("))
	assert.Empty(t, bad.Info().Icons)
}
