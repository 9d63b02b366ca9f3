package layout

import (
	"math/rand"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/sdtheme/pkg/storage"
	"github.com/oakwood-commons/sdtheme/pkg/storage/storagetest"
	"github.com/oakwood-commons/sdtheme/pkg/tile"
)

func TestEmbeddedDefaultsMatchGrid(t *testing.T) {
	require.NoError(t, DefaultsErr())
	def := Defaults()
	assert.Equal(t, fallbackDefaults(), def)
	assert.True(t, def.Dashboard)
	for _, id := range tile.All() {
		r, ok := def.Rect(id)
		require.True(t, ok, id)
		require.NoError(t, r.Validate(), id)
	}
}

func TestDefaultsAreIndependentCopies(t *testing.T) {
	a := Defaults()
	a.Tiles[tile.Karma] = Rect{X: 1, Y: 1, W: 1, H: 1}
	a.Dashboard = false
	b := Defaults()
	assert.NotEqual(t, a.Tiles[tile.Karma], b.Tiles[tile.Karma])
	assert.True(t, b.Dashboard)
}

func TestDashboardObjectFalse(t *testing.T) {
	o, report := Parse([]byte(`{"dashboard": {"enabled": false}}`))
	require.NotNil(t, o.Dashboard)
	assert.False(t, *o.Dashboard)
	assert.Empty(t, o.Tiles)
	assert.Zero(t, report.Failed)

	got := Apply(Defaults(), o)
	assert.False(t, got.Dashboard)
	assert.Equal(t, Defaults().Tiles, got.Tiles)
}

func TestDashboardForms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want *bool
	}{
		{name: "bool true", doc: `{"dashboard": true}`, want: boolPtr(true)},
		{name: "bool false", doc: `{"dashboard": false}`, want: boolPtr(false)},
		{name: "object true", doc: `{"dashboard": {"enabled": true, "extra": 1}}`, want: boolPtr(true)},
		{name: "string", doc: `{"dashboard": "false"}`},
		{name: "number", doc: `{"dashboard": 0}`},
		{name: "null", doc: `{"dashboard": null}`},
		{name: "object without enabled", doc: `{"dashboard": {"on": true}}`},
		{name: "object with string enabled", doc: `{"dashboard": {"enabled": "true"}}`},
		{name: "absent", doc: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := Parse([]byte(tt.doc))
			assert.Equal(t, tt.want, o.Dashboard)
		})
	}
}

func TestInvalidTileDroppedSiblingsKept(t *testing.T) {
	doc := `{
	  "uart_tiles": {
	    "karma":            {"x": 10, "y": 20, "w": 0,  "h": 50},
	    "bluetooth":        {"x": 10, "y": 20, "w": 80, "h": -1},
	    "settings":         {"x": 10, "y": 20, "w": 80},
	    "wifi_scan_attack": {"x": 1,  "y": 2,  "w": 3,  "h": 4},
	    "deauth_detector":  {"x": 1.5, "y": 2, "w": 3,  "h": 4},
	    "network_observer": {"x": "1", "y": 2, "w": 3,  "h": 4},
	    "compromised_data": [1, 2, 3, 4],
	    "not_a_tile":       {"x": 1,  "y": 2,  "w": 3,  "h": 4}
	  },
	  "internal_tiles": {
	    "about": {"x": 0, "y": 0, "w": 320, "h": 240}
	  }
	}`
	o, report := Parse([]byte(doc))
	assert.Equal(t, map[tile.ID]Rect{
		tile.WiFiScanAttack: {X: 1, Y: 2, W: 3, H: 4},
		tile.InternalAbout:  {X: 0, Y: 0, W: 320, H: 240},
	}, o.Tiles)
	assert.Equal(t, 6, report.Failed)
	assert.Equal(t, 1, report.Unknown)
	assert.Equal(t, 2, report.Applied)

	got := Apply(Defaults(), o)
	def := Defaults()
	for _, id := range []tile.ID{tile.Karma, tile.Bluetooth, tile.Settings, tile.DeauthDetector, tile.NetworkObserver, tile.CompromisedData} {
		assert.Equal(t, def.Tiles[id], got.Tiles[id], id)
	}
	assert.Equal(t, Rect{X: 1, Y: 2, W: 3, H: 4}, got.Tiles[tile.WiFiScanAttack])
}

func TestIntegralFloatsAccepted(t *testing.T) {
	o, _ := Parse([]byte(`{"uart_tiles": {"karma": {"x": 10.0, "y": 2e1, "w": 100, "h": 50}}}`))
	assert.Equal(t, Rect{X: 10, Y: 20, W: 100, H: 50}, o.Tiles[tile.Karma])
}

func TestCoordinateRange(t *testing.T) {
	o, report := Parse([]byte(`{"uart_tiles": {
	  "karma": {"x": 40000, "y": 0, "w": 10, "h": 10},
	  "bluetooth": {"x": 32760, "y": 0, "w": 10, "h": 10}
	}}`))
	assert.Empty(t, o.Tiles)
	assert.Equal(t, 2, report.Failed)
}

func TestSectionOfWrongTypeDropped(t *testing.T) {
	o, report := Parse([]byte(`{"uart_tiles": [1,2], "internal_tiles": {"display": {"x":1,"y":1,"w":1,"h":1}}, "dashboard": false}`))
	assert.Equal(t, map[tile.ID]Rect{tile.InternalDisplay: {X: 1, Y: 1, W: 1, H: 1}}, o.Tiles)
	require.NotNil(t, o.Dashboard)
	assert.Equal(t, 1, report.Failed)
}

func TestGroupScopedKeys(t *testing.T) {
	o, _ := Parse([]byte(`{"internal_tiles": {"settings": {"x":1,"y":2,"w":3,"h":4}, "karma": {"x":1,"y":2,"w":3,"h":4}}}`))
	assert.Equal(t, map[tile.ID]Rect{tile.InternalSettings: {X: 1, Y: 2, W: 3, H: 4}}, o.Tiles)
}

func TestMissingClosingBraceRepaired(t *testing.T) {
	o, report := Parse([]byte(`{"dashboard": false, "uart_tiles": {"karma": {"x": 1, "y": 2, "w": 3, "h": 4}`))
	assert.Zero(t, report.Failed)
	require.NotNil(t, o.Dashboard)
	assert.False(t, *o.Dashboard)
	assert.Equal(t, Rect{X: 1, Y: 2, W: 3, H: 4}, o.Tiles[tile.Karma])
}

func TestExtraClosingBraceIgnored(t *testing.T) {
	o, report := Parse([]byte(`{"dashboard": true}}}`))
	assert.Zero(t, report.Failed)
	require.NotNil(t, o.Dashboard)
	assert.True(t, *o.Dashboard)
}

func TestBrokenSectionDoesNotCostItsNeighbours(t *testing.T) {
	doc := `{"uart_tiles": {"karma": {"x":1,"y":2,"w":3,"h":4}}, "internal_tiles": {"about": {"x":1,,}}, "dashboard": false}`
	o, report := Parse([]byte(doc))
	assert.Equal(t, map[tile.ID]Rect{tile.Karma: {X: 1, Y: 2, W: 3, H: 4}}, o.Tiles)
	require.NotNil(t, o.Dashboard)
	assert.False(t, *o.Dashboard)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Messages(), 1)
	assert.Contains(t, report.Messages()[0], "internal_tiles/about")
}

func TestMissingCommaBetweenSections(t *testing.T) {
	doc := `{"uart_tiles": {"karma": {"x":1,"y":2,"w":3,"h":4}} "internal_tiles": {"display": {"x":1,"y":1,"w":1,"h":1}}}`
	o, report := Parse([]byte(doc))
	assert.Equal(t, map[tile.ID]Rect{
		tile.Karma:           {X: 1, Y: 2, W: 3, H: 4},
		tile.InternalDisplay: {X: 1, Y: 1, W: 1, H: 1},
	}, o.Tiles)
	assert.Zero(t, report.Failed)
}

func TestBrokenUnknownSectionCountedOnce(t *testing.T) {
	doc := `{"uart_tiles": {"karma": {"x":1,"y":2,"w":3,"h":4}}, "extras": {"a": {"b":1,,}}}`
	o, report := Parse([]byte(doc))
	assert.Equal(t, map[tile.ID]Rect{tile.Karma: {X: 1, Y: 2, W: 3, H: 4}}, o.Tiles)
	assert.Zero(t, report.Failed)
	assert.Equal(t, 1, report.Unknown)
}

func TestTruncatedDocumentKeepsEarlierEntries(t *testing.T) {
	const head = `{"dashboard": false, "uart_tiles": {"karma": {"x":1,"y":2,"w":3,"h":4}`
	for _, tc := range []struct {
		name   string
		doc    string
		reason string
	}{
		{"inside a tile entry", head + `, "bluetooth": {"x": 5, "y`, "uart_tiles/bluetooth"},
		{"inside a tile key", head + `, "blue`, "uart_tiles"},
		{"inside a section key", head + `}, "internal_ti`, "document"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			o, report := Parse([]byte(tc.doc))
			assert.Equal(t, map[tile.ID]Rect{tile.Karma: {X: 1, Y: 2, W: 3, H: 4}}, o.Tiles)
			require.NotNil(t, o.Dashboard)
			assert.False(t, *o.Dashboard)
			assert.Equal(t, 1, report.Failed)
			require.Len(t, report.Messages(), 1)
			assert.Contains(t, report.Messages()[0], tc.reason)
		})
	}
}

func TestYAMLFallback(t *testing.T) {
	doc := "# hand edited\ndashboard: false\nuart_tiles:\n  karma: {x: 1, y: 2, w: 3, h: 4}\n"
	o, report := Parse([]byte(doc))
	assert.Zero(t, report.Failed)
	require.NotNil(t, o.Dashboard)
	assert.False(t, *o.Dashboard)
	assert.Equal(t, Rect{X: 1, Y: 2, W: 3, H: 4}, o.Tiles[tile.Karma])
}

func TestUnparseableDocumentYieldsNoOverrides(t *testing.T) {
	for _, doc := range []string{`[1, 2, 3]`, `"just a string"`, "\x00\x01\x02{{{:::"} {
		o, report := Parse([]byte(doc))
		assert.Zero(t, o.Len(), doc)
		assert.Equal(t, 1, report.Failed, doc)
	}
}

func TestEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "   \n", "null", "\xef\xbb\xbf{}"} {
		o, report := Parse([]byte(doc))
		assert.Zero(t, o.Len(), doc)
		assert.Zero(t, report.Failed, doc)
	}
}

func TestBalanceBrackets(t *testing.T) {
	tests := []struct {
		in, want string
		changed  bool
	}{
		{in: `{"a": 1}`, want: `{"a": 1}`},
		{in: `{"a": {"b": [1, 2`, want: `{"a": {"b": [1, 2]}}`, changed: true},
		{in: `{"a": "}{"`, want: `{"a": "}{"`},
		{in: `{"a": 1}]`, want: `{"a": 1}`, changed: true},
		{in: `{"a": "unterminated`, want: `{"a": "unterminated"}`, changed: true},
		{in: `{"a": 1,`, want: `{"a": 1}`, changed: true},
	}
	for _, tt := range tests {
		got, changed := balanceBrackets([]byte(tt.in))
		assert.Equal(t, tt.want, string(got), tt.in)
		assert.Equal(t, tt.changed, changed, tt.in)
	}
}

func TestParseNeverPanicsOnGarbage(t *testing.T) {
	seed := []byte(`{"uart_tiles": {"karma": {"x": 1, "y": 2, "w": 3, "h": 4}}, "dashboard": {"enabled": true}}`)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		data := append([]byte(nil), seed...)
		for j := 0; j < 1+rng.Intn(6); j++ {
			data[rng.Intn(len(data))] = byte(rng.Intn(256))
		}
		data = data[:rng.Intn(len(data)+1)]
		require.NotPanics(t, func() {
			o, _ := Parse(data)
			got := Apply(Defaults(), o)
			for _, id := range tile.All() {
				r, ok := got.Rect(id)
				require.True(t, ok)
				require.NoError(t, r.Validate())
			}
		})
	}
}

func TestLoadMissingAndStorageFailure(t *testing.T) {
	fsys := afero.NewMemMapFs()
	o, report, err := Load(fsys, "/themes/a")
	require.NoError(t, err)
	assert.True(t, report.Missing)
	assert.Zero(t, o.Len())

	require.NoError(t, afero.WriteFile(fsys, "/themes/a/layout.json", []byte(`{"dashboard": false}`), 0o644))
	o, _, err = Load(fsys, "/themes/a")
	require.NoError(t, err)
	require.NotNil(t, o.Dashboard)

	card := storagetest.NewEjectable(fsys)
	card.Eject()
	_, _, err = Load(card, "/themes/a")
	require.Error(t, err)
	assert.True(t, storage.IsUnavailable(err))
}

func TestRectValidate(t *testing.T) {
	assert.NoError(t, Rect{X: -10, Y: -10, W: 1, H: 1}.Validate())
	assert.Error(t, Rect{W: 0, H: 1}.Validate())
	assert.Error(t, Rect{W: 1, H: 0}.Validate())
	assert.Error(t, Rect{X: MaxCoord, W: 1, H: 1}.Validate())
	assert.Equal(t, "(1,2 3x4)", Rect{X: 1, Y: 2, W: 3, H: 4}.String())
}

func boolPtr(b bool) *bool { return &b }
