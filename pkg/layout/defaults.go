package layout

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/oakwood-commons/sdtheme/pkg/tile"
)

//go:embed defaults.yaml
var embeddedDefaults []byte

var (
	defaultsOnce sync.Once
	defaultSpec  Spec
	defaultsErr  error
)

// Defaults returns a fresh copy of the firmware layout. Callers may modify it.
func Defaults() Spec {
	defaultsOnce.Do(func() {
		defaultSpec, defaultsErr = decodeDefaults(embeddedDefaults)
	})
	return defaultSpec.Clone()
}

// DefaultsErr reports why the embedded defaults were not used cleanly, if they were not.
func DefaultsErr() error {
	Defaults()
	return defaultsErr
}

// decodeDefaults runs the embedded document through the same tolerant parser
// as user files, on top of the computed grid.
func decodeDefaults(data []byte) (Spec, error) {
	base := fallbackDefaults()
	o, report := Parse(data)
	spec := Apply(base, o)
	if report.Failed > 0 || report.Unknown > 0 {
		return spec, fmt.Errorf("embedded layout defaults: %d rejected, %d unknown: %w", report.Failed, report.Unknown, report.Err())
	}
	return spec, nil
}

// fallbackDefaults lays tiles out on a fixed grid below the status bar.
func fallbackDefaults() Spec {
	s := Spec{Tiles: make(map[tile.ID]Rect), Dashboard: true}
	grid := func(ids []tile.ID, cols, w, h, gap int) {
		for i, id := range ids {
			col, row := i%cols, i/cols
			s.Tiles[id] = Rect{X: 5 + col*(w+gap), Y: 30 + row*(h+gap), W: w, H: h}
		}
	}
	grid(tile.InGroup(tile.GroupUART), 3, 100, 66, 5)
	grid(tile.InGroup(tile.GroupInternal), 2, 152, 100, 5)
	return s
}
