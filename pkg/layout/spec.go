// Package layout reads layout.json tile geometry overrides and merges them
// onto the firmware tile grid.
package layout

import (
	"fmt"
	"math"

	"github.com/oakwood-commons/sdtheme/pkg/tile"
)

// Coordinates must fit the renderer's signed 16-bit coordinate type.
const (
	MinCoord = math.MinInt16
	MaxCoord = math.MaxInt16
)

// Rect is a tile rectangle in screen pixels.
type Rect struct {
	X int `json:"x" yaml:"x" toml:"x"`
	Y int `json:"y" yaml:"y" toml:"y"`
	W int `json:"w" yaml:"w" toml:"w"`
	H int `json:"h" yaml:"h" toml:"h"`
}

// Validate checks the rectangle invariant: positive size, 16-bit coordinates.
func (r Rect) Validate() error {
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("size %dx%d must be positive", r.W, r.H)
	}
	for _, v := range []int{r.X, r.Y, r.X + r.W, r.Y + r.H} {
		if v < MinCoord || v > MaxCoord {
			return fmt.Errorf("rect %v exceeds 16-bit coordinates", r)
		}
	}
	return nil
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// Spec is the resolved layout: a rectangle for every tile and the dashboard flag.
type Spec struct {
	Tiles     map[tile.ID]Rect
	Dashboard bool
}

// Rect returns the rectangle of id.
func (s Spec) Rect(id tile.ID) (Rect, bool) {
	r, ok := s.Tiles[id]
	return r, ok
}

// Clone returns a copy that shares nothing with s.
func (s Spec) Clone() Spec {
	out := Spec{Tiles: make(map[tile.ID]Rect, len(s.Tiles)), Dashboard: s.Dashboard}
	for id, r := range s.Tiles {
		out.Tiles[id] = r
	}
	return out
}

// Overrides is the sparse result of reading layout.json.
type Overrides struct {
	Tiles map[tile.ID]Rect
	// Dashboard is nil when the document does not say.
	Dashboard *bool
}

// Len counts the fields that are set.
func (o Overrides) Len() int {
	n := len(o.Tiles)
	if o.Dashboard != nil {
		n++
	}
	return n
}

// Apply overwrites exactly the tiles and flag set in o on a copy of base.
func Apply(base Spec, o Overrides) Spec {
	out := base.Clone()
	for id, r := range o.Tiles {
		out.Tiles[id] = r
	}
	if o.Dashboard != nil {
		out.Dashboard = *o.Dashboard
	}
	return out
}
