// Package icon turns the PNG files of a theme into box-sized, optionally
// tinted bitmaps, one per tile, and falls back to the tile's built-in glyph
// whenever no usable file exists.
package icon

import (
	"image"

	"github.com/oakwood-commons/sdtheme/pkg/tile"
	"github.com/oakwood-commons/sdtheme/pkg/value"
)

// Dir is the icon directory inside a theme directory.
const Dir = "icons"

// Tint recolors icon pixels toward Color. Strength 0 leaves them untouched,
// 255 replaces their color entirely.
type Tint struct {
	Color    value.RGB
	Strength uint8
}

// Asset is a decoded icon. Image is exactly the resolver's box size and must
// not be modified: the same Asset may be handed to several snapshots.
type Asset struct {
	Tile       tile.ID
	Source     string
	Image      *image.NRGBA
	SourceSize image.Point
	Tinted     bool
}

// Result is what a tile draws: either Asset, or the glyph named by Glyph
// when Asset is nil.
type Result struct {
	Tile  tile.ID
	Asset *Asset
	Glyph string
}

// Builtin reports whether the tile falls back to its glyph.
func (r Result) Builtin() bool {
	return r.Asset == nil
}

// Glyph returns the built-in result for id.
func Glyph(id tile.ID) Result {
	return Result{Tile: id, Glyph: id.Info().Glyph}
}

// Set holds the resolved icons of one theme.
type Set map[tile.ID]Result

// For returns the icon of id. Tiles that were never resolved get their glyph.
func (s Set) For(id tile.ID) Result {
	if r, ok := s[id]; ok {
		return r
	}
	return Glyph(id)
}
