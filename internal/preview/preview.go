// Package preview renders a theme snapshot for a terminal and exports its
// fitted icons, so a theme can be checked on a workstation before the card
// goes back into the device.
package preview

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/sdtheme/pkg/manager"
	"github.com/oakwood-commons/sdtheme/pkg/theme"
	"github.com/oakwood-commons/sdtheme/pkg/tile"
	"github.com/oakwood-commons/sdtheme/pkg/value"
)

const swatchWidth = 9

var (
	black = value.RGB{}
	white = value.RGB{R: 0xff, G: 0xff, B: 0xff}
)

// Options controls rendering.
type Options struct {
	NoColor bool
}

// Render writes the palette, font, tint and tile table of snap to w.
func Render(w io.Writer, snap *manager.Snapshot, opts Options) error {
	var b strings.Builder
	spec := snap.Theme

	heading := lipgloss.NewStyle()
	if !opts.NoColor {
		heading = heading.Bold(true).Foreground(rgb(spec.Palette.AccentPrimary))
	}
	fmt.Fprintf(&b, "%s  (%s)\n\n", heading.Render(spec.Name), snap.Name)

	keyWidth := 0
	for _, r := range theme.Roles {
		keyWidth = max(keyWidth, runewidth.StringWidth(r.Key))
	}
	for _, r := range theme.Roles {
		c, _ := spec.Palette.Get(r.Key)
		fmt.Fprintf(&b, "  %s  %s  %s\n", padRight(r.Key, keyWidth), c.Hex(), Swatch(c, opts.NoColor))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s  %s\n", padRight("font", keyWidth), spec.Font)
	fmt.Fprintf(&b, "  %s  %s  %s  %d/255\n", padRight("icon_tint", keyWidth), spec.IconTint.Hex(), Swatch(spec.IconTint, opts.NoColor), spec.IconTintOpa)
	if bg := snap.BackgroundPath(); bg != "" {
		fmt.Fprintf(&b, "  %s  %s\n", padRight("background", keyWidth), bg)
	}
	fmt.Fprintf(&b, "  %s  %t\n", padRight("dashboard", keyWidth), snap.Layout.Dashboard)

	b.WriteString("\n")
	b.WriteString(Tiles(snap))

	_, err := io.WriteString(w, b.String())
	return err
}

// Tiles renders one line per tile: its id, rectangle and icon.
func Tiles(snap *manager.Snapshot) string {
	ids := tile.All()
	idWidth := 0
	for _, id := range ids {
		idWidth = max(idWidth, runewidth.StringWidth(id.String()))
	}

	var b strings.Builder
	for _, id := range ids {
		r, _ := snap.Layout.Rect(id)
		res := snap.IconFor(id)
		src := "glyph:" + res.Glyph
		if !res.Builtin() {
			src = filepath.Base(res.Asset.Source)
		}
		fmt.Fprintf(&b, "  %s  %-18s  %s\n", padRight(id.String(), idWidth), r, src)
	}
	return b.String()
}

// Swatch is a block of c labelled with its hex code in a readable color.
// Without color it is the bracketed hex code.
func Swatch(c value.RGB, noColor bool) string {
	label := centre(c.Hex(), swatchWidth)
	if noColor {
		return "[" + label[1:swatchWidth-1] + "]"
	}
	return lipgloss.NewStyle().
		Background(rgb(c)).
		Foreground(rgb(LabelColor(c))).
		Render(label)
}

// LabelColor picks black or white, whichever reads better on c, from the
// CIE L* lightness of c.
func LabelColor(c value.RGB) value.RGB {
	cc := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	l, _, _ := cc.Lab()
	if l > 0.6 {
		return black
	}
	return white
}

func rgb(c value.RGB) color.Color {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func centre(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
