// Package theme turns theme.ini into a sparse override record and merges it
// onto the compiled-in palette.
package theme

import (
	"github.com/oakwood-commons/sdtheme/pkg/value"
)

// Palette holds every color role the renderer styles with.
type Palette struct {
	Bg              value.RGB `json:"bg" yaml:"bg" toml:"bg"`
	BgLayer         value.RGB `json:"bg_layer" yaml:"bg_layer" toml:"bg_layer"`
	Surface         value.RGB `json:"surface" yaml:"surface" toml:"surface"`
	SurfaceAlt      value.RGB `json:"surface_alt" yaml:"surface_alt" toml:"surface_alt"`
	Card            value.RGB `json:"card" yaml:"card" toml:"card"`
	Border          value.RGB `json:"border" yaml:"border" toml:"border"`
	TextPrimary     value.RGB `json:"text_primary" yaml:"text_primary" toml:"text_primary"`
	TextSecondary   value.RGB `json:"text_secondary" yaml:"text_secondary" toml:"text_secondary"`
	TextMuted       value.RGB `json:"text_muted" yaml:"text_muted" toml:"text_muted"`
	AccentPrimary   value.RGB `json:"accent_primary" yaml:"accent_primary" toml:"accent_primary"`
	AccentSecondary value.RGB `json:"accent_secondary" yaml:"accent_secondary" toml:"accent_secondary"`
	Success         value.RGB `json:"success" yaml:"success" toml:"success"`
	Warning         value.RGB `json:"warning" yaml:"warning" toml:"warning"`
	Error           value.RGB `json:"error" yaml:"error" toml:"error"`
	Info            value.RGB `json:"info" yaml:"info" toml:"info"`
	ModalOverlay    value.RGB `json:"modal_overlay" yaml:"modal_overlay" toml:"modal_overlay"`
	OutlineColor    value.RGB `json:"outline_color" yaml:"outline_color" toml:"outline_color"`
}

// Role binds a theme.ini key to its Palette field.
type Role struct {
	Key   string
	field func(*Palette) *value.RGB
}

// Roles lists every palette role in file order.
var Roles = []Role{
	{"bg", func(p *Palette) *value.RGB { return &p.Bg }},
	{"bg_layer", func(p *Palette) *value.RGB { return &p.BgLayer }},
	{"surface", func(p *Palette) *value.RGB { return &p.Surface }},
	{"surface_alt", func(p *Palette) *value.RGB { return &p.SurfaceAlt }},
	{"card", func(p *Palette) *value.RGB { return &p.Card }},
	{"border", func(p *Palette) *value.RGB { return &p.Border }},
	{"text_primary", func(p *Palette) *value.RGB { return &p.TextPrimary }},
	{"text_secondary", func(p *Palette) *value.RGB { return &p.TextSecondary }},
	{"text_muted", func(p *Palette) *value.RGB { return &p.TextMuted }},
	{"accent_primary", func(p *Palette) *value.RGB { return &p.AccentPrimary }},
	{"accent_secondary", func(p *Palette) *value.RGB { return &p.AccentSecondary }},
	{"success", func(p *Palette) *value.RGB { return &p.Success }},
	{"warning", func(p *Palette) *value.RGB { return &p.Warning }},
	{"error", func(p *Palette) *value.RGB { return &p.Error }},
	{"info", func(p *Palette) *value.RGB { return &p.Info }},
	{"modal_overlay", func(p *Palette) *value.RGB { return &p.ModalOverlay }},
	{"outline_color", func(p *Palette) *value.RGB { return &p.OutlineColor }},
}

// Get returns the color stored for a role key.
func (p Palette) Get(key string) (value.RGB, bool) {
	for _, r := range Roles {
		if r.Key == key {
			return *r.field(&p), true
		}
	}
	return value.RGB{}, false
}

// Spec is the fully resolved theme handed to the renderer. Every field holds
// either an override or the compiled default.
type Spec struct {
	Name            string     `json:"name" yaml:"name" toml:"name"`
	Palette         Palette    `json:"palette" yaml:"palette" toml:"palette"`
	Font            value.Font `json:"font" yaml:"font" toml:"font"`
	IconTint        value.RGB  `json:"icon_tint" yaml:"icon_tint" toml:"icon_tint"`
	IconTintOpa     uint8      `json:"icon_tint_opa" yaml:"icon_tint_opa" toml:"icon_tint_opa"`
	BackgroundImage string     `json:"background_image,omitempty" yaml:"background_image,omitempty" toml:"background_image,omitempty"`
}

// Overrides is the sparse result of reading theme.ini. A nil pointer or a
// missing map entry means "keep the default".
type Overrides struct {
	Name            *string
	Colors          map[string]value.RGB
	Font            *value.Font
	IconTint        *value.RGB
	IconTintOpa     *uint8
	BackgroundImage *string
}

// Len counts the fields that are set.
func (o Overrides) Len() int {
	n := len(o.Colors)
	for _, set := range []bool{o.Name != nil, o.Font != nil, o.IconTint != nil, o.IconTintOpa != nil, o.BackgroundImage != nil} {
		if set {
			n++
		}
	}
	return n
}

// Apply overwrites exactly the fields set in o and leaves the rest of base alone.
func Apply(base Spec, o Overrides) Spec {
	out := base
	if o.Name != nil {
		out.Name = *o.Name
	}
	for _, r := range Roles {
		if c, ok := o.Colors[r.Key]; ok {
			*r.field(&out.Palette) = c
		}
	}
	if o.Font != nil {
		out.Font = *o.Font
	}
	if o.IconTint != nil {
		out.IconTint = *o.IconTint
	}
	if o.IconTintOpa != nil {
		out.IconTintOpa = *o.IconTintOpa
	}
	if o.BackgroundImage != nil {
		out.BackgroundImage = *o.BackgroundImage
	}
	return out
}
