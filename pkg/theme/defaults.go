package theme

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/sdtheme/pkg/value"
)

//go:embed defaults.yaml
var embeddedDefaults []byte

var (
	defaultsOnce sync.Once
	defaultSpec  Spec
	defaultsErr  error
)

// DefaultsYAML returns a copy of the embedded defaults document.
func DefaultsYAML() []byte {
	return append([]byte(nil), embeddedDefaults...)
}

// Defaults returns the compiled-in theme. It is decoded from the embedded
// YAML once; if that document is unusable the hard-coded palette is used.
func Defaults() Spec {
	defaultsOnce.Do(func() {
		defaultSpec, defaultsErr = decodeDefaults(embeddedDefaults)
		if defaultsErr != nil {
			defaultSpec = fallbackDefaults()
		}
	})
	return defaultSpec
}

// DefaultsErr reports why the embedded defaults were rejected, if they were.
func DefaultsErr() error {
	Defaults()
	return defaultsErr
}

func decodeDefaults(data []byte) (Spec, error) {
	// Keys missing from the document keep the hard-coded values.
	spec := fallbackDefaults()
	if len(data) == 0 {
		return spec, fmt.Errorf("embedded theme defaults are empty")
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return fallbackDefaults(), fmt.Errorf("decode embedded theme defaults: %w", err)
	}
	if _, err := value.ParseFont(string(spec.Font)); err != nil {
		return fallbackDefaults(), fmt.Errorf("embedded theme defaults: %w", err)
	}
	if spec.Name == "" {
		spec.Name = fallbackDefaults().Name
	}
	return spec, nil
}

// fallbackDefaults keeps the device usable even if the embed is broken.
func fallbackDefaults() Spec {
	return Spec{
		Name: "Default",
		Palette: Palette{
			Bg:              value.RGB{R: 0x0b, G: 0x0f, B: 0x14},
			BgLayer:         value.RGB{R: 0x12, G: 0x18, B: 0x21},
			Surface:         value.RGB{R: 0x1a, G: 0x22, B: 0x30},
			SurfaceAlt:      value.RGB{R: 0x22, G: 0x2c, B: 0x3c},
			Card:            value.RGB{R: 0x1e, G: 0x27, B: 0x35},
			Border:          value.RGB{R: 0x2f, G: 0x3b, B: 0x4f},
			TextPrimary:     value.RGB{R: 0xe6, G: 0xed, B: 0xf3},
			TextSecondary:   value.RGB{R: 0xaa, G: 0xb6, B: 0xc5},
			TextMuted:       value.RGB{R: 0x6b, G: 0x7a, B: 0x8f},
			AccentPrimary:   value.RGB{R: 0x00, G: 0xb4, B: 0xd8},
			AccentSecondary: value.RGB{R: 0x7b, G: 0x61, B: 0xff},
			Success:         value.RGB{R: 0x2e, G: 0xcc, B: 0x71},
			Warning:         value.RGB{R: 0xf5, G: 0xa6, B: 0x23},
			Error:           value.RGB{R: 0xe5, G: 0x48, B: 0x4d},
			Info:            value.RGB{R: 0x3b, G: 0x82, B: 0xf6},
			ModalOverlay:    value.RGB{R: 0x00, G: 0x00, B: 0x00},
			OutlineColor:    value.RGB{R: 0x00, G: 0xb4, B: 0xd8},
		},
		Font:        value.FontDefault,
		IconTint:    value.RGB{R: 0xff, G: 0xff, B: 0xff},
		IconTintOpa: 0,
	}
}
