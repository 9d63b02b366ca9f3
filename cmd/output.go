package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/sdtheme/pkg/diag"
	"github.com/oakwood-commons/sdtheme/pkg/manager"
	"github.com/oakwood-commons/sdtheme/pkg/theme"
	"github.com/oakwood-commons/sdtheme/pkg/tile"
)

// snapshotView is the printable form of a manager.Snapshot. Tiles are keyed
// by group and layout key, the way layout.json spells them.
type snapshotView struct {
	Name        string                         `json:"name" yaml:"name" toml:"name"`
	Dir         string                         `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty"`
	ActivatedAt time.Time                      `json:"activated_at" yaml:"activated_at" toml:"activated_at"`
	Theme       theme.Spec                     `json:"theme" yaml:"theme" toml:"theme"`
	Dashboard   bool                           `json:"dashboard" yaml:"dashboard" toml:"dashboard"`
	Tiles       map[string]map[string]tileView `json:"tiles" yaml:"tiles" toml:"tiles"`
	Diagnostics []reportView                   `json:"diagnostics" yaml:"diagnostics" toml:"diagnostics"`
}

type tileView struct {
	X    int    `json:"x" yaml:"x" toml:"x"`
	Y    int    `json:"y" yaml:"y" toml:"y"`
	W    int    `json:"w" yaml:"w" toml:"w"`
	H    int    `json:"h" yaml:"h" toml:"h"`
	Icon string `json:"icon" yaml:"icon" toml:"icon"`
}

type reportView struct {
	diag.Report `yaml:",inline"`
	Rejected    []string `json:"rejected,omitempty" yaml:"rejected,omitempty" toml:"rejected,omitempty"`
}

func newSnapshotView(snap *manager.Snapshot) snapshotView {
	v := snapshotView{
		Name:        snap.Name,
		Dir:         snap.Dir,
		ActivatedAt: snap.ActivatedAt.UTC(),
		Theme:       snap.Theme,
		Dashboard:   snap.Layout.Dashboard,
		Tiles:       make(map[string]map[string]tileView),
	}
	for _, id := range tile.All() {
		info := id.Info()
		r, _ := snap.Layout.Rect(id)
		icon := "glyph:" + info.Glyph
		if res := snap.IconFor(id); !res.Builtin() {
			icon = filepath.ToSlash(res.Asset.Source)
		}
		group := info.Group.Key()
		if v.Tiles[group] == nil {
			v.Tiles[group] = make(map[string]tileView)
		}
		v.Tiles[group][info.Key] = tileView{X: r.X, Y: r.Y, W: r.W, H: r.H, Icon: icon}
	}
	for _, r := range []diag.Report{snap.Diagnostics.Theme, snap.Diagnostics.Layout} {
		v.Diagnostics = append(v.Diagnostics, reportView{Report: r, Rejected: r.Messages()})
	}
	return v
}

func writeOutput(w io.Writer, output string, v any) error {
	var (
		b   []byte
		err error
	)
	switch output {
	case "json":
		b, err = json.MarshalIndent(v, "", "  ")
		b = append(b, '\n')
	case "toml":
		b, err = toml.Marshal(v)
	case "yaml":
		b, err = yaml.Marshal(v)
	default:
		return validateOutput(output)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", output, err)
	}
	_, err = w.Write(b)
	return err
}
