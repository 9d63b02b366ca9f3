package preview

import (
	"fmt"
	"image/png"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/oakwood-commons/sdtheme/pkg/icon"
	"github.com/oakwood-commons/sdtheme/pkg/manager"
	"github.com/oakwood-commons/sdtheme/pkg/tile"
)

// ExportIcons writes every decoded icon of snap to dir as
// <group>_<key>.png, exactly as the device would draw it. Tiles that fall
// back to their glyph are skipped. It returns the written paths.
func ExportIcons(fsys afero.Fs, dir string, snap *manager.Snapshot) ([]string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export icons: %w", err)
	}
	var written []string
	for _, id := range tile.All() {
		res := snap.IconFor(id)
		if res.Builtin() {
			continue
		}
		info := id.Info()
		p := filepath.Join(dir, info.Group.Key()+"_"+info.Key+".png")
		if err := writePNG(fsys, p, res); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

func writePNG(fsys afero.Fs, p string, res icon.Result) (err error) {
	f, err := fsys.Create(p)
	if err != nil {
		return fmt.Errorf("export icons: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export icons: %w", cerr)
		}
	}()
	if err := png.Encode(f, res.Asset.Image); err != nil {
		return fmt.Errorf("export icons: %s: %w", p, err)
	}
	return nil
}
