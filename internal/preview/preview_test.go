package preview

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/sdtheme/pkg/manager"
	"github.com/oakwood-commons/sdtheme/pkg/value"
)

func activeSnapshot(t *testing.T) *manager.Snapshot {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/sd/themes/neon/theme.ini", []byte("name=Néon\nbg=101820\nfont=large\nbackground_image=bg.png\n"), 0o644))

	img := image.NewNRGBA(image.Rect(0, 0, 24, 24))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fsys, "/sd/themes/neon/icons/karma.png", buf.Bytes(), 0o644))

	m, err := manager.New(fsys, "/sd/themes")
	require.NoError(t, err)
	snap, err := m.Activate(context.Background(), "neon")
	require.NoError(t, err)
	return snap
}

func TestRenderPlain(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Render(&out, activeSnapshot(t), Options{NoColor: true}))
	text := out.String()

	assert.NotContains(t, text, "\x1b[")
	assert.True(t, strings.HasPrefix(text, "Néon  (neon)\n"))
	assert.Contains(t, text, "  bg                #101820  [#101820]\n")
	assert.Contains(t, text, "  font              large\n")
	assert.Contains(t, text, "  background        /sd/themes/neon/bg.png\n")
	assert.Contains(t, text, "  dashboard         true\n")
	assert.Contains(t, text, "uart_tiles/karma")
	assert.Contains(t, text, "karma.png")
	assert.Contains(t, text, "glyph:bluetooth")
}

func TestRenderColor(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Render(&out, activeSnapshot(t), Options{}))
	assert.Contains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "#101820")
}

func TestSwatch(t *testing.T) {
	c := value.RGB{R: 0x12, G: 0x34, B: 0x56}
	assert.Equal(t, "[#123456]", Swatch(c, true))

	colored := Swatch(c, false)
	assert.Contains(t, colored, " #123456 ")
	assert.Equal(t, swatchWidth, lipgloss.Width(colored))
}

func TestLabelColor(t *testing.T) {
	tests := []struct {
		bg   value.RGB
		want value.RGB
	}{
		{bg: value.RGB{}, want: white},
		{bg: value.RGB{R: 0xff, G: 0xff, B: 0xff}, want: black},
		{bg: value.RGB{R: 0xff, G: 0xff}, want: black},
		{bg: value.RGB{B: 0x80}, want: white},
		{bg: value.RGB{R: 0x10, G: 0x18, B: 0x20}, want: white},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelColor(tt.bg), tt.bg.Hex())
	}
}

func TestPadAndCentre(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "Néon ", padRight("Néon", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
	assert.Equal(t, "  ab  ", centre("ab", 6))
	assert.Equal(t, " ab  ", centre("ab", 5))
	assert.Equal(t, "abc", centre("abcdef", 3))
}

func TestExportIcons(t *testing.T) {
	snap := activeSnapshot(t)
	out := afero.NewMemMapFs()

	paths, err := ExportIcons(out, "/tmp/icons", snap)
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/icons/uart_tiles_karma.png"}, paths)

	f, err := out.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 48, 48), img.Bounds())
}

func TestExportIconsReadOnlyTarget(t *testing.T) {
	snap := activeSnapshot(t)
	_, err := ExportIcons(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/tmp/icons", snap)
	assert.Error(t, err)
}
