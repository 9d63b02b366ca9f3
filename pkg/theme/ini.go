package theme

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/oakwood-commons/sdtheme/pkg/diag"
	"github.com/oakwood-commons/sdtheme/pkg/storage"
	"github.com/oakwood-commons/sdtheme/pkg/value"
)

const (
	// FileName is the theme file inside a theme directory.
	FileName = "theme.ini"
	// MaxFileSize caps how much of theme.ini is read.
	MaxFileSize = 64 << 10
	// MaxNameRunes caps the display name; longer names are cut.
	MaxNameRunes = 32
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

type setter func(o *Overrides, raw string) error

var setters = buildSetters()

func buildSetters() map[string]setter {
	m := map[string]setter{
		"name":             setName,
		"font":             setFont,
		"icon_tint":        setIconTint,
		"icon_tint_opa":    setIconTintOpa,
		"background_image": setBackgroundImage,
	}
	for _, r := range Roles {
		key := r.Key
		m[key] = func(o *Overrides, raw string) error {
			c, err := value.ParseColor(raw)
			if err != nil {
				return err
			}
			if o.Colors == nil {
				o.Colors = make(map[string]value.RGB)
			}
			o.Colors[key] = c
			return nil
		}
	}
	return m
}

// Keys returns every key theme.ini understands.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	keys = append(keys, "name")
	for _, r := range Roles {
		keys = append(keys, r.Key)
	}
	return append(keys, "font", "icon_tint", "icon_tint_opa", "background_image")
}

func setName(o *Overrides, raw string) error {
	name := strings.TrimSpace(raw)
	if name == "" {
		return fmt.Errorf("%w: empty name", value.ErrInvalid)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: name is not valid UTF-8", value.ErrInvalid)
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: name contains unprintable characters", value.ErrInvalid)
		}
	}
	if utf8.RuneCountInString(name) > MaxNameRunes {
		name = string([]rune(name)[:MaxNameRunes])
	}
	o.Name = &name
	return nil
}

func setFont(o *Overrides, raw string) error {
	f, err := value.ParseFont(raw)
	if err != nil {
		return err
	}
	o.Font = &f
	return nil
}

func setIconTint(o *Overrides, raw string) error {
	c, err := value.ParseColor(raw)
	if err != nil {
		return err
	}
	o.IconTint = &c
	return nil
}

func setIconTintOpa(o *Overrides, raw string) error {
	v, err := value.ParseByte(raw)
	if err != nil {
		return err
	}
	o.IconTintOpa = &v
	return nil
}

func setBackgroundImage(o *Overrides, raw string) error {
	p, err := CleanRelativePath(raw)
	if err != nil {
		return err
	}
	o.BackgroundImage = &p
	return nil
}

// CleanRelativePath normalizes a path that must stay inside the theme
// directory. Absolute paths, drive letters and ".." escapes fail.
func CleanRelativePath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", fmt.Errorf("%w: empty path", value.ErrInvalid)
	}
	p = strings.ReplaceAll(p, "\\", "/")
	if path.IsAbs(p) || filepath.VolumeName(p) != "" || (len(p) > 1 && p[1] == ':') {
		return "", fmt.Errorf("%w: path %q must be relative", value.ErrInvalid, raw)
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: path %q leaves the theme directory", value.ErrInvalid, raw)
	}
	return p, nil
}

// Parse reads theme.ini content. It never fails: unusable lines and values
// are counted in the report and the corresponding fields stay unset.
func Parse(data []byte) (Overrides, diag.Report) {
	var o Overrides
	report := diag.New(FileName)
	data = bytes.TrimPrefix(data, utf8BOM)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || line[0] == '#' || line[0] == ';' || line[0] == '[' {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			report.Ignore()
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		raw := unquote(strings.TrimSpace(line[idx+1:]))

		set, ok := setters[key]
		if !ok {
			report.Ignore()
			continue
		}
		if err := set(&o, raw); err != nil {
			report.Fail(key, err)
			continue
		}
		report.Apply()
	}
	return o, report
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Load reads <dir>/theme.ini from fsys. A missing or empty file yields no
// overrides; the returned error is non-nil only when the storage itself failed.
func Load(fsys afero.Fs, dir string) (Overrides, diag.Report, error) {
	p := filepath.Join(dir, FileName)
	data, truncated, err := storage.ReadFile(fsys, p, MaxFileSize)
	if err != nil {
		if storage.IsMissing(err) {
			report := diag.New(FileName)
			report.Missing = true
			return Overrides{}, report, nil
		}
		return Overrides{}, diag.New(FileName), fmt.Errorf("load %s: %w", FileName, err)
	}
	if truncated {
		// The last line was cut at the size cap and cannot be trusted.
		if i := bytes.LastIndexByte(data, '\n'); i >= 0 {
			data = data[:i]
		} else {
			data = nil
		}
	}
	o, report := Parse(data)
	report.Truncated = truncated
	return o, report, nil
}
