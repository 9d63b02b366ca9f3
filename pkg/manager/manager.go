// Package manager owns the active theme.
//
// A Manager builds a complete Snapshot from a theme directory on the card
// and publishes it in one atomic store. Readers call Current and always get
// either the previous snapshot or the new one, never a mixture. When the
// card fails mid-activation the previous snapshot stays in effect.
package manager

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/oakwood-commons/sdtheme/pkg/diag"
	"github.com/oakwood-commons/sdtheme/pkg/icon"
	"github.com/oakwood-commons/sdtheme/pkg/layout"
	"github.com/oakwood-commons/sdtheme/pkg/logger"
	"github.com/oakwood-commons/sdtheme/pkg/storage"
	"github.com/oakwood-commons/sdtheme/pkg/theme"
	"github.com/oakwood-commons/sdtheme/pkg/tile"
)

// DefaultName names the snapshot built from compiled defaults alone.
const DefaultName = "default"

var (
	ErrThemeNotFound    = errors.New("theme not found")
	ErrInvalidThemeName = errors.New("invalid theme name")
)

// Diagnostics collects what the loaders skipped while building a snapshot.
type Diagnostics struct {
	Theme  diag.Report `json:"theme" yaml:"theme" toml:"theme"`
	Layout diag.Report `json:"layout" yaml:"layout" toml:"layout"`
}

// Snapshot is one fully resolved theme. It is never modified after it has
// been published.
type Snapshot struct {
	Name        string
	Dir         string
	Theme       theme.Spec
	Layout      layout.Spec
	Icons       icon.Set
	Diagnostics Diagnostics
	ActivatedAt time.Time
}

// IconFor returns the icon drawn on tile id.
func (s *Snapshot) IconFor(id tile.ID) icon.Result {
	return s.Icons.For(id)
}

// BackgroundPath is the background image path on the card, or "" when the
// theme has none.
func (s *Snapshot) BackgroundPath() string {
	if s.Theme.BackgroundImage == "" || s.Dir == "" {
		return ""
	}
	return filepath.Join(s.Dir, filepath.FromSlash(s.Theme.BackgroundImage))
}

// Notifier is told about every activation that could not be honored.
type Notifier func(theme string, err error)

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used to stamp snapshots.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithResolver sets the icon resolver. By default one with default limits is
// created on the manager's filesystem.
func WithResolver(r *icon.Resolver) Option {
	return func(m *Manager) { m.resolver = r }
}

// WithVisibleTiles limits icon loading to ids. Other tiles draw their glyph.
func WithVisibleTiles(ids ...tile.ID) Option {
	return func(m *Manager) { m.visible = append([]tile.ID(nil), ids...) }
}

// WithNotifier registers n for failed activations.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// Manager loads themes from <root>/<name> and holds the active one.
type Manager struct {
	fs       afero.Fs
	root     string
	clock    clockwork.Clock
	resolver *icon.Resolver
	visible  []tile.ID
	notify   Notifier

	mu      sync.Mutex // serializes activations
	current atomic.Pointer[Snapshot]
}

// New returns a Manager whose current snapshot is the compiled defaults.
func New(fsys afero.Fs, root string, opts ...Option) (*Manager, error) {
	if fsys == nil {
		return nil, errors.New("manager: nil filesystem")
	}
	m := &Manager{
		fs:      fsys,
		root:    root,
		clock:   clockwork.NewRealClock(),
		visible: tile.All(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.resolver == nil {
		r, err := icon.NewResolver(fsys)
		if err != nil {
			return nil, err
		}
		m.resolver = r
	}
	for _, id := range m.visible {
		if !id.Valid() {
			return nil, fmt.Errorf("manager: unknown tile %s", id)
		}
	}

	m.current.Store(&Snapshot{
		Name:        DefaultName,
		Theme:       theme.Defaults(),
		Layout:      layout.Defaults(),
		Icons:       icon.Set{},
		Diagnostics: Diagnostics{Theme: diag.New(theme.FileName), Layout: diag.New(layout.FileName)},
		ActivatedAt: m.clock.Now(),
	})
	return m, nil
}

// Current returns the active snapshot. It is never nil.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// IconFor returns the icon of id in the active snapshot.
func (m *Manager) IconFor(id tile.ID) icon.Result {
	return m.Current().IconFor(id)
}

// Root is the directory themes are looked up in.
func (m *Manager) Root() string {
	return m.root
}

// Activate builds the theme called name and makes it current. A second call
// waits for the first to finish. On error the current snapshot is unchanged.
func (m *Manager) Activate(ctx context.Context, name string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lgr := logger.FromContext(ctx).WithValues(logger.ThemeKey, name)
	ctx = logger.WithLogger(ctx, &lgr)
	start := m.clock.Now()

	snap, err := m.build(ctx, name)
	if err != nil {
		lgr.Error(err, "theme activation failed, keeping previous theme", "previous", m.Current().Name)
		if m.notify != nil {
			m.notify(name, err)
		}
		return nil, err
	}
	snap.ActivatedAt = m.clock.Now()
	m.current.Store(snap)
	lgr.Info("theme activated", logger.DurationKey, snap.ActivatedAt.Sub(start).String())
	return snap, nil
}

func (m *Manager) build(ctx context.Context, name string) (*Snapshot, error) {
	lgr := logger.FromContext(ctx)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	dir := filepath.Join(m.root, name)
	info, err := storage.Stat(m.fs, dir)
	switch {
	case err != nil && storage.IsMissing(err):
		return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	case err != nil:
		return nil, fmt.Errorf("theme %s: %w", name, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrThemeNotFound, name)
	}

	to, treport, err := theme.Load(m.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	treport.Log(*lgr)

	lo, lreport, err := layout.Load(m.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	lreport.Log(*lgr)

	spec := theme.Apply(theme.Defaults(), to)
	tint := icon.Tint{Color: spec.IconTint, Strength: spec.IconTintOpa}
	icons, err := m.resolver.ResolveAll(ctx, dir, m.visible, tint)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}

	return &Snapshot{
		Name:        name,
		Dir:         dir,
		Theme:       spec,
		Layout:      layout.Apply(layout.Defaults(), lo),
		Icons:       icons,
		Diagnostics: Diagnostics{Theme: treport, Layout: lreport},
	}, nil
}

// Themes lists the directories under the root that hold a theme.ini.
// A missing root has no themes.
func (m *Manager) Themes() ([]string, error) {
	dirs, err := storage.Subdirs(m.fs, m.root)
	if err != nil {
		if storage.IsMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list themes: %w", err)
	}
	var names []string
	for _, d := range dirs {
		if ValidateName(d) != nil {
			continue
		}
		info, err := storage.Stat(m.fs, filepath.Join(m.root, d, theme.FileName))
		switch {
		case err == nil && !info.IsDir():
			names = append(names, d)
		case err != nil && !storage.IsMissing(err):
			return nil, fmt.Errorf("list themes: %w", err)
		}
	}
	return names, nil
}

// ValidateName accepts a single directory name: no separators, no "." or
// "..", no control characters.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidThemeName, name)
	case strings.ContainsAny(name, `/\:`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidThemeName, name)
	case strings.IndexFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0:
		return fmt.Errorf("%w: %q contains a control character", ErrInvalidThemeName, name)
	}
	return nil
}
