package icon

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/oakwood-commons/sdtheme/pkg/logger"
	"github.com/oakwood-commons/sdtheme/pkg/storage"
	"github.com/oakwood-commons/sdtheme/pkg/tile"
)

const (
	DefaultBoxSize     = 48
	DefaultMaxFileSize = 256 << 10
	DefaultMaxPixels   = 512 * 512
	DefaultCacheSize   = 32
)

var (
	errTooLarge  = errors.New("file too large")
	errTooManyPx = errors.New("image too large")
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithBox sets the icon box every asset is fitted into.
func WithBox(w, h int) Option {
	return func(r *Resolver) { r.box = image.Pt(w, h) }
}

// WithMaxFileSize caps the encoded size of an icon file; larger files are skipped.
func WithMaxFileSize(n int64) Option {
	return func(r *Resolver) { r.maxFileSize = n }
}

// WithMaxPixels caps width*height of a decoded icon; larger images are skipped.
func WithMaxPixels(n int) Option {
	return func(r *Resolver) { r.maxPixels = n }
}

// WithCacheSize sets how many decoded assets are kept.
func WithCacheSize(n int) Option {
	return func(r *Resolver) { r.cacheSize = n }
}

// Resolver finds, decodes, fits and tints theme icons. It is safe for
// concurrent use.
type Resolver struct {
	fs          afero.Fs
	box         image.Point
	maxFileSize int64
	maxPixels   int
	cacheSize   int

	cache     *lru.Cache[cacheKey, *Asset]
	cacheHit  atomic.Int64
	cacheMiss atomic.Int64
}

// cacheKey identifies one decoded variant of one file. The digest covers the
// bytes read, so a file replaced in place is decoded again even when its size
// and modification time did not change. The tile is part of the key because
// settings.png serves two tiles.
type cacheKey struct {
	tile   tile.ID
	path   string
	digest [sha256.Size]byte
	box    image.Point
	tint   Tint
}

// NewResolver returns a Resolver reading from fsys.
func NewResolver(fsys afero.Fs, opts ...Option) (*Resolver, error) {
	if fsys == nil {
		return nil, errors.New("icon: nil filesystem")
	}
	r := &Resolver{
		fs:          fsys,
		box:         image.Pt(DefaultBoxSize, DefaultBoxSize),
		maxFileSize: DefaultMaxFileSize,
		maxPixels:   DefaultMaxPixels,
		cacheSize:   DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.box.X <= 0 || r.box.Y <= 0 {
		return nil, fmt.Errorf("icon: invalid box %dx%d", r.box.X, r.box.Y)
	}
	if r.maxFileSize <= 0 || r.maxPixels <= 0 {
		return nil, fmt.Errorf("icon: limits must be positive (file %d, pixels %d)", r.maxFileSize, r.maxPixels)
	}
	cache, err := lru.New[cacheKey, *Asset](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("icon: cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Box returns the size every asset is fitted into.
func (r *Resolver) Box() image.Point {
	return r.box
}

// CacheStats reports decode cache hits and misses since creation.
func (r *Resolver) CacheStats() (hits, misses int64) {
	return r.cacheHit.Load(), r.cacheMiss.Load()
}

// Resolve looks for the icon of id under <themeDir>/icons, trying the
// tile's filenames in order. The first file that decodes wins. When none
// does, the result is the tile's glyph and err is nil; err is non-nil only
// when the storage failed.
func (r *Resolver) Resolve(ctx context.Context, themeDir string, id tile.ID, tint Tint) (Result, error) {
	lgr := logger.FromContext(ctx).WithValues(logger.TileKey, id.String())
	for _, name := range id.Info().Icons {
		p := filepath.Join(themeDir, Dir, name)
		asset, err := r.load(p, id, tint)
		switch {
		case err == nil:
			lgr.V(1).Info("icon resolved", logger.PathKey, p, "tinted", asset.Tinted)
			return Result{Tile: id, Asset: asset}, nil
		case storage.IsMissing(err):
			continue
		case storage.IsUnavailable(err):
			return Result{}, fmt.Errorf("icon %s: %w", id, err)
		default:
			lgr.V(1).Info("icon candidate skipped", logger.PathKey, p, "reason", err.Error())
		}
	}
	lgr.V(2).Info("icon falls back to glyph", "glyph", id.Info().Glyph)
	return Glyph(id), nil
}

// ResolveAll resolves ids in order and stops at the first storage failure.
func (r *Resolver) ResolveAll(ctx context.Context, themeDir string, ids []tile.ID, tint Tint) (Set, error) {
	set := make(Set, len(ids))
	for _, id := range ids {
		res, err := r.Resolve(ctx, themeDir, id, tint)
		if err != nil {
			return nil, err
		}
		set[id] = res
	}
	return set, nil
}

func (r *Resolver) load(p string, id tile.ID, tint Tint) (*Asset, error) {
	info, err := storage.Stat(r.fs, p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", p, storage.ErrNotFile)
	}
	if info.Size() > r.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", errTooLarge, info.Size())
	}

	data, truncated, err := storage.ReadFile(r.fs, p, r.maxFileSize)
	if err != nil {
		return nil, err
	}
	if truncated {
		return nil, errTooLarge
	}

	key := cacheKey{tile: id, path: p, digest: sha256.Sum256(data), box: r.box, tint: tint}
	if a, ok := r.cache.Get(key); ok {
		r.cacheHit.Add(1)
		return a, nil
	}
	r.cacheMiss.Add(1)

	src, err := r.decode(data)
	if err != nil {
		return nil, err
	}

	asset := &Asset{
		Tile:       id,
		Source:     p,
		Image:      Fit(src, r.box),
		SourceSize: src.Bounds().Size(),
	}
	if tint.Strength > 0 {
		ApplyTint(asset.Image, tint)
		asset.Tinted = true
	}
	r.cache.Add(key, asset)
	return asset, nil
}

// decode checks the header against the pixel cap before decoding the image.
func (r *Resolver) decode(data []byte) (image.Image, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("png header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > r.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", errTooManyPx, cfg.Width, cfg.Height)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	return img, nil
}
