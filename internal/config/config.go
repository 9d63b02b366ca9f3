// Package config reads the device configuration: where themes live, which
// one to activate and the icon limits. Values come from, in order of
// precedence, bound flags, SDTHEME_* environment variables, an optional
// .sdtheme.yaml and the defaults below.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/oakwood-commons/sdtheme/pkg/icon"
	"github.com/oakwood-commons/sdtheme/pkg/manager"
	"github.com/oakwood-commons/sdtheme/pkg/settings"
)

const (
	KeyThemesRoot = "themes_root"
	KeyTheme      = "theme"
	KeyIconBox    = "icon_box"
	KeyIconCache  = "icon_cache"
	KeyLogLevel   = "log_level"

	EnvPrefix = "SDTHEME"
	FileName  = ".sdtheme"
)

// Config is the merged device configuration.
type Config struct {
	ThemesRoot string `mapstructure:"themes_root" yaml:"themes_root"`
	Theme      string `mapstructure:"theme" yaml:"theme"`
	IconBox    int    `mapstructure:"icon_box" yaml:"icon_box"`
	IconCache  int    `mapstructure:"icon_cache" yaml:"icon_cache"`
	LogLevel   int    `mapstructure:"log_level" yaml:"log_level"`
}

// New returns a viper instance reading from fsys with defaults and
// environment lookup in place.
func New(fsys afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeyThemesRoot, settings.DefaultThemesRoot)
	v.SetDefault(KeyTheme, manager.DefaultName)
	v.SetDefault(KeyIconBox, icon.DefaultBoxSize)
	v.SetDefault(KeyIconCache, icon.DefaultCacheSize)
	v.SetDefault(KeyLogLevel, 0)
	return v
}

// Load reads file, or .sdtheme.yaml from the first of dirs that has one, and
// decodes the result. Only an explicitly named file is required to exist.
func Load(v *viper.Viper, file string, dirs ...string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the values the engine cannot run without.
func (c Config) Validate() error {
	var errs error
	if c.ThemesRoot == "" {
		errs = multierr.Append(errs, fmt.Errorf("%s must not be empty", KeyThemesRoot))
	}
	if c.IconBox <= 0 || c.IconBox > 512 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be in 1..512, got %d", KeyIconBox, c.IconBox))
	}
	if c.IconCache <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive, got %d", KeyIconCache, c.IconCache))
	}
	if c.LogLevel < -2 || c.LogLevel > 1 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be in -2..1, got %d", KeyLogLevel, c.LogLevel))
	}
	if c.Theme != manager.DefaultName {
		if err := manager.ValidateName(c.Theme); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", KeyTheme, err))
		}
	}
	if errs != nil {
		return fmt.Errorf("invalid config: %w", errs)
	}
	return nil
}

// Apply copies the configuration onto the run settings.
func (c Config) Apply(run *settings.Run) {
	run.ThemesRoot = c.ThemesRoot
	run.Theme = c.Theme
	run.IconBox = c.IconBox
	run.IconCache = c.IconCache
	run.MinLogLevel = int8(c.LogLevel)
}
