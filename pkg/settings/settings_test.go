package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	assert.Equal(t, &Run{
		MinLogLevel: 0,
		ThemesRoot:  "/sd/themes",
		Theme:       "default",
		IconBox:     48,
		IconCache:   32,
		ExitOnError: true,
	}, got)
	assert.NotSame(t, got, NewCliParams())
}

func TestVersionInformationDefaults(t *testing.T) {
	assert.Equal(t, "sdtheme", CliBinaryName)
	assert.Equal(t, "unknown", VersionInformation.Commit)
	assert.NotEmpty(t, VersionInformation.BuildVersion)
}
