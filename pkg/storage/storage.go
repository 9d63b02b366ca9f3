// Package storage is the boundary to the removable card holding themes.
//
// All reads go through an afero.Fs so the device driver, the host OS and
// tests can stand behind the same calls. Errors fall in two classes:
// missing data (the file or directory is not there, or is the wrong kind of
// entry), which callers recover from, and unavailable storage (anything the
// card itself reports), which aborts a theme activation.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"syscall"

	"github.com/spf13/afero"
)

var (
	// ErrUnavailable matches every error caused by the card rather than by its content.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrNotFile is returned when a path names a directory where a file was expected.
	ErrNotFile = errors.New("not a regular file")
)

// UnavailableError records the operation that hit a storage failure.
type UnavailableError struct {
	Op   string
	Path string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s %s: storage unavailable: %v", e.Op, e.Path, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnavailable) match.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// IsMissing reports whether err means the entry is absent or not a file.
func IsMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, ErrNotFile) ||
		errors.Is(err, syscall.ENOTDIR)
}

// IsUnavailable reports whether err came from the storage itself.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if IsMissing(err) || IsUnavailable(err) {
		return err
	}
	return &UnavailableError{Op: op, Path: path, Err: err}
}

// Stat returns file info for path with the error classified.
func Stat(fsys afero.Fs, path string) (os.FileInfo, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, classify("stat", path, err)
	}
	return info, nil
}

// ReadFile opens path, reads at most limit bytes and closes it again.
// Content past limit is silently dropped; truncated reports whether that happened.
func ReadFile(fsys afero.Fs, path string, limit int64) (data []byte, truncated bool, err error) {
	info, err := Stat(fsys, path)
	if err != nil {
		return nil, false, err
	}
	if info.IsDir() {
		return nil, false, fmt.Errorf("%s: %w", path, ErrNotFile)
	}

	f, err := fsys.Open(path)
	if err != nil {
		return nil, false, classify("open", path, err)
	}
	defer f.Close()

	// One extra byte tells a file of exactly limit bytes apart from a longer one.
	data, err = io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, false, classify("read", path, err)
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

// Subdirs lists the directory names directly under root, sorted.
func Subdirs(fsys afero.Fs, root string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, root)
	if err != nil {
		return nil, classify("readdir", root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
