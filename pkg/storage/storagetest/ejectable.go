// Package storagetest provides filesystems that misbehave on purpose.
package storagetest

import (
	"os"
	"sync"
	"syscall"

	"github.com/spf13/afero"
)

// Ejectable wraps an afero.Fs and starts failing every lookup with EIO once
// the card is ejected, either explicitly or by a trigger on a path.
type Ejectable struct {
	afero.Fs

	mu      sync.Mutex
	ejected bool
	trigger func(op, name string) bool
	calls   []string
}

// NewEjectable wraps base.
func NewEjectable(base afero.Fs) *Ejectable {
	return &Ejectable{Fs: base}
}

// Eject makes every following call fail.
func (e *Ejectable) Eject() {
	e.mu.Lock()
	e.ejected = true
	e.mu.Unlock()
}

// EjectWhen ejects the card right before the first call for which fn returns true.
func (e *Ejectable) EjectWhen(fn func(op, name string) bool) {
	e.mu.Lock()
	e.trigger = fn
	e.mu.Unlock()
}

// Calls returns "op name" for every call seen so far.
func (e *Ejectable) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *Ejectable) check(op, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, op+" "+name)
	if !e.ejected && e.trigger != nil && e.trigger(op, name) {
		e.ejected = true
	}
	if e.ejected {
		return &os.PathError{Op: op, Path: name, Err: syscall.EIO}
	}
	return nil
}

func (e *Ejectable) Open(name string) (afero.File, error) {
	if err := e.check("open", name); err != nil {
		return nil, err
	}
	return e.Fs.Open(name)
}

func (e *Ejectable) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err := e.check("open", name); err != nil {
		return nil, err
	}
	return e.Fs.OpenFile(name, flag, perm)
}

func (e *Ejectable) Stat(name string) (os.FileInfo, error) {
	if err := e.check("stat", name); err != nil {
		return nil, err
	}
	return e.Fs.Stat(name)
}

func (e *Ejectable) Name() string { return "Ejectable" }
