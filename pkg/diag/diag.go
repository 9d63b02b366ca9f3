// Package diag collects the non-fatal findings of a theme load.
//
// A Report never decides whether a file is accepted; loaders apply every
// field that parsed and record the rest here for logs and the CLI.
package diag

import (
	"fmt"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"
)

// Report summarizes one override file.
type Report struct {
	Source    string `json:"source" yaml:"source" toml:"source"`
	Missing   bool   `json:"missing,omitempty" yaml:"missing,omitempty" toml:"missing,omitempty"`
	Truncated bool   `json:"truncated,omitempty" yaml:"truncated,omitempty" toml:"truncated,omitempty"`
	Applied   int    `json:"applied" yaml:"applied" toml:"applied"`
	Failed    int    `json:"failed" yaml:"failed" toml:"failed"`
	Unknown   int    `json:"unknown" yaml:"unknown" toml:"unknown"`

	errs error
}

// New starts a report for source.
func New(source string) Report {
	return Report{Source: source}
}

// Apply counts one field that made it into the override record.
func (r *Report) Apply() {
	r.Applied++
}

// Fail counts a recognized field that was rejected.
func (r *Report) Fail(field string, err error) {
	r.Failed++
	r.errs = multierr.Append(r.errs, fmt.Errorf("%s: %w", field, err))
}

// Ignore counts a field or key the loader does not know.
func (r *Report) Ignore() {
	r.Unknown++
}

// Err returns every recorded failure combined, or nil.
func (r Report) Err() error {
	return r.errs
}

// Messages returns the recorded failures as strings, in order.
func (r Report) Messages() []string {
	errs := multierr.Errors(r.errs)
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

// Log writes the summary at V(1) and each failure at V(2).
func (r Report) Log(lgr logr.Logger) {
	lgr.V(1).Info("override file loaded",
		"source", r.Source,
		"missing", r.Missing,
		"truncated", r.Truncated,
		"applied", r.Applied,
		"failed", r.Failed,
		"unknown", r.Unknown,
	)
	for _, err := range multierr.Errors(r.errs) {
		lgr.V(2).Info("override field rejected", "source", r.Source, "reason", err.Error())
	}
}
