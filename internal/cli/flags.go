package cli

import (
	"time"

	"github.com/spf13/pflag"
)

// instantFlag is a pflag.Value accepting YYYY-MM-DD (midnight in loc) or
// RFC3339. Unset flags leave t nil.
type instantFlag struct {
	loc *time.Location
	t   *time.Time
}

var _ pflag.Value = (*instantFlag)(nil)

func newInstantFlag(loc *time.Location) *instantFlag {
	return &instantFlag{loc: loc}
}

func (f *instantFlag) String() string {
	if f.t == nil {
		return ""
	}
	return f.t.Format(time.RFC3339)
}

func (f *instantFlag) Set(value string) error {
	t, err := parseInstant(value, f.loc)
	if err != nil {
		return err
	}
	f.t = &t
	return nil
}

func (f *instantFlag) Type() string { return "time" }

// or returns the flag value, or fallback when the flag was not given.
func (f *instantFlag) or(fallback time.Time) time.Time {
	if f.t == nil {
		return fallback
	}
	return *f.t
}

func addInstantFlag(fs *pflag.FlagSet, name, usage string, loc *time.Location) *instantFlag {
	f := newInstantFlag(loc)
	fs.Var(f, name, usage+" (YYYY-MM-DD or RFC3339)")
	return f
}
