package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/logdeck/logdeck/level"
)

// EnvVar is the environment variable consulted by ApplyEnvFilter when no
// name is given.
const EnvVar = "LOGDECK_LOG"

// Directive is one term of a filter specification: a target (or target
// prefix) bound to a capture level.
type Directive struct {
	Target string // empty sets the default level
	Level  level.Level
}

// ParseFilterSpec parses a comma-separated filter specification of the form
// "target=level,target=level". A bare "level" term sets the default level
// for all targets without a more specific directive. Longest-prefix matching
// applies, so "app" also covers "app/db".
func ParseFilterSpec(spec string) ([]Directive, error) {
	var out []Directive
	for _, term := range strings.Split(spec, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		name, val, found := strings.Cut(term, "=")
		if !found {
			l, err := level.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("filter term %q: %w", term, err)
			}
			out = append(out, Directive{Level: l})
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("filter term %q: empty target", term)
		}
		l, err := level.Parse(val)
		if err != nil {
			return nil, fmt.Errorf("filter term %q: %w", term, err)
		}
		out = append(out, Directive{Target: name, Level: l})
	}
	return out, nil
}

// SetFilterSpec parses spec and installs the directives. Directives affect
// targets seen afterwards; already-known targets keep their levels. A bare
// level term also updates the registry default.
func (r *Registry) SetFilterSpec(spec string) error {
	dirs, err := ParseFilterSpec(spec)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.directives = dirs
	r.mu.Unlock()
	for _, d := range dirs {
		if d.Target == "" {
			r.SetDefaultLevel(d.Level)
		}
	}
	return nil
}

// ApplyEnvFilter reads the filter specification from the named environment
// variable (EnvVar when name is empty). An unset variable is not an error.
func (r *Registry) ApplyEnvFilter(name string) error {
	if name == "" {
		name = EnvVar
	}
	spec, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	return r.SetFilterSpec(spec)
}

// ClearFilter removes all installed directives.
func (r *Registry) ClearFilter() {
	r.mu.Lock()
	r.directives = nil
	r.mu.Unlock()
}

// matchDirectives returns the level of the longest directive whose target is
// a prefix of target. Bare default directives never match here; they are
// applied through the registry default.
func matchDirectives(dirs []Directive, target string) (level.Level, bool) {
	best := -1
	var lvl level.Level
	for _, d := range dirs {
		if d.Target == "" {
			continue
		}
		if target == d.Target || strings.HasPrefix(target, d.Target+"/") ||
			strings.HasPrefix(target, d.Target+".") || strings.HasPrefix(target, d.Target+"::") {
			if len(d.Target) > best {
				best = len(d.Target)
				lvl = d.Level
			}
		}
	}
	return lvl, best >= 0
}
