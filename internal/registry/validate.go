package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/bundlegen/internal/manifest"
)

// Validate checks that both modes have a plugin list and that every plugin a
// mode names is registered.
func (r *Registry) Validate() error {
	var errs []string

	for _, mode := range []manifest.Mode{manifest.Development, manifest.Production} {
		if _, ok := r.modes[mode]; !ok {
			errs = append(errs, fmt.Sprintf("mode '%s' has no plugin list", mode))
		}
	}

	modes := make([]string, 0, len(r.modes))
	for mode := range r.modes {
		modes = append(modes, string(mode))
	}
	sort.Strings(modes)
	for _, mode := range modes {
		seen := make(map[string]struct{})
		for _, name := range r.modes[manifest.Mode(mode)] {
			if _, ok := r.factories[name]; !ok {
				errs = append(errs, fmt.Sprintf("mode '%s': plugin '%s' is not registered", mode, name))
			}
			if _, dup := seen[name]; dup {
				errs = append(errs, fmt.Sprintf("mode '%s': plugin '%s' is listed twice", mode, name))
			}
			seen[name] = struct{}{}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
