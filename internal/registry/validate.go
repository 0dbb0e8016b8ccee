package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/plugtree/internal/ctxlog"
	"github.com/specialistvlad/plugtree/internal/plugins"
)

// ErrNotRegistered is returned for catalog names nothing registered.
var ErrNotRegistered = errors.New("not registered")

// ValidateRegistry checks every registered type spec and that element type
// references point at registered types.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	for _, name := range names {
		spec := r.types[name]
		if err := spec.Validate(); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if spec.ElementType != "" {
			if _, ok := r.types[spec.ElementType]; !ok && !plugins.IsPrimitiveType(spec.ElementType) {
				errs = append(errs, fmt.Sprintf("type %q: element type %q is not registered", name, spec.ElementType))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.",
		"modules", len(r.modules),
		"builders", len(r.builders),
		"parsers", len(r.parsers),
		"types", len(r.types),
	)
	return nil
}
