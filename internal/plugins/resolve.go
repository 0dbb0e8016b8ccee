package plugins

import "fmt"

// ResolveBuilder finds the builder for scheme through the resolution chain.
func (p *Plugin) ResolveBuilder(scheme string) (Builder, error) {
	if b, ok := resolve(p, make(map[*Plugin]bool), (*Plugin).localBuilder, scheme); ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q (from plugin %s)", ErrBuilderNotFound, scheme, p.Name())
}

// ResolveParser finds the parser called name through the resolution chain.
func (p *Plugin) ResolveParser(name string) (Parser, error) {
	if parser, ok := resolve(p, make(map[*Plugin]bool), (*Plugin).localParser, name); ok {
		return parser, nil
	}
	return nil, fmt.Errorf("%w: %q (from plugin %s)", ErrParserNotFound, name, p.Name())
}

// resolve searches p's own registry, then its dependencies in declaration
// order, then its slaves, then its structural parent. Every step recurses
// with the same algorithm; visited guarantees termination on cycles.
func resolve[T any](p *Plugin, visited map[*Plugin]bool, local func(*Plugin, string) (T, bool), name string) (T, bool) {
	var zero T
	if p == nil || visited[p] {
		return zero, false
	}
	visited[p] = true

	if v, ok := local(p, name); ok {
		return v, true
	}
	for _, dep := range p.Dependencies() {
		if v, ok := resolve(dep, visited, local, name); ok {
			return v, true
		}
	}
	for _, slave := range p.Slaves() {
		if v, ok := resolve(slave, visited, local, name); ok {
			return v, true
		}
	}
	return resolve(p.parent, visited, local, name)
}
