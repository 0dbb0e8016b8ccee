package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ErrServiceNotFound is returned when a required injection target has no
// matching service.
var ErrServiceNotFound = errors.New("service not found")

// Locator is the read side of a service container.
type Locator interface {
	// Resolve returns the first service assignable to t.
	Resolve(t reflect.Type) (any, bool)
	// ResolveNamed returns the service registered under name.
	ResolveNamed(name string) (any, bool)
}

// Container is a thread-safe Locator with registration and injection.
type Container struct {
	mu     sync.RWMutex
	parent Locator
	all    []any
	named  map[string]any
}

// New creates a container. A nil parent makes it a root container.
func New(parent Locator) *Container {
	return &Container{
		parent: parent,
		named:  make(map[string]any),
	}
}

// Register adds a service. When name is not empty the service is also
// reachable through ResolveNamed; re-registering a name replaces it.
func (c *Container) Register(name string, service any) {
	if service == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if name != "" {
		if old, ok := c.named[name]; ok {
			c.removeLocked(old)
		}
		c.named[name] = service
	}
	c.all = append(c.all, service)
}

// Unregister removes a service instance, including any name pointing at it.
// It reports whether the service was present.
func (c *Container) Unregister(service any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, s := range c.named {
		if same(s, service) {
			delete(c.named, name)
		}
	}
	return c.removeLocked(service)
}

func (c *Container) removeLocked(service any) bool {
	for i, s := range c.all {
		if same(s, service) {
			c.all = append(c.all[:i], c.all[i+1:]...)
			return true
		}
	}
	return false
}

// Resolve returns the first registered service assignable to t, then asks
// the parent.
func (c *Container) Resolve(t reflect.Type) (any, bool) {
	if t == nil {
		return nil, false
	}
	c.mu.RLock()
	for _, s := range c.all {
		if reflect.TypeOf(s).AssignableTo(t) {
			c.mu.RUnlock()
			return s, true
		}
	}
	c.mu.RUnlock()

	if c.parent != nil {
		return c.parent.Resolve(t)
	}
	return nil, false
}

// ResolveNamed returns the service registered under name, then asks the parent.
func (c *Container) ResolveNamed(name string) (any, bool) {
	c.mu.RLock()
	s, ok := c.named[name]
	c.mu.RUnlock()
	if ok {
		return s, true
	}
	if c.parent != nil {
		return c.parent.ResolveNamed(name)
	}
	return nil, false
}

// Len returns the number of services registered directly in this container.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.all)
}

// Inject fills exported fields of the struct pointed to by target that carry
// an `inject` tag. `inject:"name"` resolves by name, `inject:""` by field
// type. Fields that already hold a non-zero value are left untouched.
// Adding `,optional` to the tag skips missing services instead of failing.
func Inject(l Locator, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("inject")
		if !ok || !field.IsExported() {
			continue
		}
		fv := v.Field(i)
		if !fv.IsZero() {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		var (
			service any
			found   bool
		)
		if name != "" {
			service, found = l.ResolveNamed(name)
			if found && !reflect.TypeOf(service).AssignableTo(field.Type) {
				return fmt.Errorf("service %q of type %T is not assignable to field %s (%s)", name, service, field.Name, field.Type)
			}
		} else {
			service, found = l.Resolve(field.Type)
		}

		if !found {
			if opts == "optional" {
				continue
			}
			return fmt.Errorf("%w: field %s.%s (%s)", ErrServiceNotFound, t.Name(), field.Name, field.Type)
		}
		fv.Set(reflect.ValueOf(service))
	}
	return nil
}

// same compares two services by identity when possible.
func same(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
