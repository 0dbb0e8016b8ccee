package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/registry"
)

// Recorder is a registry module whose "recorder" builder builds objects
// the default way and records every build and destroy by construct path.
type Recorder struct {
	mu        sync.Mutex
	built     []string
	destroyed []string
}

// Name implements registry.Module.
func (r *Recorder) Name() string { return "recorder" }

// Register implements registry.Module.
func (r *Recorder) Register(reg *registry.Registry) {
	reg.RegisterBuilder("recorder", func() plugins.Builder { return &recordingBuilder{r: r} })
}

// Built returns the paths built so far, in order.
func (r *Recorder) Built() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.built...)
}

// Destroyed returns the paths destroyed so far, in order.
func (r *Recorder) Destroyed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.destroyed...)
}

type recordingBuilder struct {
	r *Recorder
}

func (b *recordingBuilder) Build(ctx context.Context, bc *plugins.BuildContext) (any, error) {
	v, err := plugins.BuildObject(ctx, bc)
	if err != nil {
		return nil, err
	}
	b.r.mu.Lock()
	b.r.built = append(b.r.built, bc.Builtin.Path())
	b.r.mu.Unlock()
	return v, nil
}

func (b *recordingBuilder) Destroy(_ context.Context, bc *plugins.BuildContext, _ any) error {
	b.r.mu.Lock()
	defer b.r.mu.Unlock()
	b.r.destroyed = append(b.r.destroyed, bc.Builtin.Path())
	return nil
}
