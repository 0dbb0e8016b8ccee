package loader

import (
	"context"
	"sync"
	"testing"

	phcl "github.com/specialistvlad/plugtree/internal/hcl"
	"github.com/specialistvlad/plugtree/internal/plugins"
	"github.com/specialistvlad/plugtree/internal/registry"
	"github.com/specialistvlad/plugtree/internal/testutil"
)

type LogSink struct {
	Level string
}

type ConsoleLogger struct {
	Prefix string
	Level  string
	Sink   *LogSink
}

type loggingModule struct{}

func (loggingModule) Name() string { return "logging" }

func (loggingModule) Register(r *registry.Registry) {
	r.RegisterBuilder("object", func() plugins.Builder { return plugins.BuilderFunc(plugins.BuildObject) })
	r.RegisterType(plugins.SpecFor[*ConsoleLogger]("ConsoleLogger"))
	r.RegisterType(plugins.SpecFor[*LogSink]("LogSink"))
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	engine   *plugins.Engine
	loader   *Loader
	recorder *testutil.Recorder

	mu     sync.Mutex
	events []string
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx, _ := testutil.LogContext(t)

	reg := registry.New()
	recorder := &testutil.Recorder{}
	reg.Use(loggingModule{}, recorder)

	engine := plugins.NewEngine(plugins.EngineOptions{
		Types:     reg,
		Converter: phcl.NewConverter(),
	})
	f := &fixture{
		t:        t,
		ctx:      ctx,
		engine:   engine,
		loader:   New(engine, phcl.NewSource(), reg, opts),
		recorder: recorder,
	}
	f.loader.Subscribe(func(ev Event) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, ev.Kind.String()+":"+ev.Plugin)
	})
	return f
}

func (f *fixture) load(files map[string]string) error {
	f.t.Helper()
	return f.loader.Load(f.ctx, testutil.WritePluginTree(f.t, files))
}

func (f *fixture) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func names(ps []*plugins.Plugin) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name())
	}
	return out
}
