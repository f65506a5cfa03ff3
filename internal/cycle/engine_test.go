package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constModule struct {
	name  string
	deps  []string
	prod  string
	value int
}

func (m *constModule) Name() string           { return m.name }
func (m *constModule) Dependencies() []string  { return m.deps }
func (m *constModule) Production() string      { return m.prod }
func (m *constModule) Default() interface{}    { return 0 }
func (m *constModule) Cycle(r *Registry)       { Set(r, m.prod, m.value) }

type sumModule struct {
	name string
	deps []string
	prod string
}

func (m *sumModule) Name() string          { return m.name }
func (m *sumModule) Dependencies() []string { return m.deps }
func (m *sumModule) Production() string    { return m.prod }
func (m *sumModule) Default() interface{}  { return 0 }
func (m *sumModule) Cycle(r *Registry) {
	total := 0
	for _, dep := range m.deps {
		total += Get[int](r, dep)
	}
	Set(r, m.prod, total)
}

func TestEngineRunsInTopologicalOrder(t *testing.T) {
	a := &constModule{name: "a", prod: "a.out", value: 2}
	b := &constModule{name: "b", prod: "b.out", value: 3}
	sum := &sumModule{name: "sum", deps: []string{"a.out", "b.out"}, prod: "sum.out"}

	e, err := NewEngine([]Module{sum, a, b})
	require.NoError(t, err)

	errs := e.RunCycle()
	assert.Empty(t, errs)

	snap := e.Snapshot()
	assert.Equal(t, 5, snap["sum.out"])
}

func TestEngineRejectsDuplicateProducer(t *testing.T) {
	a := &constModule{name: "a", prod: "shared", value: 1}
	b := &constModule{name: "b", prod: "shared", value: 2}

	_, err := NewEngine([]Module{a, b})
	assert.Error(t, err)
}

func TestEngineRejectsCycle(t *testing.T) {
	a := &sumModule{name: "a", deps: []string{"b.out"}, prod: "a.out"}
	b := &sumModule{name: "b", deps: []string{"a.out"}, prod: "b.out"}

	_, err := NewEngine([]Module{a, b})
	assert.Error(t, err)
}

type panicModule struct{}

func (panicModule) Name() string          { return "panicker" }
func (panicModule) Dependencies() []string { return nil }
func (panicModule) Production() string    { return "panicker.out" }
func (panicModule) Default() interface{}  { return "default" }
func (panicModule) Cycle(r *Registry)     { panic("boom") }

func TestEngineRecoversPanicAndResetsProduction(t *testing.T) {
	e, err := NewEngine([]Module{panicModule{}})
	require.NoError(t, err)

	errs := e.RunCycle()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "panicker")

	snap := e.Snapshot()
	assert.Equal(t, "default", snap["panicker.out"])
}

func TestParamHotReloadVisibleNextLoad(t *testing.T) {
	p := NewParam(10)
	assert.Equal(t, 10, p.Load())
	p.Store(20)
	assert.Equal(t, 20, p.Load())
}
