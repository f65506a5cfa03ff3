package main

import "github.com/hulks-go/splbrain/internal/cycle"

// engineSnapshot adapts *cycle.Engine to telemetry.StateProvider, so
// /debug/state always reflects the registry as it stood after the most
// recently completed tick.
type engineSnapshot struct {
	engine *cycle.Engine
}

func (s engineSnapshot) DebugSnapshot() any {
	return s.engine.Snapshot()
}
