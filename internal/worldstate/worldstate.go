// Package worldstate implements the supporting derived-belief modules
// PointOfInterests, TimeToReachBall, and SetPosition (SPEC_FULL.md §C.1):
// small, pure, per-tick-recomputed helpers that every role-action provider
// reads from instead of recomputing field geometry inline.
package worldstate

import (
	"math"
	"time"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

// WalkModel bounds TimeToReachBall's walk-speed assumptions.
type WalkModel struct {
	WalkSpeed     float64 // m/s
	TurnRate      float64 // rad/s
}

// DefaultWalkModel mirrors the searcher package's own cost constants so the
// whole module agrees on one notion of "how fast can a robot move".
func DefaultWalkModel() WalkModel {
	return WalkModel{WalkSpeed: 0.18, TurnRate: math.Pi / 10}
}

// TimeToReachBall estimates how long it takes a robot at pose to reach
// ballPos, monotonic in distance and penalized by the angle it must turn
// in place before walking (SPEC_FULL.md §C.1).
func TimeToReachBall(pose spltypes.Pose, ballPos spltypes.P2, m WalkModel) time.Duration {
	rel := pose.ToLocal(ballPos)
	distance := math.Hypot(rel.X, rel.Y)
	turnAngle := math.Abs(spltypes.NormalizeAngle(math.Atan2(rel.Y, rel.X)))

	seconds := distance / m.WalkSpeed
	if m.TurnRate > 0 {
		seconds += turnAngle / m.TurnRate
	}
	return time.Duration(seconds * float64(time.Second))
}

// DerivePointOfInterests derives the small set of named field points every
// role-action provider consumes instead of recomputing goal geometry
// inline (SPEC_FULL.md §C.1). It is a thin per-tick wrapper over
// spltypes.Derive, kept here so the cycle module graph has
// a single named producer for it.
func DerivePointOfInterests(field spltypes.FieldDimensions) spltypes.PointOfInterests {
	return spltypes.Derive(field)
}

// SetPosition maps (game state, field, player, role) to the rule-mandated
// standing position during READY (SPEC_FULL.md §C.1) — the own-half
// kickoff formation consumed by the WALK action when no role-specific
// position provider overrides it.
func SetPosition(gs spltypes.GameControllerState, field spltypes.FieldDimensions, playerNumber int, role spltypes.Role) (spltypes.P2, bool) {
	if gs.GameState != spltypes.GameStateReady {
		return spltypes.P2{}, false
	}

	ownHalfSign := -1.0
	depth := -field.FieldLength / 4

	switch role {
	case spltypes.RoleKeeper:
		return field.OwnGoalCenter(), true
	case spltypes.RoleDefender:
		return spltypes.P2{X: ownHalfSign * field.FieldLength / 3, Y: lateralSlot(playerNumber, field)}, true
	case spltypes.RoleStriker:
		if gs.Kickoff {
			return spltypes.P2{X: -0.3, Y: 0}, true
		}
		return spltypes.P2{X: depth, Y: 0}, true
	default:
		return spltypes.P2{X: depth, Y: lateralSlot(playerNumber, field)}, true
	}
}

func lateralSlot(playerNumber int, field spltypes.FieldDimensions) float64 {
	slot := float64(playerNumber%3 - 1)
	return slot * field.FieldWidth / 4
}
