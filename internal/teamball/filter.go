// Package teamball implements TeamBallFilter (§4.4): a buffered, clustered,
// team-agreed belief about the ball's position, rebuilt from scratch every
// tick from the current sighting buffer (no incremental state beyond the
// buffer itself).
package teamball

import (
	"sort"
	"time"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

// Sighting is one buffered (player -> latest accepted ball observation)
// entry (§4.4 "Buffer").
type Sighting struct {
	PlayerNumber int
	Position     spltypes.P2 // field frame
	Velocity     spltypes.P2 // field frame
	Distance     float64     // robot->ball when seen
	Timestamp    time.Time
	FirstSeen    time.Time
	IsOwn        bool
}

// AdmissionInput is everything Admit needs to judge one teammate's latest
// sighting (§4.4 "A sighting is admissible iff...").
type AdmissionInput struct {
	TeammatePoseValid bool
	TeammatePenalized bool
	BallAge           time.Duration
	BallSpeed         float64
	TimeSinceJump     time.Duration
}

// Params bounds admission/eviction/clustering (§4.4, named per-parameter to
// match the spec's own identifiers for direct traceability).
type Params struct {
	MaxAddAge                time.Duration
	MaxBallVelocity          float64
	MinWaitAfterJumpToAddBall time.Duration
	MinRemoveAge             time.Duration
	MaxCompatibilityDistance float64
	InsideFieldTolerance     float64
}

// Admit reports whether in is admissible for buffering (§4.4).
func Admit(in AdmissionInput, p Params) bool {
	if !in.TeammatePoseValid || in.TeammatePenalized {
		return false
	}
	if in.BallAge >= p.MaxAddAge {
		return false
	}
	if in.BallSpeed >= p.MaxBallVelocity {
		return false
	}
	if in.TimeSinceJump < p.MinWaitAfterJumpToAddBall {
		return false
	}
	return true
}

// Filter holds the current sighting buffer (§4.4 "Buffer": one entry per
// player, replaced wholesale on each update rather than accumulated).
type Filter struct {
	params Params
	buffer map[int]Sighting
}

// NewFilter constructs an empty Filter.
func NewFilter(p Params) *Filter {
	return &Filter{params: p, buffer: make(map[int]Sighting)}
}

// Update replaces or inserts a player's latest accepted sighting.
func (f *Filter) Update(s Sighting) {
	f.buffer[s.PlayerNumber] = s
}

// Evict removes entries older than MinRemoveAge (§4.4 "Eviction").
func (f *Filter) Evict(now time.Time) {
	for num, s := range f.buffer {
		if now.Sub(s.Timestamp) >= f.params.MinRemoveAge {
			delete(f.buffer, num)
		}
	}
}

type cluster struct {
	members             []Sighting
	containsOwn         bool
	closestBallDistance float64
}

// cluster builds C(B) for every buffered sighting B: all sightings within
// MaxCompatibilityDistance of B (§4.4 "Clustering"). O(n^2) as specified.
func (f *Filter) clusters() []cluster {
	sightings := make([]Sighting, 0, len(f.buffer))
	for _, s := range f.buffer {
		sightings = append(sightings, s)
	}

	clusters := make([]cluster, 0, len(sightings))
	for _, b := range sightings {
		c := cluster{closestBallDistance: b.Distance}
		for _, other := range sightings {
			if b.Position.Dist(other.Position) < f.params.MaxCompatibilityDistance {
				c.members = append(c.members, other)
				if other.IsOwn {
					c.containsOwn = true
				}
				if other.Distance < c.closestBallDistance {
					c.closestBallDistance = other.Distance
				}
			}
		}
		clusters = append(clusters, c)
	}
	return clusters
}

// bestCluster selects the lexicographically-best cluster (§4.4 "Choose the
// best cluster"): larger wins; ties broken by own-sighting membership; then
// by smallest closestBallDistance.
func bestCluster(clusters []cluster) (cluster, bool) {
	if len(clusters) == 0 {
		return cluster{}, false
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if len(a.members) != len(b.members) {
			return len(a.members) > len(b.members)
		}
		if a.containsOwn != b.containsOwn {
			return a.containsOwn
		}
		return a.closestBallDistance < b.closestBallDistance
	})
	return clusters[0], true
}

// Result is the per-tick TeamBallModel inputs before rule-ball override
// (§4.4 "Result selection").
type Result struct {
	Type        spltypes.BallType
	Position    spltypes.P2
	Velocity    spltypes.P2
	Found       bool
	Seen        bool
	InsideField bool
}

// Resolve computes this tick's result from the current buffer (§4.4
// "Result selection", "Flags"). field is used for the InsideField check;
// a non-nil ownSighting lets the no-cluster fallback emit SELF when the
// own robot still sees the ball even though nothing is buffered yet.
func (f *Filter) Resolve(now time.Time, field spltypes.FieldDimensions, ownSighting *Sighting) Result {
	f.Evict(now)

	seen := len(f.buffer) > 0
	if !seen {
		if ownSighting != nil {
			return Result{
				Type:        spltypes.BallTypeSelf,
				Position:    ownSighting.Position,
				Velocity:    ownSighting.Velocity,
				Found:       true,
				Seen:        false,
				InsideField: field.InsideField(ownSighting.Position, f.params.InsideFieldTolerance),
			}
		}
		return Result{Type: spltypes.BallTypeNone, Seen: false, Found: false}
	}

	best, ok := bestCluster(f.clusters())
	found := ok && len(best.members) > len(f.buffer)/2

	if !ok {
		if ownSighting != nil {
			return Result{
				Type:        spltypes.BallTypeSelf,
				Position:    ownSighting.Position,
				Velocity:    ownSighting.Velocity,
				Found:       true,
				Seen:        seen,
				InsideField: field.InsideField(ownSighting.Position, f.params.InsideFieldTolerance),
			}
		}
		return Result{Type: spltypes.BallTypeNone, Seen: seen, Found: false}
	}

	if best.containsOwn {
		var own Sighting
		for _, m := range best.members {
			if m.IsOwn {
				own = m
				break
			}
		}
		return Result{
			Type:        spltypes.BallTypeSelf,
			Position:    own.Position,
			Velocity:    own.Velocity,
			Found:       found,
			Seen:        seen,
			InsideField: field.InsideField(own.Position, f.params.InsideFieldTolerance),
		}
	}

	closest := best.members[0]
	for _, m := range best.members[1:] {
		if m.Distance < closest.Distance {
			closest = m
		}
	}
	return Result{
		Type:        spltypes.BallTypeTeam,
		Position:    closest.Position,
		Velocity:    closest.Velocity,
		Found:       found,
		Seen:        seen,
		InsideField: field.InsideField(closest.Position, f.params.InsideFieldTolerance),
	}
}

// RuleBallPosition returns the rule-specified ball position for SET/READY
// (§4.4 "If game state is SET/READY, override with RULE ball at the
// rule-specified position (kickoff spot or penalty mark depending on phase
// and kicking team)").
func RuleBallPosition(field spltypes.FieldDimensions, gameState spltypes.GameState, gamePhase spltypes.GamePhase, kickingTeam bool) (spltypes.P2, bool) {
	switch gameState {
	case spltypes.GameStateReady:
		return spltypes.P2{}, true // kickoff spot is the field center
	case spltypes.GameStateSet:
		if gamePhase == spltypes.GamePhasePenaltyShoot {
			if kickingTeam {
				return spltypes.P2{X: field.FieldLength/2 - field.PenaltyMarkerDistance, Y: 0}, true
			}
			return spltypes.P2{X: -field.FieldLength/2 + field.PenaltyMarkerDistance, Y: 0}, true
		}
		return spltypes.P2{}, true
	default:
		return spltypes.P2{}, false
	}
}
