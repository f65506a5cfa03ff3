package spltypes

// ObstacleType is a lattice (§3): UNKNOWN sits above ANONYMOUS_ROBOT and
// FALLEN_ANONYMOUS_ROBOT, which each sit above a hostile/team pair. BALL,
// FREE_KICK_AREA and GOAL_POST are incomparable leaves that only merge with
// themselves.
type ObstacleType uint8

const (
	ObstacleUnknown ObstacleType = iota
	ObstacleAnonymousRobot
	ObstacleHostileRobot
	ObstacleTeamRobot
	ObstacleFallenAnonymousRobot
	ObstacleFallenHostileRobot
	ObstacleFallenTeamRobot
	ObstacleBall
	ObstacleFreeKickArea
	ObstacleGoalPost
	ObstacleInvalid // sentinel: merge is not allowed (§3)
)

func (t ObstacleType) String() string {
	switch t {
	case ObstacleAnonymousRobot:
		return "ANONYMOUS_ROBOT"
	case ObstacleHostileRobot:
		return "HOSTILE_ROBOT"
	case ObstacleTeamRobot:
		return "TEAM_ROBOT"
	case ObstacleFallenAnonymousRobot:
		return "FALLEN_ANONYMOUS_ROBOT"
	case ObstacleFallenHostileRobot:
		return "FALLEN_HOSTILE_ROBOT"
	case ObstacleFallenTeamRobot:
		return "FALLEN_TEAM_ROBOT"
	case ObstacleBall:
		return "BALL"
	case ObstacleFreeKickArea:
		return "FREE_KICK_AREA"
	case ObstacleGoalPost:
		return "GOAL_POST"
	case ObstacleInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// leaves reports whether t is one of the three incomparable leaf types that
// never merge with anything but themselves.
func (t ObstacleType) leaf() bool {
	return t == ObstacleBall || t == ObstacleFreeKickArea || t == ObstacleGoalPost
}

// fallen reports whether t belongs to the FALLEN_ANONYMOUS_ROBOT branch.
func (t ObstacleType) fallen() bool {
	switch t {
	case ObstacleFallenAnonymousRobot, ObstacleFallenHostileRobot, ObstacleFallenTeamRobot:
		return true
	default:
		return false
	}
}

// specificity ranks a type within its branch; higher is more specific. Used
// to pick the more specific of two mergeable types.
func (t ObstacleType) specificity() int {
	switch t {
	case ObstacleUnknown:
		return 0
	case ObstacleAnonymousRobot, ObstacleFallenAnonymousRobot:
		return 1
	case ObstacleHostileRobot, ObstacleTeamRobot, ObstacleFallenHostileRobot, ObstacleFallenTeamRobot:
		return 2
	default:
		return 0
	}
}

// MapToMergedType implements the ObstacleType lattice merge rule (§3,
// §4.10): UNKNOWN is compatible with anything in its branch (fallen or not),
// a hostile/team leaf only merges with UNKNOWN, its own anonymous ancestor,
// or an identical leaf; the three named leaves (BALL, FREE_KICK_AREA,
// GOAL_POST) only merge with themselves. Anything else is ObstacleInvalid.
func MapToMergedType(a, b ObstacleType) ObstacleType {
	if a.leaf() || b.leaf() {
		if a == b {
			return a
		}
		return ObstacleInvalid
	}
	aFallen, bFallen := a.fallen(), b.fallen()
	if aFallen != bFallen && a != ObstacleUnknown && b != ObstacleUnknown {
		return ObstacleInvalid
	}
	if a == ObstacleUnknown {
		return b
	}
	if b == ObstacleUnknown {
		return a
	}
	// Same branch (both fallen or both not-fallen): compatible iff equal or
	// one is the anonymous ancestor of the other.
	aAnon := a == ObstacleAnonymousRobot || a == ObstacleFallenAnonymousRobot
	bAnon := b == ObstacleAnonymousRobot || b == ObstacleFallenAnonymousRobot
	if a == b {
		return a
	}
	if aAnon {
		return b
	}
	if bAnon {
		return a
	}
	return ObstacleInvalid
}

// Obstacle is one entry in a local or team obstacle list (§4.10).
type Obstacle struct {
	RelativePosition P2           `json:"relativePosition"`
	Radius           float64      `json:"radius"`
	Type             ObstacleType `json:"type"`
}

// TeamObstacle is one entry in the merged team obstacle list, carrying the
// field-frame position used for cross-robot fusion.
type TeamObstacle struct {
	AbsPosition P2           `json:"absPosition"`
	Radius      float64      `json:"radius"`
	Type        ObstacleType `json:"type"`
}
