package spltypes

import "time"

// BallState is the self-perceived ball belief produced by the (external)
// vision pipeline and consumed by TeamBallFilter (§3, §4.4).
type BallState struct {
	Position         P2            `json:"position"` // robot-local
	Velocity         P2            `json:"velocity"` // robot-local
	Found            bool          `json:"found"`
	Confident        bool          `json:"confident"`
	Age              time.Duration `json:"age"`
	TimeWhenLastSeen time.Time     `json:"timeWhenLastSeen"`
	Validity         float64       `json:"validity"`
}

// BallType distinguishes how TeamBallModel's position was derived (§3, §4.4).
type BallType uint8

const (
	BallTypeNone BallType = iota
	BallTypeSelf
	BallTypeTeam
	BallTypeRule
)

func (t BallType) String() string {
	switch t {
	case BallTypeSelf:
		return "SELF"
	case BallTypeTeam:
		return "TEAM"
	case BallTypeRule:
		return "RULE"
	default:
		return "NONE"
	}
}

// TeamBallModel is the per-tick team-agreed belief about the ball (§4.4).
type TeamBallModel struct {
	BallType        BallType  `json:"ballType"`
	Seen            bool      `json:"seen"`
	Found           bool      `json:"found"`
	InsideField     bool      `json:"insideField"`
	AbsPosition     P2        `json:"absPosition"` // field frame
	RelPosition     P2        `json:"relPosition"` // robot-local
	Velocity        P2        `json:"velocity"`     // field frame
	TimeLastUpdated time.Time `json:"timeLastUpdated"`
}
