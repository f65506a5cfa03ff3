// Package spltypes holds the data model shared by every module in the
// cycle graph: field geometry, referee state, ball and robot beliefs, the
// action command leaf type, and the role/obstacle enumerations.
package spltypes

import "math"

// P2 is a point in the field plane, in meters.
type P2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p P2) Add(q P2) P2 { return P2{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p P2) Sub(q P2) P2 { return P2{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p scaled by s.
func (p P2) Scale(s float64) P2 { return P2{X: p.X * s, Y: p.Y * s} }

// Norm returns the Euclidean length of p.
func (p P2) Norm() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p P2) Dist(q P2) float64 { return p.Sub(q).Norm() }

// DistSq returns the squared Euclidean distance between p and q, avoiding a
// sqrt on hot comparison paths (radius checks, cluster membership).
func (p P2) DistSq(q P2) float64 {
	d := p.Sub(q)
	return d.X*d.X + d.Y*d.Y
}

// Angle returns the direction of p as seen from the origin, in (-pi, pi].
func (p P2) Angle() float64 { return math.Atan2(p.Y, p.X) }

// Rotate returns p rotated by theta radians about the origin.
func (p P2) Rotate(theta float64) P2 {
	s, c := math.Sin(theta), math.Cos(theta)
	return P2{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// Pose is a 2D rigid-body pose: field-relative position plus heading.
type Pose struct {
	Position P2      `json:"position"`
	Theta    float64 `json:"theta"` // radians, (-pi, pi]
}

// ToLocal expresses the world point p in this pose's local frame.
func (pose Pose) ToLocal(p P2) P2 {
	return p.Sub(pose.Position).Rotate(-pose.Theta)
}

// ToWorld expresses the local point p (relative to this pose) in world frame.
func (pose Pose) ToWorld(p P2) P2 {
	return pose.Position.Add(p.Rotate(pose.Theta))
}

// NormalizeAngle wraps theta into (-pi, pi].
func NormalizeAngle(theta float64) float64 {
	for theta > math.Pi {
		theta -= 2 * math.Pi
	}
	for theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	return theta
}

// FieldDimensions is immutable per run: the physical measurements of the
// pitch the team is playing on. Populated once at process start from
// configuration (§6) and never mutated.
type FieldDimensions struct {
	FieldLength          float64 `json:"fieldLength"`
	FieldWidth           float64 `json:"fieldWidth"`
	LineWidth            float64 `json:"lineWidth"`
	CenterCircleDiameter float64 `json:"centerCircleDiameter"`
	PenaltyAreaLength    float64 `json:"penaltyAreaLength"`
	PenaltyAreaWidth     float64 `json:"penaltyAreaWidth"`
	GoalInnerWidth       float64 `json:"goalInnerWidth"`
	GoalPostDiameter     float64 `json:"goalPostDiameter"`
	BallDiameter         float64 `json:"ballDiameter"`
	PenaltyMarkerDistance float64 `json:"penaltyMarkerDistance"`
	BorderStripWidth     float64 `json:"borderStripWidth"`
}

// OwnGoalCenter returns the center of the own goal line (negative-x end,
// by this codebase's convention of "own half is -x").
func (f FieldDimensions) OwnGoalCenter() P2 { return P2{X: -f.FieldLength / 2, Y: 0} }

// OpponentGoalCenter returns the center of the opponent's goal line.
func (f FieldDimensions) OpponentGoalCenter() P2 { return P2{X: f.FieldLength / 2, Y: 0} }

// InsideField reports whether p lies within the field boundary plus a
// tolerance (§8 invariant 8: "ball outside the field by more than
// insideFieldTolerance yields insideField=false").
func (f FieldDimensions) InsideField(p P2, tolerance float64) bool {
	return math.Abs(p.X) <= f.FieldLength/2+tolerance && math.Abs(p.Y) <= f.FieldWidth/2+tolerance
}

// PointOfInterests collects the named field points every role-action
// provider reads instead of recomputing goal geometry inline (SPEC_FULL §C.1).
type PointOfInterests struct {
	OwnGoalCenter      P2 `json:"ownGoalCenter"`
	OpponentGoalCenter P2 `json:"opponentGoalCenter"`
	OwnLeftPost        P2 `json:"ownLeftPost"`
	OwnRightPost       P2 `json:"ownRightPost"`
	OpponentLeftPost   P2 `json:"opponentLeftPost"`
	OpponentRightPost  P2 `json:"opponentRightPost"`
	OwnPenaltyMark     P2 `json:"ownPenaltyMark"`
	OpponentPenaltyMark P2 `json:"opponentPenaltyMark"`
	Valid              bool `json:"valid"`
}

// Derive computes PointOfInterests from FieldDimensions. Pure function, run
// once per tick by the worldstate package's PointOfInterests module.
func Derive(f FieldDimensions) PointOfInterests {
	halfGoal := f.GoalInnerWidth / 2
	return PointOfInterests{
		OwnGoalCenter:       f.OwnGoalCenter(),
		OpponentGoalCenter:  f.OpponentGoalCenter(),
		OwnLeftPost:         P2{X: -f.FieldLength / 2, Y: halfGoal},
		OwnRightPost:        P2{X: -f.FieldLength / 2, Y: -halfGoal},
		OpponentLeftPost:    P2{X: f.FieldLength / 2, Y: -halfGoal},
		OpponentRightPost:   P2{X: f.FieldLength / 2, Y: halfGoal},
		OwnPenaltyMark:      P2{X: -f.FieldLength/2 + f.PenaltyMarkerDistance, Y: 0},
		OpponentPenaltyMark: P2{X: f.FieldLength/2 - f.PenaltyMarkerDistance, Y: 0},
		Valid:               true,
	}
}
