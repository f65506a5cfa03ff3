// Package action implements the per-role action sub-modules (§4.8): each
// provider reduces role, ball, and teammate state to a small
// {valid, kickPose, kickable, target, type, kickType} result the behavior
// composer (§4.9, internal/behavior) turns into an ActionCommand.
package action

import (
	"math"
	"time"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

// Type enumerates the high-level action a provider selected (§4.8's own
// enumeration, e.g. "{KICK_INTO_GOAL, DRIBBLE_INTO_GOAL, PASS, DRIBBLE,
// WAITING_FOR_KEEPER}").
type Type uint8

const (
	TypeNone Type = iota
	TypeKickIntoGoal
	TypeDribbleIntoGoal
	TypePass
	TypeDribble
	TypeWaitingForKeeper
	TypeBlockGoal
	TypeGenuflect
	TypeWalkTo
)

// Result is the common output shape every role-action provider produces
// (§4.8).
type Result struct {
	Valid    bool
	KickPose spltypes.Pose // where the robot should stand to execute the kick/walk
	Kickable spltypes.Kickable
	Target   spltypes.P2 // where the ball (or robot) should end up
	Type     Type
	KickType spltypes.KickType
}

// Params bounds every role-action provider (named per §4.8 identifier).
type Params struct {
	ScoringRegionHysteresisEnter float64 // 0.5m
	ScoringRegionHysteresisExit  float64 // 0.6m
	PassShellMin                 float64 // 1.5m
	PassShellMax                 float64 // 3.0m
	LastTargetBonus               float64
	KickOffsetBehindBall          float64
	FootStickyMinDelta            float64
	ForcedFoot                    spltypes.Kickable

	GenuflectTimeToImpact time.Duration
	GenuflectBallSpeed    float64

	AimAtCornerFactor   float64
	PenaltySpotDistance float64

	SetPlayNoKickWindow time.Duration

	DefendingEllipseA float64
	DefendingEllipseB float64

	BishopOffset           float64
	AggressiveBishopOffset float64

	SupportDistanceToBall float64
	SupportRepulsion      float64

	LoserBackoffDistance float64
}

// StrikerInput is everything StrikerAction needs beyond Params.
type StrikerInput struct {
	Pose         spltypes.Pose
	BallPosition spltypes.P2 // field frame
	Field        spltypes.FieldDimensions
	Teammates    []spltypes.TeamPlayer
	LastTarget   spltypes.P2
	HasLastTarget bool
	PreviousFoot spltypes.Kickable
}

// rate scores a ball position for a shot on goal: distance plus an angular
// penalty for how far off the straight-ahead line to goal it is (§4.8
// "rate(p) = ‖p − goal‖ + 0.75·|angleToGoal|").
func rate(p, goal spltypes.P2) float64 {
	d := p.Dist(goal)
	angle := math.Atan2(math.Abs(p.Y-goal.Y), math.Abs(p.X-goal.X))
	return d + 0.75*angle
}

// StrikerAction implements StrikerActionProvider (§4.8).
func StrikerAction(in StrikerInput, p Params, wasScoring bool) Result {
	goal := in.Field.OpponentGoalCenter()
	score := rate(in.BallPosition, goal)

	threshold := p.ScoringRegionHysteresisExit
	if !wasScoring {
		threshold = p.ScoringRegionHysteresisEnter
	}

	if score < threshold {
		return kickTowards(in, goal, TypeKickIntoGoal, p)
	}

	if target, ok := findPassTarget(in, p); ok {
		return kickTowards(in, target, TypePass, p)
	}

	dribbleTarget := spltypes.P2{X: in.Field.OpponentGoalCenter().X - in.Field.PenaltyAreaLength, Y: 0}
	if in.BallPosition.Dist(goal) < p.ScoringRegionHysteresisExit*2 {
		return kickTowards(in, goal, TypeDribbleIntoGoal, p)
	}
	return kickTowards(in, dribbleTarget, TypeDribble, p)
}

func findPassTarget(in StrikerInput, p Params) (spltypes.P2, bool) {
	best := spltypes.P2{}
	bestScore := math.Inf(-1)
	found := false

	for _, tm := range in.Teammates {
		if tm.Penalized || !tm.IsPoseValid {
			continue
		}
		d := in.BallPosition.Dist(tm.Pose.Position)
		if d < p.PassShellMin || d > p.PassShellMax {
			continue
		}
		score := -d
		if in.HasLastTarget && tm.Pose.Position.Dist(in.LastTarget) < 0.5 {
			score += p.LastTargetBonus
		}
		if score > bestScore {
			bestScore = score
			best = tm.Pose.Position
			found = true
		}
	}
	return best, found
}

func kickTowards(in StrikerInput, target spltypes.P2, t Type, p Params) Result {
	dir := target.Sub(in.BallPosition)
	norm := dir.Norm()
	var unit spltypes.P2
	if norm > 1e-6 {
		unit = spltypes.P2{X: dir.X / norm, Y: dir.Y / norm}
	} else {
		unit = spltypes.P2{X: 1, Y: 0}
	}

	standPos := spltypes.P2{
		X: in.BallPosition.X - unit.X*p.KickOffsetBehindBall,
		Y: in.BallPosition.Y - unit.Y*p.KickOffsetBehindBall,
	}
	theta := math.Atan2(unit.Y, unit.X)

	foot := selectFoot(in.BallPosition, target, in.PreviousFoot, p)

	return Result{
		Valid:    true,
		KickPose: spltypes.Pose{Position: standPos, Theta: theta},
		Kickable: foot,
		Target:   target,
		Type:     t,
		KickType: spltypes.KickForward,
	}
}

// selectFoot picks the kicking foot by the sign of the cross-product of the
// ball vector and target vector, sticky unless the new signal is decisive
// or a foot is forced by config (§4.8 "sticky unless |d| < 0.05 m or
// forced by config").
func selectFoot(ball, target spltypes.P2, previous spltypes.Kickable, p Params) spltypes.Kickable {
	if p.ForcedFoot != spltypes.KickableNot {
		return p.ForcedFoot
	}
	cross := ball.X*target.Y - ball.Y*target.X
	if math.Abs(cross) < p.FootStickyMinDelta && previous != spltypes.KickableNot {
		return previous
	}
	if cross >= 0 {
		return spltypes.KickableLeft
	}
	return spltypes.KickableRight
}

// KeeperInput is shared by KeeperAction and ReplacementKeeperAction.
type KeeperInput struct {
	Pose         spltypes.Pose
	BallPosition spltypes.P2
	BallVelocity spltypes.P2
	Field        spltypes.FieldDimensions
}

// KeeperAction and ReplacementKeeperAction both produce a block-goal pose
// on the ball-to-own-goal line, clipped to the goal box, with a GENUFLECT
// override when the ball is incoming fast and on-target (§4.8).
func KeeperAction(in KeeperInput, p Params) Result {
	return blockGoal(in, p)
}

func ReplacementKeeperAction(in KeeperInput, p Params) Result {
	return blockGoal(in, p)
}

func blockGoal(in KeeperInput, p Params) Result {
	goal := in.Field.OwnGoalCenter()
	dir := in.BallPosition.Sub(goal)
	norm := dir.Norm()
	if norm < 1e-6 {
		dir = spltypes.P2{X: 1, Y: 0}
		norm = 1
	}
	unit := spltypes.P2{X: dir.X / norm, Y: dir.Y / norm}

	standDist := math.Min(norm*0.3, in.Field.PenaltyAreaLength*0.4)
	target := spltypes.P2{X: goal.X + unit.X*standDist, Y: goal.Y + unit.Y*standDist}
	target = clipToGoalBox(target, in.Field)

	if isIncomingFast(in, p) {
		return Result{Valid: true, KickPose: spltypes.Pose{Position: target}, Type: TypeGenuflect}
	}
	return Result{Valid: true, KickPose: spltypes.Pose{Position: target}, Type: TypeBlockGoal}
}

func clipToGoalBox(p spltypes.P2, field spltypes.FieldDimensions) spltypes.P2 {
	halfWidth := field.PenaltyAreaWidth / 2
	if p.Y > halfWidth {
		p.Y = halfWidth
	}
	if p.Y < -halfWidth {
		p.Y = -halfWidth
	}
	minX := -field.FieldLength/2 + field.GoalPostDiameter
	maxX := -field.FieldLength/2 + field.PenaltyAreaLength
	if p.X < minX {
		p.X = minX
	}
	if p.X > maxX {
		p.X = maxX
	}
	return p
}

func timeToImpact(ball, vel, goal spltypes.P2) time.Duration {
	speed := vel.Norm()
	if speed < 1e-6 {
		return time.Hour
	}
	dist := ball.Dist(goal)
	return time.Duration(dist / speed * float64(time.Second))
}

func isIncomingFast(in KeeperInput, p Params) bool {
	speed := in.BallVelocity.Norm()
	if speed < p.GenuflectBallSpeed {
		return false
	}
	goal := in.Field.OwnGoalCenter()
	// On target: moving toward the own goal line and crossing it between the posts.
	if in.BallVelocity.X >= 0 {
		return false
	}
	t := (goal.X - in.BallPosition.X) / in.BallVelocity.X
	if t < 0 || math.Abs(in.BallPosition.Y+in.BallVelocity.Y*t-goal.Y) > in.Field.GoalInnerWidth/2 {
		return false
	}
	tti := timeToImpact(in.BallPosition, in.BallVelocity, goal)
	return tti < p.GenuflectTimeToImpact
}

// PenaltyStrikerInput is the context for penalty-shot aiming.
type PenaltyStrikerInput struct {
	GameState   spltypes.GameControllerState
	Field       spltypes.FieldDimensions
	BallPosition spltypes.P2
	CornerSign  float64 // persisted penaltyTargetOffset_ (+1 or -1), chosen once
}

// PenaltyStrikerAction implements PenaltyStrikerActionProvider (§4.8): only
// active during PENALTYSHOOT or a PENALTY_KICK set play while kicking, and
// with the ball near the penalty spot.
func PenaltyStrikerAction(in PenaltyStrikerInput, p Params) Result {
	gs := in.GameState
	activePhase := gs.GamePhase == spltypes.GamePhasePenaltyShoot || gs.SetPlay == spltypes.SetPlayPenaltyKick
	if !activePhase || !gs.KickingTeam {
		return Result{Valid: false}
	}
	if in.BallPosition.Dist(spltypes.P2{X: in.Field.OpponentGoalCenter().X - in.Field.PenaltyMarkerDistance, Y: 0}) > p.PenaltySpotDistance {
		return Result{Valid: false}
	}

	goal := in.Field.OpponentGoalCenter()
	offset := in.Field.GoalInnerWidth / 2 * p.AimAtCornerFactor
	target := spltypes.P2{X: goal.X, Y: in.CornerSign * offset}

	dir := target.Sub(in.BallPosition)
	norm := dir.Norm()
	var unit spltypes.P2
	if norm > 1e-6 {
		unit = spltypes.P2{X: dir.X / norm, Y: dir.Y / norm}
	} else {
		unit = spltypes.P2{X: 1, Y: 0}
	}
	standPos := spltypes.P2{
		X: in.BallPosition.X - unit.X*p.KickOffsetBehindBall,
		Y: in.BallPosition.Y - unit.Y*p.KickOffsetBehindBall,
	}
	theta := math.Atan2(unit.Y, unit.X)

	// Original always kicks with the left foot here (useOnlyThisFoot = 1 in
	// PenaltyStrikerActionProvider.cpp) rather than running selectFoot's
	// sign-of-cross-product choice; preserved as-is per §9.
	return Result{
		Valid:    true,
		KickPose: spltypes.Pose{Position: standPos, Theta: theta},
		Kickable: spltypes.KickableLeft,
		Target:   target,
		Type:     TypeKickIntoGoal,
		KickType: spltypes.KickForward,
	}
}

// SetPlayStrikerInput is the context for a dead-ball restart.
type SetPlayStrikerInput struct {
	GameState        spltypes.GameControllerState
	BallPosition     spltypes.P2
	Target           spltypes.P2
	SetPlayStartedAt time.Time
	Now              time.Time
}

// SetPlayStrikerAction implements SetPlayStrikerActionProvider (§4.8):
// kick-in / corner-kick / free-kick / goal-kick restarts, respecting the
// "5 s / no kick" rule window before the kick is allowed.
func SetPlayStrikerAction(in SetPlayStrikerInput, p Params) Result {
	if in.GameState.SetPlay == spltypes.SetPlayNone || !in.GameState.KickingTeam {
		return Result{Valid: false}
	}
	if in.Now.Sub(in.SetPlayStartedAt) < p.SetPlayNoKickWindow {
		return Result{Valid: true, Target: in.Target, Type: TypeWalkTo}
	}
	return Result{Valid: true, Target: in.Target, Type: TypeKickIntoGoal, KickType: spltypes.KickForward}
}

// DefendingPositionProvider input.
type DefendingInput struct {
	BallPosition spltypes.P2
	Field        spltypes.FieldDimensions
}

// DefendingPositionAction projects the ball onto an ellipse around the own
// goal and clips the result to passive-defense lines (§4.8).
func DefendingPositionAction(in DefendingInput, p Params) Result {
	goal := in.Field.OwnGoalCenter()
	rel := in.BallPosition.Sub(goal)
	angle := math.Atan2(rel.Y, rel.X)

	pos := spltypes.P2{
		X: goal.X + p.DefendingEllipseA*math.Cos(angle),
		Y: goal.Y + p.DefendingEllipseB*math.Sin(angle),
	}
	minX := -in.Field.FieldLength / 2
	maxX := -in.Field.PenaltyAreaLength
	if pos.X < minX {
		pos.X = minX
	}
	if pos.X > maxX {
		pos.X = maxX
	}
	return Result{Valid: true, KickPose: spltypes.Pose{Position: pos}, Type: TypeWalkTo}
}

// BishopPositionAction mirrors the ball's side in the own half so the
// bishop is pass-target-ready; the aggressive variant pushes further
// forward (§4.8).
func BishopPositionAction(ballPosition spltypes.P2, field spltypes.FieldDimensions, aggressive bool, p Params) Result {
	offset := p.BishopOffset
	if aggressive {
		offset = p.AggressiveBishopOffset
	}
	side := 1.0
	if ballPosition.Y > 0 {
		side = -1.0
	}
	pos := spltypes.P2{X: offset, Y: side * field.FieldWidth / 4}
	return Result{Valid: true, KickPose: spltypes.Pose{Position: pos}, Type: TypeWalkTo}
}

// SupportingPositionAction stands behind the striker, offset toward own
// goal, repelled away from the direct ball-to-goal kick line (§4.8).
func SupportingPositionAction(strikerPose spltypes.Pose, ballPosition, opponentGoal spltypes.P2, p Params) Result {
	behind := spltypes.P2{
		X: strikerPose.Position.X - p.SupportDistanceToBall,
		Y: strikerPose.Position.Y,
	}

	kickLine := opponentGoal.Sub(ballPosition)
	lineLen := kickLine.Norm()
	if lineLen > 1e-6 {
		toSupport := behind.Sub(ballPosition)
		proj := (toSupport.X*kickLine.X + toSupport.Y*kickLine.Y) / (lineLen * lineLen)
		closest := spltypes.P2{X: ballPosition.X + kickLine.X*proj, Y: ballPosition.Y + kickLine.Y*proj}
		d := behind.Dist(closest)
		if d < p.SupportRepulsion {
			perp := spltypes.P2{X: -kickLine.Y / lineLen, Y: kickLine.X / lineLen}
			push := p.SupportRepulsion - d
			behind = spltypes.P2{X: behind.X + perp.X*push, Y: behind.Y + perp.Y*push}
		}
	}

	return Result{Valid: true, KickPose: spltypes.Pose{Position: behind}, Type: TypeWalkTo}
}

// LoserPositionAction walks backward a fixed distance from the last known
// team ball position (§4.8).
func LoserPositionAction(lastTeamBall spltypes.P2, ownGoal spltypes.P2, p Params) Result {
	dir := lastTeamBall.Sub(ownGoal)
	norm := dir.Norm()
	if norm < 1e-6 {
		return Result{Valid: true, KickPose: spltypes.Pose{Position: lastTeamBall}, Type: TypeWalkTo}
	}
	unit := spltypes.P2{X: dir.X / norm, Y: dir.Y / norm}
	pos := spltypes.P2{
		X: lastTeamBall.X - unit.X*p.LoserBackoffDistance,
		Y: lastTeamBall.Y - unit.Y*p.LoserBackoffDistance,
	}
	return Result{Valid: true, KickPose: spltypes.Pose{Position: pos}, Type: TypeWalkTo}
}
