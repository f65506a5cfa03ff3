package worldstate

import (
	"math"
	"time"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

// RegionFlags is the hysteretic region-membership belief named by
// SPEC_FULL.md's WorldState component (spec.md's "Hysteretic boolean flags
// about ball/robot field regions" row), ported from
// tuhhsdk/Data/WorldState.hpp.
type RegionFlags struct {
	BallValid          bool
	BallInOwnHalf      bool
	BallInLeftHalf     bool
	BallInCorner       bool
	BallInPenaltyArea  bool
	BallIsToMyLeft     bool
	BallInCenterCircle bool
	BallIsFree         bool

	RobotValid      bool
	RobotInOwnHalf  bool
	RobotInLeftHalf bool
}

// RegionFlagsParams bounds RegionFlagsProvider (Brain/Behavior/WorldStateProvider.cpp's
// hysteresis_ constant and ballInCorner* parameters).
type RegionFlagsParams struct {
	Hysteresis             float64
	BallInCornerThreshold  float64
	BallInCornerXThreshold float64
	BallInCornerYThreshold float64
	BallFreeGameStateGrace time.Duration
}

// DefaultRegionFlagsParams mirrors the original's hard-coded hysteresis_ =
// 0.25f and its "free after 10 seconds of PLAYING" grace window.
func DefaultRegionFlagsParams() RegionFlagsParams {
	return RegionFlagsParams{
		Hysteresis:             0.25,
		BallInCornerThreshold:  0.8,
		BallInCornerXThreshold: 1.0,
		BallInCornerYThreshold: 1.0,
		BallFreeGameStateGrace: 10 * time.Second,
	}
}

// RegionFlagsProvider carries the hysteresis state WorldStateProvider.cpp
// keeps as member booleans (ballInOwnHalf_, ballIsFree_, ...) across ticks,
// so a region flag only flips once its underlying value has cleared the
// threshold by more than Hysteresis, not on every sign change at the
// boundary.
type RegionFlagsProvider struct {
	params RegionFlagsParams

	ballIsFree         bool
	ballInOwnHalf      bool
	ballInLeftHalf     bool
	ballInCorner       bool
	ballInPenaltyArea  bool
	ballIsToMyLeft     bool
	ballInCenterCircle bool
	robotInOwnHalf     bool
	robotInLeftHalf    bool
}

// NewRegionFlagsProvider seeds the hysteresis state with the original's own
// constructor defaults (own half / left half / center circle all start
// true, corner / penalty area start false).
func NewRegionFlagsProvider(p RegionFlagsParams) *RegionFlagsProvider {
	return &RegionFlagsProvider{
		params:             p,
		ballInOwnHalf:      true,
		ballInLeftHalf:     true,
		ballIsToMyLeft:     true,
		ballInCenterCircle: true,
		robotInOwnHalf:     true,
		robotInLeftHalf:    true,
	}
}

// Update recomputes the region flags for one tick (WorldStateProvider::cycle).
// ball is the team-agreed ball belief (spltypes.TeamBallModel, populated from
// TeamBallFilter's per-tick Result); gs.GameStateChanged is when GameState
// most recently transitioned.
func (p *RegionFlagsProvider) Update(now time.Time, gs spltypes.GameControllerState, ball spltypes.TeamBallModel, robotPose spltypes.Pose, robotPoseValid bool, field spltypes.FieldDimensions) RegionFlags {
	if gs.GameState == spltypes.GameStatePlaying {
		if !p.ballIsFree {
			freedByKickoff := gs.KickingTeam
			freedByGrace := now.Sub(gs.GameStateChanged) > p.params.BallFreeGameStateGrace
			freedByDistance := ball.Found && ball.BallType != spltypes.BallTypeNone &&
				ball.AbsPosition.Norm() > field.CenterCircleDiameter*0.5
			if freedByKickoff || freedByGrace || freedByDistance {
				p.ballIsFree = true
			}
		}
	} else {
		p.ballIsFree = false
	}

	out := RegionFlags{BallIsFree: p.ballIsFree}

	if ball.BallType != spltypes.BallTypeNone {
		h := p.params.Hysteresis
		pos := ball.AbsPosition

		p.ballInOwnHalf = hysteresisSmallerThan(pos.X, 0, h, p.ballInOwnHalf)
		p.ballInLeftHalf = hysteresisGreaterThan(pos.Y, 0, h, p.ballInLeftHalf)
		p.ballInCorner = p.checkBallInCorner(pos, field)
		p.ballInPenaltyArea = hysteresisSmallerThan(math.Abs(pos.X), field.FieldLength/2+h, h, p.ballInPenaltyArea) &&
			hysteresisGreaterThan(math.Abs(pos.X), field.FieldLength/2-field.PenaltyAreaLength-h, h, p.ballInPenaltyArea) &&
			hysteresisSmallerThan(math.Abs(pos.Y), field.PenaltyAreaWidth/2+h, h, p.ballInPenaltyArea)
		p.ballIsToMyLeft = hysteresisGreaterThan(pos.Y, robotPose.Position.Y, h, p.ballIsToMyLeft)
		p.ballInCenterCircle = hysteresisSmallerThan(pos.Norm(), field.CenterCircleDiameter/2, h, p.ballInCenterCircle)

		out.BallValid = true
		out.BallInOwnHalf = p.ballInOwnHalf
		out.BallInLeftHalf = p.ballInLeftHalf
		out.BallInCorner = p.ballInCorner
		out.BallInPenaltyArea = p.ballInPenaltyArea
		out.BallIsToMyLeft = p.ballIsToMyLeft
		out.BallInCenterCircle = p.ballInCenterCircle
	}

	if robotPoseValid {
		h := p.params.Hysteresis
		p.robotInOwnHalf = hysteresisSmallerThan(robotPose.Position.X, 0, h, p.robotInOwnHalf)
		p.robotInLeftHalf = hysteresisGreaterThan(robotPose.Position.Y, 0, h, p.robotInLeftHalf)

		out.RobotValid = true
		out.RobotInOwnHalf = p.robotInOwnHalf
		out.RobotInLeftHalf = p.robotInLeftHalf
	}

	return out
}

// checkBallInCorner tests absBallPos against an ellipse anchored at each of
// the field's four corners, widened slightly once already inside to avoid
// chatter right at the boundary (WorldStateProvider::checkBallInCorner).
func (p *RegionFlagsProvider) checkBallInCorner(absBallPos spltypes.P2, field spltypes.FieldDimensions) bool {
	threshold := p.params.BallInCornerThreshold - p.params.Hysteresis
	if p.ballInCorner {
		threshold = p.params.BallInCornerThreshold + p.params.Hysteresis
	}

	halfLength := field.FieldLength / 2
	halfWidth := field.FieldWidth / 2
	corners := [4]spltypes.P2{
		{X: halfLength, Y: halfWidth},
		{X: -halfLength, Y: halfWidth},
		{X: -halfLength, Y: -halfWidth},
		{X: halfLength, Y: -halfWidth},
	}
	for _, corner := range corners {
		if insideEllipse(absBallPos, corner, p.params.BallInCornerXThreshold, p.params.BallInCornerYThreshold, threshold) {
			return true
		}
	}
	return false
}

func insideEllipse(point, center spltypes.P2, a, b, scale float64) bool {
	dx := (point.X - center.X) / (a * scale)
	dy := (point.Y - center.Y) / (b * scale)
	return dx*dx+dy*dy <= 1
}

// hysteresisSmallerThan/hysteresisGreaterThan are the Schmitt-trigger
// comparisons Tools/Math/Hysteresis.hpp provides: once previous is true,
// the boundary relaxes by margin in value's favor, so a value oscillating
// right at threshold doesn't flip the flag every tick.
func hysteresisSmallerThan(value, threshold, margin float64, previous bool) bool {
	if previous {
		return value < threshold+margin
	}
	return value < threshold-margin
}

func hysteresisGreaterThan(value, threshold, margin float64, previous bool) bool {
	if previous {
		return value > threshold-margin
	}
	return value > threshold+margin
}
