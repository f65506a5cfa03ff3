package action

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

func testField() spltypes.FieldDimensions {
	return spltypes.FieldDimensions{
		FieldLength:           9,
		FieldWidth:            6,
		PenaltyAreaLength:     1.2,
		PenaltyAreaWidth:      3.8,
		GoalInnerWidth:        1.5,
		GoalPostDiameter:      0.1,
		PenaltyMarkerDistance: 1.3,
	}
}

func testParams() Params {
	return Params{
		ScoringRegionHysteresisEnter: 0.5,
		ScoringRegionHysteresisExit:  0.6,
		PassShellMin:                 1.5,
		PassShellMax:                 3.0,
		LastTargetBonus:              0.3,
		KickOffsetBehindBall:         0.15,
		FootStickyMinDelta:           0.05,
		GenuflectTimeToImpact:        500 * time.Millisecond,
		GenuflectBallSpeed:           1.0,
		AimAtCornerFactor:            0.8,
		PenaltySpotDistance:          0.3,
		SetPlayNoKickWindow:          5 * time.Second,
		DefendingEllipseA:            1.5,
		DefendingEllipseB:            1.0,
		BishopOffset:                 0,
		AggressiveBishopOffset:       1.0,
		SupportDistanceToBall:        1.0,
		SupportRepulsion:             0.5,
		LoserBackoffDistance:         0.5,
	}
}

func TestStrikerActionKicksIntoGoalWhenClose(t *testing.T) {
	field := testField()
	in := StrikerInput{
		Pose:         spltypes.Pose{Position: spltypes.P2{X: 4, Y: 0}},
		BallPosition: spltypes.P2{X: 4.3, Y: 0},
		Field:        field,
	}
	result := StrikerAction(in, testParams(), false)
	assert.True(t, result.Valid)
	assert.Equal(t, TypeKickIntoGoal, result.Type)
}

func TestStrikerActionPassesToNearbyTeammate(t *testing.T) {
	field := testField()
	in := StrikerInput{
		Pose:         spltypes.Pose{Position: spltypes.P2{X: -2, Y: 0}},
		BallPosition: spltypes.P2{X: -2, Y: 0},
		Field:        field,
		Teammates: []spltypes.TeamPlayer{
			{PlayerNumber: 3, IsPoseValid: true, Pose: spltypes.Pose{Position: spltypes.P2{X: -2, Y: 2}}},
		},
	}
	result := StrikerAction(in, testParams(), false)
	assert.Equal(t, TypePass, result.Type)
	assert.Equal(t, spltypes.P2{X: -2, Y: 2}, result.Target)
}

func TestStrikerActionDribblesWhenNoPassAndFarFromGoal(t *testing.T) {
	field := testField()
	in := StrikerInput{
		Pose:         spltypes.Pose{Position: spltypes.P2{X: -4, Y: 0}},
		BallPosition: spltypes.P2{X: -4, Y: 0},
		Field:        field,
	}
	result := StrikerAction(in, testParams(), false)
	assert.Equal(t, TypeDribble, result.Type)
}

func TestSelectFootStickyBelowThreshold(t *testing.T) {
	p := testParams()
	foot := selectFoot(spltypes.P2{X: 0.01, Y: 0}, spltypes.P2{X: 0.02, Y: 0}, spltypes.KickableRight, p)
	assert.Equal(t, spltypes.KickableRight, foot)
}

func TestSelectFootForcedOverridesSign(t *testing.T) {
	p := testParams()
	p.ForcedFoot = spltypes.KickableLeft
	foot := selectFoot(spltypes.P2{X: 1, Y: 1}, spltypes.P2{X: -1, Y: -1}, spltypes.KickableRight, p)
	assert.Equal(t, spltypes.KickableLeft, foot)
}

func TestKeeperActionBlocksOnBallGoalLine(t *testing.T) {
	field := testField()
	in := KeeperInput{
		Pose:         spltypes.Pose{Position: field.OwnGoalCenter()},
		BallPosition: spltypes.P2{X: 0, Y: 0},
		Field:        field,
	}
	result := KeeperAction(in, testParams())
	assert.True(t, result.Valid)
	assert.Equal(t, TypeBlockGoal, result.Type)
}

func TestKeeperActionGenuflectsOnFastIncomingBall(t *testing.T) {
	field := testField()
	in := KeeperInput{
		Pose:         spltypes.Pose{Position: field.OwnGoalCenter()},
		BallPosition: spltypes.P2{X: -3, Y: 0},
		BallVelocity: spltypes.P2{X: -10, Y: 0},
		Field:        field,
	}
	result := KeeperAction(in, testParams())
	assert.Equal(t, TypeGenuflect, result.Type)
}

func TestPenaltyStrikerActionRequiresActivePhaseAndProximity(t *testing.T) {
	field := testField()
	p := testParams()

	notActive := PenaltyStrikerInput{GameState: spltypes.GameControllerState{GamePhase: spltypes.GamePhaseNormal}, Field: field}
	assert.False(t, PenaltyStrikerAction(notActive, p).Valid)

	tooFar := PenaltyStrikerInput{
		GameState:    spltypes.GameControllerState{GamePhase: spltypes.GamePhasePenaltyShoot, KickingTeam: true},
		Field:        field,
		BallPosition: spltypes.P2{X: 0, Y: 0},
	}
	assert.False(t, PenaltyStrikerAction(tooFar, p).Valid)

	ready := PenaltyStrikerInput{
		GameState:    spltypes.GameControllerState{GamePhase: spltypes.GamePhasePenaltyShoot, KickingTeam: true},
		Field:        field,
		BallPosition: spltypes.P2{X: field.OpponentGoalCenter().X - field.PenaltyMarkerDistance, Y: 0},
		CornerSign:   1,
	}
	result := PenaltyStrikerAction(ready, p)
	assert.True(t, result.Valid)
	assert.Greater(t, result.Target.Y, 0.0)
	assert.Equal(t, spltypes.KickableLeft, result.Kickable)
	assert.NotEqual(t, spltypes.KickableNot, result.Kickable)
	assert.NotEqual(t, spltypes.Pose{}, result.KickPose)
}

func TestSetPlayStrikerActionRespectsNoKickWindow(t *testing.T) {
	p := testParams()
	now := time.Now()
	in := SetPlayStrikerInput{
		GameState:        spltypes.GameControllerState{SetPlay: spltypes.SetPlayCornerKick, KickingTeam: true},
		Target:           spltypes.P2{X: 1, Y: 1},
		SetPlayStartedAt: now,
		Now:              now.Add(time.Second),
	}
	result := SetPlayStrikerAction(in, p)
	assert.Equal(t, TypeWalkTo, result.Type)

	in.Now = now.Add(10 * time.Second)
	result = SetPlayStrikerAction(in, p)
	assert.Equal(t, TypeKickIntoGoal, result.Type)
}

func TestDefendingPositionActionStaysBehindPenaltyArea(t *testing.T) {
	field := testField()
	in := DefendingInput{BallPosition: spltypes.P2{X: 0, Y: 2}, Field: field}
	result := DefendingPositionAction(in, testParams())
	assert.LessOrEqual(t, result.KickPose.Position.X, -field.PenaltyAreaLength)
}

func TestBishopPositionMirrorsBallSide(t *testing.T) {
	field := testField()
	result := BishopPositionAction(spltypes.P2{X: 0, Y: 2}, field, false, testParams())
	assert.Less(t, result.KickPose.Position.Y, 0.0)
}

func TestLoserPositionWalksBackFromBall(t *testing.T) {
	field := testField()
	result := LoserPositionAction(spltypes.P2{X: 0, Y: 0}, field.OwnGoalCenter(), testParams())
	assert.Less(t, result.KickPose.Position.X, 0.0)
}
