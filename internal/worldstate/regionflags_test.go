package worldstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

func regionFlagsTestField() spltypes.FieldDimensions {
	return spltypes.FieldDimensions{
		FieldLength:          9,
		FieldWidth:           6,
		CenterCircleDiameter: 1.5,
		PenaltyAreaLength:    1.2,
		PenaltyAreaWidth:     3.8,
	}
}

func TestRegionFlagsIgnoredWithoutBallType(t *testing.T) {
	p := NewRegionFlagsProvider(DefaultRegionFlagsParams())
	field := regionFlagsTestField()
	now := time.Now()

	out := p.Update(now, spltypes.GameControllerState{}, spltypes.TeamBallModel{BallType: spltypes.BallTypeNone}, spltypes.Pose{}, false, field)
	assert.False(t, out.BallValid)
	assert.False(t, out.RobotValid)
}

func TestRegionFlagsBallInOwnHalfTracksSign(t *testing.T) {
	p := NewRegionFlagsProvider(DefaultRegionFlagsParams())
	field := regionFlagsTestField()
	now := time.Now()

	ball := spltypes.TeamBallModel{BallType: spltypes.BallTypeTeam, Found: true, AbsPosition: spltypes.P2{X: -3, Y: 0}}
	out := p.Update(now, spltypes.GameControllerState{}, ball, spltypes.Pose{}, false, field)
	assert.True(t, out.BallValid)
	assert.True(t, out.BallInOwnHalf)

	ball.AbsPosition = spltypes.P2{X: 3, Y: 0}
	out = p.Update(now, spltypes.GameControllerState{}, ball, spltypes.Pose{}, false, field)
	assert.False(t, out.BallInOwnHalf)
}

func TestRegionFlagsHysteresisResistsBoundaryChatter(t *testing.T) {
	p := NewRegionFlagsProvider(DefaultRegionFlagsParams())
	field := regionFlagsTestField()
	now := time.Now()

	ball := spltypes.TeamBallModel{BallType: spltypes.BallTypeTeam, Found: true, AbsPosition: spltypes.P2{X: -3, Y: 0}}
	out := p.Update(now, spltypes.GameControllerState{}, ball, spltypes.Pose{}, false, field)
	assert.True(t, out.BallInOwnHalf)

	// Just past zero, still within the hysteresis margin: should stick true.
	ball.AbsPosition = spltypes.P2{X: 0.1, Y: 0}
	out = p.Update(now, spltypes.GameControllerState{}, ball, spltypes.Pose{}, false, field)
	assert.True(t, out.BallInOwnHalf)

	// Well past the margin: flips false.
	ball.AbsPosition = spltypes.P2{X: 1, Y: 0}
	out = p.Update(now, spltypes.GameControllerState{}, ball, spltypes.Pose{}, false, field)
	assert.False(t, out.BallInOwnHalf)
}

func TestRegionFlagsBallIsFreeLatchesAndResetsOnGameStateChange(t *testing.T) {
	p := NewRegionFlagsProvider(DefaultRegionFlagsParams())
	field := regionFlagsTestField()
	now := time.Now()

	gs := spltypes.GameControllerState{GameState: spltypes.GameStatePlaying, KickingTeam: true}
	ball := spltypes.TeamBallModel{BallType: spltypes.BallTypeTeam, Found: true}
	out := p.Update(now, gs, ball, spltypes.Pose{}, false, field)
	assert.True(t, out.BallIsFree)

	gs.GameState = spltypes.GameStateSet
	out = p.Update(now, gs, ball, spltypes.Pose{}, false, field)
	assert.False(t, out.BallIsFree)
}

func TestRegionFlagsRobotFlagsRequireValidPose(t *testing.T) {
	p := NewRegionFlagsProvider(DefaultRegionFlagsParams())
	field := regionFlagsTestField()
	now := time.Now()

	pose := spltypes.Pose{Position: spltypes.P2{X: 2, Y: 1}}
	out := p.Update(now, spltypes.GameControllerState{}, spltypes.TeamBallModel{}, pose, true, field)
	assert.True(t, out.RobotValid)
	assert.False(t, out.RobotInOwnHalf)
	assert.True(t, out.RobotInLeftHalf)
}
