package worldstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

func testField() spltypes.FieldDimensions {
	return spltypes.FieldDimensions{FieldLength: 9, FieldWidth: 6, GoalInnerWidth: 1.5, PenaltyMarkerDistance: 1.3}
}

func TestTimeToReachBallIsMonotonicInDistance(t *testing.T) {
	m := DefaultWalkModel()
	pose := spltypes.Pose{Position: spltypes.P2{X: 0, Y: 0}}

	near := TimeToReachBall(pose, spltypes.P2{X: 1, Y: 0}, m)
	far := TimeToReachBall(pose, spltypes.P2{X: 3, Y: 0}, m)
	assert.Less(t, near, far)
}

func TestTimeToReachBallPenalizesTurnAngle(t *testing.T) {
	m := DefaultWalkModel()
	pose := spltypes.Pose{Position: spltypes.P2{X: 0, Y: 0}, Theta: 0}

	ahead := TimeToReachBall(pose, spltypes.P2{X: 2, Y: 0}, m)
	behind := TimeToReachBall(pose, spltypes.P2{X: -2, Y: 0}, m)
	assert.Greater(t, behind, ahead)
}

func TestDerivePointOfInterestsMirrorsGoals(t *testing.T) {
	field := testField()
	poi := DerivePointOfInterests(field)
	assert.True(t, poi.Valid)
	assert.Equal(t, -field.FieldLength/2, poi.OwnGoalCenter.X)
	assert.Equal(t, field.FieldLength/2, poi.OpponentGoalCenter.X)
}

func TestSetPositionOnlyAppliesDuringReady(t *testing.T) {
	field := testField()
	_, ok := SetPosition(spltypes.GameControllerState{GameState: spltypes.GameStatePlaying}, field, 2, spltypes.RoleDefender)
	assert.False(t, ok)

	pos, ok := SetPosition(spltypes.GameControllerState{GameState: spltypes.GameStateReady}, field, 1, spltypes.RoleKeeper)
	assert.True(t, ok)
	assert.Equal(t, field.OwnGoalCenter(), pos)
}

func TestSetPositionStrikerRespectsKickoff(t *testing.T) {
	field := testField()
	gs := spltypes.GameControllerState{GameState: spltypes.GameStateReady, Kickoff: true}
	pos, ok := SetPosition(gs, field, 5, spltypes.RoleStriker)
	assert.True(t, ok)
	assert.InDelta(t, -0.3, pos.X, 1e-9)
}
