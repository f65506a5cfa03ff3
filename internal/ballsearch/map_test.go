package ballsearch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

func testField() spltypes.FieldDimensions {
	return spltypes.FieldDimensions{FieldLength: 9, FieldWidth: 6}
}

func testParams() Params {
	return Params{
		MaxBallAge:                  time.Second,
		ConfidentBallMultiplier:     2.0,
		MinProbOnUpvote:             0.05,
		MaxBallDetectionRange:       3.0,
		FovHalfAngle:                0.6,
		ConvolutionKernelCoreWeight: 20,
	}
}

func uniformSum(m *spltypes.BallSearchMap) float64 {
	colLo, colHi, rowLo, rowHi := m.Interior()
	total := 0.0
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			total += m.At(i, j).Probability
		}
	}
	return total
}

func TestNewMapTilesFieldAndStartsEmpty(t *testing.T) {
	m := NewMap(testField())
	colLo, colHi, rowLo, rowHi := m.Interior()
	assert.Equal(t, spltypes.BallSearchCols, colHi-colLo)
	assert.Equal(t, spltypes.BallSearchRows, rowHi-rowLo)
	assert.Equal(t, 0.0, uniformSum(m))
}

func TestRecenterProducesUniformDistribution(t *testing.T) {
	m := NewMap(testField())
	Recenter(m)
	require.InDelta(t, 1.0, uniformSum(m), 1e-9)
}

func TestUpdateNormalizesToOne(t *testing.T) {
	m := NewMap(testField())
	Recenter(m)

	players := []ActiveSighter{
		{
			Pose:       spltypes.Pose{Position: spltypes.P2{X: 0, Y: 0}, Theta: 0},
			HeadYaw:    0,
			BallAge:    2 * time.Second,
			SawBallNow: false,
		},
	}

	Update(m, players, ThrowInEvent{}, SetPlayTransition{}, time.Now(), testParams())

	require.InDelta(t, 1.0, uniformSum(m), 1e-9)
}

func TestUpdateUpvotesRecentlySeenBallCell(t *testing.T) {
	m := NewMap(testField())
	Recenter(m)

	ballPos := spltypes.P2{X: 3, Y: 1}
	i, j := cellIndexFor(m, ballPos)
	before := m.At(i, j).Probability

	players := []ActiveSighter{
		{
			Pose:       spltypes.Pose{Position: spltypes.P2{X: 0, Y: 0}},
			BallAge:    10 * time.Millisecond,
			BallAbsPos: ballPos,
			SawBallNow: true,
		},
	}

	Update(m, players, ThrowInEvent{}, SetPlayTransition{}, time.Now(), testParams())

	after := m.At(i, j).Probability
	assert.Greater(t, after, before)
}

func TestUpdateResetsAgeOnSeenCells(t *testing.T) {
	m := NewMap(testField())
	Recenter(m)
	colLo, colHi, rowLo, rowHi := m.Interior()
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			m.At(i, j).Age = 50
		}
	}

	players := []ActiveSighter{
		{Pose: spltypes.Pose{Position: spltypes.P2{X: 0, Y: 0}}, BallAge: time.Hour},
	}
	p := testParams()
	Update(m, players, ThrowInEvent{}, SetPlayTransition{}, time.Now(), p)

	// A cell straight ahead inside the view cone: its age is reset to 0 by
	// the sighter pass, then Update's last step ages every interior cell by one.
	i, j := cellIndexFor(m, spltypes.P2{X: 1.0, Y: 0})
	assert.Equal(t, uint32(1), m.At(i, j).Age)
}

func TestUpdateAgesUnseenCells(t *testing.T) {
	m := NewMap(testField())
	Recenter(m)

	Update(m, nil, ThrowInEvent{}, SetPlayTransition{}, time.Now(), testParams())

	colLo, _, rowLo, _ := m.Interior()
	assert.Equal(t, uint32(1), m.At(colLo, rowLo).Age)
}

func TestSetPlayTransitionResetsPriorAndStaysNormalized(t *testing.T) {
	m := NewMap(testField())
	Recenter(m)

	Update(m, nil, ThrowInEvent{}, SetPlayTransition{Occurred: true, Kind: spltypes.SetPlayCornerKick, KickingTeam: true}, time.Now(), testParams())

	require.InDelta(t, 1.0, uniformSum(m), 1e-9)
}

func TestMirrorBorderCopiesNearestInterior(t *testing.T) {
	m := NewMap(testField())
	Recenter(m)
	colLo, _, rowLo, _ := m.Interior()
	m.At(colLo, rowLo).Probability = 0.9
	mirrorBorder(m)
	assert.Equal(t, m.At(colLo, rowLo).Probability, m.At(0, rowLo).Probability)
}
