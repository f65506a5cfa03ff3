package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

func testField() spltypes.FieldDimensions {
	return spltypes.FieldDimensions{FieldLength: 9, FieldWidth: 6}
}

func TestSameSearcherSetIgnoresOrder(t *testing.T) {
	a := []Searcher{{PlayerNumber: 2}, {PlayerNumber: 4}}
	b := []Searcher{{PlayerNumber: 4}, {PlayerNumber: 2}}
	assert.True(t, SameSearcherSet(a, b))

	c := []Searcher{{PlayerNumber: 4}, {PlayerNumber: 5}}
	assert.False(t, SameSearcherSet(a, c))
}

func TestBuildAreasAssignsEveryCellToNearestSeed(t *testing.T) {
	field := testField()
	grid := buildTestGrid(field)
	seeds := Seeds(2, field)
	areas := BuildAreas(grid, seeds)

	colLo, colHi, rowLo, rowHi := grid.Interior()
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			assert.Contains(t, []int{0, 1}, areas.Index[i][j])
		}
	}
}

func TestAssignSearchersToAreasPrefersCloserArea(t *testing.T) {
	field := testField()
	seeds := Seeds(2, field) // left, right
	searchers := []Searcher{
		{PlayerNumber: 2, Pose: spltypes.Pose{Position: spltypes.P2{X: -4, Y: 0}}},
		{PlayerNumber: 3, Pose: spltypes.Pose{Position: spltypes.P2{X: 4, Y: 0}}},
	}
	areas := Areas{Seeds: seeds}
	assignment := AssignSearchersToAreas(searchers, areas, DefaultParams())

	require.Len(t, assignment, 2)
	assert.Equal(t, 0, assignment[2]) // left searcher -> left seed
	assert.Equal(t, 1, assignment[3])
}

func TestAssignSearchersToAreasPenalizesFallen(t *testing.T) {
	seeds := []spltypes.P2{{X: 0, Y: 0}}
	searchers := []Searcher{{PlayerNumber: 1, Pose: spltypes.Pose{}, Fallen: true}}
	areas := Areas{Seeds: seeds}
	assignment := AssignSearchersToAreas(searchers, areas, DefaultParams())
	assert.Equal(t, 0, assignment[1])
}

func TestBestCellInAreaPicksHighestValue(t *testing.T) {
	grid := buildTestGrid(testField())
	colLo, _, rowLo, _ := grid.Interior()
	grid.At(colLo, rowLo).Probability = 0.9
	grid.At(colLo+1, rowLo).Probability = 0.1

	areas := Areas{Index: uniformIndex(grid, 0)}
	best, ok := BestCellInArea(grid, areas, 0, DefaultParams())
	require.True(t, ok)
	assert.InDelta(t, 0.9, best.Probability, 1e-9)
}

func TestStandOffPoseFacesCellAndStaysShortOfIt(t *testing.T) {
	p := DefaultParams()
	p.MinBallDetectionRange = 0.5
	p.MaxBallDetectionRange = 2.0

	from := spltypes.Pose{Position: spltypes.P2{X: 0, Y: 0}}
	cell := spltypes.P2{X: 3, Y: 0}
	pose := StandOffPose(from, cell, p)

	assert.Less(t, pose.Position.X, cell.X)
	assert.InDelta(t, 0, pose.Theta, 1e-9)
}

func TestMostWisePlayerSuggestionsPrefersSmallestNumber(t *testing.T) {
	own := spltypes.TeamPlayer{PlayerNumber: 3}
	own.SuggestedSearchPositions[2] = spltypes.P2{X: 9, Y: 9}
	own.SuggestedSearchPositionsValid[2] = true

	teammate := spltypes.TeamPlayer{PlayerNumber: 1}
	teammate.SuggestedSearchPositions[2] = spltypes.P2{X: 1, Y: 1}
	teammate.SuggestedSearchPositionsValid[2] = true

	pos, valid := MostWisePlayerSuggestions(own, []spltypes.TeamPlayer{teammate})
	require.True(t, valid[2])
	assert.Equal(t, spltypes.P2{X: 1, Y: 1}, pos[2])
}

func buildTestGrid(field spltypes.FieldDimensions) *spltypes.BallSearchMap {
	cols, rows := spltypes.BallSearchCols, spltypes.BallSearchRows
	cellWidth := field.FieldLength / float64(cols)
	cellLength := field.FieldWidth / float64(rows)
	cells := make([][]spltypes.ProbCell, cols+2)
	for i := range cells {
		cells[i] = make([]spltypes.ProbCell, rows+2)
		for j := range cells[i] {
			x := -field.FieldLength/2 + (float64(i)-0.5)*cellWidth
			y := -field.FieldWidth/2 + (float64(j)-0.5)*cellLength
			cells[i][j] = spltypes.ProbCell{Position: spltypes.P2{X: x, Y: y}}
		}
	}
	return &spltypes.BallSearchMap{Valid: true, Cells: cells, CellWidth: cellWidth, CellLength: cellLength}
}

func uniformIndex(m *spltypes.BallSearchMap, area int) [][]int {
	index := make([][]int, len(m.Cells))
	for i := range index {
		index[i] = make([]int, len(m.Cells[i]))
		for j := range index[i] {
			index[i][j] = area
		}
	}
	return index
}
