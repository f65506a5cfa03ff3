package spltypes

import "time"

// BallSearchCols/Rows are the interior grid dimensions; the map carries one
// extra border cell on every side used only as convolution padding (§4.5).
const (
	BallSearchCols = 20
	BallSearchRows = 14
)

// ProbCell is one cell of the BallSearchMap grid (§3).
type ProbCell struct {
	Probability    float64 `json:"probability"`
	OldProbability float64 `json:"oldProbability"`
	Age            uint32  `json:"age"`
	Position       P2      `json:"position"`
	I, J           int     `json:"-"`
}

// BallSearchMap is the (colsCount+2)x(rowsCount+2) probability grid,
// including the one-cell border (§3, §4.5).
type BallSearchMap struct {
	Valid                          bool          `json:"valid"`
	Cells                          [][]ProbCell  `json:"cells"` // [col][row], includes border
	CellWidth                      float64       `json:"cellWidth"`
	CellLength                     float64       `json:"cellLength"`
	TimestampBallSearchMapUnreliable time.Time   `json:"timestampBallSearchMapUnreliable"`
}

// Interior reports the half-open bounds [1, cols+1) x [1, rows+1) of
// non-border cells.
func (m *BallSearchMap) Interior() (colLo, colHi, rowLo, rowHi int) {
	return 1, BallSearchCols + 1, 1, BallSearchRows + 1
}

// At returns the cell at border-inclusive indices (i,j).
func (m *BallSearchMap) At(i, j int) *ProbCell {
	return &m.Cells[i][j]
}

// Unreliable reports whether the map should be distrusted because the local
// robot was recently penalized or in READY (§4.5 "Unreliability timestamp").
func (m *BallSearchMap) Unreliable(now time.Time, horizon time.Duration) bool {
	return !m.TimestampBallSearchMapUnreliable.IsZero() && now.Sub(m.TimestampBallSearchMapUnreliable) < horizon
}
