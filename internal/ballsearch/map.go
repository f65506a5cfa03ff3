// Package ballsearch implements BallSearchMap's per-tick grid update (§4.5):
// decay where robots are looking, set-play priors, a floor-preserving 3x3
// convolution, and per-tick normalization to a probability distribution.
package ballsearch

import (
	"math"
	"time"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

// Params bounds the update (named per spec identifiers for traceability).
type Params struct {
	MaxBallAge               time.Duration
	ConfidentBallMultiplier  float64
	MinProbOnUpvote          float64
	MaxBallDetectionRange    float64
	FovHalfAngle             float64
	ConvolutionKernelCoreWeight float64
}

// ActiveSighter is one unpenalized player with a valid pose contributing to
// this tick's decay pass (§4.5 step 1 "For every active player").
type ActiveSighter struct {
	Pose        spltypes.Pose
	HeadYaw     float64
	BallAge     time.Duration
	SawBallNow  bool
	BallAbsPos  spltypes.P2 // only meaningful if BallAge < MaxBallAge
}

// SetPlayTransition carries a just-occurred set-play prior injection event
// (§4.5 step 3).
type SetPlayTransition struct {
	Occurred    bool
	Kind        spltypes.SetPlay // GOAL_KICK or CORNER_KICK
	KickingTeam bool
}

// ThrowInEvent carries a sideways-exit event (§4.5 step 2).
type ThrowInEvent struct {
	Occurred bool
	Cell     spltypes.P2 // projected throw-in spot, field frame
}

// NewMap builds an empty, uniformly-zero BallSearchMap sized to field,
// placing interior cell centers so they exactly tile it (§4.5 "Grid").
func NewMap(field spltypes.FieldDimensions) *spltypes.BallSearchMap {
	cols, rows := spltypes.BallSearchCols, spltypes.BallSearchRows
	cellWidth := field.FieldLength / float64(cols)
	cellLength := field.FieldWidth / float64(rows)

	cells := make([][]spltypes.ProbCell, cols+2)
	for i := range cells {
		cells[i] = make([]spltypes.ProbCell, rows+2)
		for j := range cells[i] {
			x := -field.FieldLength/2 + (float64(i)-0.5)*cellWidth
			y := -field.FieldWidth/2 + (float64(j)-0.5)*cellLength
			cells[i][j] = spltypes.ProbCell{Position: spltypes.P2{X: x, Y: y}, I: i, J: j}
		}
	}

	return &spltypes.BallSearchMap{
		Valid:      true,
		Cells:      cells,
		CellWidth:  cellWidth,
		CellLength: cellLength,
	}
}

// Recenter resets the map while the state is READY: every interior cell gets
// the same probability 1/n and age 0. The distribution is uniform over the
// whole field; the center circle gets no extra weight.
func Recenter(m *spltypes.BallSearchMap) {
	colLo, colHi, rowLo, rowHi := m.Interior()
	n := float64((colHi - colLo) * (rowHi - rowLo))
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			c := m.At(i, j)
			c.Probability = 1 / n
			c.Age = 0
		}
	}
}

// Update runs one PLAYING-state tick of the grid update (§4.5 steps 1-7).
func Update(m *spltypes.BallSearchMap, players []ActiveSighter, throwIn ThrowInEvent, setPlay SetPlayTransition, now time.Time, p Params) {
	for _, sighter := range players {
		applySighter(m, sighter, p)
	}

	if throwIn.Occurred {
		boostCell(m, throwIn.Cell, 2.0)
	}

	if setPlay.Occurred {
		injectSetPlayPrior(m, setPlay)
	}

	mirrorBorder(m)
	convolve(m, p.ConvolutionKernelCoreWeight)
	normalize(m)
	incrementAge(m)
}

func applySighter(m *spltypes.BallSearchMap, s ActiveSighter, p Params) {
	colLo, colHi, rowLo, rowHi := m.Interior()

	if s.BallAge < p.MaxBallAge {
		i, j := cellIndexFor(m, s.BallAbsPos)
		if i >= colLo && i < colHi && j >= rowLo && j < rowHi {
			c := m.At(i, j)
			c.Probability *= p.ConfidentBallMultiplier
			if c.Probability < p.MinProbOnUpvote {
				c.Probability = p.MinProbOnUpvote
			}
			c.Age = 0
		}
	}

	decay := 0.98
	if s.SawBallNow {
		decay = 0.99
	}

	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			c := m.At(i, j)
			if !inCone(s, c.Position, p) {
				continue
			}
			c.Probability *= decay
			c.Age = 0
		}
	}
}

func inCone(s ActiveSighter, cell spltypes.P2, p Params) bool {
	rel := s.Pose.ToLocal(cell)
	if rel.DistSq(spltypes.P2{}) >= p.MaxBallDetectionRange*p.MaxBallDetectionRange {
		return false
	}
	angle := math.Atan2(rel.Y, rel.X) - s.HeadYaw
	return math.Abs(spltypes.NormalizeAngle(angle)) < p.FovHalfAngle
}

func cellIndexFor(m *spltypes.BallSearchMap, pos spltypes.P2) (int, int) {
	colLo, colHi, rowLo, rowHi := m.Interior()
	best := struct{ i, j int }{colLo, rowLo}
	bestDist := math.MaxFloat64
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			d := m.At(i, j).Position.DistSq(pos)
			if d < bestDist {
				bestDist = d
				best.i, best.j = i, j
			}
		}
	}
	return best.i, best.j
}

func boostCell(m *spltypes.BallSearchMap, pos spltypes.P2, factor float64) {
	i, j := cellIndexFor(m, pos)
	m.At(i, j).Probability *= factor
}

func injectSetPlayPrior(m *spltypes.BallSearchMap, t SetPlayTransition) {
	colLo, colHi, rowLo, rowHi := m.Interior()
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			m.At(i, j).Probability = 0
			m.At(i, j).Age = 0
		}
	}

	switch t.Kind {
	case spltypes.SetPlayGoalKick:
		// Bilateral: both corners near the kicking team's own goal area.
		col := colLo
		if !t.KickingTeam {
			col = colHi - 1
		}
		m.At(col, rowLo).Probability = 1
		m.At(col, rowHi-1).Probability = 1
	case spltypes.SetPlayCornerKick:
		side := rowLo
		if t.KickingTeam {
			side = rowHi - 1
		}
		m.At(colHi-1, side).Probability = 1
	}

	n := float64((colHi - colLo) * (rowHi - rowLo))
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			m.At(i, j).Probability += 1 / n
		}
	}
}

func mirrorBorder(m *spltypes.BallSearchMap) {
	colLo, colHi, rowLo, rowHi := m.Interior()
	cols, rows := len(m.Cells), len(m.Cells[0])

	for j := rowLo; j < rowHi; j++ {
		m.At(0, j).Probability = m.At(colLo, j).Probability
		m.At(cols-1, j).Probability = m.At(colHi-1, j).Probability
	}
	for i := 0; i < cols; i++ {
		srcLo, srcHi := rowLo, rowHi-1
		ii := i
		if ii < colLo {
			ii = colLo
		} else if ii >= colHi {
			ii = colHi - 1
		}
		m.At(i, 0).Probability = m.At(ii, srcLo).Probability
		m.At(i, rows-1).Probability = m.At(ii, srcHi).Probability
	}
}

func convolve(m *spltypes.BallSearchMap, k float64) {
	colLo, colHi, rowLo, rowHi := m.Interior()
	denom := k + 8

	old := make([][]float64, len(m.Cells))
	for i := range old {
		old[i] = make([]float64, len(m.Cells[i]))
		for j := range old[i] {
			old[i][j] = m.Cells[i][j].Probability
		}
	}

	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			sum := 0.0
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					weight := 1.0
					if di == 0 && dj == 0 {
						weight = k
					}
					sum += weight * old[i+di][j+dj]
				}
			}
			convolved := sum / denom
			c := m.At(i, j)
			if convolved > c.Probability {
				c.Probability = convolved
			}
		}
	}
}

func normalize(m *spltypes.BallSearchMap) {
	colLo, colHi, rowLo, rowHi := m.Interior()
	total := 0.0
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			total += m.At(i, j).Probability
		}
	}
	if total <= 0 {
		return
	}
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			m.At(i, j).Probability /= total
		}
	}
}

func incrementAge(m *spltypes.BallSearchMap) {
	colLo, colHi, rowLo, rowHi := m.Interior()
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			m.At(i, j).Age++
		}
	}
}
