// Package searcher implements SearcherPositionProvider (§4.6): it splits
// the field into one Voronoi area per active searcher, assigns searchers to
// areas by expected time-to-reach, and within each area picks the
// highest-value unexplored cell as that searcher's next stand-off position.
package searcher

import (
	"math"
	"sort"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

// Params bounds the cost function and cell-value scoring (§4.6).
type Params struct {
	WalkSpeed                float64 // m/s, cost denominator for distance
	TurnRate                 float64 // rad/s, cost denominator for angle
	FallenPenalty            float64 // seconds added for a fallen searcher
	ProbabilityWeight        float64
	MaxAgeValueContribution  float64
	MinBallDetectionRange    float64
	MaxBallDetectionRange    float64
}

// DefaultParams mirrors the constants named in §4.6's cost formula.
func DefaultParams() Params {
	return Params{
		WalkSpeed:               0.18,
		TurnRate:                math.Pi / 10,
		FallenPenalty:           10,
		ProbabilityWeight:       1,
		MaxAgeValueContribution: 50,
	}
}

// Searcher is one unpenalized teammate (or self) currently holding the
// SEARCHER role, eligible for this tick's assignment (§4.6 step 1).
type Searcher struct {
	PlayerNumber int
	Pose         spltypes.Pose
	Fallen       bool
}

// Seeds returns the configured n-searcher seed layout. Real seed sets are
// supplied by configuration; this is the fallback used when none is
// configured for a given searcher count, spreading seeds evenly across the
// field length.
func Seeds(n int, field spltypes.FieldDimensions) []spltypes.P2 {
	if n <= 0 {
		return nil
	}
	seeds := make([]spltypes.P2, n)
	for i := 0; i < n; i++ {
		x := -field.FieldLength/2 + (float64(i)+0.5)*field.FieldLength/float64(n)
		seeds[i] = spltypes.P2{X: x, Y: 0}
	}
	return seeds
}

// Areas is a per-interior-cell area-index grid produced by nearest-seed
// partitioning (§4.6 step 2 "for each map cell assign it to the nearest
// seed").
type Areas struct {
	Seeds []spltypes.P2
	Index [][]int // [col][row], border-inclusive shape matching BallSearchMap.Cells
}

// SameSearcherSet reports whether two searcher lists contain the same player
// numbers, used to decide whether to keep the previous partition rather than
// rebuild it (§4.6 step 2 "If the set of searchers matches the last
// assignment, keep it").
func SameSearcherSet(a, b []Searcher) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int]bool, len(a))
	for _, s := range a {
		seen[s.PlayerNumber] = true
	}
	for _, s := range b {
		if !seen[s.PlayerNumber] {
			return false
		}
	}
	return true
}

// BuildAreas partitions m's interior cells among seeds by nearest Euclidean
// distance (§4.6 step 2).
func BuildAreas(m *spltypes.BallSearchMap, seeds []spltypes.P2) Areas {
	index := make([][]int, len(m.Cells))
	for i := range index {
		index[i] = make([]int, len(m.Cells[i]))
		for j := range index[i] {
			index[i][j] = -1
		}
	}

	colLo, colHi, rowLo, rowHi := m.Interior()
	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			pos := m.At(i, j).Position
			best, bestDist := 0, math.MaxFloat64
			for k, seed := range seeds {
				d := pos.DistSq(seed)
				if d < bestDist {
					bestDist = d
					best = k
				}
			}
			index[i][j] = best
		}
	}
	return Areas{Seeds: seeds, Index: index}
}

// AssignSearchersToAreas matches each searcher to an area index, minimizing
// total cost (§4.6 step 3). #searchers == #areas is assumed (one area per
// active searcher); with at most spltypes.MaxPlayers searchers, brute-force
// permutation search is cheap and exact.
func AssignSearchersToAreas(searchers []Searcher, areas Areas, p Params) map[int]int {
	n := len(areas.Seeds)
	if n == 0 || len(searchers) == 0 {
		return nil
	}

	cost := make([][]float64, len(searchers))
	for i, s := range searchers {
		cost[i] = make([]float64, n)
		for j, seed := range areas.Seeds {
			cost[i][j] = assignmentCost(s, seed, p)
		}
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	best := map[int]int{}
	bestCost := math.MaxFloat64
	permute(perm, min(len(searchers), n), func(order []int) {
		total := 0.0
		for i := 0; i < len(searchers) && i < len(order); i++ {
			total += cost[i][order[i]]
		}
		if total < bestCost {
			bestCost = total
			assignment := make(map[int]int, len(searchers))
			for i := 0; i < len(searchers) && i < len(order); i++ {
				assignment[searchers[i].PlayerNumber] = order[i]
			}
			best = assignment
		}
	})
	return best
}

func assignmentCost(s Searcher, seed spltypes.P2, p Params) float64 {
	rel := s.Pose.ToLocal(seed)
	distance := math.Sqrt(rel.X*rel.X + rel.Y*rel.Y)
	angle := math.Abs(spltypes.NormalizeAngle(math.Atan2(rel.Y, rel.X)))
	cost := distance / p.WalkSpeed
	if p.TurnRate > 0 {
		cost += angle / p.TurnRate
	}
	if s.Fallen {
		cost += p.FallenPenalty
	}
	return cost
}

// permute invokes fn on every distinct ordering of the first k elements of
// perm (a recursive backtracking exhaustive search; fine up to MaxPlayers).
func permute(perm []int, k int, fn func([]int)) {
	n := len(perm)
	if k > n {
		k = n
	}
	used := make([]bool, n)
	chosen := make([]int, 0, k)

	var rec func()
	rec = func() {
		if len(chosen) == k {
			fn(chosen)
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			chosen = append(chosen, perm[i])
			rec()
			chosen = chosen[:len(chosen)-1]
			used[i] = false
		}
	}
	rec()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// BestCellInArea returns the highest-value unexplored cell within the given
// area (§4.6 step 4: "arg-max of a cell value = probabilityWeight_ *
// probability + min(age, maxAgeValueContribution_) / maxAgeValueContribution_").
func BestCellInArea(m *spltypes.BallSearchMap, areas Areas, areaIndex int, p Params) (spltypes.ProbCell, bool) {
	colLo, colHi, rowLo, rowHi := m.Interior()
	var best spltypes.ProbCell
	bestValue := -math.MaxFloat64
	found := false

	for i := colLo; i < colHi; i++ {
		for j := rowLo; j < rowHi; j++ {
			if areas.Index[i][j] != areaIndex {
				continue
			}
			c := m.At(i, j)
			age := float64(c.Age)
			if age > p.MaxAgeValueContribution {
				age = p.MaxAgeValueContribution
			}
			value := p.ProbabilityWeight*c.Probability + age/p.MaxAgeValueContribution
			if value > bestValue {
				bestValue = value
				best = *c
				found = true
			}
		}
	}
	return best, found
}

// StandOffPose computes the walk target for a searcher assigned to explore
// cell, standing off at a configured distance between MinBallDetectionRange
// and MaxBallDetectionRange/2 with its head pointed at the cell (§4.6
// "Output pose").
func StandOffPose(from spltypes.Pose, cell spltypes.P2, p Params) spltypes.Pose {
	standOff := p.MinBallDetectionRange
	if max := p.MaxBallDetectionRange / 2; max > standOff {
		standOff = (standOff + max) / 2
	}

	dir := cell.Sub(from.Position)
	dist := dir.Norm()
	if dist < 1e-6 {
		return spltypes.Pose{Position: cell, Theta: from.Theta}
	}
	unit := spltypes.P2{X: dir.X / dist, Y: dir.Y / dist}

	standDist := dist - standOff
	if standDist < 0 {
		standDist = 0
	}
	pos := spltypes.P2{
		X: from.Position.X + unit.X*standDist,
		Y: from.Position.Y + unit.Y*standDist,
	}
	return spltypes.Pose{Position: pos, Theta: math.Atan2(dir.Y, dir.X)}
}

// MostWisePlayerSuggestions arbitrates between the own and teammates'
// broadcast suggestion tables, taking each target player's suggestion from
// whichever contributing robot has the smallest player number (§4.6
// "each robot picks the suggestion coming from the teammate with the
// smallest player-number... as authoritative").
func MostWisePlayerSuggestions(own spltypes.TeamPlayer, teammates []spltypes.TeamPlayer) ([spltypes.MaxPlayers + 1]spltypes.P2, [spltypes.MaxPlayers + 1]bool) {
	type source struct {
		number int
		pos    [spltypes.MaxPlayers + 1]spltypes.P2
		valid  [spltypes.MaxPlayers + 1]bool
	}

	all := make([]source, 0, len(teammates)+1)
	all = append(all, source{own.PlayerNumber, own.SuggestedSearchPositions, own.SuggestedSearchPositionsValid})
	for _, tp := range teammates {
		all = append(all, source{tp.PlayerNumber, tp.SuggestedSearchPositions, tp.SuggestedSearchPositionsValid})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].number < all[j].number })

	var pos [spltypes.MaxPlayers + 1]spltypes.P2
	var valid [spltypes.MaxPlayers + 1]bool
	for target := 1; target <= spltypes.MaxPlayers; target++ {
		for _, s := range all {
			if s.valid[target] {
				pos[target] = s.pos[target]
				valid[target] = true
				break
			}
		}
	}
	return pos, valid
}
