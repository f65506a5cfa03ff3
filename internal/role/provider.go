// Package role implements PlayingRoleProvider (§4.7): the team-coordinated
// role election run every tick while PLAYING, READY, or SET — ball-search
// state tracking, striker bidding with hysteretic time-to-reach tracks,
// keeper/replacement-keeper assignment, remaining-player sort-by-x with
// role stickiness, and the fast-role-override "revolution" escape hatch.
package role

import (
	"sort"
	"time"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

// Params names every tunable §4.7 references by its own identifier.
type Params struct {
	ShortTermBallSearchDuration time.Duration
	LoserDuration               time.Duration

	KeeperInGoalDistanceThreshold float64
	KeeperTimeToReachBallPenalty  time.Duration
	PlayerOneCanBecomeStriker     bool
	PlayerOneDistanceThreshold    float64

	AssignBishop                              bool
	AssignBishopWithLessThanFourFieldPlayers bool
	BishopBallXThreshold                      float64
	BishopBallXThresholdSticky                float64

	AllowFastRoleOverride       bool
	MaxFastRoleOverrideDuration time.Duration
	UseTeamRole                 bool
	StrikeOwnBall                bool
}

// PlayerState is one team player's input to a single assignment pass —
// both teammates (from the last received team message) and self.
type PlayerState struct {
	PlayerNumber    int
	IsSelf          bool
	Penalized       bool
	Fallen          bool
	Pose            spltypes.Pose
	IsPoseValid     bool
	DistanceToOwnGoal float64

	TimeToReachBall        time.Duration
	TimeToReachBallStriker time.Duration

	PreviousRole spltypes.Role
	ForcedRole   spltypes.Role // spltypes.RoleNone if unforced
	WasBishop    bool          // role stickiness input to step 6

	// RoleAssignments is the full-team assignment this player last
	// published (only meaningful for teammates, used by step 7's
	// smallest-player-number authoritative overwrite).
	RoleAssignments [spltypes.MaxPlayers + 1]spltypes.Role
}

// Input bundles the per-tick context PlayingRoleProvider needs beyond the
// player roster itself.
type Input struct {
	Now                     time.Time
	GameState               spltypes.GameControllerState
	BallType                spltypes.BallType
	TimeSinceLastTeamBallUpdate time.Duration
	OwnPlayerNumber         int
	OwnBallConfident        bool
	TeamBallFound           bool
	KickingSetPlayActive    bool // non-NONE set play while own team is kicking
	RevolutionJustStarted   bool // own role newly became STRIKER by self-election this tick
	TeamBallPosition        spltypes.P2 // used by the bishop-vs-supporter rule's ball.x test
}

// Provider carries the hysteresis state §4.7 calls lastAssignment_ across
// ticks: the previous role map, the last elected striker, and the own
// robot's revolution start time.
type Provider struct {
	lastAssignment     map[int]spltypes.Role
	lastStrikerNumber  int
	revolutionStarted  time.Time
}

// New constructs an empty Provider.
func New() *Provider {
	return &Provider{lastAssignment: make(map[int]spltypes.Role)}
}

// LastAssignment returns the previous tick's full assignment (read-only use
// by other modules, e.g. behavior composer diagnostics).
func (p *Provider) LastAssignment() map[int]spltypes.Role {
	return p.lastAssignment
}

func ballSearchState(in Input, params Params) spltypes.BallSearchState {
	if in.BallType != spltypes.BallTypeNone {
		return spltypes.BallSearchNone
	}
	if in.TimeSinceLastTeamBallUpdate < params.ShortTermBallSearchDuration {
		return spltypes.BallSearchShortTerm
	}
	return spltypes.BallSearchLongTerm
}

// Assign runs the full §4.7 algorithm and returns the new team-wide role
// assignment, updating the Provider's hysteresis state for next tick.
func (p *Provider) Assign(in Input, players []PlayerState, params Params) map[int]spltypes.Role {
	if !preconditionsMet(in.GameState) {
		p.lastAssignment = make(map[int]spltypes.Role)
		p.lastStrikerNumber = 0
		return map[int]spltypes.Role{}
	}

	assigned := make(map[int]spltypes.Role, len(players))
	byNumber := make(map[int]PlayerState, len(players))
	for _, pl := range players {
		byNumber[pl.PlayerNumber] = pl
	}

	bss := ballSearchState(in, params)

	// Step 1: forced role.
	remaining := make([]PlayerState, 0, len(players))
	for _, pl := range players {
		if pl.Penalized {
			continue
		}
		if pl.ForcedRole != spltypes.RoleNone {
			assigned[pl.PlayerNumber] = pl.ForcedRole
			continue
		}
		remaining = append(remaining, pl)
	}

	// Step 2: striker.
	if bss == spltypes.BallSearchNone {
		if striker, ok := electStriker(remaining, params); ok {
			assigned[striker] = spltypes.RoleStriker
			p.lastStrikerNumber = striker
			remaining = without(remaining, striker)
		}
	}

	// Step 3: loser.
	if bss == spltypes.BallSearchShortTerm &&
		in.TimeSinceLastTeamBallUpdate < params.LoserDuration &&
		p.lastStrikerNumber != 0 {
		if _, ok := assigned[p.lastStrikerNumber]; !ok {
			if has(remaining, p.lastStrikerNumber) {
				assigned[p.lastStrikerNumber] = spltypes.RoleLoser
				remaining = without(remaining, p.lastStrikerNumber)
			}
		}
	}

	// Step 4: keeper.
	loserAssigned := false
	for _, r := range assigned {
		if r == spltypes.RoleLoser {
			loserAssigned = true
		}
	}
	if pl, ok := byNumber[1]; ok && !pl.Penalized {
		if _, taken := assigned[1]; !taken {
			assigned[1] = spltypes.RoleKeeper
			remaining = without(remaining, 1)
		}
	}

	// Step 5: replacement keeper.
	assignReplacementKeeper(assigned, &remaining, byNumber, params)

	// Step 6: remaining assignment.
	assignRemaining(assigned, remaining, bss, loserAssigned, in, params)

	// Step 7: fast-role-override / team-role overwrite.
	applyTeamRoleOverride(assigned, in, players, params, p)

	// Step 8: strike-own-ball bypass.
	if params.StrikeOwnBall && !in.TeamBallFound && in.OwnBallConfident {
		if noTeammateCloser(players, in.OwnPlayerNumber) {
			assigned[in.OwnPlayerNumber] = spltypes.RoleStriker
		}
	}

	p.lastAssignment = assigned
	return assigned
}

func preconditionsMet(gs spltypes.GameControllerState) bool {
	switch gs.GameState {
	case spltypes.GameStatePlaying, spltypes.GameStateReady, spltypes.GameStateSet:
	default:
		return false
	}
	if gs.Penalty != spltypes.PenaltyNone {
		return false
	}
	if gs.GamePhase != spltypes.GamePhaseNormal {
		return false
	}
	return true
}

func effectiveTimeToReachBall(pl PlayerState, params Params) time.Duration {
	switch pl.PreviousRole {
	case spltypes.RoleStriker:
		return pl.TimeToReachBallStriker
	case spltypes.RoleKeeper, spltypes.RoleReplacementKeeper:
		if pl.DistanceToOwnGoal < params.KeeperInGoalDistanceThreshold {
			return pl.TimeToReachBall + params.KeeperTimeToReachBallPenalty
		}
		return pl.TimeToReachBall
	default:
		return pl.TimeToReachBall
	}
}

func electStriker(candidates []PlayerState, params Params) (int, bool) {
	best := -1
	var bestTime time.Duration
	for _, pl := range candidates {
		if pl.PlayerNumber == 1 && !params.PlayerOneCanBecomeStriker {
			continue
		}
		t := effectiveTimeToReachBall(pl, params)
		if best == -1 || t < bestTime {
			best = pl.PlayerNumber
			bestTime = t
		}
	}
	return best, best != -1
}

func assignReplacementKeeper(assigned map[int]spltypes.Role, remaining *[]PlayerState, byNumber map[int]PlayerState, params Params) {
	one, haveOne := byNumber[1]
	needsReplacement := !haveOne || one.Penalized
	if haveOne && !one.Penalized {
		if _, taken := assigned[1]; taken && assigned[1] == spltypes.RoleKeeper {
			if one.DistanceToOwnGoal <= params.PlayerOneDistanceThreshold {
				return
			}
			needsReplacement = true
		}
	}
	if !needsReplacement {
		return
	}

	best := -1
	bestDist := -1.0
	for _, pl := range *remaining {
		if pl.PlayerNumber == 1 {
			continue
		}
		if _, taken := assigned[pl.PlayerNumber]; taken {
			continue
		}
		if best == -1 || pl.DistanceToOwnGoal < bestDist {
			best = pl.PlayerNumber
			bestDist = pl.DistanceToOwnGoal
		}
	}
	if best == -1 {
		return
	}
	assigned[best] = spltypes.RoleReplacementKeeper
	*remaining = without(*remaining, best)
}

func without(players []PlayerState, number int) []PlayerState {
	out := make([]PlayerState, 0, len(players))
	for _, pl := range players {
		if pl.PlayerNumber != number {
			out = append(out, pl)
		}
	}
	return out
}

func has(players []PlayerState, number int) bool {
	for _, pl := range players {
		if pl.PlayerNumber == number {
			return true
		}
	}
	return false
}

// stickinessOffset biases the sort-by-x ordering toward a player's previous
// role (§4.7 step 6 "role-stickiness offsets").
func stickinessOffset(role spltypes.Role) float64 {
	switch role {
	case spltypes.RoleDefender:
		return -0.2
	case spltypes.RoleSupportStriker:
		return 0.2
	case spltypes.RoleBishop:
		return 0.3
	default:
		return 0
	}
}

func assignRemaining(assigned map[int]spltypes.Role, remaining []PlayerState, bss spltypes.BallSearchState, loserAlreadyAssigned bool, in Input, params Params) {
	if len(remaining) == 0 {
		return
	}

	type ranked struct {
		pl PlayerState
		x  float64
	}
	rows := make([]ranked, 0, len(remaining))
	for _, pl := range remaining {
		rows = append(rows, ranked{pl: pl, x: pl.Pose.Position.X + stickinessOffset(pl.PreviousRole)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].x < rows[j].x })

	if bss == spltypes.BallSearchLongTerm {
		for _, row := range rows {
			assigned[row.pl.PlayerNumber] = spltypes.RoleSearcher
		}
		return
	}

	if bss == spltypes.BallSearchShortTerm {
		n := len(rows)
		if !loserAlreadyAssigned {
			assigned[rows[n-1].pl.PlayerNumber] = spltypes.RoleSearcher
			n--
		}
		if n > 0 {
			assigned[rows[n-1].pl.PlayerNumber] = spltypes.RoleDefender
			n--
		}
		for i := 0; i < n; i++ {
			assigned[rows[i].pl.PlayerNumber] = spltypes.RoleSearcher
		}
		return
	}

	switch len(rows) {
	case 1:
		assigned[rows[0].pl.PlayerNumber] = spltypes.RoleDefender
	case 2:
		assigned[rows[0].pl.PlayerNumber] = spltypes.RoleDefender
		assigned[rows[1].pl.PlayerNumber] = bishopOrSupport(rows[1].pl, in, params, len(rows))
	case 3:
		assigned[rows[0].pl.PlayerNumber] = spltypes.RoleDefender
		assigned[rows[1].pl.PlayerNumber] = spltypes.RoleSupportStriker
		assigned[rows[2].pl.PlayerNumber] = spltypes.RoleBishop
	default:
		// More than three unassigned field players is a misconfigured
		// roster (§4.7 step 6 ">3: log error"); fall back to DEFENDER so
		// nobody is left without a role.
		for _, row := range rows {
			assigned[row.pl.PlayerNumber] = spltypes.RoleDefender
		}
	}
}

func bishopOrSupport(pl PlayerState, in Input, params Params, fieldPlayerCount int) spltypes.Role {
	if in.KickingSetPlayActive {
		return spltypes.RoleBishop
	}
	if !params.AssignBishop {
		return spltypes.RoleSupportStriker
	}
	if fieldPlayerCount < 3 && !params.AssignBishopWithLessThanFourFieldPlayers {
		return spltypes.RoleSupportStriker
	}

	threshold := params.BishopBallXThreshold
	if pl.WasBishop {
		threshold = params.BishopBallXThresholdSticky
	}
	if pl.WasBishop || in.TeamBallPosition.X < threshold {
		return spltypes.RoleBishop
	}
	return spltypes.RoleSupportStriker
}

func applyTeamRoleOverride(assigned map[int]spltypes.Role, in Input, players []PlayerState, params Params, p *Provider) {
	ownRole, ownAssigned := assigned[in.OwnPlayerNumber]

	if params.AllowFastRoleOverride {
		if ownAssigned && ownRole == spltypes.RoleStriker && in.RevolutionJustStarted {
			p.revolutionStarted = in.Now
		}
		if !p.revolutionStarted.IsZero() && in.Now.Sub(p.revolutionStarted) < params.MaxFastRoleOverrideDuration {
			return
		}
	}
	p.revolutionStarted = time.Time{}

	if !params.UseTeamRole && in.GameState.GameState == spltypes.GameStatePlaying {
		return
	}

	var source *PlayerState
	for i := range players {
		pl := players[i]
		if pl.Penalized || pl.IsSelf {
			continue
		}
		if pl.RoleAssignments[clampIndex(in.OwnPlayerNumber)] == spltypes.RoleNone {
			continue
		}
		if source == nil || pl.PlayerNumber < source.PlayerNumber {
			source = &players[i]
		}
	}
	if source == nil {
		return
	}
	assigned[in.OwnPlayerNumber] = source.RoleAssignments[clampIndex(in.OwnPlayerNumber)]
}

func clampIndex(n int) int {
	if n < 0 {
		return 0
	}
	if n > spltypes.MaxPlayers {
		return spltypes.MaxPlayers
	}
	return n
}

func noTeammateCloser(players []PlayerState, ownNumber int) bool {
	var own PlayerState
	found := false
	for _, pl := range players {
		if pl.PlayerNumber == ownNumber {
			own = pl
			found = true
		}
	}
	if !found {
		return true
	}
	for _, pl := range players {
		if pl.PlayerNumber == ownNumber || pl.Penalized {
			continue
		}
		if pl.TimeToReachBall < own.TimeToReachBall {
			return false
		}
	}
	return true
}
