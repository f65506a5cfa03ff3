package main

import (
	"time"

	"github.com/hulks-go/splbrain/internal/action"
	"github.com/hulks-go/splbrain/internal/ballsearch"
	"github.com/hulks-go/splbrain/internal/behavior"
	"github.com/hulks-go/splbrain/internal/cycle"
	"github.com/hulks-go/splbrain/internal/obstacle"
	"github.com/hulks-go/splbrain/internal/role"
	"github.com/hulks-go/splbrain/internal/searcher"
	"github.com/hulks-go/splbrain/internal/spltypes"
	"github.com/hulks-go/splbrain/internal/teamball"
	"github.com/hulks-go/splbrain/internal/worldstate"
)

// Slot names. The "external." prefix marks slots fed by Engine.Seed rather
// than produced by a module in the graph (§4.1 "a dependency with no
// producer is an external input slot").
const (
	slotNow                 = "external.now"
	slotGameControllerState = "external.gameControllerState"
	slotTeamPlayers         = "external.teamPlayers"
	slotField               = "external.field"
	slotOwnPose             = "external.ownPose"
	slotOwnPoseValid        = "external.ownPoseValid"
	slotOwnBallState        = "external.ownBallState"
	slotOwnHeadYaw          = "external.ownHeadYaw"
	slotOwnFallen           = "external.ownFallen"
	slotOwnFallenSince      = "external.ownFallenSince"
	slotLocalObstacles      = "external.localObstacles"

	slotTeamBall        = "teamball.result"
	slotBallSearchMap   = "ballsearch.map"
	slotSearchPose      = "searcher.pose"
	slotRoleAssignments = "role.assignments"
	slotActionResult    = "action.result"
	slotTeamObstacles   = "obstacle.team"
	slotActionCommand   = "behavior.command"
	slotRegionFlags     = "worldstate.regionFlags"
)

// teamBallModule wraps TeamBallFilter (§4.4). Its buffer is genuinely
// stateful across ticks, so it lives on the module rather than in the
// Registry.
type teamBallModule struct {
	ownPlayer int
	filter    *teamball.Filter
	params    teamball.Params
}

func (m *teamBallModule) Name() string         { return "teamball" }
func (m *teamBallModule) Production() string   { return slotTeamBall }
func (m *teamBallModule) Default() interface{} { return teamball.Result{} }
func (m *teamBallModule) Dependencies() []string {
	return []string{slotNow, slotField, slotGameControllerState, slotTeamPlayers, slotOwnPose, slotOwnPoseValid, slotOwnBallState}
}

func (m *teamBallModule) Cycle(r *cycle.Registry) {
	now := cycle.Get[time.Time](r, slotNow)
	field := cycle.Get[spltypes.FieldDimensions](r, slotField)
	gs := cycle.Get[spltypes.GameControllerState](r, slotGameControllerState)
	teamPlayers := cycle.Get[[]spltypes.TeamPlayer](r, slotTeamPlayers)
	ownPose := cycle.Get[spltypes.Pose](r, slotOwnPose)
	ownPoseValid := cycle.Get[bool](r, slotOwnPoseValid)
	ownBall := cycle.Get[spltypes.BallState](r, slotOwnBallState)

	for _, tp := range teamPlayers {
		admission := teamball.AdmissionInput{
			TeammatePoseValid: tp.IsPoseValid,
			TeammatePenalized: tp.Penalized,
			BallAge:           now.Sub(tp.TimeWhenBallWasSeen),
			BallSpeed:         tp.BallVelocity.Norm(),
			TimeSinceJump:     now.Sub(tp.LastJumpTime),
		}
		if !teamball.Admit(admission, m.params) {
			continue
		}
		m.filter.Update(teamball.Sighting{
			PlayerNumber: tp.PlayerNumber,
			Position:     tp.Pose.ToWorld(tp.BallPosition),
			Velocity:     tp.BallVelocity,
			Distance:     tp.BallPosition.Norm(),
			Timestamp:    tp.TimeWhenBallWasSeen,
		})
	}

	var ownSighting *teamball.Sighting
	if ownPoseValid && ownBall.Found {
		admission := teamball.AdmissionInput{
			TeammatePoseValid: true,
			BallAge:           ownBall.Age,
			BallSpeed:         ownBall.Velocity.Norm(),
			TimeSinceJump:     time.Hour,
		}
		if teamball.Admit(admission, m.params) {
			s := teamball.Sighting{
				PlayerNumber: m.ownPlayer,
				Position:     ownPose.ToWorld(ownBall.Position),
				Velocity:     ownBall.Velocity,
				Distance:     ownBall.Position.Norm(),
				Timestamp:    ownBall.TimeWhenLastSeen,
				IsOwn:        true,
			}
			m.filter.Update(s)
			ownSighting = &s
		}
	}

	result := m.filter.Resolve(now, field, ownSighting)
	if pos, ok := teamball.RuleBallPosition(field, gs.GameState, gs.GamePhase, gs.KickingTeam); ok {
		result = teamball.Result{Type: spltypes.BallTypeRule, Position: pos, Found: true, Seen: result.Seen, InsideField: true}
	}
	cycle.Set(r, slotTeamBall, result)
}

// ballSearchModule wraps BallSearchMap's per-tick grid update (§4.5).
type ballSearchModule struct {
	grid        *spltypes.BallSearchMap
	params      ballsearch.Params
	prevSetPlay spltypes.SetPlay
}

func (m *ballSearchModule) Name() string         { return "ballsearch" }
func (m *ballSearchModule) Production() string   { return slotBallSearchMap }
func (m *ballSearchModule) Default() interface{} { return m.grid }
func (m *ballSearchModule) Dependencies() []string {
	return []string{slotNow, slotGameControllerState, slotOwnPose, slotOwnHeadYaw, slotOwnBallState}
}

func (m *ballSearchModule) Cycle(r *cycle.Registry) {
	now := cycle.Get[time.Time](r, slotNow)
	gs := cycle.Get[spltypes.GameControllerState](r, slotGameControllerState)
	ownPose := cycle.Get[spltypes.Pose](r, slotOwnPose)
	headYaw := cycle.Get[float64](r, slotOwnHeadYaw)
	ownBall := cycle.Get[spltypes.BallState](r, slotOwnBallState)

	switch gs.GameState {
	case spltypes.GameStateReady:
		ballsearch.Recenter(m.grid)
	case spltypes.GameStatePlaying:
		transition := ballsearch.SetPlayTransition{}
		if gs.SetPlay != m.prevSetPlay && gs.SetPlay != spltypes.SetPlayNone {
			transition = ballsearch.SetPlayTransition{Occurred: true, Kind: gs.SetPlay, KickingTeam: gs.KickingTeam}
		}
		sighter := ballsearch.ActiveSighter{
			Pose:       ownPose,
			HeadYaw:    headYaw,
			BallAge:    ownBall.Age,
			SawBallNow: ownBall.Found,
			BallAbsPos: ownPose.ToWorld(ownBall.Position),
		}
		ballsearch.Update(m.grid, []ballsearch.ActiveSighter{sighter}, ballsearch.ThrowInEvent{}, transition, now, m.params)
	}
	m.prevSetPlay = gs.SetPlay
	cycle.Set(r, slotBallSearchMap, m.grid)
}

// worldStateModule wraps RegionFlagsProvider (§2 "WorldState"): the
// hysteretic ball/robot field-region booleans, rebuilt each tick from the
// team ball belief and own pose.
type worldStateModule struct {
	provider           *worldstate.RegionFlagsProvider
	lastTeamBallUpdate time.Time
}

func (m *worldStateModule) Name() string         { return "worldstate" }
func (m *worldStateModule) Production() string   { return slotRegionFlags }
func (m *worldStateModule) Default() interface{} { return worldstate.RegionFlags{} }
func (m *worldStateModule) Dependencies() []string {
	return []string{slotNow, slotGameControllerState, slotTeamBall, slotOwnPose, slotOwnPoseValid, slotField}
}

func (m *worldStateModule) Cycle(r *cycle.Registry) {
	now := cycle.Get[time.Time](r, slotNow)
	gs := cycle.Get[spltypes.GameControllerState](r, slotGameControllerState)
	tb := cycle.Get[teamball.Result](r, slotTeamBall)
	ownPose := cycle.Get[spltypes.Pose](r, slotOwnPose)
	ownPoseValid := cycle.Get[bool](r, slotOwnPoseValid)
	field := cycle.Get[spltypes.FieldDimensions](r, slotField)

	if tb.Found {
		m.lastTeamBallUpdate = now
	}

	ball := spltypes.TeamBallModel{
		BallType:        tb.Type,
		Seen:            tb.Seen,
		Found:           tb.Found,
		InsideField:     tb.InsideField,
		AbsPosition:     tb.Position,
		RelPosition:     ownPose.ToLocal(tb.Position),
		Velocity:        tb.Velocity,
		TimeLastUpdated: m.lastTeamBallUpdate,
	}

	cycle.Set(r, slotRegionFlags, m.provider.Update(now, gs, ball, ownPose, ownPoseValid, field))
}

// roleModule wraps PlayingRoleProvider (§4.7); its hysteresis state
// (lastAssignment, lastStrikerNumber, revolutionStarted) lives in the
// Provider, plus one module-local field tracking how long the team ball has
// gone unseen.
type roleModule struct {
	ownPlayer           int
	provider            *role.Provider
	params              role.Params
	lastTeamBallUpdate  time.Time
	hadTeamBallLastTick bool
}

func (m *roleModule) Name() string         { return "role" }
func (m *roleModule) Production() string   { return slotRoleAssignments }
func (m *roleModule) Default() interface{} { return map[int]spltypes.Role{} }
func (m *roleModule) Dependencies() []string {
	return []string{slotNow, slotGameControllerState, slotTeamBall, slotTeamPlayers, slotOwnPose, slotOwnPoseValid, slotOwnBallState, slotField}
}

func (m *roleModule) Cycle(r *cycle.Registry) {
	now := cycle.Get[time.Time](r, slotNow)
	gs := cycle.Get[spltypes.GameControllerState](r, slotGameControllerState)
	tb := cycle.Get[teamball.Result](r, slotTeamBall)
	teamPlayers := cycle.Get[[]spltypes.TeamPlayer](r, slotTeamPlayers)
	ownPose := cycle.Get[spltypes.Pose](r, slotOwnPose)
	ownPoseValid := cycle.Get[bool](r, slotOwnPoseValid)
	ownBall := cycle.Get[spltypes.BallState](r, slotOwnBallState)
	field := cycle.Get[spltypes.FieldDimensions](r, slotField)

	if tb.Found {
		m.lastTeamBallUpdate = now
	}

	previousRole := m.provider.LastAssignment()
	wasStriker := previousRole[m.ownPlayer] == spltypes.RoleStriker

	model := worldstate.DefaultWalkModel()
	players := make([]role.PlayerState, 0, len(teamPlayers)+1)
	players = append(players, role.PlayerState{
		PlayerNumber:           m.ownPlayer,
		IsSelf:                 true,
		Pose:                   ownPose,
		IsPoseValid:            ownPoseValid,
		DistanceToOwnGoal:      ownPose.Position.Dist(field.OwnGoalCenter()),
		TimeToReachBall:        worldstate.TimeToReachBall(ownPose, tb.Position, model),
		TimeToReachBallStriker: worldstate.TimeToReachBall(ownPose, tb.Position, model),
		PreviousRole:           previousRole[m.ownPlayer],
		WasBishop:              previousRole[m.ownPlayer] == spltypes.RoleBishop,
	})
	for _, tp := range teamPlayers {
		players = append(players, role.PlayerState{
			PlayerNumber:           tp.PlayerNumber,
			Penalized:              tp.Penalized,
			Fallen:                 tp.Fallen,
			Pose:                   tp.Pose,
			IsPoseValid:            tp.IsPoseValid,
			DistanceToOwnGoal:      tp.Pose.Position.Dist(field.OwnGoalCenter()),
			TimeToReachBall:        tp.TimeWhenReachBall,
			TimeToReachBallStriker: tp.TimeWhenReachBallStriker,
			PreviousRole:           tp.CurrentlyPerformingRole,
			WasBishop:              tp.CurrentlyPerformingRole == spltypes.RoleBishop,
			RoleAssignments:        tp.RoleAssignments,
		})
	}

	in := role.Input{
		Now:                         now,
		GameState:                   gs,
		BallType:                    tb.Type,
		TimeSinceLastTeamBallUpdate: now.Sub(m.lastTeamBallUpdate),
		OwnPlayerNumber:             m.ownPlayer,
		OwnBallConfident:            ownBall.Confident,
		TeamBallFound:               tb.Found,
		KickingSetPlayActive:        gs.SetPlay != spltypes.SetPlayNone && gs.KickingTeam,
		TeamBallPosition:            tb.Position,
	}

	assigned := m.provider.Assign(in, players, m.params)
	in.RevolutionJustStarted = !wasStriker && assigned[m.ownPlayer] == spltypes.RoleStriker
	if in.RevolutionJustStarted {
		assigned = m.provider.Assign(in, players, m.params)
	}
	cycle.Set(r, slotRoleAssignments, assigned)
}

// searcherModule wraps SearcherPositionProvider (§4.6): every robot
// currently holding SEARCHER runs the same deterministic partition/
// assignment over the shared ball-search map and team roster, so
// independent robots converge on the same area split without negotiation.
type searcherModule struct {
	ownPlayer int
	params    searcher.Params
}

func (m *searcherModule) Name() string         { return "searcher" }
func (m *searcherModule) Production() string   { return slotSearchPose }
func (m *searcherModule) Default() interface{} { return spltypes.Pose{} }
func (m *searcherModule) Dependencies() []string {
	return []string{slotBallSearchMap, slotRoleAssignments, slotTeamPlayers, slotOwnPose, slotField}
}

func (m *searcherModule) Cycle(r *cycle.Registry) {
	grid := cycle.Get[*spltypes.BallSearchMap](r, slotBallSearchMap)
	assignments := cycle.Get[map[int]spltypes.Role](r, slotRoleAssignments)
	teamPlayers := cycle.Get[[]spltypes.TeamPlayer](r, slotTeamPlayers)
	ownPose := cycle.Get[spltypes.Pose](r, slotOwnPose)
	field := cycle.Get[spltypes.FieldDimensions](r, slotField)

	if grid == nil || assignments[m.ownPlayer] != spltypes.RoleSearcher {
		cycle.Set(r, slotSearchPose, ownPose)
		return
	}

	var searchers []searcher.Searcher
	for num, ro := range assignments {
		if ro != spltypes.RoleSearcher {
			continue
		}
		if num == m.ownPlayer {
			searchers = append(searchers, searcher.Searcher{PlayerNumber: num, Pose: ownPose})
			continue
		}
		for _, tp := range teamPlayers {
			if tp.PlayerNumber == num {
				searchers = append(searchers, searcher.Searcher{PlayerNumber: num, Pose: tp.Pose, Fallen: tp.Fallen})
			}
		}
	}

	seeds := searcher.Seeds(len(searchers), field)
	areas := searcher.BuildAreas(grid, seeds)
	assignment := searcher.AssignSearchersToAreas(searchers, areas, m.params)

	areaIndex, ok := assignment[m.ownPlayer]
	if !ok {
		cycle.Set(r, slotSearchPose, ownPose)
		return
	}
	cell, ok := searcher.BestCellInArea(grid, areas, areaIndex, m.params)
	if !ok {
		cycle.Set(r, slotSearchPose, ownPose)
		return
	}
	cycle.Set(r, slotSearchPose, searcher.StandOffPose(ownPose, cell.Position, m.params))
}

// actionModule dispatches the own robot's elected role to the matching
// action-provider (§4.8).
type actionModule struct {
	ownPlayer    int
	params       action.Params
	previousFoot spltypes.Kickable
	wasScoring   bool
	cornerSign   float64
}

func (m *actionModule) Name() string         { return "action" }
func (m *actionModule) Production() string   { return slotActionResult }
func (m *actionModule) Default() interface{} { return action.Result{} }
func (m *actionModule) Dependencies() []string {
	return []string{slotNow, slotGameControllerState, slotRoleAssignments, slotTeamBall, slotOwnPose, slotField, slotTeamPlayers, slotSearchPose}
}

func (m *actionModule) Cycle(r *cycle.Registry) {
	now := cycle.Get[time.Time](r, slotNow)
	gs := cycle.Get[spltypes.GameControllerState](r, slotGameControllerState)
	assignments := cycle.Get[map[int]spltypes.Role](r, slotRoleAssignments)
	tb := cycle.Get[teamball.Result](r, slotTeamBall)
	ownPose := cycle.Get[spltypes.Pose](r, slotOwnPose)
	field := cycle.Get[spltypes.FieldDimensions](r, slotField)
	teamPlayers := cycle.Get[[]spltypes.TeamPlayer](r, slotTeamPlayers)
	searchPose := cycle.Get[spltypes.Pose](r, slotSearchPose)

	ownRole := assignments[m.ownPlayer]

	var result action.Result
	switch ownRole {
	case spltypes.RoleStriker:
		in := action.StrikerInput{Pose: ownPose, BallPosition: tb.Position, Field: field, Teammates: teamPlayers, PreviousFoot: m.previousFoot}
		result = action.StrikerAction(in, m.params, m.wasScoring)
		m.wasScoring = result.Type == action.TypeKickIntoGoal
		if result.Kickable != spltypes.KickableNot {
			m.previousFoot = result.Kickable
		}
	case spltypes.RoleKeeper:
		result = action.KeeperAction(keeperInput(ownPose, tb, field), m.params)
	case spltypes.RoleReplacementKeeper:
		result = action.ReplacementKeeperAction(keeperInput(ownPose, tb, field), m.params)
	case spltypes.RoleDefender:
		result = action.DefendingPositionAction(action.DefendingInput{BallPosition: tb.Position, Field: field}, m.params)
	case spltypes.RoleBishop:
		result = action.BishopPositionAction(tb.Position, field, false, m.params)
	case spltypes.RoleSupportStriker:
		result = action.SupportingPositionAction(strikerPose(assignments, teamPlayers, ownPose), tb.Position, field.OpponentGoalCenter(), m.params)
	case spltypes.RoleLoser:
		result = action.LoserPositionAction(tb.Position, field.OwnGoalCenter(), m.params)
	case spltypes.RoleSearcher:
		result = action.Result{Valid: true, KickPose: searchPose, Type: action.TypeWalkTo}
	default:
		result = action.Result{}
	}

	if gs.GamePhase == spltypes.GamePhasePenaltyShoot {
		in := action.PenaltyStrikerInput{GameState: gs, Field: field, BallPosition: tb.Position, CornerSign: m.cornerSign}
		if pr := action.PenaltyStrikerAction(in, m.params); pr.Valid {
			result = pr
		}
	} else if ownRole == spltypes.RoleStriker && gs.SetPlay != spltypes.SetPlayNone && gs.KickingTeam {
		in := action.SetPlayStrikerInput{GameState: gs, BallPosition: tb.Position, Target: field.OpponentGoalCenter(), SetPlayStartedAt: gs.SetPlayChanged, Now: now}
		if sr := action.SetPlayStrikerAction(in, m.params); sr.Valid {
			result = sr
		}
	}

	cycle.Set(r, slotActionResult, result)
}

func keeperInput(pose spltypes.Pose, tb teamball.Result, field spltypes.FieldDimensions) action.KeeperInput {
	return action.KeeperInput{Pose: pose, BallPosition: tb.Position, BallVelocity: tb.Velocity, Field: field}
}

// strikerPose finds the current striker's pose among the teammate roster,
// falling back to own pose when no teammate currently holds the role
// (e.g. this robot is itself about to become the striker next tick).
func strikerPose(assignments map[int]spltypes.Role, teamPlayers []spltypes.TeamPlayer, fallback spltypes.Pose) spltypes.Pose {
	for num, ro := range assignments {
		if ro != spltypes.RoleStriker {
			continue
		}
		for _, tp := range teamPlayers {
			if tp.PlayerNumber == num {
				return tp.Pose
			}
		}
	}
	return fallback
}

// obstacleModule wraps TeamObstacleFilter (§4.10).
type obstacleModule struct {
	ownPlayer int
	params    obstacle.Params
}

func (m *obstacleModule) Name() string         { return "obstacle" }
func (m *obstacleModule) Production() string   { return slotTeamObstacles }
func (m *obstacleModule) Default() interface{} { return []spltypes.TeamObstacle(nil) }
func (m *obstacleModule) Dependencies() []string {
	return []string{slotTeamPlayers, slotOwnPose, slotField, slotLocalObstacles}
}

func (m *obstacleModule) Cycle(r *cycle.Registry) {
	teamPlayers := cycle.Get[[]spltypes.TeamPlayer](r, slotTeamPlayers)
	ownPose := cycle.Get[spltypes.Pose](r, slotOwnPose)
	field := cycle.Get[spltypes.FieldDimensions](r, slotField)
	local := cycle.Get[obstacle.LocalInput](r, slotLocalObstacles)

	poi := spltypes.Derive(field)
	goalPosts := []spltypes.P2{poi.OwnLeftPost, poi.OwnRightPost, poi.OpponentLeftPost, poi.OpponentRightPost}

	sources := make([]obstacle.TeammateObstacles, 0, len(teamPlayers)+1)
	sources = append(sources, obstacle.TeammateObstacles{Pose: ownPose, Obstacles: obstacle.Filter(local), IsSelf: true})
	for _, tp := range teamPlayers {
		sources = append(sources, obstacle.TeammateObstacles{Pose: tp.Pose, Obstacles: tp.LocalObstacles})
	}

	cycle.Set(r, slotTeamObstacles, obstacle.TeamFilter(sources, goalPosts, ownPose.Position, m.params))
}

// behaviorModule wraps BehaviorModule (§4.9): materializes the action
// result into an ActionCommand and applies the remote override.
type behaviorModule struct {
	ownPlayer int
	params    behavior.Params
	override  *behavior.RemoteOverride
}

func (m *behaviorModule) Name() string         { return "behavior" }
func (m *behaviorModule) Production() string   { return slotActionCommand }
func (m *behaviorModule) Default() interface{} { return spltypes.Stand() }
func (m *behaviorModule) Dependencies() []string {
	return []string{slotNow, slotGameControllerState, slotRoleAssignments, slotActionResult, slotTeamBall, slotOwnFallen, slotOwnFallenSince}
}

func (m *behaviorModule) Cycle(r *cycle.Registry) {
	now := cycle.Get[time.Time](r, slotNow)
	gs := cycle.Get[spltypes.GameControllerState](r, slotGameControllerState)
	assignments := cycle.Get[map[int]spltypes.Role](r, slotRoleAssignments)
	result := cycle.Get[action.Result](r, slotActionResult)
	tb := cycle.Get[teamball.Result](r, slotTeamBall)
	fallen := cycle.Get[bool](r, slotOwnFallen)
	fallenSince := cycle.Get[time.Time](r, slotOwnFallenSince)

	in := behavior.Input{
		Now:           now,
		GameState:     gs,
		Role:          assignments[m.ownPlayer],
		Penalized:     gs.Penalty != spltypes.PenaltyNone,
		Fallen:        fallen,
		FallenSince:   fallenSince,
		ActionResult:  result,
		BallPosition:  tb.Position,
		BallConfident: tb.Type == spltypes.BallTypeSelf,
		TickStart:     now,
	}

	cmd := behavior.Compose(in, m.params)
	cmd = m.override.Apply(cmd, in)
	cycle.Set(r, slotActionCommand, cmd)
}
