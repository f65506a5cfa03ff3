// Command splbrain runs the robot's decision-making process: GameController
// and team-message I/O threads, the tick-scheduled module graph, and an
// optional debug/telemetry HTTP server (§5 "three threads").
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hulks-go/splbrain/internal/ballsearch"
	"github.com/hulks-go/splbrain/internal/behavior"
	"github.com/hulks-go/splbrain/internal/config"
	"github.com/hulks-go/splbrain/internal/cycle"
	"github.com/hulks-go/splbrain/internal/gamecontroller"
	"github.com/hulks-go/splbrain/internal/role"
	"github.com/hulks-go/splbrain/internal/spltypes"
	"github.com/hulks-go/splbrain/internal/teamball"
	"github.com/hulks-go/splbrain/internal/teammsg"
	"github.com/hulks-go/splbrain/internal/telemetry"
	"github.com/hulks-go/splbrain/internal/worldstate"
)

func main() {
	var (
		configPath  = flag.String("config", "splbrain.yaml", "path to tuning config (yaml)")
		playerNum   = flag.Int("player", 1, "own SPL player number (1-7)")
		teamNum     = flag.Int("team", 0, "own SPL team number")
		debugAddr   = flag.String("debug-addr", ":8081", "debug/telemetry HTTP listen address")
		teamMsgPort = flag.Int("teammsg-port", 10000, "team-messaging UDP port")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("component", "splbrain").Logger()

	if err := run(*configPath, *playerNum, uint8(*teamNum), *teamMsgPort, *debugAddr, log); err != nil {
		log.Fatal().Err(err).Msg("splbrain: exited with error")
	}
}

func run(configPath string, playerNum int, teamNum uint8, teamMsgPort int, debugAddr string, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgSource, err := config.Load(configPath, log)
	if err != nil {
		return err
	}
	tuning := cfgSource.Param().Load()
	params := buildParams(tuning)
	field := defaultFieldDimensions()

	gcClient, err := gamecontroller.NewClient(tuning.GameControllerPort, teamNum, tuning.GameControllerStaleAfter, log.With().Str("thread", "gamecontroller").Logger())
	if err != nil {
		return err
	}
	defer gcClient.Close()

	teamClient, err := teammsg.NewClient(teamMsgPort, uint8(playerNum), teamNum, tuning.TeamMessageMaxPerSecond, tuning.TeamPlayerStaleAfter, true, log.With().Str("thread", "teammsg").Logger())
	if err != nil {
		return err
	}
	defer teamClient.Close()

	override := &behavior.RemoteOverride{}
	modules := buildModules(playerNum, field, params, override)
	engine, err := cycle.NewEngine(modules)
	if err != nil {
		return err
	}
	log.Info().Strs("order", engine.Order()).Msg("splbrain: module graph resolved")

	router := telemetry.NewRouter(telemetry.Config{ListenAddr: debugAddr}, override, engineSnapshot{engine: engine}, log.With().Str("thread", "telemetry").Logger())

	var sensors sensorSource = nopSensors{}
	target := field.OpponentGoalCenter()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := gcClient.Run(gctx); err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := teamClient.Run(gctx); err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := telemetry.Run(debugAddr, router, log.With().Str("thread", "telemetry").Logger()); err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})
	group.Go(func() error {
		runTicks(gctx, engine, gcClient, teamClient, sensors, field, target, tuning.TickPeriod, log)
		return nil
	})

	err = group.Wait()
	log.Info().Msg("splbrain: shutdown complete")
	return err
}

// runTicks is the tick thread (§5): it seeds this cycle's external inputs
// from the I/O-thread-staged buffers and the sensor boundary, runs the
// module graph once, logs any per-module panics, and records the tick
// duration to telemetry. It
// never blocks on I/O — Sample/TeamPlayers/sensor reads are always
// non-blocking snapshots of state staged elsewhere.
func runTicks(ctx context.Context, engine *cycle.Engine, gcClient *gamecontroller.Client, teamClient *teammsg.Client, sensors sensorSource, field spltypes.FieldDimensions, target spltypes.P2, period time.Duration, log zerolog.Logger) {
	cycle.RunLoop(ctx, period, log, func(now time.Time, cycleTime time.Duration) {
		raw, fresh := gcClient.Sample(now)
		gs := raw.GameControllerState
		if !fresh {
			fallback, penalized := gcClient.ButtonFallbackState()
			gs.GameState = buttonStateToGameState(fallback)
			if penalized {
				gs.Penalty = spltypes.PenaltyManual
			}
		}

		teamPlayers := teamClient.TeamPlayers(now)

		pose, poseValid := sensors.Pose(now)
		ball := sensors.Ball(now)
		headYaw := sensors.HeadYaw(now)
		fallen, fallenSince := sensors.Fallen(now)
		local := sensors.LocalObstacles(now, pose, ball, target)

		engine.Seed(slotNow, now)
		engine.Seed(slotGameControllerState, gs)
		engine.Seed(slotTeamPlayers, teamPlayers)
		engine.Seed(slotField, field)
		engine.Seed(slotOwnPose, pose)
		engine.Seed(slotOwnPoseValid, poseValid)
		engine.Seed(slotOwnBallState, ball)
		engine.Seed(slotOwnHeadYaw, headYaw)
		engine.Seed(slotOwnFallen, fallen)
		engine.Seed(slotOwnFallenSince, fallenSince)
		engine.Seed(slotLocalObstacles, local)

		start := time.Now()
		for _, err := range engine.RunCycle() {
			log.Error().Err(err).Msg("splbrain: module panicked, production reset to default")
		}
		telemetry.RecordTick(time.Since(start))

		if assignments, ok := engine.Snapshot()[slotRoleAssignments].(map[int]spltypes.Role); ok {
			for num, ro := range assignments {
				telemetry.SetRoleAssignment(num, ro)
			}
		}
	})
}

// buttonStateToGameState mirrors the GameController wire-state mapping
// (internal/gamecontroller's own unexported wireToGameState) for the
// button-fallback state machine's output, which is already a WireGameState.
func buttonStateToGameState(w gamecontroller.WireGameState) spltypes.GameState {
	switch w {
	case gamecontroller.WireStateReady:
		return spltypes.GameStateReady
	case gamecontroller.WireStateSet:
		return spltypes.GameStateSet
	case gamecontroller.WireStatePlaying:
		return spltypes.GameStatePlaying
	case gamecontroller.WireStateFinished:
		return spltypes.GameStateFinished
	default:
		return spltypes.GameStateInitial
	}
}

func buildModules(playerNum int, field spltypes.FieldDimensions, p moduleParams, override *behavior.RemoteOverride) []cycle.Module {
	return []cycle.Module{
		&teamBallModule{ownPlayer: playerNum, filter: teamball.NewFilter(p.teamBall), params: p.teamBall},
		&ballSearchModule{grid: ballsearch.NewMap(field), params: p.ballSearch},
		&worldStateModule{provider: worldstate.NewRegionFlagsProvider(worldstate.DefaultRegionFlagsParams())},
		&roleModule{ownPlayer: playerNum, provider: role.New(), params: p.role},
		&searcherModule{ownPlayer: playerNum, params: p.searcher},
		&actionModule{ownPlayer: playerNum, params: p.action, cornerSign: cornerSignFor(playerNum)},
		&obstacleModule{ownPlayer: playerNum, params: p.obstacle},
		&behaviorModule{ownPlayer: playerNum, params: p.behavior, override: override},
	}
}

// cornerSignFor picks a deterministic, stable penalty-corner aim side from
// the player's own number rather than negotiating it over the team channel
// or tracking history: a player always aims the same way, which is enough
// to satisfy PenaltyStrikerAction's need for a persisted ±1 pick.
func cornerSignFor(playerNum int) float64 {
	if playerNum%2 == 0 {
		return -1
	}
	return 1
}
