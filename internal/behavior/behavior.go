// Package behavior implements the BehaviorModule composer (§4.9): it turns
// the current role's action-provider Result, the referee state, and a few
// small standalone units (stand up, look around, active vision) into one
// ActionCommand, then applies the lock-protected remote override.
package behavior

import (
	"sync"
	"time"

	"github.com/hulks-go/splbrain/internal/action"
	"github.com/hulks-go/splbrain/internal/spltypes"
)

// Params bounds the composer's own decisions (the thresholds §4.9 leaves to
// the implementation rather than to the upstream role/action providers).
type Params struct {
	FallenStandUpDelay time.Duration
	LookAroundPeriod   time.Duration
	LookAroundAmplitude float64
}

// Input is everything Compose needs for one tick. ActionResult is whichever
// role-specific provider (internal/action) already ran for in.Role; Compose
// does not pick among roles, it only materializes the one result handed to
// it alongside the stand-up/penalized/remote-override precedence §4.9
// names.
type Input struct {
	Now            time.Time
	GameState      spltypes.GameControllerState
	Role           spltypes.Role
	Penalized      bool
	Fallen         bool
	FallenSince    time.Time
	ActionResult   action.Result
	BallPosition   spltypes.P2
	BallConfident  bool
	TickStart      time.Time // not read by Compose; lookAround takes its phase from Now
}

// Compose implements §4.9's per-tick dispatch: penalized/fallen-too-long
// first, otherwise the role's action result materialised into a body plus
// a head unit (active vision when the ball is confidently seen, a slow
// look-around sweep otherwise).
func Compose(in Input, p Params) spltypes.ActionCommand {
	if in.Penalized {
		return spltypes.Penalized()
	}
	if in.Fallen {
		if in.Now.Sub(in.FallenSince) >= p.FallenStandUpDelay {
			return standUp()
		}
		return spltypes.Stand()
	}

	cmd := materialize(in.ActionResult)
	cmd = cmd.CombineHead(headUnit(in, p))
	return cmd
}

// standUp is the dedicated getup unit (§4.9 "emit a dedicated stand-up...
// action").
func standUp() spltypes.ActionCommand {
	return spltypes.ActionCommand{Body: spltypes.Body{Tag: spltypes.BodyStandUp}, Head: spltypes.Head{Tag: spltypes.HeadBody}}
}

// materialize turns one role-action Result into the external ActionCommand
// body, choosing among the small units §4.9 names: walkToBallAndKick when
// the ball is kickable, keeper when the result is a block/genuflect, and
// walkToPose otherwise.
func materialize(r action.Result) spltypes.ActionCommand {
	if !r.Valid {
		return spltypes.Stand()
	}

	switch r.Type {
	case action.TypeGenuflect:
		return keeperUnit(spltypes.KeeperMotionGenuflect, r)
	case action.TypeBlockGoal:
		return keeperUnit(spltypes.KeeperMotionStand, r)
	case action.TypeKickIntoGoal, action.TypeDribbleIntoGoal, action.TypePass:
		if r.Kickable != spltypes.KickableNot {
			return walkToBallAndKick(r)
		}
		return walkToPose(r.KickPose)
	default:
		return walkToPose(r.KickPose)
	}
}

func walkToPose(pose spltypes.Pose) spltypes.ActionCommand {
	return spltypes.ActionCommand{
		Body: spltypes.Body{Tag: spltypes.BodyWalk, Target: pose, Mode: spltypes.WalkModeAbsolute},
		Head: spltypes.Head{Tag: spltypes.HeadBody},
	}
}

func walkToBallAndKick(r action.Result) spltypes.ActionCommand {
	return spltypes.ActionCommand{
		Body: spltypes.Body{
			Tag:        spltypes.BodyKick,
			KickDst:    r.Target,
			KickType:   r.KickType,
			InWalkKick: r.Kickable,
		},
		Head: spltypes.Head{Tag: spltypes.HeadBody},
	}
}

func keeperUnit(motion spltypes.KeeperMotion, r action.Result) spltypes.ActionCommand {
	return spltypes.ActionCommand{
		Body: spltypes.Body{Tag: spltypes.BodyKeeper, Motion: motion, Target: r.KickPose},
		Head: spltypes.Head{Tag: spltypes.HeadBody},
	}
}

// headUnit implements the activeVision/lookAround pair (§4.9): look at the
// ball when it is confidently seen, otherwise sweep yaw on a fixed period
// to search for it.
func headUnit(in Input, p Params) spltypes.Head {
	if in.BallConfident {
		return activeVision(in.BallPosition)
	}
	return lookAround(in.Now, p)
}

func activeVision(ball spltypes.P2) spltypes.Head {
	return spltypes.Head{Tag: spltypes.HeadLookAt, LookAtPosition: ball}
}

func lookAround(now time.Time, p Params) spltypes.Head {
	if p.LookAroundPeriod <= 0 {
		return spltypes.Head{Tag: spltypes.HeadBody}
	}
	phase := float64(now.UnixNano()%int64(p.LookAroundPeriod)) / float64(p.LookAroundPeriod)
	yaw := p.LookAroundAmplitude * sawtooth(phase)
	return spltypes.Head{Tag: spltypes.HeadAngles, Yaw: yaw}
}

// sawtooth maps phase in [0,1) to a triangle wave in [-1,1], used to sweep
// the head back and forth rather than snapping to one extreme.
func sawtooth(phase float64) float64 {
	if phase < 0.5 {
		return -1 + 4*phase
	}
	return 3 - 4*phase
}

// RemoteOverride holds the lock-protected remoteActionCommand parameter an
// external tool may install (§4.9 "Remote override"). Zero value disabled.
type RemoteOverride struct {
	mu      sync.Mutex
	enabled bool
	command spltypes.ActionCommand
}

// Set installs or clears the remote override.
func (r *RemoteOverride) Set(enabled bool, cmd spltypes.ActionCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
	r.command = cmd
}

// Apply replaces cmd with the installed remote override when it is enabled
// and the robot is in PLAYING, unpenalized, and not fallen (§4.9's own
// gating condition, applied verbatim).
func (r *RemoteOverride) Apply(cmd spltypes.ActionCommand, in Input) spltypes.ActionCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return cmd
	}
	if in.GameState.GameState != spltypes.GameStatePlaying || in.Penalized || in.Fallen {
		return cmd
	}
	return r.command
}
