package main

import (
	"time"

	"github.com/hulks-go/splbrain/internal/action"
	"github.com/hulks-go/splbrain/internal/ballsearch"
	"github.com/hulks-go/splbrain/internal/behavior"
	"github.com/hulks-go/splbrain/internal/config"
	"github.com/hulks-go/splbrain/internal/obstacle"
	"github.com/hulks-go/splbrain/internal/role"
	"github.com/hulks-go/splbrain/internal/searcher"
	"github.com/hulks-go/splbrain/internal/spltypes"
	"github.com/hulks-go/splbrain/internal/teamball"
)

// moduleParams bundles every package's own Params type, each addressed by
// the module that owns it. A handful of fields come straight from the
// hot-reloadable config.Tuning; the rest are literals carried over from the
// packages' own test fixtures (internal/action/action_test.go,
// internal/obstacle/obstacle_test.go, internal/behavior/behavior_test.go),
// which is as close to an authoritative tuning as a simulator-free robot
// process has.
type moduleParams struct {
	teamBall   teamball.Params
	ballSearch ballsearch.Params
	searcher   searcher.Params
	role       role.Params
	action     action.Params
	obstacle   obstacle.Params
	behavior   behavior.Params
}

func buildParams(t config.Tuning) moduleParams {
	return moduleParams{
		teamBall: teamball.Params{
			MaxAddAge:                 t.BallSightingMaxAge,
			MaxBallVelocity:           2.0,
			MinWaitAfterJumpToAddBall: 500 * time.Millisecond,
			MinRemoveAge:              2 * t.BallSightingMaxAge,
			MaxCompatibilityDistance:  t.BallClusterDistance,
			InsideFieldTolerance:      0.5,
		},
		ballSearch: ballsearch.Params{
			MaxBallAge:                  t.BallSightingMaxAge,
			ConfidentBallMultiplier:     2.0,
			MinProbOnUpvote:             0.05,
			MaxBallDetectionRange:       3.0,
			FovHalfAngle:                t.BallSearchFOVHalfAngle,
			ConvolutionKernelCoreWeight: 20,
		},
		searcher: defaultSearcherParams(),
		role: role.Params{
			ShortTermBallSearchDuration:               4 * time.Second,
			LoserDuration:                              2 * time.Second,
			KeeperInGoalDistanceThreshold:              1.0,
			KeeperTimeToReachBallPenalty:                3 * time.Second,
			PlayerOneCanBecomeStriker:                   false,
			PlayerOneDistanceThreshold:                   1.5,
			AssignBishop:                                 true,
			AssignBishopWithLessThanFourFieldPlayers:    false,
			BishopBallXThreshold:                         0,
			BishopBallXThresholdSticky:                   0.5,
			AllowFastRoleOverride:                        true,
			MaxFastRoleOverrideDuration:                   t.RevolutionGraceInterval,
			UseTeamRole:                                   true,
			StrikeOwnBall:                                 true,
		},
		action: action.Params{
			ScoringRegionHysteresisEnter: 0.5,
			ScoringRegionHysteresisExit:  0.6,
			PassShellMin:                 1.5,
			PassShellMax:                 3.0,
			LastTargetBonus:              0.3,
			KickOffsetBehindBall:         0.15,
			FootStickyMinDelta:           0.05,
			ForcedFoot:                   spltypes.KickableNot,
			GenuflectTimeToImpact:        500 * time.Millisecond,
			GenuflectBallSpeed:           1.0,
			AimAtCornerFactor:            0.8,
			PenaltySpotDistance:          0.3,
			SetPlayNoKickWindow:          5 * time.Second,
			DefendingEllipseA:            1.5,
			DefendingEllipseB:            1.0,
			BishopOffset:                 0,
			AggressiveBishopOffset:       1.0,
			SupportDistanceToBall:        1.0,
			SupportRepulsion:             0.5,
			LoserBackoffDistance:         0.5,
		},
		obstacle: obstacle.Params{
			MergeRadiusSquared:  0.25,
			SelfExclusionRadius: 0.3,
		},
		behavior: behavior.Params{
			FallenStandUpDelay:  2 * time.Second,
			LookAroundPeriod:    4 * time.Second,
			LookAroundAmplitude: 0.5,
		},
	}
}

// defaultSearcherParams starts from searcher.DefaultParams and fills in the
// two detection-range bounds StandOffPose needs, which DefaultParams leaves
// zero since §4.6's own cost formula doesn't reference them.
func defaultSearcherParams() searcher.Params {
	p := searcher.DefaultParams()
	p.MinBallDetectionRange = 1.0
	p.MaxBallDetectionRange = 3.0
	return p
}

// defaultFieldDimensions is the standard SPL field geometry (§3), used
// until a real field-dimension source (e.g. a robot config file shared with
// the vision pipeline) is wired in.
func defaultFieldDimensions() spltypes.FieldDimensions {
	return spltypes.FieldDimensions{
		FieldLength:           9,
		FieldWidth:            6,
		LineWidth:             0.05,
		CenterCircleDiameter:  1.5,
		PenaltyAreaLength:     1.2,
		PenaltyAreaWidth:      3.8,
		GoalInnerWidth:        1.5,
		GoalPostDiameter:      0.1,
		BallDiameter:          0.1,
		PenaltyMarkerDistance: 1.3,
		BorderStripWidth:      0.7,
	}
}
