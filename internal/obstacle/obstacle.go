// Package obstacle implements ObstacleFilter and TeamObstacleFilter
// (§4.10): local sensor fusion into a per-robot obstacle list, and
// cross-robot fusion of those lists into one team-wide obstacle set.
package obstacle

import (
	"github.com/hulks-go/splbrain/internal/spltypes"
)

// LocalInput bundles the raw per-tick sensor observations ObstacleFilter
// fuses into one local obstacle list (§4.10 "Local obstacle list").
type LocalInput struct {
	Sonar          []spltypes.Obstacle // optional; empty when sonar is absent
	FootBumper     []spltypes.Obstacle
	RobotDetections []spltypes.Obstacle
	Ball           *spltypes.Obstacle // only included when on the wrong side of the robot relative to the target
}

// Filter builds the local obstacle list (§4.10). Unlike TeamFilter there is
// no merging to do here: the local list is simply the union of whatever
// sensors reported this tick.
func Filter(in LocalInput) []spltypes.Obstacle {
	out := make([]spltypes.Obstacle, 0, len(in.Sonar)+len(in.FootBumper)+len(in.RobotDetections)+1)
	out = append(out, in.Sonar...)
	out = append(out, in.FootBumper...)
	out = append(out, in.RobotDetections...)
	if in.Ball != nil {
		out = append(out, *in.Ball)
	}
	return out
}

// OnWrongSide reports whether the ball lies behind the robot (negative local
// x) while the target lies ahead of it (positive local x), so it should be
// treated as something to walk around rather than through
// (§4.10 "the ball (when on the wrong side of the robot relative to the
// target)").
func OnWrongSide(robotPose spltypes.Pose, ball, target spltypes.P2) bool {
	toTarget := robotPose.ToLocal(target)
	toBall := robotPose.ToLocal(ball)
	return toBall.X < 0 && toTarget.X > 0
}

// TeammateObstacles is one unpenalized teammate's contribution to team
// fusion: its local obstacle list plus the pose needed to convert it to
// field frame.
type TeammateObstacles struct {
	Pose       spltypes.Pose
	Obstacles  []spltypes.Obstacle
	IsSelf     bool
}

// Params bounds team fusion.
type Params struct {
	MergeRadiusSquared float64
	SelfExclusionRadius float64
}

// TeamFilter fuses local to field-frame obstacles across the team (§4.10
// "Team fusion"): greedy nearest-candidate merge by mapToMergedType, goal
// posts always injected from the field map (teammate goal-post
// observations dropped), and the own robot excluded from its own obstacle
// set.
func TeamFilter(sources []TeammateObstacles, goalPosts []spltypes.P2, ownPosition spltypes.P2, p Params) []spltypes.TeamObstacle {
	merged := make([]spltypes.TeamObstacle, 0, 16)

	for _, src := range sources {
		for _, local := range src.Obstacles {
			if local.Type == spltypes.ObstacleGoalPost {
				continue // injected from the field map below, not from observations
			}

			abs := src.Pose.ToWorld(local.RelativePosition)
			if isSelf(abs, ownPosition, local.Type, p) {
				continue
			}

			merged = mergeOne(merged, spltypes.TeamObstacle{AbsPosition: abs, Radius: local.Radius, Type: local.Type}, p)
		}
	}

	for _, post := range goalPosts {
		merged = append(merged, spltypes.TeamObstacle{AbsPosition: post, Radius: 0.05, Type: spltypes.ObstacleGoalPost})
	}

	return merged
}

func isSelf(abs, ownPosition spltypes.P2, t spltypes.ObstacleType, p Params) bool {
	switch t {
	case spltypes.ObstacleTeamRobot, spltypes.ObstacleFallenTeamRobot, spltypes.ObstacleUnknown, spltypes.ObstacleAnonymousRobot, spltypes.ObstacleFallenAnonymousRobot:
		return abs.DistSq(ownPosition) < p.SelfExclusionRadius*p.SelfExclusionRadius
	default:
		return false
	}
}

func mergeOne(existing []spltypes.TeamObstacle, candidate spltypes.TeamObstacle, p Params) []spltypes.TeamObstacle {
	bestIdx := -1
	bestDist := p.MergeRadiusSquared

	for i, e := range existing {
		d := e.AbsPosition.DistSq(candidate.AbsPosition)
		if d >= bestDist {
			continue
		}
		merged := spltypes.MapToMergedType(candidate.Type, e.Type)
		if merged == spltypes.ObstacleInvalid {
			continue
		}
		bestIdx = i
		bestDist = d
	}

	if bestIdx == -1 {
		return append(existing, candidate)
	}

	e := existing[bestIdx]
	mergedType := spltypes.MapToMergedType(candidate.Type, e.Type)
	existing[bestIdx] = spltypes.TeamObstacle{
		AbsPosition: spltypes.P2{
			X: (e.AbsPosition.X + candidate.AbsPosition.X) / 2,
			Y: (e.AbsPosition.Y + candidate.AbsPosition.Y) / 2,
		},
		Radius: (e.Radius + candidate.Radius) / 2,
		Type:   mergedType,
	}
	return existing
}
