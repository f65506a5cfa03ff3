package main

import (
	"time"

	"github.com/hulks-go/splbrain/internal/obstacle"
	"github.com/hulks-go/splbrain/internal/spltypes"
)

// sensorSource is the boundary this process consumes but never implements:
// self-localization (RobotPosition), the vision pipeline (BallState,
// sonar/bumper/robot-detection obstacles), and the IMU fall detector are
// all deliberately out of core scope (§1 "external collaborators whose
// contracts the core consumes"). A real robot wires a bridge to those
// processes in here; nopSensors below is the placeholder that keeps this
// binary runnable standalone.
type sensorSource interface {
	Pose(now time.Time) (pose spltypes.Pose, valid bool)
	Ball(now time.Time) spltypes.BallState
	HeadYaw(now time.Time) float64
	Fallen(now time.Time) (fallen bool, since time.Time)
	LocalObstacles(now time.Time, ownPose spltypes.Pose, ball spltypes.BallState, target spltypes.P2) obstacle.LocalInput
}

// nopSensors stands the robot motionless at the center of its own half,
// never confident of the ball, never fallen. It is not a simulator: it
// exists so the module graph has something to Seed from when no real
// perception bridge is attached yet.
type nopSensors struct{}

func (nopSensors) Pose(time.Time) (spltypes.Pose, bool) {
	return spltypes.Pose{Position: spltypes.P2{X: -2, Y: 0}, Theta: 0}, true
}

func (nopSensors) Ball(time.Time) spltypes.BallState {
	return spltypes.BallState{Found: false, Confident: false, Age: time.Hour}
}

func (nopSensors) HeadYaw(time.Time) float64 { return 0 }

func (nopSensors) Fallen(time.Time) (bool, time.Time) { return false, time.Time{} }

func (nopSensors) LocalObstacles(now time.Time, ownPose spltypes.Pose, ball spltypes.BallState, target spltypes.P2) obstacle.LocalInput {
	var ballObstacle *spltypes.Obstacle
	if ball.Found && obstacle.OnWrongSide(ownPose, ownPose.ToWorld(ball.Position), target) {
		ballObstacle = &spltypes.Obstacle{RelativePosition: ball.Position, Radius: 0.05, Type: spltypes.ObstacleBall}
	}
	return obstacle.LocalInput{Ball: ballObstacle}
}
