package spltypes

import "time"

// TeamPlayer is one row of the teammate table populated by the SPL
// team-messaging receive path (§3, §4.3).
type TeamPlayer struct {
	PlayerNumber                  int           `json:"playerNumber"`
	Pose                          Pose          `json:"pose"`
	IsPoseValid                   bool          `json:"isPoseValid"`
	BallPosition                  P2            `json:"ballPosition"` // robot-local
	BallVelocity                  P2            `json:"ballVelocity"`
	TimeWhenBallWasSeen           time.Time     `json:"timeWhenBallWasSeen"`
	TimeWhenReachBall             time.Duration `json:"timeWhenReachBall"`
	TimeWhenReachBallStriker      time.Duration `json:"timeWhenReachBallStriker"`
	Penalized                     bool          `json:"penalized"`
	Fallen                        bool          `json:"fallen"`
	HeadYaw                       float64       `json:"headYaw"`
	CurrentlyPerformingRole       Role          `json:"currentlyPerformingRole"`
	RoleAssignments                [MaxPlayers + 1]Role `json:"roleAssignments"`
	LocalObstacles                []Obstacle    `json:"localObstacles"`
	SuggestedSearchPositions       [MaxPlayers + 1]P2 `json:"suggestedSearchPositions"`
	SuggestedSearchPositionsValid  [MaxPlayers + 1]bool `json:"suggestedSearchPositionsValid"`

	LastJumpTime time.Time `json:"lastJumpTime"` // localization discontinuity marker (§4.4 admissibility)
	ReceivedAt   time.Time `json:"receivedAt"`   // local arrival time, for freshness horizon (§4.3, §5)
	SenderAddr   string    `json:"senderAddr"`   // for NTP round-trip bookkeeping (§4.3)
}
