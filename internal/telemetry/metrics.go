// Package telemetry implements the debug/telemetry thread (§5): a
// Prometheus metrics registry for every drop/violation path named in §7
// plus §4.2/§4.3's own diagnostics notes, and a chi+cors HTTP server that
// serves /metrics, /debug/state, and a /debug/remote websocket endpoint
// for installing the behavior package's remote ActionCommand override.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "splbrain_tick_duration_seconds",
		Help:    "Wall-clock time spent running one brain tick",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.03, 0.05, 0.1},
	})

	gameControllerFramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splbrain_gamecontroller_frames_dropped_total",
		Help: "Malformed or stale GameController frames dropped (§4.2, §7)",
	})

	teamMessageFramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splbrain_team_message_frames_dropped_total",
		Help: "Malformed or unparseable SPL team-message frames dropped (§4.3, §7)",
	})

	samePlayerNumberConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splbrain_same_player_number_conflicts_total",
		Help: "Team-role election observed two teammates broadcasting the same player number (§4.7)",
	})

	buttonFallbackEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splbrain_button_fallback_events_total",
		Help: "Chest/head button fallback events consumed by the GameController client (§4.2)",
	})

	roleAssignment = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "splbrain_role_assignment",
		Help: "Currently assigned Role (as its numeric enum value) per player number",
	}, []string{"player"})
)

// RecordTick records one brain-tick's wall-clock duration.
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// RecordGameControllerFrameDropped bumps the GameController drop counter
// (§4.2/§7 "dropped with a counter bump").
func RecordGameControllerFrameDropped() {
	gameControllerFramesDropped.Inc()
}

// RecordTeamMessageFrameDropped bumps the team-message drop counter
// (§4.3 "malformed frames... count reported via diagnostics").
func RecordTeamMessageFrameDropped() {
	teamMessageFramesDropped.Inc()
}

// RecordSamePlayerNumberConflict bumps the role-election conflict counter
// (§4.7).
func RecordSamePlayerNumberConflict() {
	samePlayerNumberConflicts.Inc()
}

// RecordButtonFallbackEvent bumps the chest/head button fallback counter
// (§4.2).
func RecordButtonFallbackEvent() {
	buttonFallbackEvents.Inc()
}

// SetRoleAssignment publishes the current role gauge for one player number.
// The label is bounded by spltypes.MaxPlayers, so cardinality stays small.
func SetRoleAssignment(playerNumber int, role spltypes.Role) {
	roleAssignment.WithLabelValues(strconv.Itoa(playerNumber)).Set(float64(role))
}
