package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/hulks-go/splbrain/internal/spltypes"
)

func TestRecordTickObservesHistogram(t *testing.T) {
	before := testutil.CollectAndCount(tickDuration)
	RecordTick(5 * time.Millisecond)
	after := testutil.CollectAndCount(tickDuration)
	assert.Equal(t, before+1, after)
}

func TestDropCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(gameControllerFramesDropped)
	RecordGameControllerFrameDropped()
	assert.Equal(t, before+1, testutil.ToFloat64(gameControllerFramesDropped))

	before = testutil.ToFloat64(teamMessageFramesDropped)
	RecordTeamMessageFrameDropped()
	assert.Equal(t, before+1, testutil.ToFloat64(teamMessageFramesDropped))

	before = testutil.ToFloat64(samePlayerNumberConflicts)
	RecordSamePlayerNumberConflict()
	assert.Equal(t, before+1, testutil.ToFloat64(samePlayerNumberConflicts))

	before = testutil.ToFloat64(buttonFallbackEvents)
	RecordButtonFallbackEvent()
	assert.Equal(t, before+1, testutil.ToFloat64(buttonFallbackEvents))
}

func TestSetRoleAssignmentPublishesGaugeByPlayer(t *testing.T) {
	SetRoleAssignment(3, spltypes.RoleStriker)
	assert.Equal(t, float64(spltypes.RoleStriker), testutil.ToFloat64(roleAssignment.WithLabelValues("3")))
}
