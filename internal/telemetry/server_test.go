package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulks-go/splbrain/internal/behavior"
	"github.com/hulks-go/splbrain/internal/spltypes"
)

type fakeState struct{ value string }

func (f fakeState) DebugSnapshot() any { return map[string]string{"tick": f.value} }

func TestDebugStateServesJSONSnapshot(t *testing.T) {
	var override behavior.RemoteOverride
	router := NewRouter(Config{}, &override, fakeState{value: "42"}, zerolog.Nop())
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/debug/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	var override behavior.RemoteOverride
	router := NewRouter(Config{}, &override, fakeState{}, zerolog.Nop())
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDebugRemoteInstallsOverride(t *testing.T) {
	var override behavior.RemoteOverride
	router := NewRouter(Config{}, &override, fakeState{}, zerolog.Nop())
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/debug/remote"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.WriteJSON(map[string]any{
		"enabled": true,
		"command": spltypes.ActionCommand{Body: spltypes.Body{Tag: spltypes.BodyKick}},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		playing := behavior.Input{GameState: spltypes.GameControllerState{GameState: spltypes.GameStatePlaying}}
		return override.Apply(spltypes.Stand(), playing).Body.Tag == spltypes.BodyKick
	}, time.Second, 10*time.Millisecond)
}
