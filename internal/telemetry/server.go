package telemetry

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hulks-go/splbrain/internal/behavior"
	"github.com/hulks-go/splbrain/internal/spltypes"
)

// StateProvider supplies the current tick snapshot for /debug/state. Kept
// minimal and interface-shaped so cmd/splbrain can wire in the real engine
// state without this package depending on internal/cycle.
type StateProvider interface {
	DebugSnapshot() any
}

// Config bounds the debug/telemetry HTTP server (§5 "debug/telemetry
// thread (optional): consumes completed tick snapshots... never blocks the
// tick thread").
type Config struct {
	ListenAddr  string
	CORSOrigins []string
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// remoteMessage is the wire shape /debug/remote exchanges with an external
// tool: install or clear the remoteActionCommand override (§4.9).
type remoteMessage struct {
	Enabled bool                   `json:"enabled"`
	Command spltypes.ActionCommand `json:"command"`
}

// NewRouter builds the debug server's chi router: /metrics for Prometheus
// scraping, /debug/state for a JSON tick snapshot, /debug/remote for the
// websocket-delivered remote ActionCommand override.
func NewRouter(cfg Config, override *behavior.RemoteOverride, state StateProvider, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"*"},
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/debug/state", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.DebugSnapshot()); err != nil {
			log.Error().Err(err).Msg("telemetry: failed to encode debug state")
		}
	})

	r.Get("/debug/remote", func(w http.ResponseWriter, req *http.Request) {
		handleRemote(w, req, override, log)
	})

	return r
}

func handleRemote(w http.ResponseWriter, req *http.Request, override *behavior.RemoteOverride, log zerolog.Logger) {
	conn, err := wsUpgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Warn().Err(err).Msg("telemetry: remote override websocket upgrade failed")
		return
	}
	defer conn.Close()
	defer override.Set(false, spltypes.ActionCommand{})

	atomic.AddInt64(&connectedClients, 1)
	defer atomic.AddInt64(&connectedClients, -1)

	for {
		var msg remoteMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		override.Set(msg.Enabled, msg.Command)
	}
}

// Run starts the debug server and blocks until the server fails; it takes no
// context and does not shut down on cancellation. Intended to run on its own
// goroutine (§5).
func Run(addr string, handler http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("telemetry: debug server listening")
	return srv.ListenAndServe()
}

// connectedClients tracks active /debug/remote websocket sessions for
// observability; exported so cmd/splbrain can surface it on /debug/state
// if desired.
var connectedClients int64

// ActiveRemoteClients returns the current /debug/remote connection count.
func ActiveRemoteClients() int64 {
	return atomic.LoadInt64(&connectedClients)
}
