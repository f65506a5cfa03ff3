package teammsg

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hulks-go/splbrain/internal/spltypes"
	"github.com/hulks-go/splbrain/internal/udpsock"
)

// Socket is the minimal transport Client needs; satisfied by *udpsock.Socket.
type Socket interface {
	ReadFrom(buf []byte) (int, net.Addr, error)
	WriteTo(buf []byte, addr *net.UDPAddr) (int, error)
	Close() error
}

// Client is the team-message receive/transmit endpoint (§4.3). Incoming
// frames are staged into a per-player row; TeamPlayers snapshots the whole
// table once per tick and evicts stale rows.
type Client struct {
	sock         Socket
	ownPlayer    uint8
	ownTeam      uint8
	warnOnSameNum bool
	staleAfter   time.Duration
	limiter      *rate.Limiter
	log          zerolog.Logger

	mu      sync.Mutex
	players map[uint8]*playerRow
	clocks  map[uint8]*ClockSync
}

type playerRow struct {
	player   spltypes.TeamPlayer
	receivedAt time.Time
}

// NewClient opens a team-message socket and wraps it for the given own
// player/team numbers. msgPerSecond bounds outgoing transmit rate (§4.3
// "Emit at most msgPerSecond_ frames per second (token-bucket or equivalent)").
func NewClient(port int, ownPlayer, ownTeam uint8, msgPerSecond int, staleAfter time.Duration, warnOnSameNum bool, log zerolog.Logger) (*Client, error) {
	sock, err := udpsock.Open(udpsock.Options{ListenPort: port})
	if err != nil {
		return nil, err
	}
	return &Client{
		sock:          sock,
		ownPlayer:     ownPlayer,
		ownTeam:       ownTeam,
		warnOnSameNum: warnOnSameNum,
		staleAfter:    staleAfter,
		limiter:       rate.NewLimiter(rate.Limit(msgPerSecond), msgPerSecond),
		log:           log,
		players:       make(map[uint8]*playerRow),
		clocks:        make(map[uint8]*ClockSync),
	}, nil
}

// Run reads datagrams until ctx is cancelled (§4.3 "Receive path").
func (c *Client) Run(ctx context.Context) error {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, addr, err := c.sock.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn().Err(err).Msg("teammsg: read error")
			continue
		}

		frame, err := Decode(buf[:n])
		if err != nil {
			c.log.Debug().Err(err).Msg("teammsg: dropping malformed frame")
			continue
		}

		if frame.PlayerNumber == c.ownPlayer {
			if c.warnOnSameNum {
				c.log.Warn().Uint8("player", frame.PlayerNumber).Msg("teammsg: received own player number frame")
			}
			continue
		}

		c.mu.Lock()
		c.players[frame.PlayerNumber] = &playerRow{
			player:     toTeamPlayer(frame, addr, time.Now()),
			receivedAt: time.Now(),
		}
		if frame.NTPRequest != nil || frame.NTPResponse != nil {
			cs, ok := c.clocks[frame.PlayerNumber]
			if !ok {
				cs = NewClockSync(5)
				c.clocks[frame.PlayerNumber] = cs
			}
			if frame.NTPResponse != nil {
				cs.Record(frame.NTPResponse.RequesterOrigination, frame.NTPResponse.Receipt, frame.NTPResponse.ResponseOrigination, nowMillis())
			}
		}
		c.mu.Unlock()
	}
}

func toTeamPlayer(f *Frame, addr net.Addr, now time.Time) spltypes.TeamPlayer {
	senderAddr := ""
	if addr != nil {
		senderAddr = addr.String()
	}
	return spltypes.TeamPlayer{
		PlayerNumber:            int(f.PlayerNumber),
		Pose:                    spltypes.Pose{Position: spltypes.P2{X: float64(f.PoseX), Y: float64(f.PoseY)}, Theta: float64(f.PoseTheta)},
		IsPoseValid:             true,
		BallPosition:            spltypes.P2{X: float64(f.BallX), Y: float64(f.BallY)},
		BallVelocity:            spltypes.P2{X: float64(f.BallVelX), Y: float64(f.BallVelY)},
		TimeWhenBallWasSeen:     now.Add(-time.Duration(f.BallAge * float32(time.Second))),
		TimeWhenReachBall:       time.Duration(f.TimeToReachBall * float32(time.Second)),
		TimeWhenReachBallStriker: time.Duration(f.TimeToReachBallStriker * float32(time.Second)),
		Fallen:                  f.Fallen != 0,
		CurrentlyPerformingRole: spltypes.Role(f.CurrentlyPerformingRole),
		RoleAssignments:         f.RoleAssignments,
		ReceivedAt:              now,
		SenderAddr:              senderAddr,
	}
}

func nowMillis() uint32 {
	return uint32(time.Now().UnixMilli())
}

// TeamPlayers snapshots the live table, evicting rows whose last frame is
// older than staleAfter (§4.3 "A teammate whose last valid frame is older
// than a bounded freshness window is removed from TeamPlayers"). Call once
// per tick.
func (c *Client) TeamPlayers(now time.Time) []spltypes.TeamPlayer {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]spltypes.TeamPlayer, 0, len(c.players))
	for num, row := range c.players {
		if now.Sub(row.receivedAt) > c.staleAfter {
			delete(c.players, num)
			continue
		}
		out = append(out, row.player)
	}
	return out
}

// Send transmits a frame to dst if the transmit rate limiter allows it,
// silently dropping the frame otherwise (§4.3 "excess is dropped").
func (c *Client) Send(raw []byte, dst *net.UDPAddr) (sent bool, err error) {
	if !c.limiter.Allow() {
		return false, nil
	}
	_, err = c.sock.WriteTo(raw, dst)
	return err == nil, err
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	return c.sock.Close()
}
