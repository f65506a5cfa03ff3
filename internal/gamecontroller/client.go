package gamecontroller

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hulks-go/splbrain/internal/spltypes"
	"github.com/hulks-go/splbrain/internal/udpsock"
)

// ButtonEvent is a latched chest/head-button press, delivered exactly once
// by whatever process reads the robot's physical buttons (§4.2 "Button
// events are latched via monotonic timestamps so each press is handled
// exactly once" — outside this module's scope, so Client only consumes the
// resulting events).
type ButtonEvent struct {
	Kind ButtonKind
	At   time.Time
}

type ButtonKind uint8

const (
	ChestSingle ButtonKind = iota
	ChestLong
	HeadTripleHold
)

// Client is the GameController UDP receiver plus reply transmitter (§4.2).
// The only cross-thread state is staged, mutex-guarded in accordance with
// §5's shared-resource policy ("the latest incoming GameControllerState
// (mutex + new-data flag)").
type Client struct {
	sock       Socket
	ownTeam    uint8
	log        zerolog.Logger

	mu          sync.Mutex
	staged      spltypes.RawGameControllerState
	newData     bool
	lastSender  net.Addr
	lastSeen    time.Time

	staleAfter time.Duration

	buttonMu    sync.Mutex
	buttonState WireGameState
	penalized   bool
}

// Socket is the minimal transport Client needs; satisfied by *udpsock.Socket.
type Socket interface {
	ReadFrom(buf []byte) (int, net.Addr, error)
	WriteTo(buf []byte, addr *net.UDPAddr) (int, error)
	Close() error
}

// NewClient opens a GameController socket on port and wraps it.
func NewClient(port int, ownTeam uint8, staleAfter time.Duration, log zerolog.Logger) (*Client, error) {
	sock, err := udpsock.Open(udpsock.Options{ListenPort: port})
	if err != nil {
		return nil, err
	}
	return &Client{
		sock:        sock,
		ownTeam:     ownTeam,
		log:         log,
		staleAfter:  staleAfter,
		buttonState: WireStateInitial,
	}, nil
}

// Run reads datagrams until ctx is cancelled, staging each well-formed frame
// (§4.2 "copies the referee view into a mutex-protected staging buffer").
// Intended to run on its own I/O goroutine (§5).
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
			c.log.Warn().Err(err).Msg("gamecontroller: read error")
			continue
		}

		frame, err := Decode(buf[:n])
		if err != nil {
			c.log.Debug().Err(err).Msg("gamecontroller: dropping malformed frame")
			continue
		}

		teamIndex, ok := c.locateOwnTeam(frame)
		if !ok {
			continue
		}

		state := toGameControllerState(frame, teamIndex)

		c.mu.Lock()
		c.staged = spltypes.RawGameControllerState{GameControllerState: state, TeamIndex: teamIndex}
		c.newData = true
		c.lastSender = addr
		c.lastSeen = time.Now()
		c.mu.Unlock()
	}
}

func (c *Client) locateOwnTeam(f *Frame) (int, bool) {
	for i, t := range f.Teams {
		if t.TeamNumber == c.ownTeam {
			return i, true
		}
	}
	return 0, false
}

func toGameControllerState(f *Frame, teamIndex int) spltypes.GameControllerState {
	own := f.Teams[teamIndex]
	return spltypes.GameControllerState{
		Valid:         true,
		GameState:     wireToGameState(f.State),
		GamePhase:     wireToGamePhase(f.GamePhase),
		SetPlay:       wireToSetPlay(f.SetPlay),
		KickingTeam:   f.KickingTeam == own.TeamNumber,
		SecondaryTime: time.Duration(f.SecondaryTime) * time.Second,
		TeamColor:     own.FieldColor,
		FirstHalf:     f.FirstHalf != 0,
	}
}

func wireToGameState(s WireGameState) spltypes.GameState {
	switch s {
	case WireStateReady:
		return spltypes.GameStateReady
	case WireStateSet:
		return spltypes.GameStateSet
	case WireStatePlaying:
		return spltypes.GameStatePlaying
	case WireStateFinished:
		return spltypes.GameStateFinished
	default:
		return spltypes.GameStateInitial
	}
}

func wireToGamePhase(p uint8) spltypes.GamePhase {
	if p == 1 {
		return spltypes.GamePhasePenaltyShoot
	}
	return spltypes.GamePhaseNormal
}

func wireToSetPlay(sp uint8) spltypes.SetPlay {
	if sp > uint8(spltypes.SetPlayPenaltyKick) {
		return spltypes.SetPlayNone
	}
	return spltypes.SetPlay(sp)
}

// Sample returns the latest staged state, clearing the new-data flag, and
// reports whether the underlying feed is stale (§4.2 "cycle() on the main
// thread briefly locks, snapshots the latest datagram, clears the
// new-data flag"). Call once per tick from the tick thread only.
func (c *Client) Sample(now time.Time) (state spltypes.RawGameControllerState, fresh bool) {
	c.mu.Lock()
	state = c.staged
	fresh = !c.lastSeen.IsZero() && now.Sub(c.lastSeen) < c.staleAfter
	c.newData = false
	c.mu.Unlock()
	return state, fresh
}

// HandleButton advances the button fallback state machine (§4.2 condensed
// state machine): used only while the UDP feed is stale, so callers should
// gate calls on !fresh from Sample.
func (c *Client) HandleButton(ev ButtonEvent) {
	c.buttonMu.Lock()
	defer c.buttonMu.Unlock()

	switch ev.Kind {
	case ChestSingle:
		if c.buttonState == WireStateInitial && !c.penalized {
			c.penalized = true
		} else if c.penalized {
			c.penalized = false
			c.buttonState = WireStatePlaying
		}
	case ChestLong:
		c.penalized = false
		c.buttonState = WireStatePlaying
	case HeadTripleHold:
		// Changes no state: the fallback tracks only the game state and the
		// penalty flag, so ButtonFallbackState never reports a PENALTYSHOOT
		// phase.
	}
}

// ButtonFallbackState reports the button-driven state when the network feed
// is stale.
func (c *Client) ButtonFallbackState() (state WireGameState, penalized bool) {
	c.buttonMu.Lock()
	defer c.buttonMu.Unlock()
	return c.buttonState, c.penalized
}

// SendReply transmits a RoboCupGameControlReturnData to addr (the last
// sender, per §4.2).
func (c *Client) SendReply(f ReturnFrame, addr *net.UDPAddr) error {
	raw, err := EncodeReturn(f)
	if err != nil {
		return err
	}
	_, err = c.sock.WriteTo(raw, addr)
	return err
}

// LastSender returns the address frames were most recently received from,
// for addressing replies.
func (c *Client) LastSender() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSender
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	return c.sock.Close()
}
