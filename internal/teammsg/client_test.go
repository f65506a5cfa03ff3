package teammsg

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeSocket struct {
	mu     sync.Mutex
	frames [][]byte
	sent   [][]byte
	block  chan struct{}
}

func newFakeSocket(frames ...[]byte) *fakeSocket {
	return &fakeSocket{frames: frames, block: make(chan struct{})}
}

func (f *fakeSocket) ReadFrom(buf []byte) (int, net.Addr, error) {
	f.mu.Lock()
	if len(f.frames) == 0 {
		f.mu.Unlock()
		<-f.block
		return 0, nil, context.Canceled
	}
	raw := f.frames[0]
	f.frames = f.frames[1:]
	f.mu.Unlock()
	n := copy(buf, raw)
	return n, &net.UDPAddr{IP: net.ParseIP("10.0.0.6"), Port: 3939}, nil
}

func (f *fakeSocket) WriteTo(buf []byte, addr *net.UDPAddr) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, buf)
	return len(buf), nil
}

func (f *fakeSocket) Close() error { return nil }

func TestClientRunStagesTeammateAndSkipsOwnNumber(t *testing.T) {
	ownFrame, err := Encode(Prelude{PlayerNumber: 1, TeamNumber: 5}, nil, nil, nil)
	require.NoError(t, err)
	teammateFrame, err := Encode(Prelude{PlayerNumber: 2, TeamNumber: 5, PoseX: 1000}, nil, nil, nil)
	require.NoError(t, err)

	sock := newFakeSocket(ownFrame, teammateFrame)
	c := &Client{
		sock:       sock,
		ownPlayer:  1,
		ownTeam:    5,
		staleAfter: time.Second,
		log:        zerolog.Nop(),
		players:    make(map[uint8]*playerRow),
		clocks:     make(map[uint8]*ClockSync),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	go c.Run(ctx)

	require.Eventually(t, func() bool {
		return len(c.TeamPlayers(time.Now())) == 1
	}, 200*time.Millisecond, 5*time.Millisecond)

	players := c.TeamPlayers(time.Now())
	assert.Equal(t, 2, players[0].PlayerNumber)
}

func TestClientTeamPlayersEvictsStaleRows(t *testing.T) {
	c := &Client{players: map[uint8]*playerRow{
		3: {player: toTeamPlayer(&Frame{Prelude: Prelude{PlayerNumber: 3}}, nil, time.Now()), receivedAt: time.Now().Add(-time.Hour)},
	}, staleAfter: time.Second}

	assert.Empty(t, c.TeamPlayers(time.Now()))
}

func TestSendRespectsRateLimit(t *testing.T) {
	sock := newFakeSocket()
	c := &Client{sock: sock, limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}

	sent, err := c.Send([]byte("a"), &net.UDPAddr{})
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = c.Send([]byte("b"), &net.UDPAddr{})
	require.NoError(t, err)
	assert.False(t, sent)
}
