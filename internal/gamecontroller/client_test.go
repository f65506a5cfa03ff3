package gamecontroller

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSocket struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	readCh chan struct{}
}

func newFakeSocket(frames ...[]byte) *fakeSocket {
	return &fakeSocket{frames: frames, readCh: make(chan struct{}, len(frames))}
}

func (f *fakeSocket) ReadFrom(buf []byte) (int, net.Addr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		<-f.readCh // block forever once drained; test cancels ctx instead
		return 0, nil, context.Canceled
	}
	n := copy(buf, f.frames[0])
	f.frames = f.frames[1:]
	return n, &net.UDPAddr{IP: net.ParseIP("10.0.0.5"), Port: 3838}, nil
}

func (f *fakeSocket) WriteTo(buf []byte, addr *net.UDPAddr) (int, error) { return len(buf), nil }
func (f *fakeSocket) Close() error                                      { return nil }

func TestClientRunStagesWellFormedFrame(t *testing.T) {
	raw := buildFrame(t, 5)
	sock := newFakeSocket(raw)

	c := &Client{sock: sock, ownTeam: 5, staleAfter: time.Second, log: zerolog.Nop(), buttonState: WireStateInitial}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	go c.Run(ctx)

	require.Eventually(t, func() bool {
		_, fresh := c.Sample(time.Now())
		return fresh
	}, 200*time.Millisecond, 5*time.Millisecond)

	state, _ := c.Sample(time.Now())
	assert.True(t, state.Valid)
	assert.Equal(t, 0, state.TeamIndex)
}

func TestClientButtonFallback(t *testing.T) {
	c := &Client{ownTeam: 5, buttonState: WireStateInitial}

	c.HandleButton(ButtonEvent{Kind: ChestSingle, At: time.Now()})
	state, penalized := c.ButtonFallbackState()
	assert.Equal(t, WireStateInitial, state)
	assert.True(t, penalized)

	c.HandleButton(ButtonEvent{Kind: ChestSingle, At: time.Now()})
	state, penalized = c.ButtonFallbackState()
	assert.Equal(t, WireStatePlaying, state)
	assert.False(t, penalized)
}
