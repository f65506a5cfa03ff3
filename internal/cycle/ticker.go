package cycle

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/niceyeti/channerics/channels"
	"github.com/rs/zerolog"
)

// TickFunc is invoked once per tick with the wall-clock time the tick fired
// and the measured period since the previous tick.
type TickFunc func(now time.Time, cycleTime time.Duration)

// RunLoop drives fn at a fixed rate until ctx is cancelled, grounded on the
// teacher's runTickerLoop/GameActor.Receive(GameTick) shape but replacing
// the raw time.Ticker with channerics.NewTicker, which stops on ctx's done
// channel (§5 "single cooperative tick thread"). The UDP receive loops in
// internal/teammsg and internal/gamecontroller do not use channerics; they
// check ctx directly.
func RunLoop(ctx context.Context, period time.Duration, log zerolog.Logger, fn TickFunc) {
	ticks := channels.NewTicker(ctx.Done(), period)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-ticks:
			if !ok {
				return
			}
			cycleTime := now.Sub(last)
			last = now
			runProtected(log, now, cycleTime, fn)
		}
	}
}

func runProtected(log zerolog.Logger, now time.Time, cycleTime time.Duration, fn TickFunc) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("cycle: tick panicked, skipping to next tick")
		}
	}()
	fn(now, cycleTime)
}
