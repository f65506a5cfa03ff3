// Package config loads and hot-reloads the Brain's tunable parameters. It
// follows the teacher's plain-struct Config (utils/config.go: one struct,
// one DefaultConfig() constructor, grouped by concern) but sources it from a
// viper-backed YAML file instead of a Go literal, and stages every reload
// behind the cycle package's atomic Param swap so the tick thread never
// observes a half-applied config (§9 "Parameter hot-reload").
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/hulks-go/splbrain/internal/cycle"
)

// Tuning groups every hot-reloadable knob named or implied by §4's
// component designs. Values absent from the config file keep their
// DefaultTuning() value (viper's built-in default/overlay behavior).
type Tuning struct {
	// §5: tick period.
	TickPeriod time.Duration `mapstructure:"tickPeriod"`

	// §4.4 TeamBallFilter.
	BallClusterDistance   float64       `mapstructure:"ballClusterDistance"`
	BallSightingMaxAge    time.Duration `mapstructure:"ballSightingMaxAge"`
	BallSightingBufferLen int           `mapstructure:"ballSightingBufferLen"`

	// §4.5 BallSearchMap.
	BallSearchDecayPerSecond float64       `mapstructure:"ballSearchDecayPerSecond"`
	BallSearchFOVHalfAngle   float64       `mapstructure:"ballSearchFOVHalfAngle"`
	BallSearchUnreliableHorizon time.Duration `mapstructure:"ballSearchUnreliableHorizon"`

	// §4.7 role election hysteresis.
	RoleSwitchHysteresis    time.Duration `mapstructure:"roleSwitchHysteresis"`
	StrikerBidMargin        float64       `mapstructure:"strikerBidMargin"`
	RevolutionGraceInterval time.Duration `mapstructure:"revolutionGraceInterval"`

	// §4.3 team messaging.
	TeamMessageMaxPerSecond int           `mapstructure:"teamMessageMaxPerSecond"`
	TeamPlayerStaleAfter    time.Duration `mapstructure:"teamPlayerStaleAfter"`

	// §4.2 GameController client.
	GameControllerPort        int           `mapstructure:"gameControllerPort"`
	GameControllerReturnPort  int           `mapstructure:"gameControllerReturnPort"`
	GameControllerStaleAfter  time.Duration `mapstructure:"gameControllerStaleAfter"`
}

// DefaultTuning mirrors the teacher's DefaultConfig(): one literal covering
// every field, safe to run with no config file present at all.
func DefaultTuning() Tuning {
	return Tuning{
		TickPeriod: 20 * time.Millisecond,

		BallClusterDistance:   500,
		BallSightingMaxAge:     2 * time.Second,
		BallSightingBufferLen: 8,

		BallSearchDecayPerSecond:   0.02,
		BallSearchFOVHalfAngle:     0.6,
		BallSearchUnreliableHorizon: 3 * time.Second,

		RoleSwitchHysteresis:    300 * time.Millisecond,
		StrikerBidMargin:        0.5,
		RevolutionGraceInterval: 2 * time.Second,

		TeamMessageMaxPerSecond: 2,
		TeamPlayerStaleAfter:    3 * time.Second,

		GameControllerPort:       3838,
		GameControllerReturnPort: 3939,
		GameControllerStaleAfter: 2 * time.Second,
	}
}

// Source wires viper to a single YAML file and re-stages a *cycle.Param
// every time the file changes, logging each reload the way the tick thread
// would want to see it (structured fields, not free text).
type Source struct {
	v      *viper.Viper
	param  *cycle.Param[Tuning]
	log    zerolog.Logger
}

// Load reads path (if it exists) over DefaultTuning(), returning a Source
// whose Param always reflects the latest successfully-parsed file.
func Load(path string, log zerolog.Logger) (*Source, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := DefaultTuning()
	setDefaults(v, def)

	if err := v.ReadInConfig(); err != nil {
		// With SetConfigFile, a missing file surfaces as an fs.ErrNotExist
		// path error rather than viper.ConfigFileNotFoundError.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		log.Warn().Str("path", path).Msg("config: file not found, using defaults")
	}

	tuning := def
	if err := v.Unmarshal(&tuning); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	s := &Source{v: v, param: cycle.NewParam(tuning), log: log}

	v.OnConfigChange(func(e fsnotify.Event) {
		reloaded := def
		if err := v.Unmarshal(&reloaded); err != nil {
			s.log.Error().Err(err).Msg("config: reload failed, keeping previous tuning")
			return
		}
		s.param.Store(reloaded)
		s.log.Info().Str("op", e.Op.String()).Msg("config: reloaded tuning")
	})
	v.WatchConfig()

	return s, nil
}

// Param exposes the live, hot-reloadable tuning for modules to Load() from
// inside Cycle.
func (s *Source) Param() *cycle.Param[Tuning] {
	return s.param
}

func setDefaults(v *viper.Viper, t Tuning) {
	v.SetDefault("tickPeriod", t.TickPeriod)
	v.SetDefault("ballClusterDistance", t.BallClusterDistance)
	v.SetDefault("ballSightingMaxAge", t.BallSightingMaxAge)
	v.SetDefault("ballSightingBufferLen", t.BallSightingBufferLen)
	v.SetDefault("ballSearchDecayPerSecond", t.BallSearchDecayPerSecond)
	v.SetDefault("ballSearchFOVHalfAngle", t.BallSearchFOVHalfAngle)
	v.SetDefault("ballSearchUnreliableHorizon", t.BallSearchUnreliableHorizon)
	v.SetDefault("roleSwitchHysteresis", t.RoleSwitchHysteresis)
	v.SetDefault("strikerBidMargin", t.StrikerBidMargin)
	v.SetDefault("revolutionGraceInterval", t.RevolutionGraceInterval)
	v.SetDefault("teamMessageMaxPerSecond", t.TeamMessageMaxPerSecond)
	v.SetDefault("teamPlayerStaleAfter", t.TeamPlayerStaleAfter)
	v.SetDefault("gameControllerPort", t.GameControllerPort)
	v.SetDefault("gameControllerReturnPort", t.GameControllerReturnPort)
	v.SetDefault("gameControllerStaleAfter", t.GameControllerStaleAfter)
}
