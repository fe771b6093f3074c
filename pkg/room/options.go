package room

import (
	"time"

	"pokerroom-server/internal/config"
	"pokerroom-server/pkg/lobby"
)

// Options configures a dealer
type Options struct {
	Lobby         lobby.Options
	StartingStack int
	// TickRate is how many times per second the dealer drains its inbox
	TickRate int
	// MaxBatch caps the packets handled in a single tick
	MaxBatch int
	// TurnTimeout folds a player who takes longer to act; zero disables it
	TurnTimeout time.Duration
	// HandSize is how many cards each seat is dealt
	HandSize int
	// IdleTimeout closes a room that has had no clients for this long; zero disables it
	IdleTimeout time.Duration
}

// DefaultOptions returns the default dealer options
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig().Room)
}

// OptionsFromConfig converts the room configuration
func OptionsFromConfig(cfg config.Room) Options {
	return Options{
		Lobby: lobby.Options{
			MaxPlayers:    cfg.MaxPlayers,
			BettingRounds: cfg.BettingRounds,
		},
		StartingStack: cfg.StartingStack,
		TickRate:      cfg.TickRate,
		MaxBatch:      cfg.MaxBatch,
		TurnTimeout:   cfg.TurnTimeout,
		HandSize:      2,
		IdleTimeout:   cfg.IdleTimeout,
	}
}

// Interval returns how long the dealer waits between ticks
func (o Options) Interval() time.Duration {
	if o.TickRate <= 0 {
		return time.Second / 10
	}

	return time.Second / time.Duration(o.TickRate)
}

func (o Options) maxBatch() int {
	if o.MaxBatch <= 0 {
		return 64
	}

	return o.MaxBatch
}
