package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
	"pokerroom-server/internal/util"
)

// ProtocolID is the handshake value clients must present
const ProtocolID = 12478

// Config provides configuration for the poker room server and client
type Config struct {
	loaded     bool
	Addr       string `yaml:"addr" envconfig:"addr"`
	ProtocolID uint64 `yaml:"protocolId" envconfig:"protocol_id"`
	// Codec is the default wire codec, json or binary
	Codec string `yaml:"codec" envconfig:"codec"`
	Room  Room   `yaml:"room"`
	Log   struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins" envconfig:"allowed_origins"`
	} `yaml:"cors"`
}

// Room configures every room the server hosts
type Room struct {
	MaxPlayers    int `yaml:"maxPlayers" envconfig:"max_players"`
	BettingRounds int `yaml:"bettingRounds" envconfig:"betting_rounds"`
	StartingStack int `yaml:"startingStack" envconfig:"starting_stack"`
	// TickRate is how many times per second a room processes its inbox
	TickRate int `yaml:"tickRate" envconfig:"tick_rate"`
	// MaxBatch caps the packets handled in a single tick
	MaxBatch int `yaml:"maxBatch" envconfig:"max_batch"`
	// TurnTimeout folds a player who takes longer to act; zero disables it
	TurnTimeout time.Duration `yaml:"turnTimeout" envconfig:"turn_timeout"`
	// IdleTimeout closes a room nobody is connected to; zero keeps empty rooms open
	IdleTimeout time.Duration `yaml:"idleTimeout" envconfig:"idle_timeout"`
}

var config Config

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	cfg := Config{
		Addr:       ":7878",
		ProtocolID: ProtocolID,
		Codec:      "json",
		Room: Room{
			MaxPlayers:    6,
			BettingRounds: 4,
			StartingStack: 5000,
			TickRate:      10,
			MaxBatch:      64,
			TurnTimeout:   time.Second * 60,
			IdleTimeout:   time.Minute * 5,
		},
	}

	cfg.Log.Level = "info"
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}

	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// The YAML file is optional; environment variables prefixed with POKERROOM_ override it.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("POKERROOM_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if file != nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	}

	if err := envconfig.Process("pokerroom", &cfg); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}
