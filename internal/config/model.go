package config

import (
	"time"
)

// Redis connection part of configuration
type Redis struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Audit database part of configuration
type Audit struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// HTTP listener part of configuration
type HTTP struct {
	Listen      string   `yaml:"listen"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Roles names guild roles moderation operates on
type Roles struct {
	Admin    string `yaml:"admin"`
	Banned   string `yaml:"banned"`
	Timeout  string `yaml:"timeout"`
	Newcomer string `yaml:"newcomer"`
	Member   string `yaml:"member"`
}

// Moderation behaviour part of configuration
type Moderation struct {
	Channel                  string        `yaml:"channel"`
	MaxTimeout               time.Duration `yaml:"max_timeout"`
	Overlap                  string        `yaml:"overlap"`
	ExcludeTiersFromSnapshot bool          `yaml:"exclude_tiers_from_snapshot"`
	ProtectAdministrators    bool          `yaml:"protect_administrators"`
	JournalLength            int64         `yaml:"journal_length"`
}

// Private part of configuration
type Private struct {
	Token      string `yaml:"token"`
	GuildID    string `yaml:"guild"`
	APIKey     string `yaml:"api_key"`
	NotifyUser string `yaml:"notify_user"`
	LogLevel   string `yaml:"log_level"`
	Redis      Redis  `yaml:"redis"`
}

// Root of configuration
type Root struct {
	Private    Private    `yaml:"private"`
	HTTP       HTTP       `yaml:"http"`
	Roles      Roles      `yaml:"roles"`
	Moderation Moderation `yaml:"moderation"`
	Audit      Audit      `yaml:"audit"`
}
