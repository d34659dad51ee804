// Package config with configuration models and utilities
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"
)

// Overlap policies for repeated timeouts of the same member
const (
	OverlapAllow  = "allow"
	OverlapReject = "reject"
)

const (
	defaultListen        = "0.0.0.0:5000"
	defaultChannel       = "project-hq"
	defaultMaxTimeout    = 28 * 24 * time.Hour
	defaultJournalLength = 1000
)

var (
	// ErrMissingToken is returned when discord token is not configured
	ErrMissingToken = errors.New("missing discord token")
	// ErrMissingGuild is returned when target guild is not configured
	ErrMissingGuild = errors.New("missing guild id")
	// ErrMissingAPIKey is returned when api key is not configured
	ErrMissingAPIKey = errors.New("missing api key")
)

// Read reads configuration
func Read(reader io.Reader) (root *Root, err error) {
	root = &Root{}

	err = yaml.NewDecoder(reader).Decode(root)
	if errors.Is(err, io.EOF) {
		err = nil
	}

	return
}

// Write writes configuration
func Write(writer io.Writer, root *Root) (err error) {
	err = yaml.NewEncoder(writer).Encode(root)

	return
}

// LoadEnv loads dotenv files into process environment, missing files are skipped
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	return nil
}

// ApplyEnv overrides configuration values with environment variables
func (root *Root) ApplyEnv(lookup func(key string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set("DISCORD_TOKEN", &root.Private.Token)
	set("DISCORD_GUILD", &root.Private.GuildID)
	set("API_KEY", &root.Private.APIKey)
	set("NOTIFY_USER", &root.Private.NotifyUser)
	set("LOG_LEVEL", &root.Private.LogLevel)
	set("REDIS_ADDRESS", &root.Private.Redis.Address)
	set("REDIS_PASSWORD", &root.Private.Redis.Password)
	set("AUDIT_DRIVER", &root.Audit.Driver)
	set("AUDIT_DSN", &root.Audit.DSN)
	set("HTTP_LISTEN", &root.HTTP.Listen)

	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			root.Private.Redis.DB = db
		}
	}
}

// Defaults fills unset values
func (root *Root) Defaults() {
	if root.HTTP.Listen == "" {
		root.HTTP.Listen = defaultListen
	}

	if root.Private.LogLevel == "" {
		root.Private.LogLevel = "info"
	}

	defaultString(&root.Roles.Admin, "admin")
	defaultString(&root.Roles.Banned, "banned")
	defaultString(&root.Roles.Timeout, "timeout")
	defaultString(&root.Roles.Newcomer, "newmember")
	defaultString(&root.Roles.Member, "member")

	defaultString(&root.Moderation.Channel, defaultChannel)
	defaultString(&root.Moderation.Overlap, OverlapAllow)

	if root.Moderation.MaxTimeout == 0 {
		root.Moderation.MaxTimeout = defaultMaxTimeout
	}

	if root.Moderation.JournalLength == 0 {
		root.Moderation.JournalLength = defaultJournalLength
	}

	if root.Audit.DSN != "" && root.Audit.Driver == "" {
		root.Audit.Driver = "postgres"
	}
}

// Validate checks configuration for missing or invalid values
func (root *Root) Validate() error {
	switch {
	case root.Private.Token == "":
		return ErrMissingToken
	case root.Private.GuildID == "":
		return ErrMissingGuild
	case root.Private.APIKey == "":
		return ErrMissingAPIKey
	}

	if _, err := strconv.ParseUint(root.Private.GuildID, 10, 64); err != nil {
		return fmt.Errorf("invalid guild id %q", root.Private.GuildID)
	}

	switch root.Moderation.Overlap {
	case OverlapAllow, OverlapReject:
	default:
		return fmt.Errorf("invalid overlap policy %q", root.Moderation.Overlap)
	}

	if root.Audit.DSN != "" {
		switch strings.ToLower(root.Audit.Driver) {
		case "postgres", "sqlite3":
		default:
			return fmt.Errorf("unsupported audit driver %q", root.Audit.Driver)
		}
	}

	return nil
}

func defaultString(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

// RejectsOverlap returns true if repeated timeouts of the same member are refused
func (moderation *Moderation) RejectsOverlap() bool {
	return moderation.Overlap == OverlapReject
}
