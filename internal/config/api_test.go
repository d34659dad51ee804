package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sample = `
private:
  token: secret-token
  guild: "123456789"
  api_key: key
http:
  listen: 127.0.0.1:8080
roles:
  timeout: muted
moderation:
  max_timeout: 1h
  overlap: reject
`

func Test_Read(t *testing.T) {
	root, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	root.Defaults()

	require.Equal(t, "secret-token", root.Private.Token)
	require.Equal(t, "123456789", root.Private.GuildID)
	require.Equal(t, "127.0.0.1:8080", root.HTTP.Listen)
	require.Equal(t, "muted", root.Roles.Timeout)
	require.Equal(t, "banned", root.Roles.Banned)
	require.Equal(t, "newmember", root.Roles.Newcomer)
	require.Equal(t, time.Hour, root.Moderation.MaxTimeout)
	require.Equal(t, OverlapReject, root.Moderation.Overlap)
	require.Equal(t, "project-hq", root.Moderation.Channel)
	require.NoError(t, root.Validate())
}

func Test_Read_Empty(t *testing.T) {
	root, err := Read(strings.NewReader(""))
	require.NoError(t, err)

	root.Defaults()

	require.Equal(t, defaultListen, root.HTTP.Listen)
	require.Equal(t, OverlapAllow, root.Moderation.Overlap)
	require.ErrorIs(t, root.Validate(), ErrMissingToken)
}

func Test_ApplyEnv(t *testing.T) {
	env := map[string]string{
		"DISCORD_TOKEN": "env-token",
		"DISCORD_GUILD": "42",
		"API_KEY":       "env-key",
		"REDIS_DB":      "3",
		"HTTP_LISTEN":   "",
	}

	root := &Root{}
	root.HTTP.Listen = ":9000"
	root.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	require.Equal(t, "env-token", root.Private.Token)
	require.Equal(t, "42", root.Private.GuildID)
	require.Equal(t, "env-key", root.Private.APIKey)
	require.Equal(t, 3, root.Private.Redis.DB)
	require.Equal(t, ":9000", root.HTTP.Listen)
}

func Test_Validate(t *testing.T) {
	valid := func() *Root {
		root := &Root{}
		root.Private.Token = "t"
		root.Private.GuildID = "1"
		root.Private.APIKey = "k"
		root.Defaults()

		return root
	}

	tests := []struct {
		name    string
		mutate  func(root *Root)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Root) {}},
		{name: "missing api key", mutate: func(root *Root) { root.Private.APIKey = "" }, wantErr: true},
		{name: "non numeric guild", mutate: func(root *Root) { root.Private.GuildID = "guild" }, wantErr: true},
		{name: "unknown overlap", mutate: func(root *Root) { root.Moderation.Overlap = "queue" }, wantErr: true},
		{name: "unknown audit driver", mutate: func(root *Root) {
			root.Audit.DSN = "x"
			root.Audit.Driver = "mysql"
		}, wantErr: true},
		{name: "sqlite audit", mutate: func(root *Root) {
			root.Audit.DSN = ":memory:"
			root.Audit.Driver = "sqlite3"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := valid()
			tt.mutate(root)

			err := root.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func Test_Write(t *testing.T) {
	root := &Root{}
	root.Private.Token = "t"

	buf := &bytes.Buffer{}
	require.NoError(t, Write(buf, root))

	read, err := Read(buf)
	require.NoError(t, err)
	require.Equal(t, "t", read.Private.Token)
}

func Test_LoadEnv_Missing(t *testing.T) {
	require.NoError(t, LoadEnv(t.TempDir()+"/absent.env"))
}

func Test_Moderation_RejectsOverlap(t *testing.T) {
	require.False(t, (&Moderation{Overlap: OverlapAllow}).RejectsOverlap())
	require.True(t, (&Moderation{Overlap: OverlapReject}).RejectsOverlap())
	require.False(t, (&Moderation{}).RejectsOverlap())
}
