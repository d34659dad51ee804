package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func Test_Store_RecordRecent(t *testing.T) {
	store := newTestStore(t)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	ctx := context.Background()

	first := &Entry{
		Action:     ActionTimeout,
		GuildID:    "1",
		TargetID:   "10",
		TargetName: "troll",
		Detail:     "60s",
		Actor:      "127.0.0.1",
	}
	require.NoError(t, store.Record(ctx, first))
	require.NotZero(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	second := &Entry{
		Action:   ActionRestore,
		GuildID:  "1",
		TargetID: "10",
		Detail:   "fired",
	}
	require.NoError(t, store.Record(ctx, second))
	require.Greater(t, second.ID, first.ID)

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, ActionRestore, entries[0].Action)
	require.Equal(t, ActionTimeout, entries[1].Action)
	require.Equal(t, "troll", entries[1].TargetName)
	require.True(t, first.CreatedAt.Equal(entries[1].CreatedAt))

	entries, err = store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, second.ID, entries[0].ID)
}

func Test_Open_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	require.Error(t, err)
}

func Test_Nop(t *testing.T) {
	var recorder Recorder = Nop{}

	require.NoError(t, recorder.Record(context.Background(), &Entry{}))

	entries, err := recorder.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.NoError(t, recorder.Close())
}
