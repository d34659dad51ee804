package model

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	MemberID string `json:"member_id"`
	State    string `json:"state"`
}

func (testRecord) Scope() string { return "moderation" }

func (testRecord) Name() string { return "restore" }

func Test_Keys(t *testing.T) {
	require.Equal(t, "123.moderation.role.timeout", configKey("123", "moderation", "role.timeout"))
	require.Equal(t, "journal.moderation.restore", journalKey("moderation", "restore"))
}

func Test_Journal_Values(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	values, err := journalValues(testRecord{MemberID: "1", State: "fired"}, created)
	require.NoError(t, err)

	msg := &redis.XMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"created": strconv.FormatInt(values["created"].(int64), 10),
			"data":    values["data"],
		},
	}

	entry, err := journalEntry(msg)
	require.NoError(t, err)
	require.Equal(t, "1-0", entry.ID)
	require.Equal(t, created, entry.Created)

	var record testRecord
	require.NoError(t, json.Unmarshal(entry.Data, &record))
	require.Equal(t, testRecord{MemberID: "1", State: "fired"}, record)
}

func Test_Journal_Entry_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{
			name:   "created",
			values: map[string]interface{}{"created": "yesterday"},
		},
		{
			name:   "data",
			values: map[string]interface{}{"data": "{"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := journalEntry(&redis.XMessage{ID: "1-0", Values: tt.values})
			require.Error(t, err)
		})
	}
}
