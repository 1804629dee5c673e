package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actionskit/internal/types"
)

func TestFileTurnLogAppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "turns.jsonl")
	f := NewFileTurnLog(path)

	recs := []types.TurnRecord{
		{ID: "t1", ConversationID: "c1", Intent: "actions.intent.MAIN", Reply: "hi", CreatedAt: time.Now().UTC()},
		{ID: "t2", ConversationID: "c1", Intent: "actions.intent.TEXT", Query: "menu", Reply: "here", CreatedAt: time.Now().UTC()},
	}
	for _, rec := range recs {
		require.NoError(t, f.Append(rec))
	}

	got, err := f.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "menu", got[1].Query)
}

func TestFileTurnLogMissingFileReadsEmpty(t *testing.T) {
	f := NewFileTurnLog(filepath.Join(t.TempDir(), "nope.jsonl"))

	got, err := f.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileTurnLogSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turns.jsonl")
	f := NewFileTurnLog(path)
	require.NoError(t, f.Append(types.TurnRecord{ID: "t1", ConversationID: "c1"}))

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
	require.NoError(t, err)
	_, err = file.WriteString("{not json}\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, f.Append(types.TurnRecord{ID: "t2", ConversationID: "c1"}))

	got, err := f.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)
}
