package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/safespot-sync/internal/domain"
)

func marshalReport(t *testing.T, r domain.Report) []byte {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return data
}

func TestApplyMessage(t *testing.T) {
	t.Run("insert and update by key", func(t *testing.T) {
		docs := make(map[string]domain.Report)

		first := domain.Report{Category: domain.CategoryDebris, Description: "tree down", Timestamp: 100}
		require.NoError(t, applyMessage(docs, []byte("a"), marshalReport(t, first)))
		require.Len(t, docs, 1)
		assert.Equal(t, "a", docs["a"].ID, "key overrides payload ID")

		second := first
		second.Description = "tree cleared"
		require.NoError(t, applyMessage(docs, []byte("a"), marshalReport(t, second)))
		assert.Len(t, docs, 1)
		assert.Equal(t, "tree cleared", docs["a"].Description)
	})

	t.Run("tombstone removes document", func(t *testing.T) {
		docs := map[string]domain.Report{"a": {ID: "a"}}
		require.NoError(t, applyMessage(docs, []byte("a"), nil))
		assert.Empty(t, docs)
	})

	t.Run("malformed value is an error, set untouched", func(t *testing.T) {
		docs := map[string]domain.Report{"a": {ID: "a"}}
		err := applyMessage(docs, []byte("b"), []byte("{not json"))
		require.Error(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("missing key is an error", func(t *testing.T) {
		err := applyMessage(map[string]domain.Report{}, nil, []byte("{}"))
		require.Error(t, err)
	})
}

func TestOrderedSnapshot(t *testing.T) {
	docs := map[string]domain.Report{
		"a": {ID: "a", Timestamp: 100},
		"b": {ID: "b", Timestamp: 300},
		"c": {ID: "c", Timestamp: 200},
		"d": {ID: "d", Timestamp: 200},
	}

	snapshot := orderedSnapshot(docs)

	require.Len(t, snapshot, 4)
	ids := []string{snapshot[0].ID, snapshot[1].ID, snapshot[2].ID, snapshot[3].ID}
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids, "timestamp descending, ID tiebreak")
}

func TestOrderedSnapshot_Empty(t *testing.T) {
	assert.Empty(t, orderedSnapshot(map[string]domain.Report{}))
}
