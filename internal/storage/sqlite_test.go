package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repodoc/pkg/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSnapshot(t *testing.T, store *SQLiteStore) *Snapshot {
	t.Helper()
	snap := &Snapshot{RootPath: "/repo", Hash: "abc123", FileCount: 4}
	require.NoError(t, store.CreateSnapshot(context.Background(), snap))
	require.NotZero(t, snap.ID)
	return snap
}

func testPartition() *types.Partition {
	return &types.Partition{
		Method: "structural",
		Sections: []types.Section{
			types.NewSection("api", []types.FileRecord{
				{Path: "api/a.py", Size: 10},
				{Path: "api/b.py", Size: 5},
			}),
			types.NewSection("models", []types.FileRecord{
				{Path: "models/m.py", Size: 3},
			}),
		},
	}
}

func TestCreateSnapshot_DuplicateRejected(t *testing.T) {
	store := newTestStore(t)
	testSnapshot(t, store)

	dup := &Snapshot{RootPath: "/repo", Hash: "abc123", FileCount: 4}
	err := store.CreateSnapshot(context.Background(), dup)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// same path with different content is a new snapshot
	other := &Snapshot{RootPath: "/repo", Hash: "def456", FileCount: 5}
	assert.NoError(t, store.CreateSnapshot(context.Background(), other))
}

func TestGetSnapshot(t *testing.T) {
	store := newTestStore(t)
	created := testSnapshot(t, store)

	got, err := store.GetSnapshot(context.Background(), "/repo", "abc123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 4, got.FileCount)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = store.GetSnapshot(context.Background(), "/repo", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSavePartition_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	snap := testSnapshot(t, store)
	key := PartitionKey{SnapshotID: snap.ID, Method: "structural", MinSize: 2, MaxSize: 15}

	id, err := store.SavePartition(context.Background(), key, testPartition())
	require.NoError(t, err)
	require.NotZero(t, id)

	gotID, got, err := store.GetPartition(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "structural", got.Method)
	require.Len(t, got.Sections, 2)

	// section order and content survive the roundtrip; file records carry
	// paths only
	assert.Equal(t, "api", got.Sections[0].Name)
	assert.Equal(t, []string{"api/a.py", "api/b.py"}, got.Sections[0].Paths())
	assert.Equal(t, 15, got.Sections[0].TotalSize)
	assert.Empty(t, got.Sections[0].Files[0].Content)
	assert.Equal(t, "models", got.Sections[1].Name)
}

func TestSavePartition_ReplacesPrevious(t *testing.T) {
	store := newTestStore(t)
	snap := testSnapshot(t, store)
	key := PartitionKey{SnapshotID: snap.ID, Method: "structural", MinSize: 2, MaxSize: 15}

	firstID, err := store.SavePartition(context.Background(), key, testPartition())
	require.NoError(t, err)

	replacement := &types.Partition{
		Method: "structural",
		Sections: []types.Section{
			types.NewSection("everything", []types.FileRecord{{Path: "x.py", Size: 1}}),
		},
	}
	secondID, err := store.SavePartition(context.Background(), key, replacement)
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	_, got, err := store.GetPartition(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "everything", got.Sections[0].Name)
}

func TestGetPartition_KeyedByMethodAndBounds(t *testing.T) {
	store := newTestStore(t)
	snap := testSnapshot(t, store)
	key := PartitionKey{SnapshotID: snap.ID, Method: "structural", MinSize: 2, MaxSize: 15}

	_, err := store.SavePartition(context.Background(), key, testPartition())
	require.NoError(t, err)

	other := key
	other.Method = "hybrid"
	_, _, err = store.GetPartition(context.Background(), other)
	assert.ErrorIs(t, err, ErrNotFound)

	other = key
	other.MaxSize = 10
	_, _, err = store.GetPartition(context.Background(), other)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePartitionsBySnapshot(t *testing.T) {
	store := newTestStore(t)
	snap := testSnapshot(t, store)
	key := PartitionKey{SnapshotID: snap.ID, Method: "structural", MinSize: 2, MaxSize: 15}

	_, err := store.SavePartition(context.Background(), key, testPartition())
	require.NoError(t, err)

	require.NoError(t, store.DeletePartitionsBySnapshot(context.Background(), snap.ID))
	_, _, err = store.GetPartition(context.Background(), key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAnalysis_UpsertsByRunAndSection(t *testing.T) {
	store := newTestStore(t)
	snap := testSnapshot(t, store)
	key := PartitionKey{SnapshotID: snap.ID, Method: "structural", MinSize: 2, MaxSize: 15}
	partitionID, err := store.SavePartition(context.Background(), key, testPartition())
	require.NoError(t, err)

	a := &Analysis{RunID: "run-1", PartitionID: partitionID, SectionName: "api", State: "failed", Error: "model down"}
	require.NoError(t, store.SaveAnalysis(context.Background(), a))

	// a retry of the same section in the same run overwrites
	retry := &Analysis{RunID: "run-1", PartitionID: partitionID, SectionName: "api", State: "completed", Analysis: "handles requests"}
	require.NoError(t, store.SaveAnalysis(context.Background(), retry))

	got, err := store.ListAnalysesByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "completed", got[0].State)
	assert.Equal(t, "handles requests", got[0].Analysis)
	assert.Empty(t, got[0].Error)
}

func TestListAnalyses(t *testing.T) {
	store := newTestStore(t)
	snap := testSnapshot(t, store)
	key := PartitionKey{SnapshotID: snap.ID, Method: "structural", MinSize: 2, MaxSize: 15}
	partitionID, err := store.SavePartition(context.Background(), key, testPartition())
	require.NoError(t, err)

	for _, a := range []*Analysis{
		{RunID: "run-1", PartitionID: partitionID, SectionName: "models", State: "completed", Analysis: "data types"},
		{RunID: "run-1", PartitionID: partitionID, SectionName: "api", State: "completed", Analysis: "handlers"},
		{RunID: "run-2", PartitionID: partitionID, SectionName: "api", State: "completed", Analysis: "handlers again"},
	} {
		require.NoError(t, store.SaveAnalysis(context.Background(), a))
	}

	byRun, err := store.ListAnalysesByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, byRun, 2)
	assert.Equal(t, "api", byRun[0].SectionName)
	assert.Equal(t, "models", byRun[1].SectionName)

	byPartition, err := store.ListAnalysesByPartition(context.Background(), partitionID)
	require.NoError(t, err)
	assert.Len(t, byPartition, 3)

	empty, err := store.ListAnalysesByRun(context.Background(), "run-none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
