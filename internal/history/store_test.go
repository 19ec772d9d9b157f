package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := NewRun("train")
	run.TrainPath, run.TestPath, run.ModelPath = "train.tsv", "test.tsv", "model.zip"
	run.Accuracy, run.AUC, run.F1Score = 0.9, 0.95, 0.88
	run.SetStatus(RunCompleted)

	require.NoError(t, store.Record(ctx, run))

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "train", got.Action)
	assert.Equal(t, RunCompleted, got.Status)
	assert.True(t, run.StartTime.Equal(got.StartTime))
	require.NotNil(t, got.EndTime)
	assert.True(t, run.EndTime.Equal(*got.EndTime))
	assert.Equal(t, "model.zip", got.ModelPath)
	assert.Equal(t, 0.95, got.AUC)
	assert.Empty(t, got.Error)
}

func TestRecordReplaces(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := NewRun("predict")
	run.SetStatus(RunRunning)
	require.NoError(t, store.Record(ctx, run))

	run.SetError(errors.New("failed to load model"))
	require.NoError(t, store.Record(ctx, run))

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunFailed, got.Status)
	assert.Equal(t, "failed to load model", got.Error)

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestListNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		run := NewRun("train")
		run.StartTime = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.Record(ctx, run))
		ids = append(ids, run.ID)
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Nil(t, runs[0].EndTime)
}

func TestGetMissing(t *testing.T) {
	_, err := openStore(t).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunLifecycle(t *testing.T) {
	run := NewRun("train")
	assert.Equal(t, RunPending, run.Status)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, time.Duration(0), run.Duration())

	run.SetStatus(RunRunning)
	assert.Nil(t, run.EndTime)

	run.SetError(nil)
	assert.Equal(t, RunFailed, run.Status)
	require.NotNil(t, run.EndTime)
	assert.GreaterOrEqual(t, run.Duration(), time.Duration(0))
}
