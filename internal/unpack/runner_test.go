package unpack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolenkov/unarch-bot/internal/i18n"
	"github.com/smolenkov/unarch-bot/types"
)

type fakeTaskStore struct {
	tasks map[int64]*types.OngoingTask
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[int64]*types.OngoingTask{}}
}

func (f *fakeTaskStore) AddOngoingTask(_ context.Context, task *types.OngoingTask) error {
	f.tasks[task.UserID] = task
	return nil
}

func (f *fakeTaskStore) GetOngoingTask(_ context.Context, userID int64) (*types.OngoingTask, error) {
	return f.tasks[userID], nil
}

func (f *fakeTaskStore) UpdateOngoingTask(_ context.Context, task *types.OngoingTask) error {
	f.tasks[task.UserID] = task
	return nil
}

func (f *fakeTaskStore) HasOngoingTask(_ context.Context, userID int64) (bool, error) {
	_, ok := f.tasks[userID]
	return ok, nil
}

func (f *fakeTaskStore) CountOngoingTasks(_ context.Context) (int, error) {
	return len(f.tasks), nil
}

func (f *fakeTaskStore) ListOngoingTasks(_ context.Context) ([]*types.OngoingTask, error) {
	out := make([]*types.OngoingTask, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskStore) DelOngoingTask(_ context.Context, userID int64) error {
	delete(f.tasks, userID)
	return nil
}

func (f *fakeTaskStore) PurgeOngoingTasks(_ context.Context) (int, error) {
	n := len(f.tasks)
	f.tasks = map[int64]*types.OngoingTask{}
	return n, nil
}

func TestEnqueuePositions(t *testing.T) {
	r := NewRunner(nil, nil, Config{Workers: 2})

	assert.Equal(t, 0, r.Enqueue(1, 10, 100, "a.zip", i18n.EN))
	assert.Equal(t, 0, r.Enqueue(2, 20, 200, "b.zip", i18n.EN))
	assert.Equal(t, 1, r.Enqueue(3, 30, 300, "c.zip", i18n.EN))
	assert.Equal(t, 2, r.Enqueue(4, 40, 400, "d.zip", i18n.EN))
}

func TestEnqueueDuplicate(t *testing.T) {
	r := NewRunner(nil, nil, Config{Workers: 2})

	assert.Equal(t, 0, r.Enqueue(7, 70, 700, "a.zip", i18n.EN))
	assert.Equal(t, -1, r.Enqueue(7, 70, 701, "a.zip", i18n.EN))
}

func TestDequeue(t *testing.T) {
	r := NewRunner(nil, nil, Config{Workers: 1})

	r.Enqueue(1, 10, 100, "a.zip", i18n.EN)
	r.Enqueue(2, 20, 200, "b.zip", i18n.EN)

	assert.False(t, r.Dequeue(1), "running task is not dequeueable")
	assert.True(t, r.Dequeue(2))
	assert.False(t, r.Dequeue(2), "already removed")
}

func TestRunning(t *testing.T) {
	r := NewRunner(newFakeTaskStore(), nil, Config{Workers: 1})

	r.Enqueue(1, 10, 100, "a.zip", i18n.EN)
	r.Enqueue(2, 20, 200, "b.zip", i18n.EN)

	assert.True(t, r.Running(1))
	assert.False(t, r.Running(2), "queued, not running")
	assert.False(t, r.Running(3), "unknown user")
}

func TestCompleteTaskOnlyDeletesOwnRecord(t *testing.T) {
	store := newFakeTaskStore()
	r := NewRunner(store, nil, Config{Workers: 1})
	ctx := context.Background()

	require.NoError(t, store.AddOngoingTask(ctx, &types.OngoingTask{ID: "t1", UserID: 7}))
	require.NoError(t, r.completeTask(ctx, 7, "t1"))
	task, err := store.GetOngoingTask(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, task, "matching record is removed")

	// The user cancelled and registered a fresh task while the old
	// worker was still finishing; its completion must not eat it.
	require.NoError(t, store.AddOngoingTask(ctx, &types.OngoingTask{ID: "t2", UserID: 7}))
	require.NoError(t, r.completeTask(ctx, 7, "t1"))
	task, err = store.GetOngoingTask(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, task, "newer record survives the stale completion")
	assert.Equal(t, "t2", task.ID)

	require.NoError(t, r.completeTask(ctx, 9, "t1"), "no record at all is a no-op")
}

func TestStartVolume(t *testing.T) {
	assert.Equal(t, "/tmp/x/big.7z.001", startVolume([]string{
		"/tmp/x/big.7z.002",
		"/tmp/x/big.7z.001",
		"/tmp/x/big.7z.003",
	}))
	assert.Equal(t, "/tmp/x/only.rar", startVolume([]string{"/tmp/x/only.rar"}))
}
