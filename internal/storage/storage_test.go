package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskman/internal/task"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestLoadAll_EmptyStore(t *testing.T) {
	s, _ := openTestStore(t)

	got, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, path := openTestStore(t)

	tasks := []*task.Task{
		{
			ID: 1, OwnerID: 101, Title: "Pay rent", Description: "transfer",
			Priority: task.PriorityHigh, Category: task.CategoryHome,
			DueDate: "2024-03-01", Recurrence: task.RecurMonthly,
			Reminder: task.RemindOneDay,
		},
		{
			ID: 4, OwnerID: 101, Title: "Read", Completed: true,
			Priority: task.PriorityLow, Category: task.CategoryPersonal,
			Recurrence: task.RecurNone, Reminder: task.RemindNone,
			ReminderShown: true, Updated: true,
		},
	}
	require.NoError(t, s.ReplaceAll(tasks))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.LoadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, *tasks[0], got[0])
	assert.Equal(t, *tasks[1], got[1])
}

func TestReplaceAll_Overwrites(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.ReplaceAll([]*task.Task{
		{ID: 1, Title: "a", Priority: task.PriorityMedium, Category: task.CategoryPersonal,
			Recurrence: task.RecurNone, Reminder: task.RemindNone},
		{ID: 2, Title: "b", Priority: task.PriorityMedium, Category: task.CategoryPersonal,
			Recurrence: task.RecurNone, Reminder: task.RemindNone},
	}))
	require.NoError(t, s.ReplaceAll([]*task.Task{
		{ID: 2, Title: "b renamed", Priority: task.PriorityMedium, Category: task.CategoryPersonal,
			Recurrence: task.RecurNone, Reminder: task.RemindNone},
	}))

	got, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b renamed", got[0].Title)
	assert.Equal(t, 2, got[0].ID)
}

func TestSeedFromSnapshot(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.ReplaceAll([]*task.Task{
		{ID: 5, Title: "persisted", Priority: task.PriorityMedium, Category: task.CategoryPersonal,
			Recurrence: task.RecurNone, Reminder: task.RemindNone},
	}))

	loaded, err := s.LoadAll()
	require.NoError(t, err)

	svc := task.NewService()
	svc.Seed(loaded)

	created, err := svc.Add(task.Draft{Title: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, 6, created.ID)
}
