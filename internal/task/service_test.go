package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(s string) func() time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func TestAdd(t *testing.T) {
	s := NewService()

	created, err := s.Add(Draft{OwnerID: 101, Title: "  Buy milk  ", Description: " 2 liters "})
	require.NoError(t, err)

	assert.Equal(t, 1, created.ID)
	assert.Equal(t, 101, created.OwnerID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "2 liters", created.Description)
	assert.False(t, created.Completed)
	assert.Equal(t, PriorityMedium, created.Priority)
	assert.Equal(t, CategoryPersonal, created.Category)
	assert.Equal(t, RecurNone, created.Recurrence)
	assert.Equal(t, RemindNone, created.Reminder)
	assert.False(t, created.ReminderShown)
	assert.False(t, created.Updated)
}

func TestAdd_IDsStrictlyIncrease(t *testing.T) {
	s := NewService()

	prev := 0
	for i := 0; i < 10; i++ {
		created, err := s.Add(Draft{Title: "x"})
		require.NoError(t, err)
		assert.Greater(t, created.ID, prev)
		prev = created.ID
	}
}

func TestAdd_IDNotReusedAfterDelete(t *testing.T) {
	s := NewService()

	first, err := s.Add(Draft{Title: "a"})
	require.NoError(t, err)
	require.True(t, s.Delete(first.ID))

	second, err := s.Add(Draft{Title: "b"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestAdd_EmptyTitle(t *testing.T) {
	s := NewService()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := s.Add(Draft{Title: title})
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, s.List())
}

func TestAdd_BadDueDate(t *testing.T) {
	s := NewService()

	_, err := s.Add(Draft{Title: "x", DueDate: "2024-13-40"})
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, s.List())
}

func TestAdd_CoercesInvalidEnumsSilently(t *testing.T) {
	s := NewService()

	created, err := s.Add(Draft{Title: "x", Recurrence: "Fortnightly", Reminder: "2 days"})
	require.NoError(t, err)
	assert.Equal(t, RecurNone, created.Recurrence)
	assert.Equal(t, RemindNone, created.Reminder)
}

func TestAdd_PriorityCategoryUnvalidated(t *testing.T) {
	s := NewService()

	created, err := s.Add(Draft{Title: "x", Priority: "Urgent", Category: "School"})
	require.NoError(t, err)
	assert.Equal(t, Priority("Urgent"), created.Priority)
	assert.Equal(t, Category("School"), created.Category)
}

func TestList_CopyOfContainerSharedTasks(t *testing.T) {
	s := NewService()
	created, err := s.Add(Draft{Title: "x"})
	require.NoError(t, err)

	got := s.List()
	require.Len(t, got, 1)

	// Appending to the returned slice must not grow engine state.
	_ = append(got, &Task{ID: 999})
	assert.Len(t, s.List(), 1)

	// But the elements are the live records.
	assert.Same(t, created, got[0])
}

func TestGet(t *testing.T) {
	s := NewService()
	created, err := s.Add(Draft{Title: "x"})
	require.NoError(t, err)

	got, ok := s.Get(created.ID)
	require.True(t, ok)
	assert.Same(t, created, got)

	_, ok = s.Get(999)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	s := NewService()
	a, _ := s.Add(Draft{Title: "a"})
	b, _ := s.Add(Draft{Title: "b"})

	assert.True(t, s.Delete(a.ID))
	assert.False(t, s.Delete(a.ID))

	got := s.List()
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestUpdate_RoundTrip(t *testing.T) {
	s := NewService()
	created, err := s.Add(Draft{Title: "old", Description: "keep me"})
	require.NoError(t, err)

	title := "X"
	_, err = s.Update(created.ID, Patch{Title: &title})
	require.NoError(t, err)

	got, ok := s.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, "keep me", got.Description)
	assert.True(t, got.Updated)
}

func TestUpdate_UnknownID(t *testing.T) {
	s := NewService()

	_, err := s.Update(42, Patch{})
	assert.ErrorIs(t, err, ErrNotFound)

	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, 42, nferr.ID)
}

func TestUpdate_EmptyTitleRejected(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "keep"})

	title := "   "
	_, err := s.Update(created.ID, Patch{Title: &title})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "keep", created.Title)
}

func TestUpdate_DueDateClearAndSet(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "x", DueDate: "2024-03-01"})

	empty := ""
	_, err := s.Update(created.ID, Patch{DueDate: &empty})
	require.NoError(t, err)
	assert.Equal(t, "", created.DueDate)

	due := "2024-04-01"
	_, err = s.Update(created.ID, Patch{DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", created.DueDate)
}

func TestUpdate_NonAtomic(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "old"})

	// Title applies before the due date is rejected and stays applied.
	title := "new"
	due := "garbage"
	_, err := s.Update(created.ID, Patch{Title: &title, DueDate: &due})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "new", created.Title)
	assert.Equal(t, "", created.DueDate)
	assert.True(t, created.Updated)
}

func TestUpdate_InvalidEnumsIgnoredSilently(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "x", Recurrence: RecurWeekly, Reminder: RemindAtDue})

	rec := Recurrence("Hourly")
	rem := ReminderOffset("5 minutes")
	_, err := s.Update(created.ID, Patch{Recurrence: &rec, Reminder: &rem})
	require.NoError(t, err)
	assert.Equal(t, RecurWeekly, created.Recurrence)
	assert.Equal(t, RemindAtDue, created.Reminder)
}

func TestUpdate_PriorityCategoryStoredAsGiven(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "x"})

	pr := Priority("Critical")
	cat := Category("Garage")
	_, err := s.Update(created.ID, Patch{Priority: &pr, Category: &cat})
	require.NoError(t, err)
	assert.Equal(t, Priority("Critical"), created.Priority)
	assert.Equal(t, Category("Garage"), created.Category)
}

func TestUpdate_ReminderResetsShownFlag(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "x", DueDate: "2024-03-01", Reminder: RemindAtDue})
	created.ReminderShown = true

	rem := RemindOneDay
	_, err := s.Update(created.ID, Patch{Reminder: &rem})
	require.NoError(t, err)
	assert.False(t, created.ReminderShown)
}

func TestUpdate_NoFieldsNoFlag(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "x"})

	_, err := s.Update(created.ID, Patch{})
	require.NoError(t, err)
	assert.False(t, created.Updated)
}

func TestToggleComplete_Involutive(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "x"})

	toggled, spawned, err := s.ToggleComplete(created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Nil(t, spawned)

	toggled, spawned, err = s.ToggleComplete(created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
	assert.Nil(t, spawned)
	assert.Len(t, s.List(), 1)
}

func TestToggleComplete_UnknownID(t *testing.T) {
	s := NewService()
	_, _, err := s.ToggleComplete(7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleComplete_SpawnsRecurring(t *testing.T) {
	s := NewService()
	created, err := s.Add(Draft{
		OwnerID:    101,
		Title:      "Pay rent",
		Priority:   PriorityHigh,
		Category:   CategoryHome,
		DueDate:    "2024-03-01",
		Recurrence: RecurMonthly,
		Reminder:   RemindOneDay,
	})
	require.NoError(t, err)

	toggled, spawned, err := s.ToggleComplete(created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	require.NotNil(t, spawned)
	assert.Equal(t, "2024-04-01", spawned.DueDate)
	assert.Equal(t, "Pay rent", spawned.Title)
	assert.Equal(t, 101, spawned.OwnerID)
	assert.Equal(t, PriorityHigh, spawned.Priority)
	assert.Equal(t, CategoryHome, spawned.Category)
	assert.Equal(t, RecurMonthly, spawned.Recurrence)
	assert.Equal(t, RemindOneDay, spawned.Reminder)
	assert.False(t, spawned.Completed)
	assert.Greater(t, spawned.ID, toggled.ID)
	assert.Len(t, s.List(), 2)
}

func TestToggleComplete_LeapYearClamp(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "x", DueDate: "2024-01-31", Recurrence: RecurMonthly})

	_, spawned, err := s.ToggleComplete(created.ID)
	require.NoError(t, err)
	require.NotNil(t, spawned)
	assert.Equal(t, "2024-02-29", spawned.DueDate)
}

func TestToggleComplete_NoSpawnWithoutDueDate(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "x", Recurrence: RecurDaily})

	_, spawned, err := s.ToggleComplete(created.ID)
	require.NoError(t, err)
	assert.Nil(t, spawned)
}

func TestToggleComplete_UncompleteKeepsSpawned(t *testing.T) {
	s := NewService()
	created, _ := s.Add(Draft{Title: "x", DueDate: "2024-03-01", Recurrence: RecurDaily})

	_, spawned, err := s.ToggleComplete(created.ID)
	require.NoError(t, err)
	require.NotNil(t, spawned)

	_, again, err := s.ToggleComplete(created.ID)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Len(t, s.List(), 2)
}

func TestIsOverdue(t *testing.T) {
	s := NewService()
	s.now = fixedNow("2024-03-15")

	past, _ := s.Add(Draft{Title: "past", DueDate: "2024-03-14"})
	today, _ := s.Add(Draft{Title: "today", DueDate: "2024-03-15"})
	future, _ := s.Add(Draft{Title: "future", DueDate: "2024-03-16"})
	dateless, _ := s.Add(Draft{Title: "dateless"})

	assert.True(t, s.IsOverdue(past))
	assert.False(t, s.IsOverdue(today))
	assert.False(t, s.IsOverdue(future))
	assert.False(t, s.IsOverdue(dateless))

	past.Completed = true
	assert.False(t, s.IsOverdue(past))
}

func TestSeed(t *testing.T) {
	s := NewService()
	s.Seed([]Task{
		{ID: 3, Title: "three"},
		{ID: 7, Title: "seven"},
	})

	got, ok := s.Get(7)
	require.True(t, ok)
	assert.Equal(t, "seven", got.Title)

	created, err := s.Add(Draft{Title: "next"})
	require.NoError(t, err)
	assert.Equal(t, 8, created.ID)
}

func TestErrorKindsAreDistinct(t *testing.T) {
	s := NewService()

	_, addErr := s.Add(Draft{Title: ""})
	_, updErr := s.Update(1, Patch{})

	assert.False(t, errors.Is(addErr, ErrNotFound))
	assert.False(t, errors.Is(updErr, ErrValidation))
}
