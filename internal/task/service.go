package task

import (
	"strings"
	"time"

	"taskman/internal/dateutil"
)

// Draft carries the fields for a new task. Zero values fall back to the
// documented defaults (Medium priority, Personal category, no recurrence,
// no reminder).
type Draft struct {
	OwnerID     int
	Title       string
	Description string
	Priority    Priority
	Category    Category
	DueDate     string
	Recurrence  Recurrence
	Reminder    ReminderOffset
}

// Patch names the fields Update recognizes. Nil means "no change".
type Patch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Category    *Category
	DueDate     *string
	Recurrence  *Recurrence
	Reminder    *ReminderOffset
}

// Service owns the task collection and the id counter. It is the sole
// store of record: List hands out shared pointers, never deep copies, and
// every mutation routes back through here. Single-threaded by contract.
type Service struct {
	tasks  []*Task
	nextID int
	now    func() time.Time
}

func NewService() *Service {
	return &Service{nextID: 1, now: time.Now}
}

// Seed replaces the collection with previously persisted tasks and bumps
// the id counter past the largest seen id.
func (s *Service) Seed(tasks []Task) {
	s.tasks = make([]*Task, 0, len(tasks))
	s.nextID = 1
	for i := range tasks {
		t := tasks[i]
		s.tasks = append(s.tasks, &t)
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
}

// Add creates a task from the draft. Title must trim to non-empty and a
// non-empty due date must be a valid YYYY-MM-DD date. Out-of-enum
// recurrence and reminder values are silently coerced to None; priority
// and category are stored as given.
func (s *Service) Add(d Draft) (*Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, validationf("Task title cannot be empty")
	}
	if d.DueDate != "" && !dateutil.Valid(d.DueDate) {
		return nil, validationf("Invalid due date: %s (expected YYYY-MM-DD)", d.DueDate)
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if d.Category == "" {
		d.Category = CategoryPersonal
	}
	if !d.Recurrence.valid() {
		d.Recurrence = RecurNone
	}
	if !d.Reminder.valid() {
		d.Reminder = RemindNone
	}

	t := &Task{
		ID:          s.nextID,
		OwnerID:     d.OwnerID,
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Priority:    d.Priority,
		Category:    d.Category,
		DueDate:     d.DueDate,
		Recurrence:  d.Recurrence,
		Reminder:    d.Reminder,
	}
	s.tasks = append(s.tasks, t)
	s.nextID++
	return t, nil
}

// List returns the tasks in creation order. The slice is a fresh copy;
// the pointed-to tasks are the live records.
func (s *Service) List() []*Task {
	out := make([]*Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Service) Get(id int) (*Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Delete removes the task with the given id, reporting whether it existed.
// Freed ids are never reused.
func (s *Service) Delete(id int) bool {
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Update applies the patch field by field, in declaration order. Validation
// is interleaved with assignment, not transactional: if the due date is
// rejected after the title already applied, the title stays applied. An
// out-of-enum recurrence or reminder value is ignored without error;
// priority and category are stored unchecked. Updated flips as soon as any
// field lands.
func (s *Service) Update(id int, p Patch) (*Task, error) {
	t, ok := s.Get(id)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, validationf("Task title cannot be empty")
		}
		t.Title = title
		t.Updated = true
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
		t.Updated = true
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
		t.Updated = true
	}
	if p.Category != nil {
		t.Category = *p.Category
		t.Updated = true
	}
	if p.DueDate != nil {
		due := *p.DueDate
		if due != "" && !dateutil.Valid(due) {
			return nil, validationf("Invalid due date: %s (expected YYYY-MM-DD)", due)
		}
		t.DueDate = due
		t.Updated = true
	}
	if p.Recurrence != nil && p.Recurrence.valid() {
		t.Recurrence = *p.Recurrence
		t.Updated = true
	}
	if p.Reminder != nil && p.Reminder.valid() {
		t.Reminder = *p.Reminder
		t.ReminderShown = false
		t.Updated = true
	}
	return t, nil
}

// ToggleComplete flips the completion flag. Completing a recurring task
// with a due date spawns the next instance; the spawned task (or nil) is
// returned alongside the toggled one. Un-completing never retracts a
// previously spawned instance.
func (s *Service) ToggleComplete(id int) (*Task, *Task, error) {
	t, ok := s.Get(id)
	if !ok {
		return nil, nil, &NotFoundError{ID: id}
	}
	t.Completed = !t.Completed

	if !t.Completed || t.Recurrence == RecurNone || t.DueDate == "" {
		return t, nil, nil
	}
	next := NextDue(t.DueDate, t.Recurrence)
	if next == "" {
		return t, nil, nil
	}
	spawned, err := s.Add(Draft{
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Category:    t.Category,
		DueDate:     next,
		Recurrence:  t.Recurrence,
		Reminder:    t.Reminder,
	})
	if err != nil {
		// The source task already passed the same validation.
		return t, nil, err
	}
	return t, spawned, nil
}

// IsOverdue reports whether t is incomplete with a due date strictly in
// the past. Date-only comparison; an unparseable due date is not overdue.
func (s *Service) IsOverdue(t *Task) bool {
	if t.DueDate == "" || t.Completed {
		return false
	}
	due, err := dateutil.Parse(t.DueDate)
	if err != nil {
		return false
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}
