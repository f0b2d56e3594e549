// Package reminder decides which tasks need a notification shown now.
// It never owns tasks: it observes the engine's records and flips their
// shown flag once the menu layer has displayed the message.
package reminder

import (
	"fmt"
	"time"

	"taskman/internal/dateutil"
	"taskman/internal/task"
)

type Evaluator struct {
	now func() time.Time
}

func NewEvaluator() *Evaluator {
	return &Evaluator{now: time.Now}
}

// Due returns the tasks whose reminder should fire now, in input order.
func (e *Evaluator) Due(tasks []*task.Task) []*task.Task {
	var due []*task.Task
	for _, t := range tasks {
		if e.IsDue(t) {
			due = append(due, t)
		}
	}
	return due
}

// IsDue reports whether t's reminder instant has been reached. Completed
// tasks, tasks without a reminder or due date, and already-shown reminders
// never fire. The model carries date-only precision, so the "1 hour"
// offset degrades to the due day itself. Unparseable due dates yield false.
func (e *Evaluator) IsDue(t *task.Task) bool {
	if t.Reminder == task.RemindNone || t.ReminderShown || t.Completed || t.DueDate == "" {
		return false
	}
	due, err := dateutil.Parse(t.DueDate)
	if err != nil {
		return false
	}

	var at time.Time
	switch t.Reminder {
	case task.RemindOneDay:
		at = due.AddDate(0, 0, -1)
	case task.RemindHour, task.RemindAtDue:
		at = due
	default:
		return false
	}
	return !e.now().Before(at)
}

// MarkShown records that t's reminder has been displayed so it does not
// fire again.
func (e *Evaluator) MarkShown(t *task.Task) {
	t.ReminderShown = true
}

// Format renders the notification line the menu shows for t.
func (e *Evaluator) Format(t *task.Task) string {
	return fmt.Sprintf("Task '%s' is due on %s!", t.Title, t.DueDate)
}
