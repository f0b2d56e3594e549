// Package task implements the in-memory task engine: the entity, its
// enumerations, and the service owning the collection.
package task

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryHome     Category = "Home"
	CategoryPersonal Category = "Personal"
)

type Recurrence string

const (
	RecurNone    Recurrence = "None"
	RecurDaily   Recurrence = "Daily"
	RecurWeekly  Recurrence = "Weekly"
	RecurMonthly Recurrence = "Monthly"
)

type ReminderOffset string

const (
	RemindNone   ReminderOffset = "None"
	RemindOneDay ReminderOffset = "1 day"
	RemindHour   ReminderOffset = "1 hour"
	RemindAtDue  ReminderOffset = "At due"
)

func (r Recurrence) valid() bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

func (o ReminderOffset) valid() bool {
	switch o {
	case RemindNone, RemindOneDay, RemindHour, RemindAtDue:
		return true
	}
	return false
}

// Task is one todo item. Instances are owned by the Service's collection;
// callers hold shared pointers and route mutations back through the Service.
type Task struct {
	ID          int
	OwnerID     int
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	Category    Category
	DueDate     string // YYYY-MM-DD, empty = no due date
	Recurrence  Recurrence
	Reminder    ReminderOffset
	// ReminderShown suppresses repeat notifications; reset when the
	// reminder offset changes.
	ReminderShown bool
	// Updated flips to true on the first successful field update and is
	// never cleared.
	Updated bool
}
