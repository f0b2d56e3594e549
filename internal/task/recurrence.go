package task

import "taskman/internal/dateutil"

// NextDue computes the due date of the follow-up instance a completed
// recurring task spawns. An empty current date or a None pattern yields "";
// an unparseable date comes back unchanged rather than failing.
func NextDue(current string, pattern Recurrence) string {
	if current == "" {
		return ""
	}
	switch pattern {
	case RecurDaily:
		return dateutil.AddDays(current, 1)
	case RecurWeekly:
		return dateutil.AddDays(current, 7)
	case RecurMonthly:
		return dateutil.AddMonthsClamped(current, 1)
	}
	return ""
}
