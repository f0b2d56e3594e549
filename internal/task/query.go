package task

import (
	"sort"
	"strings"
)

// Sentinel meaning "no constraint" for every Filter criterion.
const FilterAll = "All"

// Status values accepted by Filter.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Overdue values accepted by Filter.
const (
	OverdueYes = "Overdue"
	OverdueNo  = "Not Overdue"
)

// Sort keys and directions.
const (
	SortByDate     = "date"
	SortByPriority = "priority"
	SortByAlpha    = "alpha"
	SortByDue      = "due"

	Ascending  = "asc"
	Descending = "desc"
)

// Search returns tasks whose title, description, or recurrence pattern
// contains the keyword, case-insensitively. An empty keyword matches
// everything. Collection order is preserved.
func (s *Service) Search(keyword string) []*Task {
	if keyword == "" {
		return s.List()
	}
	kw := strings.ToLower(keyword)
	var out []*Task
	for _, t := range s.tasks {
		if strings.Contains(strings.ToLower(t.Title), kw) ||
			strings.Contains(strings.ToLower(t.Description), kw) ||
			strings.Contains(strings.ToLower(string(t.Recurrence)), kw) {
			out = append(out, t)
		}
	}
	return out
}

// Filter narrows the collection by the given criteria, ANDed together.
// Each criterion is either FilterAll or an exact match; order is preserved.
func (s *Service) Filter(status, priority, category, recurrence, overdue string) []*Task {
	var out []*Task
	for _, t := range s.tasks {
		if status != FilterAll && t.Completed != (status == StatusCompleted) {
			continue
		}
		if priority != FilterAll && string(t.Priority) != priority {
			continue
		}
		if category != FilterAll && string(t.Category) != category {
			continue
		}
		if recurrence != FilterAll && string(t.Recurrence) != recurrence {
			continue
		}
		if overdue != FilterAll && s.IsOverdue(t) != (overdue == OverdueYes) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// priorityRank orders High before Medium before Low; anything out of the
// enumeration sorts last.
func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Sort returns a new slice ordered by the given key; the input is left
// untouched. The sort is stable, and Descending reverses the whole
// ascending result (for the due key that includes the empty-date tail).
func Sort(tasks []*Task, sortBy, direction string) []*Task {
	out := make([]*Task, len(tasks))
	copy(out, tasks)

	switch sortBy {
	case SortByPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return priorityRank(out[i].Priority) < priorityRank(out[j].Priority)
		})
	case SortByAlpha:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	case SortByDue:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if (a == "") != (b == "") {
				return a != "" // empty due dates go to the end
			}
			return a < b
		})
	default: // SortByDate and anything unrecognized: creation order
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ID < out[j].ID
		})
	}

	if direction == Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
