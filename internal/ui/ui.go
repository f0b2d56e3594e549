// Package ui is the text-menu presentation layer. It renders the engine's
// read operations and routes every mutation back through the service; no
// task semantics live here.
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskman/internal/config"
	"taskman/internal/reminder"
	"taskman/internal/storage"
	"taskman/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeMeta
	modeSearch
)

var filterCycle = []string{"all", "pending", "completed", "overdue"}

var sortCycle = []string{task.SortByDate, task.SortByPriority, task.SortByAlpha, task.SortByDue}

var (
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	noticeStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Foreground(lipgloss.Color("11"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

type metaState struct {
	taskID      int
	title       string
	description string
	priority    string
	category    string
	due         string
	recurrence  string
	remind      string
	index       int
}

type Model struct {
	svc   *task.Service
	store *storage.Store // nil when persistence is disabled
	eval  *reminder.Evaluator
	cfg   config.Config

	rows    []*task.Task
	notices []string

	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	keyword    string
	filterBy   string
	sortBy     string
	direction  string
	confirmDel bool
	pendingDel *task.Task
	meta       *metaState
}

func Run(svc *task.Service, store *storage.Store, eval *reminder.Evaluator, cfg config.Config) error {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		svc:       svc,
		store:     store,
		eval:      eval,
		cfg:       cfg,
		input:     ti,
		mode:      modeList,
		filterBy:  normalizeFilter(cfg.DefaultFilter),
		sortBy:    task.SortByDate,
		direction: task.Ascending,
		status:    "Press 'a' to add, space to toggle, 'd' to delete.",
	}
	m.refresh()

	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func normalizeFilter(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, f := range filterCycle {
		if v == f {
			return v
		}
	}
	return "all"
}

// refresh rebuilds the visible rows from the engine and collects any
// reminders that became due.
func (m *Model) refresh() {
	rows := m.filtered()
	if m.keyword != "" {
		matched := map[int]bool{}
		for _, t := range m.svc.Search(m.keyword) {
			matched[t.ID] = true
		}
		kept := rows[:0:0]
		for _, t := range rows {
			if matched[t.ID] {
				kept = append(kept, t)
			}
		}
		rows = kept
	}
	m.rows = task.Sort(rows, m.sortBy, m.direction)
	m.cursor = clampCursor(m.cursor, len(m.rows))

	m.notices = nil
	for _, t := range m.eval.Due(m.svc.List()) {
		m.notices = append(m.notices, m.eval.Format(t))
		m.eval.MarkShown(t)
	}
	if len(m.notices) > 0 {
		m.persist()
	}
}

func (m *Model) filtered() []*task.Task {
	switch m.filterBy {
	case "pending":
		return m.svc.Filter(task.StatusPending, task.FilterAll, task.FilterAll, task.FilterAll, task.FilterAll)
	case "completed":
		return m.svc.Filter(task.StatusCompleted, task.FilterAll, task.FilterAll, task.FilterAll, task.FilterAll)
	case "overdue":
		return m.svc.Filter(task.FilterAll, task.FilterAll, task.FilterAll, task.FilterAll, task.OverdueYes)
	default:
		return m.svc.List()
	}
}

func (m *Model) persist() {
	if m.store == nil {
		return
	}
	if err := m.store.ReplaceAll(m.svc.List()); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.meta != nil {
			return m.updateMetaMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeSearch:
		return m.updateSearchMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.SetValue("")
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		created, err := m.svc.Add(task.Draft{
			OwnerID: m.cfg.OwnerID,
			Title:   m.input.Value(),
		})
		if err != nil {
			m.status = errorStatus(err)
			return m, nil
		}
		m.persist()
		m.keyword = ""
		m.refresh()
		m.cursorTo(created.ID)
		m.status = fmt.Sprintf("Task added successfully! (ID: %d)", created.ID)
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Search cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		m.keyword = strings.TrimSpace(m.input.Value())
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.refresh()
		if m.keyword == "" {
			m.status = "Search cleared"
		} else {
			m.status = fmt.Sprintf("Search: %q (%d match(es))", m.keyword, len(m.rows))
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.rows) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		}
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.input.Placeholder = "Task title"
		m.input.Focus()
		m.status = "Add mode: type a title and press Enter"
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.Placeholder = "Search keyword"
		m.input.SetValue(m.keyword)
		m.input.Focus()
		m.status = "Search: keyword matches title, description, or recurrence"
	case m.cfg.Keys.Filter:
		m.filterBy = nextIn(filterCycle, m.filterBy)
		m.refresh()
		m.status = "Filter: " + m.filterBy
	case m.cfg.Keys.Sort:
		m.sortBy = nextIn(sortCycle, m.sortBy)
		m.refresh()
		m.status = fmt.Sprintf("Sort: %s (%s)", m.sortBy, m.direction)
	case m.cfg.Keys.Reverse:
		if m.direction == task.Ascending {
			m.direction = task.Descending
		} else {
			m.direction = task.Ascending
		}
		m.refresh()
		m.status = fmt.Sprintf("Sort: %s (%s)", m.sortBy, m.direction)
	case m.cfg.Keys.Toggle:
		if len(m.rows) == 0 {
			return m, nil
		}
		toggled, spawned, err := m.svc.ToggleComplete(m.rows[m.cursor].ID)
		if err != nil {
			m.status = errorStatus(err)
			return m, nil
		}
		m.persist()
		m.refresh()
		if spawned != nil {
			m.status = fmt.Sprintf("Task %d completed; next occurrence due %s (ID: %d)",
				toggled.ID, spawned.DueDate, spawned.ID)
		} else {
			m.status = fmt.Sprintf("Task %d marked as %s!", toggled.ID, humanDone(toggled.Completed))
		}
	case m.cfg.Keys.Delete:
		if len(m.rows) == 0 {
			return m, nil
		}
		t := m.rows[m.cursor]
		m.confirmDel = true
		m.pendingDel = t
		m.status = fmt.Sprintf("Delete %q? y/n", t.Title)
	case m.cfg.Keys.Detail:
		if len(m.rows) == 0 {
			m.status = "No tasks"
			return m, nil
		}
		m.status = detailLine(m.rows[m.cursor], m.svc.IsOverdue(m.rows[m.cursor]))
	case m.cfg.Keys.Edit:
		if len(m.rows) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startMetaEdit(m.rows[m.cursor])
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		id := m.pendingDel.ID
		if m.svc.Delete(id) {
			m.persist()
			m.refresh()
			m.status = fmt.Sprintf("Task %d deleted successfully!", id)
		} else {
			m.status = fmt.Sprintf("Task with ID %d not found", id)
		}
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) startMetaEdit(t *task.Task) (tea.Model, tea.Cmd) {
	m.meta = &metaState{
		taskID:      t.ID,
		title:       t.Title,
		description: t.Description,
		priority:    string(t.Priority),
		category:    string(t.Category),
		due:         t.DueDate,
		recurrence:  string(t.Recurrence),
		remind:      string(t.Reminder),
		index:       0,
	}
	m.input.SetValue(m.meta.currentValue())
	m.input.Placeholder = m.meta.currentLabel()
	m.input.Focus()
	m.mode = modeMeta
	m.status = "Edit: tab/hjkl to move, enter to save/next, esc to cancel"
	return m, nil
}

func (m Model) updateMetaMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.meta = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "right", "l", "j", "down":
		m.meta.setCurrentValue(m.input.Value())
		m.meta.index = wrapIndex(m.meta.index+1, len(metaFields()))
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	case "shift+tab", "left", "h", "k", "up":
		m.meta.setCurrentValue(m.input.Value())
		m.meta.index = wrapIndex(m.meta.index-1, len(metaFields()))
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.meta.setCurrentValue(m.input.Value())
		if m.meta.index >= len(metaFields())-1 {
			return m.saveMeta()
		}
		m.meta.index++
		m.input.SetValue(m.meta.currentValue())
		m.input.Placeholder = m.meta.currentLabel()
		m.status = m.metaPrompt()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveMeta() (tea.Model, tea.Cmd) {
	if m.meta == nil {
		return m, nil
	}
	taskID := m.meta.taskID
	pr := task.Priority(strings.TrimSpace(m.meta.priority))
	cat := task.Category(strings.TrimSpace(m.meta.category))
	due := strings.TrimSpace(m.meta.due)
	rec := task.Recurrence(strings.TrimSpace(m.meta.recurrence))
	rem := task.ReminderOffset(strings.TrimSpace(m.meta.remind))

	_, err := m.svc.Update(taskID, task.Patch{
		Title:       &m.meta.title,
		Description: &m.meta.description,
		Priority:    &pr,
		Category:    &cat,
		DueDate:     &due,
		Recurrence:  &rec,
		Reminder:    &rem,
	})
	if err != nil {
		m.status = errorStatus(err)
		return m, nil
	}
	m.persist()
	m.meta = nil
	m.mode = modeList
	m.input.Blur()
	m.refresh()
	m.cursorTo(taskID)
	m.status = fmt.Sprintf("Task %d updated successfully!", taskID)
	return m, nil
}

func (m *Model) cursorTo(id int) {
	for i, t := range m.rows {
		if t.ID == id {
			m.cursor = clampCursor(i, len(m.rows))
			return
		}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(boxStyle.Render(titleStyle.Render("Task Manager") + "\nManage your tasks efficiently"))
	b.WriteString("\n")

	if len(m.notices) > 0 {
		b.WriteString(noticeStyle.Render("Reminders\n" + strings.Join(m.notices, "\n")))
		b.WriteString("\n")
	}

	if len(m.rows) == 0 {
		b.WriteString(boxStyle.Render("No tasks found. Press 'a' to add one."))
	} else {
		b.WriteString(boxStyle.Render(m.renderTaskList()))
	}
	b.WriteString("\n")

	switch {
	case m.meta != nil:
		b.WriteString(boxStyle.Render(m.renderMetaBox()))
		b.WriteString("\n")
		b.WriteString("Field: " + m.meta.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case m.mode == modeAdd:
		b.WriteString("Add Task: ")
		b.WriteString(m.input.View())
	case m.mode == modeSearch:
		b.WriteString("Search: ")
		b.WriteString(m.input.View())
	default:
		b.WriteString(m.renderDetailPanel())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderModeLine())
	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderModeLine() string {
	line := fmt.Sprintf("filter:%s  sort:%s/%s", m.filterBy, m.sortBy, m.direction)
	if m.keyword != "" {
		line += fmt.Sprintf("  search:%q", m.keyword)
	}
	return helpStyle.Render(line)
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, t := range m.rows {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		extras := make([]string, 0, 4)
		extras = append(extras, string(t.Priority), string(t.Category))
		if t.DueDate != "" {
			due := "due:" + t.DueDate
			if m.svc.IsOverdue(t) {
				due += " OVERDUE"
			}
			extras = append(extras, due)
		}
		if t.Recurrence != task.RecurNone {
			extras = append(extras, string(t.Recurrence))
		}

		fmt.Fprintf(&b, "%s %s #%d %s [%s]", cursor, checkbox, t.ID, t.Title, strings.Join(extras, " | "))
		if i < len(m.rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderDetailPanel() string {
	if len(m.rows) == 0 {
		return "No task selected"
	}
	t := m.rows[clampCursor(m.cursor, len(m.rows))]
	var b strings.Builder
	b.WriteString("Details\n")
	fmt.Fprintf(&b, "Title       : %s\n", t.Title)
	fmt.Fprintf(&b, "Owner       : %d\n", t.OwnerID)
	fmt.Fprintf(&b, "Status      : %s\n", humanDone(t.Completed))
	fmt.Fprintf(&b, "Description : %s\n", emptyPlaceholder(t.Description))
	fmt.Fprintf(&b, "Priority    : %s\n", t.Priority)
	fmt.Fprintf(&b, "Category    : %s\n", t.Category)
	fmt.Fprintf(&b, "Due         : %s\n", emptyPlaceholder(t.DueDate))
	fmt.Fprintf(&b, "Recurrence  : %s\n", t.Recurrence)
	fmt.Fprintf(&b, "Reminder    : %s", t.Reminder)
	return boxStyle.Render(b.String())
}

func (m Model) renderMetaBox() string {
	if m.meta == nil {
		return ""
	}
	fields := metaFields()
	values := m.meta.values()
	var b strings.Builder
	for i, name := range fields {
		prefix := " "
		if i == m.meta.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		fmt.Fprintf(&b, "%s %-28s : %s\n", prefix, name, val)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) metaPrompt() string {
	if m.meta == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab/hjkl to move.",
		m.meta.currentLabel(), m.meta.index+1, len(metaFields()))
}

func metaFields() []string {
	return []string{
		"title",
		"description",
		"priority (High/Medium/Low)",
		"category (Work/Home/Personal)",
		"due date (YYYY-MM-DD)",
		"recurrence (None/Daily/Weekly/Monthly)",
		"reminder (None/1 day/1 hour/At due)",
	}
}

func (ms metaState) values() []string {
	return []string{ms.title, ms.description, ms.priority, ms.category, ms.due, ms.recurrence, ms.remind}
}

func (ms metaState) currentLabel() string {
	return metaFields()[ms.index]
}

func (ms metaState) currentValue() string {
	return ms.values()[ms.index]
}

func (ms *metaState) setCurrentValue(v string) {
	switch ms.index {
	case 0:
		ms.title = v
	case 1:
		ms.description = v
	case 2:
		ms.priority = v
	case 3:
		ms.category = v
	case 4:
		ms.due = v
	case 5:
		ms.recurrence = v
	case 6:
		ms.remind = v
	}
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s detail • %s toggle • %s delete • %s edit • %s search • %s filter • %s sort • %s reverse • %s quit",
		k.Up, k.Down, k.Add, k.Detail, k.Toggle, k.Delete, k.Edit, k.Search, k.Filter, k.Sort, k.Reverse, k.Quit)
}

func errorStatus(err error) string {
	if errors.Is(err, task.ErrValidation) || errors.Is(err, task.ErrNotFound) {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("operation failed: %v", err)
}

func detailLine(t *task.Task, overdue bool) string {
	info := fmt.Sprintf("Task #%d • %s • %s • %s • %s", t.ID, t.Title, humanDone(t.Completed), t.Priority, t.Category)
	if t.DueDate != "" {
		info += " • due:" + t.DueDate
	}
	if overdue {
		info += " • OVERDUE"
	}
	if t.Recurrence != task.RecurNone {
		info += " • repeats " + strings.ToLower(string(t.Recurrence))
	}
	if t.Reminder != task.RemindNone {
		info += " • remind " + string(t.Reminder)
	}
	return info
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func humanDone(done bool) string {
	if done {
		return "completed"
	}
	return "pending"
}

func nextIn(cycle []string, cur string) string {
	for i, v := range cycle {
		if v == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
