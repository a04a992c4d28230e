package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"azb/internal/config"
	"azb/internal/exec"
	"azb/internal/git"
	"azb/internal/pattern"
	"azb/internal/ui"
	"azb/internal/workitem"
)

// statusDuration is how long transient status messages stay visible.
const statusDuration = 4 * time.Second

// Branch is one branch in the session snapshot. All fields are derived once
// at construction; a changed branch list is a new snapshot.
type Branch struct {
	Name        string
	IsCurrent   bool
	IsProtected bool
	WorkItemID  uint64
	HasWorkItem bool
}

// NewBranches derives the session snapshot from git's branch list:
// protection from the configured patterns, work item ids from the name.
func NewBranches(branches []git.Branch, protectedPatterns []string) []Branch {
	out := make([]Branch, 0, len(branches))
	for _, b := range branches {
		id, ok := workitem.Extract(b.Name)
		out = append(out, Branch{
			Name:        b.Name,
			IsCurrent:   b.IsCurrent,
			IsProtected: pattern.Protected(b.Name, protectedPatterns),
			WorkItemID:  id,
			HasWorkItem: ok,
		})
	}
	return out
}

// ActionKind distinguishes the two delete flavors.
type ActionKind int

const (
	ActionDelete ActionKind = iota
	ActionForceDelete
)

// ConfirmableAction is a destructive action awaiting confirmation. It only
// exists between the triggering keystroke and its confirmation or
// cancellation.
type ConfirmableAction struct {
	Kind   ActionKind
	Branch Branch
}

// DeletedBranch records one deletion for the exit summary.
type DeletedBranch struct {
	Name string
	SHA  string
}

// Model is the main application model.
type Model struct {
	config *config.Config
	repo   *git.Repo
	coord  *workitem.Coordinator
	logger *slog.Logger

	// Data
	branches []Branch // full snapshot
	visible  []Branch // after protection filter and fuzzy filter
	cursor   int

	// View state
	showProtected bool
	detailScroll  int
	detailLines   int
	showHelp      bool

	// Pending destructive action, nil when none.
	pending *ConfirmableAction

	// Filter
	filterActive bool
	filterInput  textinput.Model

	// Transient status line
	statusMsg   string
	statusIsErr bool
	statusSeq   int

	// UI
	width   int
	height  int
	keys    KeyMap
	spinner spinner.Model

	deleted    []DeletedBranch
	shouldQuit bool
}

// New creates a new Model over an immutable branch snapshot.
func New(cfg *config.Config, repo *git.Repo, coord *workitem.Coordinator, branches []Branch, logger *slog.Logger) Model {
	filterInput := textinput.New()
	filterInput.Placeholder = "filter..."
	filterInput.CharLimit = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		config:        cfg,
		repo:          repo,
		coord:         coord,
		logger:        logger,
		branches:      branches,
		showProtected: cfg.Branches.ShowProtected,
		keys:          KeyMapFromConfig(&cfg.Keys),
		filterInput:   filterInput,
		spinner:       sp,
	}
	m.applyFilter()
	return m
}

// Init initializes the model and starts the fetch for the initially
// selected branch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchSelected())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDetailLines()
		m.clampScroll()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case workitem.FetchedMsg:
		// Stale completions (superseded by a refresh) are discarded
		// inside Complete; the entry is untouched.
		if m.coord.Complete(msg) {
			if msg.Err != nil {
				m.logger.Warn("work item fetch failed", "id", msg.ID, "err", msg.Err)
			} else {
				m.logger.Debug("work item fetched", "id", msg.ID)
			}
			if sel, ok := m.selected(); ok && sel.WorkItemID == msg.ID {
				m.updateDetailLines()
				m.clampScroll()
			}
		}
		return m, nil

	case BranchCheckedOutMsg:
		if msg.Err != nil {
			return m.withStatus(fmt.Sprintf("checkout failed: %v", msg.Err), true)
		}
		m.setCurrentBranch(msg.Name)
		return m.withStatus(fmt.Sprintf("Switched to branch '%s'", msg.Name), false)

	case BranchDeletedMsg:
		if msg.Err != nil {
			return m.withStatus(fmt.Sprintf("delete failed: %v", msg.Err), true)
		}
		m.deleted = append(m.deleted, DeletedBranch{Name: msg.Name, SHA: msg.SHA})
		m.removeBranch(msg.Name)
		model, cmd := m.withStatus(fmt.Sprintf("Deleted %s (was %s)", msg.Name, shortSHA(msg.SHA)), false)
		return model, tea.Batch(cmd, m.fetchSelected())

	case BrowserOpenedMsg:
		if msg.Err != nil {
			return m.withStatus(fmt.Sprintf("open browser: %v", msg.Err), true)
		}
		return m, nil

	case URLCopiedMsg:
		if msg.Err != nil {
			return m.withStatus(fmt.Sprintf("copy URL: %v", msg.Err), true)
		}
		return m.withStatus("work item URL copied", false)

	case statusExpiredMsg:
		if msg.Seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, nil
	}

	return m, nil
}

// handleKeyPress routes key presses: overlays first, then the list.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.showHelp:
		m.showHelp = false
		return m, nil
	case m.pending != nil:
		return m.handleConfirmKeys(msg)
	case m.filterActive:
		return m.handleFilterKeys(msg)
	default:
		return m.handleListKeys(msg)
	}
}

// handleListKeys handles key presses in the main view.
func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shouldQuit = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		// Clamp at the top; no wraparound.
		if m.cursor > 0 {
			m.cursor--
			return m, m.selectionChanged()
		}

	case key.Matches(msg, m.keys.Down):
		// Clamp at the bottom; no wraparound.
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			return m, m.selectionChanged()
		}

	case key.Matches(msg, m.keys.Checkout):
		if sel, ok := m.selected(); ok {
			return m, checkoutBranch(sel.Name)
		}

	case key.Matches(msg, m.keys.Delete):
		sel, ok := m.selected()
		if !ok {
			return m, nil
		}
		// Protection is checked before the confirmation state is ever
		// entered: a protected branch cannot be deleted on any path.
		if sel.IsProtected {
			return m.withStatus(fmt.Sprintf("branch '%s' is protected", sel.Name), true)
		}
		m.pending = &ConfirmableAction{Kind: ActionDelete, Branch: sel}
		return m, nil

	case key.Matches(msg, m.keys.ForceDelete):
		sel, ok := m.selected()
		if !ok {
			return m, nil
		}
		if sel.IsProtected {
			return m.withStatus(fmt.Sprintf("branch '%s' is protected", sel.Name), true)
		}
		// Force delete skips the confirmation sub-state entirely.
		return m, deleteBranch(sel.Name, true)

	case key.Matches(msg, m.keys.Refresh):
		if sel, ok := m.selected(); ok && sel.HasWorkItem {
			return m, m.coord.ForceRefresh(sel.WorkItemID)
		}

	case key.Matches(msg, m.keys.Open):
		if url, ok := m.selectedURL(); ok {
			return m, openInBrowser(url)
		}

	case key.Matches(msg, m.keys.Yank):
		if url, ok := m.selectedURL(); ok {
			return m, copyURL(url)
		}

	case key.Matches(msg, m.keys.ToggleProtect):
		prev, hadPrev := m.selected()
		m.showProtected = !m.showProtected
		m.applyFilter()
		// Scroll only resets when the toggle lands on a different
		// branch; the same branch keeps its reading position.
		if cur, ok := m.selected(); !ok || !hadPrev || cur.Name != prev.Name {
			return m, m.selectionChanged()
		}
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.filterActive = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.ScrollDown):
		m.scrollDetail(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.scrollDetail(-1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.scrollDetail(ui.DetailViewHeight(m.height) / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.scrollDetail(-ui.DetailViewHeight(m.height) / 2)

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	}

	return m, nil
}

// handleConfirmKeys handles the delete confirmation overlay: confirm keys
// proceed, anything else cancels.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := *m.pending
	m.pending = nil

	if key.Matches(msg, m.keys.Confirm) {
		force := action.Kind == ActionForceDelete
		return m, deleteBranch(action.Branch.Name, force)
	}
	return m, nil
}

// handleFilterKeys handles key presses in filter mode.
func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterActive = false
		m.filterInput.Reset()
		m.applyFilter()
		return m, m.selectionChanged()
	case tea.KeyEnter:
		m.filterActive = false
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, tea.Batch(cmd, m.selectionChanged())
}

// selected returns the branch under the cursor.
func (m *Model) selected() (Branch, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return Branch{}, false
	}
	return m.visible[m.cursor], true
}

// selectedURL returns the selected branch's work item URL, if its details
// are Ready and carry one.
func (m *Model) selectedURL() (string, bool) {
	sel, ok := m.selected()
	if !ok || !sel.HasWorkItem {
		return "", false
	}
	entry := m.coord.Cache().Get(sel.WorkItemID)
	if entry.Status != workitem.StatusReady || entry.Details.URL == "" {
		return "", false
	}
	return entry.Details.URL, true
}

// selectionChanged resets the detail scroll and lazily starts a fetch for
// the newly selected branch. Navigating away never cancels an in-flight
// fetch; its result is cached for when the user comes back.
func (m *Model) selectionChanged() tea.Cmd {
	m.detailScroll = 0
	m.updateDetailLines()
	return m.fetchSelected()
}

// fetchSelected starts a fetch for the selected branch's work item if it
// has one and nothing is cached or in flight yet. Fetching is lazy and
// per-selection; azb never fetches all branches up front.
func (m *Model) fetchSelected() tea.Cmd {
	sel, ok := m.selected()
	if !ok || !sel.HasWorkItem {
		return nil
	}
	return m.coord.Fetch(sel.WorkItemID)
}

// branchSource implements fuzzy.Source over branch names.
type branchSource []Branch

func (s branchSource) String(i int) string { return s[i].Name }
func (s branchSource) Len() int            { return len(s) }

// applyFilter recomputes the visible subsequence from the snapshot, the
// protected-visibility flag, and the fuzzy filter, then re-clamps the
// cursor into the new visible set.
func (m *Model) applyFilter() {
	visible := make([]Branch, 0, len(m.branches))
	for _, b := range m.branches {
		if b.IsProtected && !m.showProtected {
			continue
		}
		visible = append(visible, b)
	}

	if filter := m.filterInput.Value(); filter != "" {
		source := branchSource(visible)
		matches := fuzzy.FindFrom(filter, source)

		filtered := make([]Branch, 0, len(matches))
		for _, match := range matches {
			filtered = append(filtered, visible[match.Index])
		}
		visible = filtered
	}

	m.visible = visible

	// Re-clamp: never out of bounds, never negative, even with zero
	// visible branches.
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// removeBranch drops a deleted branch from the snapshot.
func (m *Model) removeBranch(name string) {
	branches := make([]Branch, 0, len(m.branches))
	for _, b := range m.branches {
		if b.Name != name {
			branches = append(branches, b)
		}
	}
	m.branches = branches
	m.applyFilter()
	m.detailScroll = 0
	m.updateDetailLines()
}

// setCurrentBranch moves the current-branch marker after a checkout.
func (m *Model) setCurrentBranch(name string) {
	for i := range m.branches {
		m.branches[i].IsCurrent = m.branches[i].Name == name
	}
	m.applyFilter()
}

// scrollDetail adjusts the detail scroll offset, clamped to the rendered
// content bounds.
func (m *Model) scrollDetail(delta int) {
	m.detailScroll += delta
	m.clampScroll()
}

func (m *Model) clampScroll() {
	maxScroll := m.detailLines - ui.DetailViewHeight(m.height)
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.detailScroll > maxScroll {
		m.detailScroll = maxScroll
	}
	if m.detailScroll < 0 {
		m.detailScroll = 0
	}
}

// updateDetailLines recomputes the rendered height of the selected work
// item's details, the bound for scrolling.
func (m *Model) updateDetailLines() {
	m.detailLines = 0
	sel, ok := m.selected()
	if !ok || !sel.HasWorkItem {
		return
	}
	entry := m.coord.Cache().Get(sel.WorkItemID)
	if entry.Status != workitem.StatusReady {
		return
	}
	m.detailLines = len(ui.WorkItemLines(entry.Details, ui.DetailPaneWidth(m.width)))
}

// withStatus sets a transient status message and schedules its expiry.
func (m Model) withStatus(msg string, isErr bool) (Model, tea.Cmd) {
	m.statusMsg = msg
	m.statusIsErr = isErr
	m.statusSeq++

	seq := m.statusSeq
	return m, tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusExpiredMsg{Seq: seq}
	})
}

// View renders the UI.
func (m Model) View() string {
	rows := make([]ui.BranchRow, len(m.visible))
	entries := make(map[uint64]workitem.Entry)
	for i, b := range m.visible {
		rows[i] = ui.BranchRow{
			Name:        b.Name,
			IsCurrent:   b.IsCurrent,
			IsProtected: b.IsProtected,
			WorkItemID:  b.WorkItemID,
			HasWorkItem: b.HasWorkItem,
		}
		if b.HasWorkItem {
			entries[b.WorkItemID] = m.coord.Cache().Get(b.WorkItemID)
		}
	}

	pendingDelete := ""
	if m.pending != nil {
		pendingDelete = m.pending.Branch.Name
	}

	hidden := 0
	if !m.showProtected {
		for _, b := range m.branches {
			if b.IsProtected {
				hidden++
			}
		}
	}

	return ui.Render(ui.RenderParams{
		Width:         m.width,
		Height:        m.height,
		Branches:      rows,
		Cursor:        m.cursor,
		HiddenCount:   hidden,
		Entries:       entries,
		DetailScroll:  m.detailScroll,
		SpinnerFrame:  m.spinner.View(),
		FilterActive:  m.filterActive,
		FilterInput:   m.filterInput.View(),
		FilterValue:   m.filterInput.Value(),
		PendingDelete: pendingDelete,
		StatusMsg:     m.statusMsg,
		StatusIsErr:   m.statusIsErr,
		ShowHelp:      m.showHelp,
	})
}

// ShouldQuit returns true if the app is exiting normally.
func (m Model) ShouldQuit() bool {
	return m.shouldQuit
}

// DeletedBranches returns the branches deleted this session, for the exit
// summary with restore hints.
func (m Model) DeletedBranches() []DeletedBranch {
	return m.deleted
}

// Commands

func checkoutBranch(name string) tea.Cmd {
	return func() tea.Msg {
		err := git.Checkout(name)
		return BranchCheckedOutMsg{Name: name, Err: err}
	}
}

func deleteBranch(name string, force bool) tea.Cmd {
	return func() tea.Msg {
		sha, err := git.DeleteBranch(name, force)
		return BranchDeletedMsg{Name: name, SHA: sha, Err: err}
	}
}

func openInBrowser(url string) tea.Cmd {
	return func() tea.Msg {
		return BrowserOpenedMsg{Err: exec.OpenURL(url)}
	}
}

func copyURL(url string) tea.Cmd {
	return func() tea.Msg {
		return URLCopiedMsg{Err: clipboard.WriteAll(url)}
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
