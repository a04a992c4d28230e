package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"azb/internal/azure"
	"azb/internal/config"
	"azb/internal/git"
	"azb/internal/ui"
	"azb/internal/workitem"
)

type fakeProvider struct {
	calls atomic.Int64
	items map[uint64]*azure.WorkItem
}

func (p *fakeProvider) FetchWorkItem(ctx context.Context, id uint64) (*azure.WorkItem, error) {
	p.calls.Add(1)
	if wi, ok := p.items[id]; ok {
		return wi, nil
	}
	return nil, fmt.Errorf("work item %d not found", id)
}

func testModel(t *testing.T, branches []git.Branch) (Model, *fakeProvider) {
	t.Helper()

	cfg := config.DefaultConfig()
	provider := &fakeProvider{items: map[uint64]*azure.WorkItem{
		1234: {ID: 1234, Title: "Fix login", URL: "https://dev.azure.com/org/proj/_workitems/edit/1234"},
	}}
	coord := workitem.NewCoordinator(workitem.NewCache(), provider)
	repo := &git.Repo{Root: "/test/repo"}

	m := New(cfg, repo, coord, NewBranches(branches, cfg.Branches.Protected), slog.New(slog.DiscardHandler))
	m.width = 100
	m.height = 30
	return m, provider
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m Model, s string) (Model, tea.Cmd) {
	updated, cmd := m.Update(keyMsg(s))
	return updated.(Model), cmd
}

func testBranches() []git.Branch {
	return []git.Branch{
		{Name: "main", IsCurrent: true},
		{Name: "1234-fix-login"},
		{Name: "cleanup"},
	}
}

func TestNewBranchesDerivation(t *testing.T) {
	cfg := config.DefaultConfig()
	branches := NewBranches(testBranches(), cfg.Branches.Protected)

	if !branches[0].IsProtected {
		t.Error("main should be protected")
	}
	if branches[0].HasWorkItem {
		t.Error("main should have no work item")
	}
	if !branches[1].HasWorkItem || branches[1].WorkItemID != 1234 {
		t.Errorf("1234-fix-login: got id %d, has=%v", branches[1].WorkItemID, branches[1].HasWorkItem)
	}
	if branches[2].HasWorkItem {
		t.Error("cleanup should have no work item")
	}
}

func TestNavigationClampsAtEnds(t *testing.T) {
	m, _ := testModel(t, testBranches())

	// Protected branches hidden by default: visible is the two
	// unprotected branches.
	if len(m.visible) != 2 {
		t.Fatalf("expected 2 visible branches, got %d", len(m.visible))
	}

	// At the top already; up must not wrap to the bottom.
	m, _ = press(m, "k")
	if m.cursor != 0 {
		t.Errorf("up at top: cursor = %d, want 0", m.cursor)
	}

	m, _ = press(m, "j")
	if m.cursor != 1 {
		t.Errorf("down: cursor = %d, want 1", m.cursor)
	}

	// At the bottom; down must not wrap to the top.
	m, _ = press(m, "j")
	if m.cursor != 1 {
		t.Errorf("down at bottom: cursor = %d, want 1", m.cursor)
	}
}

func TestToggleProtectedReclampsCursor(t *testing.T) {
	m, _ := testModel(t, testBranches())

	// Show protected: main joins the visible set.
	m, _ = press(m, "p")
	if len(m.visible) != 3 {
		t.Fatalf("expected 3 visible branches, got %d", len(m.visible))
	}

	// Move to the last row, then hide protected again.
	m, _ = press(m, "j")
	m, _ = press(m, "j")
	m, _ = press(m, "p")
	if len(m.visible) != 2 {
		t.Fatalf("expected 2 visible branches, got %d", len(m.visible))
	}
	if m.cursor != 1 {
		t.Errorf("cursor after hide = %d, want 1", m.cursor)
	}
}

func TestToggleProtectedToZeroVisible(t *testing.T) {
	m, _ := testModel(t, []git.Branch{{Name: "main", IsCurrent: true}})

	if len(m.visible) != 0 {
		t.Fatalf("expected 0 visible branches, got %d", len(m.visible))
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}

	// No selection: action keys must be safe no-ops.
	m, _ = press(m, "enter")
	m, _ = press(m, "d")
	if m.pending != nil {
		t.Error("delete with no selection should not enter confirmation")
	}

	// Rendering with an empty visible set must not panic.
	_ = m.View()
}

func TestProtectedBranchNeverDeletable(t *testing.T) {
	m, _ := testModel(t, testBranches())
	m, _ = press(m, "p") // show protected; cursor on main

	for _, k := range []string{"d", "D"} {
		m2, cmd := press(m, k)
		if m2.pending != nil {
			t.Errorf("%s on protected branch entered confirmation", k)
		}
		if m2.statusMsg == "" {
			t.Errorf("%s on protected branch: expected status message", k)
		}
		_ = cmd // only the status expiry tick
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	m, _ := testModel(t, testBranches())

	// Cursor starts on 1234-fix-login (first visible).
	m, _ = press(m, "d")
	if m.pending == nil {
		t.Fatal("d should enter confirmation")
	}
	if m.pending.Branch.Name != "1234-fix-login" {
		t.Errorf("pending branch = %s", m.pending.Branch.Name)
	}

	// Any key other than a confirm key cancels.
	m, _ = press(m, "n")
	if m.pending != nil {
		t.Error("non-confirm key should cancel")
	}

	m, _ = press(m, "d")
	m2, cmd := press(m, "y")
	if m2.pending != nil {
		t.Error("confirm should clear pending state")
	}
	if cmd == nil {
		t.Error("confirm should emit a delete command")
	}
}

func TestDeletedBranchRemovedAndRecorded(t *testing.T) {
	m, _ := testModel(t, testBranches())

	updated, _ := m.Update(BranchDeletedMsg{Name: "cleanup", SHA: "abc1234def"})
	m = updated.(Model)

	for _, b := range m.visible {
		if b.Name == "cleanup" {
			t.Error("deleted branch still visible")
		}
	}
	if len(m.deleted) != 1 || m.deleted[0].SHA != "abc1234def" {
		t.Errorf("deleted record = %+v", m.deleted)
	}
	if m.statusMsg == "" {
		t.Error("expected deletion status message")
	}
}

func TestCheckoutMovesCurrentMarker(t *testing.T) {
	m, _ := testModel(t, testBranches())

	updated, _ := m.Update(BranchCheckedOutMsg{Name: "cleanup"})
	m = updated.(Model)

	for _, b := range m.branches {
		if b.Name == "cleanup" && !b.IsCurrent {
			t.Error("cleanup should be current after checkout")
		}
		if b.Name == "main" && b.IsCurrent {
			t.Error("main should no longer be current")
		}
	}
}

func TestLazyFetchOnlyForSelectedWithID(t *testing.T) {
	m, provider := testModel(t, testBranches())

	// Cursor on 1234-fix-login: Init starts exactly one fetch.
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init should return a command")
	}
	drainCmd(t, &m, cmd)
	if n := provider.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}

	entry := m.coord.Cache().Get(1234)
	if entry.Status != workitem.StatusReady {
		t.Errorf("entry status = %v, want ready", entry.Status)
	}

	// Moving to a branch without an id starts nothing, and coming back
	// to a Ready entry starts nothing either.
	m2, cmd := press(m, "j")
	drainCmd(t, &m2, cmd)
	m2, cmd = press(m2, "k")
	drainCmd(t, &m2, cmd)
	if n := provider.calls.Load(); n != 1 {
		t.Errorf("fetch calls after navigation = %d, want 1", n)
	}
}

func TestRefreshSupersedesCachedResult(t *testing.T) {
	m, provider := testModel(t, testBranches())

	drainCmd(t, &m, m.Init())
	provider.items[1234] = &azure.WorkItem{ID: 1234, Title: "Fix login (updated)"}

	m2, cmd := press(m, "r")
	drainCmd(t, &m2, cmd)

	entry := m2.coord.Cache().Get(1234)
	if entry.Status != workitem.StatusReady {
		t.Fatalf("entry status = %v, want ready", entry.Status)
	}
	if entry.Details.Title != "Fix login (updated)" {
		t.Errorf("title = %q, want refreshed", entry.Details.Title)
	}
	if n := provider.calls.Load(); n != 2 {
		t.Errorf("fetch calls = %d, want 2", n)
	}
}

func TestTogglePreservesScrollWhenSelectionUnchanged(t *testing.T) {
	// The protected branch sorts after the selection, so showing it
	// keeps the same branch under the cursor.
	m, _ := testModel(t, []git.Branch{
		{Name: "1234-fix-login", IsCurrent: true},
		{Name: "main"},
	})
	m.detailScroll = 7
	m.detailLines = 40

	m, _ = press(m, "p")
	if sel, _ := m.selected(); sel.Name != "1234-fix-login" {
		t.Fatalf("selection moved to %s", sel.Name)
	}
	if m.detailScroll != 7 {
		t.Errorf("scroll = %d, want 7 preserved", m.detailScroll)
	}

	// Hiding protected again still keeps the same branch and scroll.
	m, _ = press(m, "p")
	if m.detailScroll != 7 {
		t.Errorf("scroll after hide = %d, want 7", m.detailScroll)
	}
}

func TestScrollResetsOnSelectionChange(t *testing.T) {
	m, _ := testModel(t, testBranches())
	m.detailScroll = 5
	m.detailLines = 40

	m, _ = press(m, "j")
	if m.detailScroll != 0 {
		t.Errorf("scroll after selection change = %d, want 0", m.detailScroll)
	}
}

func TestScrollClampsToContent(t *testing.T) {
	m, _ := testModel(t, testBranches())
	m.detailLines = 100

	m, _ = press(m, "K")
	if m.detailScroll != 0 {
		t.Errorf("scroll up at top = %d, want 0", m.detailScroll)
	}

	for i := 0; i < 500; i++ {
		m, _ = press(m, "J")
	}
	max := m.detailLines - ui.DetailViewHeight(m.height)
	if m.detailScroll != max {
		t.Errorf("scroll = %d, want clamped to %d", m.detailScroll, max)
	}
}

func TestFilterNarrowsVisible(t *testing.T) {
	m, _ := testModel(t, testBranches())

	m, _ = press(m, "/")
	if !m.filterActive {
		t.Fatal("/ should enter filter mode")
	}

	m, _ = press(m, "c")
	m, _ = press(m, "l")
	if len(m.visible) != 1 || m.visible[0].Name != "cleanup" {
		t.Errorf("filter 'cl': visible = %+v, want [cleanup]", m.visible)
	}

	// Esc clears the filter.
	m, _ = press(m, "esc")
	if m.filterActive || len(m.visible) != 2 {
		t.Errorf("esc should clear filter: active=%v visible=%d", m.filterActive, len(m.visible))
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	m, _ := testModel(t, testBranches())

	m, _ = press(m, "?")
	if !m.showHelp {
		t.Fatal("? should open help")
	}

	// While help is open, other bindings must not fire.
	m, _ = press(m, "d")
	if m.showHelp {
		t.Error("any key should close help")
	}
	if m.pending != nil {
		t.Error("key closing help must not trigger its normal action")
	}
}

func TestQuitSetsShouldQuit(t *testing.T) {
	m, _ := testModel(t, testBranches())

	m2, cmd := press(m, "q")
	if !m2.ShouldQuit() {
		t.Error("q should mark the session for exit")
	}
	if cmd == nil {
		t.Error("q should return tea.Quit")
	}
}

func TestSessionScenario(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Branches.Protected = []string{"main"}
	provider := &fakeProvider{items: map[uint64]*azure.WorkItem{
		123: {ID: 123, Title: "Login page", Type: azure.TypeBug, State: azure.StateActive},
	}}
	coord := workitem.NewCoordinator(workitem.NewCache(), provider)

	branches := NewBranches([]git.Branch{
		{Name: "main", IsCurrent: true},
		{Name: "feature/123-login"},
		{Name: "bugfix/42-x"},
	}, cfg.Branches.Protected)

	m := New(cfg, &git.Repo{Root: "/test/repo"}, coord, branches, slog.New(slog.DiscardHandler))
	m.width = 100
	m.height = 30

	if len(m.visible) != 2 || m.visible[0].Name != "feature/123-login" || m.visible[1].Name != "bugfix/42-x" {
		t.Fatalf("visible = %+v", m.visible)
	}

	// Visit both branches; each selection triggers its fetch.
	drainCmd(t, &m, m.Init())
	m2, cmd := press(m, "j")
	drainCmd(t, &m2, cmd)

	if e := m2.coord.Cache().Get(123); e.Status != workitem.StatusReady {
		t.Errorf("123: status = %v, want ready", e.Status)
	} else if e.Details.Type != azure.TypeBug || e.Details.State != azure.StateActive {
		t.Errorf("123: details = %+v", e.Details)
	}
	if e := m2.coord.Cache().Get(42); e.Status != workitem.StatusFailed || e.Err == nil {
		t.Errorf("42: entry = %+v, want failed with error", e)
	}

	// Failed entries stay failed; revisiting does not refetch.
	calls := provider.calls.Load()
	m2, cmd = press(m2, "k")
	drainCmd(t, &m2, cmd)
	m2, cmd = press(m2, "j")
	drainCmd(t, &m2, cmd)
	if provider.calls.Load() != calls {
		t.Errorf("revisiting refetched: %d calls, want %d", provider.calls.Load(), calls)
	}

	// Both states render without touching the network.
	if out := m2.View(); out == "" {
		t.Error("empty render")
	}
}

// drainCmd executes a command tree synchronously, feeding resulting
// messages back into the model the way the bubbletea runtime would.
func drainCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drainCmd(t, m, c)
		}
		return
	}
	// Spinner ticks reschedule themselves forever; don't follow them.
	if _, ok := msg.(spinner.TickMsg); ok {
		return
	}
	updated, next := m.Update(msg)
	*m = updated.(Model)
	drainCmd(t, m, next)
}
