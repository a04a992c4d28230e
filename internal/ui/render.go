package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"azb/internal/azure"
	"azb/internal/workitem"
)

// MinWidth is the absolute minimum terminal width we try to support.
const MinWidth = 40

// MinHeight is the absolute minimum terminal height we try to support.
const MinHeight = 10

// chromeHeight is the number of rows taken by the title, pane borders and
// the footer, i.e. everything that is not detail content.
const chromeHeight = 6

// BranchRow is one visible branch prepared for display.
type BranchRow struct {
	Name        string
	IsCurrent   bool
	IsProtected bool
	WorkItemID  uint64
	HasWorkItem bool
}

// RenderParams contains everything needed to draw a frame. Rendering is pure:
// the same params always produce the same string.
type RenderParams struct {
	Width  int
	Height int

	Branches    []BranchRow
	Cursor      int
	HiddenCount int // protected branches currently filtered out

	// Entries holds the fetch state for each visible work item id.
	Entries map[uint64]workitem.Entry

	DetailScroll int
	SpinnerFrame string

	FilterActive bool
	FilterInput  string
	FilterValue  string

	// PendingDelete is the branch name awaiting delete confirmation,
	// empty when no confirmation is pending.
	PendingDelete string

	StatusMsg   string
	StatusIsErr bool

	ShowHelp bool
}

// DetailPaneWidth returns the text width of the detail pane for a terminal
// width. The session wraps detail text with the same width it is displayed
// at, so scroll clamping matches what is on screen.
func DetailPaneWidth(totalWidth int) int {
	if totalWidth < MinWidth {
		totalWidth = MinWidth
	}
	listWidth := totalWidth * 2 / 5
	if listWidth < 24 {
		listWidth = 24
	}
	detailWidth := totalWidth - listWidth - 6 // borders and padding
	if detailWidth < 20 {
		detailWidth = 20
	}
	return detailWidth
}

// DetailViewHeight returns how many detail lines fit for a terminal height.
// The session uses it for scroll clamping and half-page jumps.
func DetailViewHeight(totalHeight int) int {
	if totalHeight < MinHeight {
		totalHeight = MinHeight
	}
	h := totalHeight - chromeHeight
	if h < 1 {
		h = 1
	}
	return h
}

// Render renders the full UI.
func Render(p RenderParams) string {
	if p.Width < MinWidth {
		p.Width = MinWidth
	}
	if p.Height < MinHeight {
		p.Height = MinHeight
	}

	if p.ShowHelp {
		return renderHelp(p)
	}
	if p.PendingDelete != "" {
		return renderConfirmDelete(p)
	}
	return renderMain(p)
}

// renderMain renders the branch list beside the work item detail pane.
func renderMain(p RenderParams) string {
	detailWidth := DetailPaneWidth(p.Width)
	listWidth := p.Width - detailWidth - 6
	if listWidth < 24 {
		listWidth = 24
	}
	paneHeight := DetailViewHeight(p.Height)

	title := TitleStyle.Render("azb — branches ↔ work items")

	list := renderBranchList(p, listWidth, paneHeight)
	detail := renderDetail(p, detailWidth, paneHeight)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		PaneStyle.Width(listWidth).Height(paneHeight).Render(list),
		PaneStyle.Width(detailWidth).Height(paneHeight).Render(detail),
	)

	return strings.Join([]string{title, panes, renderFooter(p)}, "\n")
}

func renderBranchList(p RenderParams, width, height int) string {
	if len(p.Branches) == 0 {
		msg := "no branches"
		if p.FilterValue != "" {
			msg = "no branches match filter"
		} else if p.HiddenCount > 0 {
			msg = fmt.Sprintf("all %d branches protected (press p)", p.HiddenCount)
		}
		return MutedStyle.Render(msg)
	}

	var b strings.Builder

	// Keep the cursor visible: scroll the list window, not the cursor.
	offset := 0
	if p.Cursor >= height {
		offset = p.Cursor - height + 1
	}

	for i := offset; i < len(p.Branches) && i-offset < height; i++ {
		br := p.Branches[i]

		cursor := "  "
		if i == p.Cursor {
			cursor = SymbolCursor + " "
		}

		marker := " "
		if br.IsCurrent {
			marker = CurrentBranchStyle.Render(SymbolCurrent)
		}

		name := br.Name
		badge := ""
		if br.HasWorkItem {
			badge = " " + IDBadgeStyle.Render(fmt.Sprintf("#%d", br.WorkItemID))
		}
		if br.IsProtected {
			badge += " " + ProtectedStyle.Render(SymbolProtected)
		}

		line := cursor + marker + " "
		switch {
		case i == p.Cursor:
			line += SelectedStyle.Render(truncate(name, width-8))
		case br.IsCurrent:
			line += CurrentBranchStyle.Render(truncate(name, width-8))
		default:
			line += NormalStyle.Render(truncate(name, width-8))
		}
		b.WriteString(line + badge + "\n")
	}

	if p.HiddenCount > 0 {
		fmt.Fprintf(&b, "\n%s", MutedStyle.Render(fmt.Sprintf("%d protected hidden (p to show)", p.HiddenCount)))
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderDetail(p RenderParams, width, height int) string {
	if len(p.Branches) == 0 || p.Cursor >= len(p.Branches) {
		return MutedStyle.Render("nothing selected")
	}

	br := p.Branches[p.Cursor]
	if !br.HasWorkItem {
		return MutedStyle.Render("no work item number in branch name")
	}

	entry := p.Entries[br.WorkItemID]
	switch entry.Status {
	case workitem.StatusPending:
		return MutedStyle.Render(fmt.Sprintf("%s fetching work item #%d...", p.SpinnerFrame, br.WorkItemID))
	case workitem.StatusFailed:
		return ErrorStyle.Render(fmt.Sprintf("work item #%d: %v", br.WorkItemID, entry.Err)) +
			"\n\n" + MutedStyle.Render("r to retry")
	case workitem.StatusReady:
		lines := WorkItemLines(entry.Details, width)
		return sliceLines(lines, p.DetailScroll, height)
	default:
		return MutedStyle.Render(fmt.Sprintf("work item #%d not fetched", br.WorkItemID))
	}
}

// WorkItemLines renders a work item's detail text wrapped to width. The
// session uses the same function to clamp the scroll offset, so display and
// clamping can never disagree about content size.
func WorkItemLines(wi *azure.WorkItem, width int) []string {
	lines := []string{
		TitleStyle.Render(fmt.Sprintf("#%d %s", wi.ID, wi.Title)),
		fmt.Sprintf("%s %s · %s %s", wi.Type.Icon(), wi.Type, wi.State.Icon(), wi.State),
	}

	if wi.AssignedTo != "" {
		lines = append(lines, MutedStyle.Render("assigned to ")+wi.AssignedTo)
	}
	if len(wi.Tags) > 0 {
		lines = append(lines, MutedStyle.Render("tags ")+strings.Join(wi.Tags, ", "))
	}
	if wi.URL != "" {
		lines = append(lines, MutedStyle.Render(truncate(wi.URL, width)))
	}

	for _, field := range wi.RichTextFields {
		lines = append(lines, "", SectionStyle.Render(field.Name))
		lines = append(lines, HTMLToLines(field.Value, width)...)
	}

	return lines
}

func sliceLines(lines []string, offset, height int) string {
	if offset >= len(lines) {
		offset = len(lines) - 1
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[offset:end], "\n")
}

// renderConfirmDelete renders the delete confirmation overlay.
func renderConfirmDelete(p RenderParams) string {
	box := ConfirmBoxStyle.Render(fmt.Sprintf(
		"Delete branch %s?\n\n%s",
		SelectedStyle.Render(p.PendingDelete),
		HelpStyle.Render("y/enter confirm · any other key cancels"),
	))
	return lipgloss.Place(p.Width, p.Height, lipgloss.Center, lipgloss.Center, box)
}

// renderHelp renders the help overlay.
func renderHelp(p RenderParams) string {
	rows := []struct{ keys, desc string }{
		{"↑/k ↓/j", "move selection"},
		{"enter", "checkout branch"},
		{"d", "delete branch (with confirmation)"},
		{"D", "force delete branch (no confirmation)"},
		{"r", "refresh work item"},
		{"o", "open work item in browser"},
		{"y", "copy work item URL"},
		{"p", "show/hide protected branches"},
		{"/", "filter branches"},
		{"K/J, shift+↑/↓", "scroll details"},
		{"ctrl+u/d, pgup/pgdn", "scroll details half a page"},
		{"?", "help"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("azb help") + "\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s  %s\n", SelectedStyle.Render(fmt.Sprintf("%-20s", r.keys)), r.desc)
	}
	b.WriteString("\n" + HelpStyle.Render("press any key to close"))
	return b.String()
}

func renderFooter(p RenderParams) string {
	if p.FilterActive {
		return InputStyle.Render("filter: "+p.FilterInput) + "\n" +
			HelpStyle.Render("enter keep · esc clear")
	}

	if p.StatusMsg != "" {
		if p.StatusIsErr {
			return ErrorStyle.Render(p.StatusMsg)
		}
		return StatusStyle.Render(p.StatusMsg)
	}

	return HelpStyle.Render("enter checkout · d delete · r refresh · o open · p protected · / filter · ? help · q quit")
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
