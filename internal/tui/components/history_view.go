package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/artpar/querybench/internal/core"
	"github.com/artpar/querybench/internal/history"
	"github.com/artpar/querybench/internal/tui"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// historyLimit caps how many entries the overlay loads.
const historyLimit = 500

// HistoryView lists the calls made this session, newest first.
type HistoryView struct {
	*tui.BaseComponent

	store    history.Store
	styles   tui.Styles
	viewport viewport.Model

	entries []history.Entry
	stats   history.Stats
	err     error
}

// NewHistoryView creates a view over store. A nil store renders a notice.
func NewHistoryView(store history.Store) *HistoryView {
	return &HistoryView{
		BaseComponent: tui.NewBaseComponent("History"),
		store:         store,
		styles:        tui.DefaultStyles(),
		viewport:      viewport.New(0, 0),
	}
}

// Refresh reloads entries and statistics from the store.
func (h *HistoryView) Refresh(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	entries, err := h.store.List(ctx, history.QueryOptions{Limit: historyLimit})
	if err != nil {
		h.err = err
		return err
	}
	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.err = err
		return err
	}
	h.entries = entries
	h.stats = stats
	h.err = nil
	h.viewport.SetContent(h.renderEntries())
	h.viewport.GotoTop()
	return nil
}

// Entries returns the loaded entries.
func (h *HistoryView) Entries() []history.Entry {
	return h.entries
}

// SetSize sets dimensions. Two lines are reserved for the title and the
// summary.
func (h *HistoryView) SetSize(width, height int) {
	h.BaseComponent.SetSize(width, height)
	h.viewport.Width = width
	h.viewport.Height = max(height-2, 1)
}

// Update scrolls the list.
func (h *HistoryView) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.SetSize(msg.Width, msg.Height)
		return h, nil
	case tea.KeyMsg:
		if !h.Focused() {
			return h, nil
		}
	}
	var cmd tea.Cmd
	h.viewport, cmd = h.viewport.Update(msg)
	return h, cmd
}

// View renders the summary and the scrollable list.
func (h *HistoryView) View() string {
	title := h.styles.Title.Render("Session history")
	switch {
	case h.store == nil:
		return title + "\n" + h.styles.Muted.Render("History is disabled.")
	case h.err != nil:
		return title + "\n" + h.styles.Error.Render(h.err.Error())
	case len(h.entries) == 0:
		return title + "\n" + h.styles.Muted.Render("No calls yet.")
	}
	return title + "\n" + h.renderSummary() + "\n" + h.viewport.View()
}

func (h *HistoryView) renderSummary() string {
	parts := []string{
		fmt.Sprintf("%d calls", h.stats.Total),
		fmt.Sprintf("%d applied", h.stats.Applied),
		fmt.Sprintf("%d stale", h.stats.Discarded),
		fmt.Sprintf("%d failed", h.stats.Failures),
		fmt.Sprintf("avg %.0fms", h.stats.AverageTime),
	}
	return h.styles.Muted.Render(strings.Join(parts, " · "))
}

func (h *HistoryView) renderEntries() string {
	lines := make([]string, 0, len(h.entries))
	for _, e := range h.entries {
		lines = append(lines, h.renderEntry(e))
	}
	return strings.Join(lines, "\n")
}

func (h *HistoryView) renderEntry(e history.Entry) string {
	status := "---"
	if e.Status != 0 {
		status = fmt.Sprintf("%d", e.Status)
	}
	line := fmt.Sprintf("%s  #%-3d %-4s %-40s %s  %5dms",
		e.Timestamp.Format("15:04:05"),
		e.Seq,
		e.Method,
		tui.Truncate(e.URL, 40),
		status,
		e.Duration,
	)
	if e.Failed() {
		line += "  " + e.FailureKind + " error"
	}
	if !e.Applied {
		return h.styles.Muted.Render(line + "  (stale)")
	}
	return tui.ToneText(core.Tone(e.Tone)).Render(line)
}
