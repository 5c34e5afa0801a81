package components

import (
	"context"

	"github.com/artpar/querybench/internal/core"
	"github.com/artpar/querybench/internal/panel"
	tea "github.com/charmbracelet/bubbletea"
)

// Sender issues calls for a panel and performs their round trips.
type Sender interface {
	Begin(p *panel.Panel) (*panel.Call, error)
	Execute(ctx context.Context, call *panel.Call) core.Outcome
}

// ResponseMsg carries a resolved call back to the panel that issued it.
type ResponseMsg struct {
	PanelIndex int
	Call       *panel.Call
	Outcome    core.Outcome
}

// CopyMsg is sent when content should be copied to the clipboard.
type CopyMsg struct {
	Content string
	Label   string
}

// FeedbackMsg is sent to display a notification to the user.
type FeedbackMsg struct {
	Message string
	IsError bool
}

func feedbackCmd(message string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return FeedbackMsg{Message: message, IsError: isError}
	}
}
