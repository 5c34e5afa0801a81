package components

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/artpar/querybench/internal/app"
	"github.com/artpar/querybench/internal/config"
	"github.com/artpar/querybench/internal/core"
	"github.com/artpar/querybench/internal/panel"
	"github.com/artpar/querybench/internal/testserver"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	outcome core.Outcome
	calls   []*panel.Call
}

func (f *fakeSender) Begin(p *panel.Panel) (*panel.Call, error) {
	call, err := p.Begin()
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, call)
	return call, nil
}

func (f *fakeSender) Execute(ctx context.Context, call *panel.Call) core.Outcome {
	return f.outcome
}

// collect runs cmd and any batched commands, returning every message.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

func newEndpoint(t *testing.T, routeIndex int, sender Sender) *EndpointPanel {
	t.Helper()
	p, err := panel.New(config.DefaultRoutes()[routeIndex], "http://api.test")
	require.NoError(t, err)
	e := NewEndpointPanel(context.Background(), routeIndex, p, sender)
	e.SetSize(80, 30)
	e.Focus()
	return e
}

// sendAndDeliver presses send and feeds the resulting ResponseMsg back.
func sendAndDeliver(t *testing.T, e *EndpointPanel) []tea.Msg {
	t.Helper()
	_, cmd := e.Update(keyMsg("s"))
	msgs := collect(cmd)
	resp, ok := findMsg[ResponseMsg](msgs)
	require.True(t, ok, "send should produce a ResponseMsg")
	_, cmd = e.Update(resp)
	return collect(cmd)
}

func TestNewEndpointPanel(t *testing.T) {
	t.Run("GET-first route focuses the response", func(t *testing.T) {
		e := newEndpoint(t, 2, &fakeSender{})
		assert.Equal(t, SectionResponse, e.Section())
		assert.Equal(t, "/Order/1", e.Title())
		assert.Equal(t, 2, e.Index())
		assert.True(t, e.ResponseViewer().Focused())
		assert.False(t, e.PayloadEditor().Focused())
	})

	t.Run("POST route focuses the payload", func(t *testing.T) {
		e := newEndpoint(t, 1, &fakeSender{})
		assert.Equal(t, SectionPayload, e.Section())
		assert.True(t, e.PayloadEditor().Focused())
		assert.Equal(t, e.Panel().Payload(), e.PayloadEditor().Value())
	})

	t.Run("initial view", func(t *testing.T) {
		e := newEndpoint(t, 2, &fakeSender{})
		view := ansi.Strip(e.View())
		assert.Contains(t, view, "/Order/1")
		assert.Contains(t, view, "http://api.test/order/1")
		assert.Contains(t, view, "GET")
		assert.Contains(t, view, "PUT")
		assert.Contains(t, view, "1 Shipping Info")
		assert.Contains(t, view, "4 Incorrect Billing Info")
		assert.Contains(t, view, "No response yet")
	})
}

func TestEndpointPanel_Send(t *testing.T) {
	t.Run("applies the outcome", func(t *testing.T) {
		sender := &fakeSender{outcome: core.Succeeded(201, map[string]any{"id": 7.0}, 12*time.Millisecond)}
		e := newEndpoint(t, 1, sender)

		msgs := sendAndDeliver(t, e)
		assert.Empty(t, msgs)

		require.Len(t, sender.calls, 1)
		assert.Equal(t, core.MethodPOST, sender.calls[0].Method)
		assert.Equal(t, core.ToneSuccess, e.Panel().Visual().Tone)
		assert.Equal(t, map[string]any{"id": 7.0}, e.ResponseViewer().Value())

		view := ansi.Strip(e.View())
		assert.Contains(t, view, "201 Created")
		assert.Contains(t, view, "12ms")
		assert.Contains(t, view, "id: 7")
	})

	t.Run("starts the spinner once", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{outcome: core.Succeeded(200, nil, 0)})

		_, first := e.Update(keyMsg("s"))
		_, second := e.Update(keyMsg("s"))
		assert.Equal(t, 2, e.Panel().InFlight())

		_, ok := findMsg[ResponseMsg](collect(second))
		assert.True(t, ok)
		assert.Len(t, collect(first), 2)
		assert.Len(t, collect(second), 1)
		assert.Contains(t, ansi.Strip(e.View()), "sending (2)")
	})

	t.Run("failure shows the failed tone", func(t *testing.T) {
		sender := &fakeSender{outcome: core.Failed(core.ErrorKindNetwork, 0, errors.New("connection refused"), 0)}
		e := newEndpoint(t, 0, sender)

		msgs := sendAndDeliver(t, e)
		fb, ok := findMsg[FeedbackMsg](msgs)
		require.True(t, ok)
		assert.True(t, fb.IsError)
		assert.Contains(t, fb.Message, "connection refused")

		assert.Equal(t, core.ToneFailed, e.Panel().Visual().Tone)
		assert.Contains(t, ansi.Strip(e.View()), "network error: connection refused")
	})

	t.Run("stale response is discarded", func(t *testing.T) {
		sender := &fakeSender{}
		e := newEndpoint(t, 0, sender)

		sender.outcome = core.Succeeded(500, map[string]any{"old": true}, 0)
		_, oldCmd := e.Update(keyMsg("s"))
		oldMsg, _ := findMsg[ResponseMsg](collect(oldCmd))

		sender.outcome = core.Succeeded(200, map[string]any{"new": true}, 0)
		_, newCmd := e.Update(keyMsg("s"))
		newMsg, _ := findMsg[ResponseMsg](collect(newCmd))

		e.Update(newMsg)
		e.Update(oldMsg)

		assert.Equal(t, map[string]any{"new": true}, e.ResponseViewer().Value())
		assert.Equal(t, core.ToneSuccess, e.Panel().Visual().Tone)
		assert.Equal(t, 0, e.Panel().InFlight())
	})

	t.Run("ignores responses for other panels", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{})
		call, err := e.Panel().Begin()
		require.NoError(t, err)

		e.Update(ResponseMsg{PanelIndex: 5, Call: call, Outcome: core.Succeeded(200, "x", 0)})
		assert.True(t, e.Panel().LastResponse().Empty())
	})

	t.Run("unencodable payload reports an error", func(t *testing.T) {
		e := newEndpoint(t, 1, &fakeSender{})
		e.Panel().SetPayload(map[string]any{"c": make(chan int)})

		_, cmd := e.Update(keyMsg("s"))
		fb, ok := findMsg[FeedbackMsg](collect(cmd))
		require.True(t, ok)
		assert.True(t, fb.IsError)
		assert.Equal(t, 0, e.Panel().InFlight())
	})

	t.Run("unfocused panel ignores keys", func(t *testing.T) {
		sender := &fakeSender{}
		e := newEndpoint(t, 0, sender)
		e.Blur()

		_, cmd := e.Update(keyMsg("s"))
		assert.Nil(t, cmd)
		assert.Empty(t, sender.calls)
	})
}

func TestEndpointPanel_Methods(t *testing.T) {
	e := newEndpoint(t, 2, &fakeSender{})

	e.Update(keyMsg("l"))
	assert.Equal(t, core.MethodPUT, e.Panel().ActiveMethod())
	assert.Contains(t, ansi.Strip(e.View()), "jgnault@uqac.ca")

	e.Update(keyMsg("l"))
	assert.Equal(t, core.MethodGET, e.Panel().ActiveMethod())
	assert.NotContains(t, ansi.Strip(e.View()), "jgnault@uqac.ca")

	e.Update(keyMsg("h"))
	assert.Equal(t, core.MethodPUT, e.Panel().ActiveMethod())

	t.Run("section toggles only when payload is shown", func(t *testing.T) {
		assert.Equal(t, SectionResponse, e.Section())
		e.Update(keyMsg("tab"))
		assert.Equal(t, SectionPayload, e.Section())
		assert.True(t, e.PayloadEditor().Focused())

		e.Update(keyMsg("h"))
		assert.Equal(t, core.MethodGET, e.Panel().ActiveMethod())
		assert.Equal(t, SectionResponse, e.Section())
		e.Update(keyMsg("tab"))
		assert.Equal(t, SectionResponse, e.Section())
	})
}

func TestEndpointPanel_Presets(t *testing.T) {
	t.Run("loads a preset into the editor", func(t *testing.T) {
		e := newEndpoint(t, 2, &fakeSender{})

		_, cmd := e.Update(keyMsg("2"))
		fb, ok := findMsg[FeedbackMsg](collect(cmd))
		require.True(t, ok)
		assert.Equal(t, "Loaded Valid Billing Info", fb.Message)

		want := config.DefaultRoutes()[2].DefaultPayloads[1]
		assert.Equal(t, want, e.Panel().Payload())
		assert.Equal(t, want, e.PayloadEditor().Value())
	})

	t.Run("out of range preset is reported", func(t *testing.T) {
		e := newEndpoint(t, 2, &fakeSender{})
		_, cmd := e.Update(keyMsg("9"))
		fb, ok := findMsg[FeedbackMsg](collect(cmd))
		require.True(t, ok)
		assert.True(t, fb.IsError)
	})

	t.Run("routes without presets ignore digits", func(t *testing.T) {
		e := newEndpoint(t, 1, &fakeSender{})
		_, cmd := e.Update(keyMsg("1"))
		assert.Nil(t, cmd)
	})
}

func TestEndpointPanel_PayloadEditing(t *testing.T) {
	e := newEndpoint(t, 1, &fakeSender{})

	// $, products, [0], id
	e.Update(keyMsg("j"))
	e.Update(keyMsg("j"))
	e.Update(keyMsg("j"))
	e.Update(keyMsg("e"))
	require.True(t, e.Capturing())

	// Keys bound on the panel go to the prompt while editing.
	e.Update(keyMsg("s"))
	assert.Equal(t, 0, e.Panel().InFlight())

	e.PayloadEditor().input.SetValue("3")
	e.Update(keyMsg("enter"))
	assert.False(t, e.Capturing())

	products := e.Panel().Payload().(map[string]any)["products"].([]any)
	assert.Equal(t, 3.0, products[0].(map[string]any)["id"])
}

func TestEndpointPanel_ResourceID(t *testing.T) {
	t.Run("edits the id", func(t *testing.T) {
		e := newEndpoint(t, 2, &fakeSender{})

		e.Update(keyMsg("i"))
		require.True(t, e.Capturing())
		e.idInput.SetValue("42")
		e.Update(keyMsg("enter"))

		assert.False(t, e.Capturing())
		assert.Equal(t, "42", e.Panel().ResourceID())
		assert.Equal(t, "/Order/42", e.Title())
		assert.Equal(t, "http://api.test/order/42", e.Panel().TargetURL())
	})

	t.Run("escape keeps the old id", func(t *testing.T) {
		e := newEndpoint(t, 2, &fakeSender{})
		e.Update(keyMsg("i"))
		e.idInput.SetValue("99")
		e.Update(keyMsg("esc"))
		assert.Equal(t, panel.DefaultResourceID, e.Panel().ResourceID())
	})

	t.Run("routes without an id ignore the key", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{})
		e.Update(keyMsg("i"))
		assert.False(t, e.Capturing())
	})
}

func TestEndpointPanel_Reset(t *testing.T) {
	e := newEndpoint(t, 2, &fakeSender{outcome: core.Succeeded(404, map[string]any{"errors": "x"}, 0)})
	e.Update(keyMsg("l"))
	e.Update(keyMsg("3"))
	sendAndDeliver(t, e)
	require.Equal(t, core.ToneWarning, e.Panel().Visual().Tone)

	_, cmd := e.Update(keyMsg("r"))
	fb, ok := findMsg[FeedbackMsg](collect(cmd))
	require.True(t, ok)
	assert.Equal(t, "Panel reset", fb.Message)

	assert.True(t, e.Panel().LastResponse().Empty())
	assert.Equal(t, core.MethodPUT, e.Panel().ActiveMethod())
	assert.Equal(t, config.DefaultRoutes()[2].DefaultPayloads[0], e.PayloadEditor().Value())
	assert.Nil(t, e.ResponseViewer().Value())
}

func TestEndpointPanel_Filter(t *testing.T) {
	body := map[string]any{"order": map[string]any{"id": 7.0, "paid": false}}

	t.Run("filters the displayed body", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{outcome: core.Succeeded(200, body, 0)})
		sendAndDeliver(t, e)

		e.Update(keyMsg("/"))
		require.True(t, e.Capturing())
		e.filterInput.SetValue(".order.id")
		e.Update(keyMsg("enter"))

		assert.False(t, e.Capturing())
		assert.Equal(t, ".order.id", e.Filter())
		assert.Equal(t, 7.0, e.ResponseViewer().Value())
		assert.Equal(t, body, e.Panel().LastResponse().Body)
		assert.Contains(t, ansi.Strip(e.View()), "jq .order.id")
	})

	t.Run("applies to later responses", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{outcome: core.Succeeded(200, body, 0)})
		require.Nil(t, e.SetFilter(".order.paid"))
		sendAndDeliver(t, e)
		assert.Equal(t, false, e.ResponseViewer().Value())
	})

	t.Run("invalid expression keeps the previous filter", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{})
		require.Nil(t, e.SetFilter(".order"))

		fb, ok := findMsg[FeedbackMsg](collect(e.SetFilter(".[")))
		require.True(t, ok)
		assert.True(t, fb.IsError)
		assert.Equal(t, ".order", e.Filter())
	})

	t.Run("runtime error shows the raw body", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{outcome: core.Succeeded(200, body, 0)})
		sendAndDeliver(t, e)
		require.Nil(t, e.SetFilter(".order.id.x"))

		assert.Equal(t, body, e.ResponseViewer().Value())
		assert.Contains(t, ansi.Strip(e.View()), "jq filter error")
	})

	t.Run("empty expression clears", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{outcome: core.Succeeded(200, body, 0)})
		sendAndDeliver(t, e)
		require.Nil(t, e.SetFilter(".order.id"))
		require.Nil(t, e.SetFilter("  "))
		assert.Empty(t, e.Filter())
		assert.Equal(t, body, e.ResponseViewer().Value())
	})
}

func TestEndpointPanel_Copy(t *testing.T) {
	t.Run("copies the response body", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{outcome: core.Succeeded(200, map[string]any{"a": 1.0}, 0)})
		sendAndDeliver(t, e)

		_, cmd := e.Update(keyMsg("y"))
		msg, ok := findMsg[CopyMsg](collect(cmd))
		require.True(t, ok)
		assert.Equal(t, "response", msg.Label)
		assert.JSONEq(t, `{"a":1}`, msg.Content)
	})

	t.Run("nothing to copy before a response", func(t *testing.T) {
		e := newEndpoint(t, 0, &fakeSender{})
		_, cmd := e.Update(keyMsg("y"))
		fb, ok := findMsg[FeedbackMsg](collect(cmd))
		require.True(t, ok)
		assert.True(t, fb.IsError)
	})

	t.Run("copies the next request as curl", func(t *testing.T) {
		e := newEndpoint(t, 1, &fakeSender{})

		_, cmd := e.Update(keyMsg("c"))
		msg, ok := findMsg[CopyMsg](collect(cmd))
		require.True(t, ok)
		assert.Equal(t, "curl command", msg.Label)
		assert.Contains(t, msg.Content, "curl -X POST")
		assert.Contains(t, msg.Content, "http://api.test/order")
		assert.Contains(t, msg.Content, `"quantity":2`)
		assert.Equal(t, 0, e.Panel().InFlight())
	})
}

func TestEndpointPanel_AgainstShop(t *testing.T) {
	shop := testserver.New(testserver.NewShop().Handler())
	defer shop.Close()

	application := app.New(app.WithConfig(app.Config{BaseURL: shop.URL}))
	panels, err := application.Panels()
	require.NoError(t, err)

	t.Run("product list", func(t *testing.T) {
		e := NewEndpointPanel(context.Background(), 0, panels[0], application)
		e.Focus()
		sendAndDeliver(t, e)

		assert.Equal(t, core.ToneSuccess, e.Panel().Visual().Tone)
		assert.Contains(t, e.ResponseViewer().Value(), "products")
	})

	t.Run("unknown order is a warning", func(t *testing.T) {
		e := NewEndpointPanel(context.Background(), 2, panels[2], application)
		e.Focus()
		e.Update(keyMsg("i"))
		e.idInput.SetValue("999")
		e.Update(keyMsg("enter"))
		sendAndDeliver(t, e)

		require.NotNil(t, e.Panel().LastResponse().Status)
		assert.Equal(t, 404, *e.Panel().LastResponse().Status)
		assert.Equal(t, core.ToneWarning, e.Panel().Visual().Tone)
		assert.Contains(t, ansi.Strip(e.View()), "404 Not Found")
	})
}
