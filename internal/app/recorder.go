package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/artpar/querybench/internal/core"
	"github.com/artpar/querybench/internal/history"
	"github.com/artpar/querybench/internal/panel"
)

// recorder logs completions and writes them to the session history.
type recorder struct {
	logger  *slog.Logger
	history history.Store
}

func (r *recorder) OnApplied(p *panel.Panel, call *panel.Call, outcome core.Outcome) {
	attrs := []any{
		"route", p.Route().RouteName,
		"method", call.Method.String(),
		"seq", call.Seq,
		"status", outcome.Status,
		"tone", string(core.ClassifyOutcome(outcome).Tone),
		"duration", outcome.Duration,
	}
	if f := outcome.Failure(); f != nil {
		r.logger.Warn("request failed", append(attrs, "kind", string(f.Kind), "error", f.Detail)...)
	} else {
		r.logger.Info("response applied", attrs...)
	}
	r.record(p, call, outcome, true)
}

func (r *recorder) OnDiscarded(p *panel.Panel, call *panel.Call, outcome core.Outcome) {
	r.logger.Debug("stale response discarded",
		"route", p.Route().RouteName,
		"method", call.Method.String(),
		"seq", call.Seq,
		"status", outcome.Status,
	)
	r.record(p, call, outcome, false)
}

func (r *recorder) record(p *panel.Panel, call *panel.Call, outcome core.Outcome, applied bool) {
	if r.history == nil {
		return
	}
	entry := newEntry(p.Route().RouteName, call, outcome, applied)
	if _, err := r.history.Add(context.Background(), entry); err != nil {
		r.logger.Error("failed to record history", "seq", call.Seq, "error", err)
	}
}

func newEntry(route string, call *panel.Call, outcome core.Outcome, applied bool) history.Entry {
	entry := history.Entry{
		Timestamp: call.Issued,
		Route:     route,
		Method:    call.Method.String(),
		URL:       call.URL,
		Seq:       call.Seq,
		Status:    outcome.Status,
		Tone:      string(core.ClassifyOutcome(outcome).Tone),
		Duration:  outcome.Duration.Milliseconds(),
		Applied:   applied,
	}
	if call.Request != nil {
		entry.ID = call.Request.ID()
		entry.RequestBody = call.Request.Body().String()
	}
	if outcome.OK && outcome.Body != nil {
		if b, err := json.Marshal(outcome.Body); err == nil {
			entry.ResponseBody = string(b)
		}
	}
	if f := outcome.Failure(); f != nil {
		entry.FailureKind = string(f.Kind)
		entry.FailureDetail = f.Detail
	}
	return entry
}
