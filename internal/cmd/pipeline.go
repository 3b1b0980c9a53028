package cmd

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/Alia5/sbcpad/internal/journal"
	"github.com/Alia5/sbcpad/internal/log"
	"github.com/Alia5/sbcpad/internal/metrics"
	"github.com/Alia5/sbcpad/profile"
	"github.com/Alia5/sbcpad/telemetry"
	"github.com/Alia5/sbcpad/translate"
)

// Pipeline decodes telemetry lines and dispatches them: raw_state events go
// to the engine, everything else is logged and optionally journaled.
// Journal and Metrics may be nil.
type Pipeline struct {
	Engine  *translate.Engine
	Profile profile.Profile
	Logger  *slog.Logger
	Raw     log.RawLogger
	Metrics *metrics.Metrics
	Journal *journal.Journal
}

// Serve consumes lines in order until the sequence ends. A read error is
// returned unless ctx was cancelled first, which counts as a clean stop. Sink
// failures stop the loop and are returned.
func (p *Pipeline) Serve(ctx context.Context, lines iter.Seq2[string, error]) error {
	for line, err := range lines {
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("telemetry stream: %w", err)
		}
		if err := p.HandleLine(ctx, line); err != nil {
			return err
		}
	}
	p.Logger.Info("telemetry stream closed")
	return nil
}

// HandleLine processes a single line.
func (p *Pipeline) HandleLine(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	p.Metrics.Line()
	if p.Raw != nil {
		p.Raw.Log(line)
	}

	ev, err := telemetry.Decode(line)
	if err != nil {
		msg, reason := "invalid json", "invalid_json"
		switch {
		case errors.Is(err, telemetry.ErrNotObject):
			msg, reason = "invalid event", "not_object"
		case errors.Is(err, telemetry.ErrMissingType):
			msg, reason = "invalid event", "missing_type"
		}
		p.Metrics.DecodeError(reason)
		p.Logger.Warn(msg, "error", err, "line", line)
		return nil
	}
	p.Metrics.Event(ev.Type)

	switch ev.Type {
	case telemetry.TypeRawState:
		applied, err := p.Engine.Translate(ev.RawState())
		if err != nil {
			return fmt.Errorf("apply state: %w", err)
		}
		p.Metrics.Translation(applied)
		return nil
	case telemetry.TypeHello:
		p.Logger.Info("publisher hello", "type", ev.Type, "timestamp_ms", ev.TimestampMs, "line", line)
	case telemetry.TypeMeta:
		p.handleMeta(ev)
	default:
		p.Logger.Info("event", "type", ev.Type, "line", line)
	}
	p.record(ctx, ev)
	return nil
}

func (p *Pipeline) handleMeta(ev telemetry.Event) {
	names, ok := ev.Strings("button_names")
	p.Logger.Info("publisher meta", "type", ev.Type, "button_names", len(names), "line", ev.Line)
	if n := p.Profile.ButtonCount; ok && n > 0 && len(names) != n {
		p.Logger.Warn("publisher button count differs from profile",
			"profile", n, "published", len(names))
	}
}

func (p *Pipeline) record(ctx context.Context, ev telemetry.Event) {
	if p.Journal == nil {
		return
	}
	var ts *int64
	if v, ok := ev.Int("timestamp_ms"); ok {
		ts = &v
	}
	if err := p.Journal.Record(ctx, ev.Type, ts, ev.Line); err != nil {
		p.Logger.Warn("journal write failed", "error", err)
	}
}
