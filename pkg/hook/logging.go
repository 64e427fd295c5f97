package hook

import (
	"context"

	"github.com/selhaddad/tripscholar/pkg/logging"
	"github.com/selhaddad/tripscholar/pkg/session"
)

// LogEntry logs each dispatched turn with the session's running call count.
func LogEntry() EntryHook {
	return func(_ context.Context, ec *EntryContext) (Outcome, error) {
		logging.Info().
			Str("handler", ec.Handler).
			Str("session", ec.Request.SessionID).
			Int("call_count", ec.State.Int(session.ScopeUser, KeyCallCount)).
			Msg("turn dispatched")
		return Continue(), nil
	}
}

// LogGeneration logs each outgoing model request at debug level.
func LogGeneration() GenerationHook {
	return func(_ context.Context, gc *GenerationContext) (Outcome, error) {
		logging.Debug().
			Str("handler", gc.Handler).
			Str("model", gc.Request.Model).
			Int("messages", len(gc.Request.Messages)).
			Int("tools", len(gc.Request.Tools)).
			Msg("model request")
		return Continue(), nil
	}
}

// LogTool logs every tool invocation and whether it succeeded.
func LogTool() ToolHook {
	return func(_ context.Context, tc *ToolContext) (Outcome, error) {
		evt := logging.Debug().
			Str("handler", tc.Handler).
			Str("tool", tc.Tool).
			Bool("ok", tc.Result.OK)
		if !tc.Result.OK {
			evt = evt.Str("reason", tc.Result.Reason)
		}
		evt.Msg("tool invoked")
		return Continue(), nil
	}
}
