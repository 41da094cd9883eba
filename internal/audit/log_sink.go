package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

// LogSink writes audit events as structured log entries. It is the
// default sink when no broker is configured.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a zerolog-backed audit sink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(_ context.Context, ev Event) error {
	s.logger.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str("action", ev.Action).
		Str("actor_id", ev.ActorID).
		Str("actor_role", ev.ActorRole).
		Str("entity_type", ev.EntityType).
		Str("entity_id", ev.EntityID).
		Str("source_addr", ev.SourceAddr).
		Time("ts", ev.Timestamp).
		Msg(ev.Message)
	return nil
}

func (s *LogSink) Close() error {
	return nil
}
