// Package telemetry provides metrics sink implementations. The engines
// treat the sink as an injected collaborator: a nil or no-op sink never
// changes operation behavior.
package telemetry

import (
	"go.uber.org/zap"

	"github.com/wippyai/textcodec"
)

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Record(textcodec.Event) {}

// ZapSink emits one structured log entry per operation event.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink wraps a zap logger as a metrics sink. A nil logger degrades
// to a no-op.
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapSink{log: log}
}

// Record implements textcodec.Sink.
func (s *ZapSink) Record(ev textcodec.Event) {
	fields := []zap.Field{
		zap.String("op", ev.Op),
		zap.String("format", string(ev.Format)),
		zap.Duration("duration", ev.Duration),
		zap.Int("input_bytes", ev.InputBytes),
		zap.Int("output_bytes", ev.OutputBytes),
		zap.Bool("security_violation", ev.SecurityViolation),
	}
	if ev.Err != nil {
		fields = append(fields, zap.Error(ev.Err))
		s.log.Warn("codec operation failed", fields...)
		return
	}
	s.log.Info("codec operation", fields...)
}
