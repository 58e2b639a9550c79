package log

import (
	"context"
	"log/slog"
)

// WireTracer logs every register transfer at trace level. It satisfies
// fan.Tracer.
type WireTracer struct {
	logger *slog.Logger
}

func NewWireTracer(logger *slog.Logger) *WireTracer {
	return &WireTracer{logger: logger}
}

func (t *WireTracer) Transfer(op string, reg uint8, detail string, err error) {
	if err != nil {
		t.logger.Log(context.Background(), LevelTrace, "register transfer failed",
			"op", op, "reg", reg, "error", err)
		return
	}
	t.logger.Log(context.Background(), LevelTrace, "register transfer",
		"op", op, "reg", reg, "value", detail)
}
