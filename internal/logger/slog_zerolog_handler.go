package logger

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// NewSlog wraps a zerolog logger in the slog facade the rest of the
// service logs through. Level filtering stays with zerolog's global
// level; context fields (request id, mode, component) are pulled in per
// record via FromContext.
func NewSlog(zl *zerolog.Logger) *slog.Logger {
	return slog.New(&zerologBridge{zl: zl})
}

type zerologBridge struct {
	zl    *zerolog.Logger
	attrs []slog.Attr
}

func (b *zerologBridge) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (b *zerologBridge) Handle(ctx context.Context, r slog.Record) error {
	ev := b.eventFor(ctx, r.Level)
	for _, a := range b.attrs {
		ev = appendAttr(ev, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = appendAttr(ev, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (b *zerologBridge) eventFor(ctx context.Context, level slog.Level) *zerolog.Event {
	base := FromContext(ctx, b.zl)
	switch {
	case level <= slog.LevelDebug:
		return base.Debug()
	case level >= slog.LevelError:
		return base.Error()
	case level >= slog.LevelWarn:
		return base.Warn()
	default:
		return base.Info()
	}
}

func (b *zerologBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *b
	cp.attrs = append(cp.attrs[:len(cp.attrs):len(cp.attrs)], attrs...)
	return &cp
}

// groups are flattened; the zerolog output stays a single-level object
func (b *zerologBridge) WithGroup(_ string) slog.Handler { return b }

func appendAttr(ev *zerolog.Event, a slog.Attr) *zerolog.Event {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return ev.Str(a.Key, v.String())
	case slog.KindInt64:
		return ev.Int64(a.Key, v.Int64())
	case slog.KindUint64:
		return ev.Uint64(a.Key, v.Uint64())
	case slog.KindFloat64:
		return ev.Float64(a.Key, v.Float64())
	case slog.KindBool:
		return ev.Bool(a.Key, v.Bool())
	case slog.KindDuration:
		return ev.Dur(a.Key, v.Duration())
	case slog.KindTime:
		return ev.Time(a.Key, v.Time())
	default:
		return ev.Interface(a.Key, v.Any())
	}
}
