package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger writing through a fresh Sink. The caller
// owns the returned sink and closes it after the last log call.
func New(cfg Config) (*zap.Logger, *Sink, error) {
	sink, err := NewSink(cfg)
	if err != nil {
		return nil, nil, err
	}
	return zap.New(&sinkCore{sink: sink}), sink, nil
}

// sinkCore adapts a Sink to zapcore.Core. Fields are rendered inline
// as " k=v" suffixes so the on-disk format stays single-line.
type sinkCore struct {
	sink   *Sink
	fields []zapcore.Field
}

func (c *sinkCore) Enabled(level zapcore.Level) bool {
	return c.sink.Enabled(level)
}

func (c *sinkCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &sinkCore{sink: c.sink}
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *sinkCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *sinkCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	msg := ent.Message
	if len(c.fields) > 0 || len(fields) > 0 {
		msg += renderFields(c.fields, fields)
	}
	ts := ent.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	c.sink.submit(ts, ent.Level, msg)
	return nil
}

func (c *sinkCore) Sync() error {
	return c.sink.Flush()
}

func renderFields(bound, extra []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range bound {
		f.AddTo(enc)
	}
	for _, f := range extra {
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		fmt.Fprintf(&sb, "%v", enc.Fields[k])
	}
	return sb.String()
}

// ParseLevel maps a config string to a zap level. Unknown values read
// as info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
