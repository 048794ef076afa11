package logger

import (
	"fmt"
	"sort"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// minimalEncoder renders calm, single-line console output:
//
//	15:04:05 ▤ Event appended  object_id=o1 tagpath=library/title
//
// Timestamps are short, levels are colored only when they matter (warn and
// above), and structured fields trail the message as dim key=value pairs.
// A known sym glyph in the fields is pulled up front instead of being
// rendered as a field.

const (
	colorReset = "\x1b[0m"
	colorDim   = "\x1b[2m"

	// Muted warm palette, easy on the eyes
	colorTime = "\x1b[38;5;108m" // muted cyan-green
	colorWarn = "\x1b[38;5;214m" // soft yellow
	colorErr  = "\x1b[38;5;167m" // warm red
	colorSym  = "\x1b[38;5;142m" // muted green
)

type minimalEncoder struct {
	zapcore.Encoder // embedded for the ObjectEncoder surface
	pool            buffer.Pool
}

func newMinimalEncoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "",
		TimeKey:        "",
		NameKey:        "",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return &minimalEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
		pool:    buffer.NewPool(),
	}
}

func (e *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: e.Encoder.Clone(), pool: e.pool}
}

func (e *minimalEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := e.pool.Get()

	line.AppendString(colorTime)
	line.AppendString(entry.Time.Format("15:04:05"))
	line.AppendString(colorReset)
	line.AppendByte(' ')

	// Levels below warn stay silent; the output should read like prose.
	switch entry.Level {
	case zapcore.WarnLevel:
		line.AppendString(colorWarn + "WARN" + colorReset + " ")
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		line.AppendString(colorErr + entry.Level.CapitalString() + colorReset + " ")
	}

	// Flatten fields through a map encoder so typed values render uniformly.
	me := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(me)
	}

	// A registered glyph leads the line instead of trailing as a field.
	if glyph, ok := me.Fields[FieldSymbol].(string); ok {
		line.AppendString(colorSym)
		line.AppendString(glyph)
		line.AppendString(colorReset)
		line.AppendByte(' ')
		delete(me.Fields, FieldSymbol)
	}

	line.AppendString(entry.Message)

	keys := make([]string, 0, len(me.Fields))
	for k := range me.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line.AppendString("  " + colorDim)
		line.AppendString(k)
		line.AppendByte('=')
		line.AppendString(fmt.Sprintf("%v", me.Fields[k]))
		line.AppendString(colorReset)
	}

	line.AppendString(zapcore.DefaultLineEnding)
	return line, nil
}
