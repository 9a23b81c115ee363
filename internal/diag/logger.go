package diag

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger: 结构化日志器。单行 JSON（zap），默认写入 logs/ 下 10 MiB 轮转文件。
// 事件字段：level, ts, corr_id, comp, stage(start|finish|warn|error), code, dur_ms, count, file_id, entry, msg, kv。
type Logger struct {
	z    *zap.Logger
	sink *RotatingFile
}

// NewLogger 通过配置的 level 初始化，日志写入 logs/fabschema-current.txt。
func NewLogger(corrID, level string) *Logger {
	sink := NewRotatingFile("logs", 10*1024*1024)
	l := NewLoggerTo(sink, corrID, level)
	l.sink = sink
	return l
}

// NewLoggerTo 将日志写到任意 WriteSyncer（测试或 stderr）。
func NewLoggerTo(ws zapcore.WriteSyncer, corrID, level string) *Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		LevelKey:       "level",
		TimeKey:        "ts",
		MessageKey:     "msg",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     utcRFC3339,
		EncodeDuration: zapcore.MillisDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	})
	core := zapcore.NewCore(enc, zapcore.Lock(ws), parseLevel(level))
	z := zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	if corrID != "" {
		z = z.With(zap.String("corr_id", corrID))
	}
	return &Logger{z: z}
}

// Nop 返回丢弃一切的日志器。
func Nop() *Logger { return &Logger{z: zap.NewNop()} }

func utcRFC3339(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339))
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync 刷新并关闭默认文件 sink。
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	err := l.z.Sync()
	if l.sink != nil {
		if cerr := l.sink.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (l *Logger) event(lv zapcore.Level, comp, stage, msg string, fs ...zap.Field) {
	if l == nil || l.z == nil {
		return
	}
	if ce := l.z.Check(lv, msg); ce != nil {
		ce.Write(append([]zap.Field{zap.String("comp", comp), zap.String("stage", stage)}, fs...)...)
	}
}

func where(fileID, entry string) []zap.Field {
	var fs []zap.Field
	if fileID != "" {
		fs = append(fs, zap.String("file_id", fileID))
	}
	if entry != "" {
		fs = append(fs, zap.String("entry", entry))
	}
	return fs
}

func kvField(kv map[string]string) []zap.Field {
	if len(kv) == 0 {
		return nil
	}
	return []zap.Field{zap.Any("kv", kv)}
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	return l.StartWith(comp, msg, "", "")
}

// StartWith 记录带 file_id/entry 的 start。
func (l *Logger) StartWith(comp, msg, fileID, entry string) *Timer {
	l.event(zapcore.InfoLevel, comp, "start", msg, where(fileID, entry)...)
	return &Timer{l: l, comp: comp, fileID: fileID, entry: entry, t0: time.Now()}
}

// Debug 输出调试事件（仅在 level=debug 时生效）。
func (l *Logger) Debug(comp, msg, fileID, entry string, kv map[string]string) {
	l.event(zapcore.DebugLevel, comp, "start", msg, append(where(fileID, entry), kvField(kv)...)...)
}

// WarnWith 记录非致命告警（如组成计数总和为 0）。
func (l *Logger) WarnWith(comp, code, msg, fileID, entry string, kv map[string]string) {
	fs := append([]zap.Field{zap.String("code", code)}, where(fileID, entry)...)
	l.event(zapcore.WarnLevel, comp, "warn", msg, append(fs, kvField(kv)...)...)
}

// ErrorWith 记录 error 事件；durSince 非空时附带耗时。
func (l *Logger) ErrorWith(comp, code, msg string, durSince *time.Time, fileID, entry string) {
	fs := []zap.Field{zap.String("code", code)}
	if durSince != nil {
		fs = append(fs, zap.Int64("dur_ms", time.Since(*durSince).Milliseconds()))
	}
	l.event(zapcore.ErrorLevel, comp, "error", msg, append(fs, where(fileID, entry)...)...)
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l      *Logger
	comp   string
	fileID string
	entry  string
	t0     time.Time
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	d := time.Since(t.t0)
	ObserveDuration(t.comp, "finish", d.Milliseconds())
	fs := []zap.Field{zap.Int64("dur_ms", d.Milliseconds())}
	if count != 0 {
		fs = append(fs, zap.Int64("count", count))
	}
	t.l.event(zapcore.InfoLevel, t.comp, "finish", msg, append(fs, where(t.fileID, t.entry)...)...)
}

// Since 返回计时起点（供 ErrorWith 计算耗时）。
func (t *Timer) Since() *time.Time {
	if t == nil {
		return nil
	}
	return &t.t0
}
