package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 键值对风格的结构化日志接口
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options 日志初始化选项
type Options struct {
	Level   string   // debug/info/warn/error
	Writers []string // console、file
	File    string   // 日志文件路径，file writer 启用时生效
}

type zeroLogger struct {
	l zerolog.Logger
}

// New 创建基于 zerolog 的日志器，文件输出带滚动切割
func New(opts Options) Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	for _, w := range opts.Writers {
		switch w {
		case "console":
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
		case "file":
			file := opts.File
			if file == "" {
				file = "debugswift.log"
			}
			writers = append(writers, &lumberjack.Logger{
				Filename:   file,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     28, // 天
			})
		}
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return &zeroLogger{l: l}
}

// NewNop 返回丢弃所有输出的日志器
func NewNop() Logger {
	return &zeroLogger{l: zerolog.Nop()}
}

func (z *zeroLogger) Debug(msg string, args ...any) { emit(z.l.Debug(), msg, args) }
func (z *zeroLogger) Info(msg string, args ...any)  { emit(z.l.Info(), msg, args) }
func (z *zeroLogger) Warn(msg string, args ...any)  { emit(z.l.Warn(), msg, args) }
func (z *zeroLogger) Error(msg string, args ...any) { emit(z.l.Error(), msg, args) }

// emit 按键值对展开附加字段，奇数个参数时忽略最后一个
func emit(e *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}
