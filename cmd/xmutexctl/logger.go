package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志文件轮转参数
const (
	logMaxSizeMB  = 100
	logMaxBackups = 5
	logMaxAgeDays = 7
)

// newLogger 按级别创建 JSON 日志记录器。path 非空时写入轮转文件，
// 返回的 closer 需在退出前调用。
func newLogger(level, path string, stderr io.Writer) (*slog.Logger, func() error, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, nil, usageErrorf("未知日志级别 %q", level)
	}

	out := stderr
	closer := func() error { return nil }
	if path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}
		out = lj
		closer = lj.Close
	}
	if out == nil {
		out = os.Stderr
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), closer, nil
}
