package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建一个新的日志记录器；debug 为 true 时输出调试级别日志
func New(debug bool) *zap.Logger {
	config := zap.NewProductionConfig()

	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	config.DisableStacktrace = true
	// 诊断日志全部走 stderr，stdout 留给进程的正常输出
	config.OutputPaths = []string{"stderr"}

	log, err := config.Build()
	if err != nil {
		panic("初始化日志系统失败: " + err.Error())
	}

	return log
}
