// Package log 是全局 zap SugaredLogger 的薄封装，服务内统一通过它输出日志。
package log

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 未调用 Init 时日志被丢弃，库代码与单元测试无需额外初始化。
var sugar = zap.NewNop().Sugar()

// Init 按配置构建 logger 并替换全局实例，构建失败直接 panic。
func Init(level, format, outputPath string) {
	if outputPath != "" {
		_ = os.MkdirAll(outputPath, os.ModePerm)
	}
	logger, err := newConfig(level, format, outputPath).Build()
	if err != nil {
		panic(err)
	}
	sugar = logger.Sugar()
}

// newConfig 把 level/format/outputPath 翻译成 zap.Config。
// format 为 console 时输出带颜色的可读格式，其余一律 JSON；无法识别的级别退回 info。
func newConfig(level, format, outputPath string) zap.Config {
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.SetLevel(zap.InfoLevel)
	}
	cfg.Level = lvl

	cfg.OutputPaths = []string{"stdout"}
	if outputPath != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(outputPath, "app.log"))
	}
	return cfg
}

func Info(msg string) { sugar.Info(msg) }
func Infof(template string, args ...interface{}) { sugar.Infof(template, args...) }
func Infow(msg string, keysAndValues ...interface{}) { sugar.Infow(msg, keysAndValues...) }
func Warnf(template string, args ...interface{}) { sugar.Warnf(template, args...) }
func Errorf(template string, args ...interface{}) { sugar.Errorf(template, args...) }
func Fatalf(template string, args ...interface{}) { sugar.Fatalf(template, args...) }

// Error 以结构化字段 "error" 附带 err。
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

// Fatal 同 Error，记录后退出进程。
func Fatal(msg string, err error) {
	sugar.Fatalw(msg, "error", err)
}

// Sync 刷新缓冲，main 退出前调用。
func Sync() {
	_ = sugar.Sync()
}
