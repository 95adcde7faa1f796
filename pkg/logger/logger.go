package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOption 日志初始化参数
type LogOption struct {
	Format   string // console / json
	LogDir   string // 为空时只输出到 stdout
	Level    string // debug / info / warn / error
	Compress bool   // 是否压缩滚动后的旧文件
}

const (
	logFileName = "indexer.log"
	maxSizeMB   = 200
	maxBackups  = 20
	maxAgeDays  = 7
)

var (
	mu      sync.RWMutex
	sugared = zap.NewNop().Sugar()
	base    = zap.NewNop()
)

// InitLogger 根据配置初始化全局 logger，可重复调用（后一次覆盖前一次）
func InitLogger(opt LogOption) error {
	level := zapcore.InfoLevel
	if opt.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opt.Level))); err != nil {
			return err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	// 未知格式一律按 console 处理
	encoder := zapcore.NewConsoleEncoder(encCfg)
	if strings.EqualFold(opt.Format, "json") {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	writers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if opt.LogDir != "" {
		if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
			return err
		}
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opt.LogDir, logFileName),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   opt.Compress,
			LocalTime:  true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), level)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	base = l
	sugared = l.Sugar()
	mu.Unlock()
	return nil
}

// L 返回底层 zap.Logger，需要结构化字段时使用
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func s() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugared
}

func Debugf(format string, args ...any) { s().Debugf(format, args...) }
func Infof(format string, args ...any)  { s().Infof(format, args...) }
func Warnf(format string, args ...any)  { s().Warnf(format, args...) }
func Errorf(format string, args ...any) { s().Errorf(format, args...) }

// Sync 刷新缓冲，进程退出前调用
func Sync() {
	_ = L().Sync()
}
