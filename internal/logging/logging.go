// Package logging 提供全局 zap 日志实例。
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Init 按运行模式初始化全局日志：生产配置，开发模式下输出 debug 级别
func Init(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	Set(l)
	return l, nil
}

// Set 替换全局日志实例；nil 时使用空日志
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// L 全局日志实例
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Named 组件子日志
func Named(component string) *zap.Logger {
	return L().Named(component)
}

// Sync 刷新缓冲
func Sync() {
	_ = L().Sync()
}
