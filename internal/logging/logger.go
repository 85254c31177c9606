// Package logging provides categorized loggers for ctxweave, backed by zap.
// Until Init is called every logger is a no-op, so library code can log
// unconditionally without configuration.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem. Each category gets a named child logger so log
// lines can be filtered per concern.
type Category string

const (
	CategorySession   Category = "session"   // Floating-UI session lifecycle
	CategoryTrigger   Category = "trigger"   // Activation gesture detection
	CategorySurface   Category = "surface"   // Surface splicing and removal
	CategoryReconcile Category = "reconcile" // Registry/surface reconciliation
	CategoryProvider  Category = "provider"  // Workspace provider calls
	CategoryHost      Category = "host"      // Page watching and attachment
	CategoryConfig    Category = "config"    // Configuration loading/reload
)

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// Init builds the process logger. Debug enables a development config with
// per-line caller info; otherwise the production config is used. JSON selects
// structured output for log shippers.
func Init(debug, json bool) error {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	if json {
		cfg.Encoding = "json"
	} else {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	SetLogger(logger)
	return nil
}

// SetLogger replaces the process logger. Tests use this to capture output.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
}

// Get returns the sugared logger for a category.
func Get(c Category) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(string(c)).Sugar()
}

// Sync flushes buffered log entries. Called on process exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
