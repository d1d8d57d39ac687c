package dsl

import (
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ============================================================================
// Evaluation Configuration
// ============================================================================

// EvalConfig controls how the reference evaluator runs
type EvalConfig struct {
	// MaxWorkers limits the number of groups evaluated at once (0 = GOMAXPROCS)
	MaxWorkers int

	// Parallel controls whether GroupWise functions fan out across groups
	Parallel bool

	// Allocator backs the arrays built during evaluation and IO. The
	// NewColumn* constructors always use memory.DefaultAllocator.
	Allocator memory.Allocator

	// Logger receives debug output about planning decisions
	Logger *slog.Logger
}

// DefaultEvalConfig returns sensible defaults
func DefaultEvalConfig() *EvalConfig {
	return &EvalConfig{
		MaxWorkers: 0,
		Parallel:   true,
		Allocator:  memory.DefaultAllocator,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

var (
	evalConfigMu     sync.RWMutex
	globalEvalConfig = DefaultEvalConfig()
)

// SetEvalConfig sets the global evaluation configuration
func SetEvalConfig(cfg *EvalConfig) {
	if cfg == nil {
		return
	}
	evalConfigMu.Lock()
	globalEvalConfig = cfg
	evalConfigMu.Unlock()
}

// GetEvalConfig returns the current configuration
func GetEvalConfig() *EvalConfig {
	evalConfigMu.RLock()
	defer evalConfigMu.RUnlock()
	return globalEvalConfig
}

// numWorkers returns the number of workers to use
func (cfg *EvalConfig) numWorkers() int {
	if !cfg.Parallel {
		return 1
	}
	if cfg.MaxWorkers > 0 {
		return cfg.MaxWorkers
	}
	return runtime.GOMAXPROCS(0)
}

func (cfg *EvalConfig) logger() *slog.Logger {
	if cfg.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg.Logger
}

func (cfg *EvalConfig) allocator() memory.Allocator {
	if cfg.Allocator == nil {
		return memory.DefaultAllocator
	}
	return cfg.Allocator
}
