package logging

import (
	"context"

	"github.com/goliatone/go-blockbuilder/pkg/interfaces"
)

const (
	rootModule     = "blockbuilder"
	blocksModule   = "blockbuilder.blocks"
	syncModule     = "blockbuilder.sync"
	snapshotModule = "blockbuilder.snapshots"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// BlocksLogger returns the logger namespace reserved for the block service.
func BlocksLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, blocksModule)
}

// SyncLogger returns the logger namespace reserved for the sync engine.
func SyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, syncModule)
}

// SnapshotLogger returns the logger namespace reserved for the snapshot store.
func SnapshotLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, snapshotModule)
}

// NoOp returns a logger that discards every entry.
func NoOp() interfaces.Logger {
	return noOpLogger{}
}

type noOpLogger struct{}

func (noOpLogger) Trace(string, ...any) {}
func (noOpLogger) Debug(string, ...any) {}
func (noOpLogger) Info(string, ...any)  {}
func (noOpLogger) Warn(string, ...any)  {}
func (noOpLogger) Error(string, ...any) {}
func (noOpLogger) Fatal(string, ...any) {}

func (l noOpLogger) WithContext(context.Context) interfaces.Logger { return l }
