package server

import (
	"context"
	"sync"
)

// ServerContext carries the lifecycle shared by the HTTP server and the
// background command processors. It is cancelled exactly once, at shutdown.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context carrying the parent's values
// but not its cancellation. Background command processors must survive the
// shutdown signal long enough to deliver their response; they are cancelled
// by Shutdown, after the drain.
func NewServerContext(ctx context.Context) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
	}
}

// Context returns the context background command processors run under.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Shutdown marks the context as shut down and cancels it. Safe to call more
// than once.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return
	}
	sc.shutdown = true
	sc.cancel()
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}
