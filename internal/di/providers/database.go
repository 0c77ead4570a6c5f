package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/cozyshelfapp/shelf-server/internal/config"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/sse"
	"github.com/cozyshelfapp/shelf-server/internal/store"
	"github.com/cozyshelfapp/shelf-server/internal/sync"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// ProvideSyncHub provides the change event hub that reconcilers subscribe to.
func ProvideSyncHub(i do.Injector) (*sync.Hub, error) {
	return sync.NewHub(), nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store. Every mutation fans out to both
// the sync hub and the SSE manager.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	hub := do.MustInvoke[*sync.Hub](i)

	dbPath := cfg.DatabasePath()
	db, err := store.New(dbPath, log, store.NewMultiEmitter(hub, sseHandle.Manager))
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
