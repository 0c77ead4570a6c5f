package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/cozyshelfapp/shelf-server/internal/api"
	"github.com/cozyshelfapp/shelf-server/internal/config"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/service"
	"github.com/cozyshelfapp/shelf-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	services := api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Books:    do.MustInvoke[*service.BookService](i),
		Stickers: do.MustInvoke[*service.StickerService](i),
		Goals:    do.MustInvoke[*service.GoalService](i),
		Doodles:  do.MustInvoke[*service.DoodleService](i),
		Backups:  do.MustInvoke[*service.BackupService](i),
	}

	sseHandler := sse.NewHandler(sseHandle.Manager, log)
	server := api.NewServer(services, sseHandler, log, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     server.Handler(),
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays zero: a write deadline would sever long-lived
		// SSE streams. Per-write deadlines are set inside the SSE handler.
		WriteTimeout: 0,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
