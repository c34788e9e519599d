package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/icgdb/icgdb-server/internal/api"
	"github.com/icgdb/icgdb-server/internal/config"
	"github.com/icgdb/icgdb-server/internal/logger"
	"github.com/icgdb/icgdb-server/internal/media/images"
	"github.com/icgdb/icgdb-server/internal/service"
)

// Version is stamped at build time.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	pictures := do.MustInvoke[*images.Storage](i)

	services := &api.Services{
		Categories: do.MustInvoke[*service.CategoryService](i),
		Games:      do.MustInvoke[*service.GameService](i),
		Users:      do.MustInvoke[*service.UserService](i),
		Auth:       do.MustInvoke[*service.AuthService](i),
		Search:     do.MustInvoke[*service.SearchService](i),
		Names:      do.MustInvoke[*service.NameRegistry](i),
	}

	handler := api.NewServer(services, pictures, api.Options{
		Version:            Version,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MaxUploadBytes:     cfg.Upload.MaxBytes,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
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

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
