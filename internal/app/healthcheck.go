package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// healthHandler reports OK and the number of loaded plugins.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK plugins=%d\n", len(a.loader.Loaded()))
}

// healthCheckServer initializes and runs the health check HTTP server.
func (a *App) healthCheckServer() {
	a.logger.Debug("Configuring health check server.")
	if a.config.HealthcheckPort <= 0 {
		a.logger.Debug("Health check server not started: disabled")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)

	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	a.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeHealthCheckServer() error {
	if a.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down health check server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	a.httpServer = nil
	return nil
}
