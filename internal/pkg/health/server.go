package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/interfaces"
)

// Run starts the status server in the background and shuts it down when ctx
// is canceled. Serving errors are logged, not returned, since the scraper
// keeps collecting regardless.
func Run(ctx context.Context, addr string, service string, source interfaces.StatusSource, readHeaderTimeout time.Duration) error {
	if readHeaderTimeout <= 0 {
		return fmt.Errorf("read header timeout must be positive, got %s", readHeaderTimeout)
	}

	h := newHandler(source)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", h.ping)
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/odds", h.odds)
	mux.HandleFunc("/status", h.status)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("Status server listening", "service", service, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Status server error", "service", service, "error", err)
		}
	}()

	return nil
}

func AddrFor(port int) string {
	return fmt.Sprintf(":%d", port)
}
