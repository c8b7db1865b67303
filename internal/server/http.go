package server

import (
	"context"
	"errors"
	"net/http"
)

// HTTPListener adapts an http.Server to the Listener interface.
type HTTPListener struct {
	srv *http.Server
}

// NewHTTPListener wraps srv.
//
// Precondition: srv.Addr and srv.Handler must be set.
func NewHTTPListener(srv *http.Server) *HTTPListener {
	return &HTTPListener{srv: srv}
}

// Listen serves until Shutdown.
func (h *HTTPListener) Listen() error {
	err := h.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within the context deadline.
func (h *HTTPListener) Shutdown(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
