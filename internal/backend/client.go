// Package backend is the adapter over the hosted data and auth services.
// Callers check Configured before touching Tables or Auth: with no backend URL
// or key the client runs offline and every dependent operation degrades.
package backend

import (
	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/internal/repository"
)

// Client bundles row-level table access with the auth sub-service.
type Client struct {
	Tables *repository.Repository
	Auth   *AuthProvider
	logger *zap.Logger
}

// New returns a configured client.
func New(tables *repository.Repository, auth *AuthProvider, logger *zap.Logger) *Client {
	return &Client{Tables: tables, Auth: auth, logger: logger}
}

// NewOffline returns a client whose Configured reports false.
func NewOffline(logger *zap.Logger) *Client {
	logger.Warn("backend not configured, running offline: set KKAKDUGI_BACKEND_URL and KKAKDUGI_BACKEND_KEY")
	return &Client{logger: logger}
}

// Configured reports whether the backend is reachable at all.
func (c *Client) Configured() bool {
	return c != nil && c.Tables != nil
}

// Guard logs a warning and returns ErrNotConfigured when offline.
func (c *Client) Guard(op string) error {
	if c.Configured() {
		return nil
	}
	if c != nil && c.logger != nil {
		c.logger.Warn("backend offline, operation skipped", zap.String("op", op))
	}
	return ErrNotConfigured
}

// Close releases the auth event stream.
func (c *Client) Close() {
	if c != nil && c.Auth != nil {
		c.Auth.Close()
	}
}
