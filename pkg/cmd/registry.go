// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukex/nodeflow/pkg/persistence"
	providers "github.com/dukex/nodeflow/pkg/providers/ai"
	"github.com/dukex/nodeflow/pkg/registry"
)

// NewRegistry wires every node executor to one HTTP client and the
// credentials stored in p.
func NewRegistry(logger *slog.Logger, p persistence.Persistence, httpTimeout time.Duration) *registry.Registry {
	client := &http.Client{Timeout: httpTimeout}

	return registry.NewRegistry(registry.Dependencies{
		Logger:     logger,
		HTTPClient: client,
		Providers: providers.NewSet(providers.Config{
			HTTPClient: client,
			Logger:     logger,
		}),
		Credentials: persistence.CredentialStore{Repository: p.CredentialRepository()},
	})
}
