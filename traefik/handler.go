package traefik

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ConfigPath is where the dynamic configuration is served for Traefik's
// HTTP provider.
const ConfigPath = "/traefik/config"

// ConfigHandler serves the dynamic configuration for routes. The
// configuration is built once; Traefik polls it.
func ConfigHandler(routes []RouteDefinition, logger *zap.Logger) http.HandlerFunc {
	config := NewBuilder().Build(routes)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))

		if err := json.NewEncoder(w).Encode(config); err != nil {
			logger.Error("Failed to encode traefik config", zap.Error(err))
		}
	}
}
