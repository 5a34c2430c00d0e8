package inspect

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sistemica/header-inspector/config"
	"github.com/sistemica/header-inspector/traefik"
)

// NewRouter composes the inspector routes for cfg. transcript receives the
// echo call log; logger everything else.
func NewRouter(cfg config.Config, logger, transcript *zap.Logger) (http.Handler, error) {
	apiPath, err := cfg.APIPath()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	mux.Handle("GET /{$}", PageHandler(cfg.APIURL, logger))
	mux.Handle("GET /health", HealthHandler(time.Now))
	mux.Handle(fmt.Sprintf("POST %s", apiPath), NewEchoLogger(transcript, logger))

	if cfg.Traefik.Enabled() {
		route := traefik.RouteFromConfig(cfg.Traefik, cfg.Port)
		mux.Handle("GET "+traefik.ConfigPath, traefik.ConfigHandler([]traefik.RouteDefinition{route}, logger))
	}

	mux.Handle("GET /", StaticHandler(cfg.PublicDir))

	return AccessLog(mux, logger), nil
}
