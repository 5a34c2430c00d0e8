package traefik

import (
	"fmt"
	"strings"

	"github.com/sistemica/header-inspector/config"
)

// InspectedByHeader is added by Traefik to every request it forwards to the
// inspector, so the page makes the proxy hop visible.
const (
	InspectedByHeader = "X-Inspected-By"
	InspectedByValue  = "header-inspector"
)

// ResourceNamer handles the generation of consistent and unique names
// for Traefik resources (routers, services, and middlewares).
type ResourceNamer struct{}

// NewResourceNamer creates a new ResourceNamer instance.
func NewResourceNamer() *ResourceNamer {
	return &ResourceNamer{}
}

// generateName creates a normalized name from multiple parts.
// It handles special characters, ensures lowercase, and removes duplicated separators.
func (n *ResourceNamer) generateName(parts ...string) string {
	fullName := strings.Join(parts, "-")
	fullName = strings.ToLower(fullName)

	replacer := strings.NewReplacer(
		".", "-",
		"/", "-",
		"_", "-",
		":", "-",
	)
	name := replacer.Replace(fullName)

	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	return strings.Trim(name, "-")
}

func (n *ResourceNamer) getRouterName(rd RouteDefinition) string {
	return n.generateName(rd.Host, rd.PathPrefix, "router")
}

func (n *ResourceNamer) getServiceName(rd RouteDefinition) string {
	return n.generateName(rd.Host, rd.PathPrefix, "service")
}

func (n *ResourceNamer) getMiddlewareName(rd RouteDefinition, mwType string) string {
	return n.generateName(rd.Host, rd.PathPrefix, mwType, "middleware")
}

// Builder constructs Traefik's dynamic configuration from route definitions.
type Builder struct {
	namer *ResourceNamer
}

// NewBuilder creates a new Builder instance.
func NewBuilder() *Builder {
	return &Builder{
		namer: NewResourceNamer(),
	}
}

// RouteFromConfig describes the inspector listening on port as a route.
func RouteFromConfig(cfg config.TraefikConfig, port int) RouteDefinition {
	return RouteDefinition{
		Host:        cfg.Host,
		PathPrefix:  cfg.PathPrefix,
		QueryParams: cfg.QueryParams,
		RequestHeaders: map[string]string{
			InspectedByHeader: InspectedByValue,
		},
		EntryPoints: cfg.EntryPoints,
		Service: ServiceDefinition{
			Host: cfg.ServiceHost,
			Port: port,
		},
	}
}

// Build generates a complete Traefik dynamic configuration from route definitions.
func (b *Builder) Build(routes []RouteDefinition) *DynamicConfig {
	config := &DynamicConfig{}
	config.HTTP.Routers = make(map[string]Router)
	config.HTTP.Services = make(map[string]Service)
	config.HTTP.Middlewares = make(map[string]Middleware)

	for _, route := range routes {
		b.addRoute(route, config)
	}

	return config
}

func buildServiceURL(svc ServiceDefinition) string {
	if svc.Scheme == "" {
		svc.Scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%d", svc.Scheme, svc.Host, svc.Port)
}

// buildRule matches the route host and, when set, its path prefix.
func buildRule(rd RouteDefinition) string {
	rule := fmt.Sprintf("Host(`%s`)", rd.Host)
	if rd.PathPrefix != "" {
		rule += fmt.Sprintf(" && PathPrefix(`%s`)", rd.PathPrefix)
	}
	return rule
}

// addRoute adds the router, service and middlewares of one route.
// Middlewares run in order: strip prefix, query params, fixed headers.
func (b *Builder) addRoute(rd RouteDefinition, config *DynamicConfig) {
	routerName := b.namer.getRouterName(rd)
	serviceName := b.namer.getServiceName(rd)
	var middlewares []string

	if rd.PathPrefix != "" {
		mwName := b.namer.getMiddlewareName(rd, "strip-prefix")
		config.HTTP.Middlewares[mwName] = StripPrefixMw(rd.PathPrefix)
		middlewares = append(middlewares, mwName)
	}

	if len(rd.QueryParams) > 0 {
		mwName := b.namer.getMiddlewareName(rd, "query-params")
		config.HTTP.Middlewares[mwName] = QueryParamsToHeaderMw(rd.QueryParams)
		middlewares = append(middlewares, mwName)
	}

	if len(rd.RequestHeaders) > 0 {
		mwName := b.namer.getMiddlewareName(rd, "custom-headers")
		config.HTTP.Middlewares[mwName] = RequestHeadersMw(rd.RequestHeaders)
		middlewares = append(middlewares, mwName)
	}

	config.HTTP.Routers[routerName] = Router{
		EntryPoints: rd.EntryPoints,
		Service:     serviceName,
		Rule:        buildRule(rd),
		Middlewares: middlewares,
	}

	passHost := true
	config.HTTP.Services[serviceName] = Service{
		LoadBalancer: &LoadBalancer{
			Servers: []Server{
				{
					URL: buildServiceURL(rd.Service),
				},
			},
			PassHostHeader: &passHost,
		},
	}
}
