// Package traefik generates the Traefik dynamic configuration that puts the
// header inspector behind a Traefik instance, so the page shows exactly what
// the proxy forwards.
package traefik

// RouteDefinition defines how requests reach the inspector through Traefik.
type RouteDefinition struct {
	// Host specifies the domain for the route (e.g., "inspect.example.com")
	Host string

	// PathPrefix optionally mounts the inspector below a path (e.g., "/inspect").
	// The prefix is stripped before the request is forwarded.
	PathPrefix string

	// QueryParams lists query parameters to copy into request headers
	// Example: ["version"] will create header "X-version" from query param "version"
	QueryParams []string

	// RequestHeaders are fixed headers Traefik adds to every forwarded request
	RequestHeaders map[string]string

	// EntryPoints lists Traefik entrypoints to use (e.g., ["web", "websecure"])
	EntryPoints []string

	// Service defines where the inspector listens
	Service ServiceDefinition
}

// ServiceDefinition contains backend service configuration details
type ServiceDefinition struct {
	// Host is the hostname or IP of the backend service
	Host string

	// Port is the port number the backend service listens on
	Port   int
	Scheme string // http, https, or empty
}
