package traefik

// DynamicConfig represents Traefik's dynamic configuration
type DynamicConfig struct {
	HTTP struct {
		Routers     map[string]Router     `json:"routers"`
		Services    map[string]Service    `json:"services"`
		Middlewares map[string]Middleware `json:"middlewares"`
	} `json:"http"`
}

type Router struct {
	EntryPoints []string `json:"entryPoints"`
	Service     string   `json:"service"`
	Rule        string   `json:"rule"`
	Middlewares []string `json:"middlewares,omitempty"`
}

type Service struct {
	LoadBalancer *LoadBalancer `json:"loadBalancer"`
}

type LoadBalancer struct {
	Servers        []Server `json:"servers"`
	PassHostHeader *bool    `json:"passHostHeader,omitempty"`
}

type Server struct {
	URL string `json:"url"`
}

type Middleware struct {
	StripPrefix *StripPrefix `json:"stripPrefix,omitempty"`
	Headers     *Headers     `json:"headers,omitempty"`
}

type StripPrefix struct {
	Prefixes []string `json:"prefixes"`
}

type Headers struct {
	CustomRequestHeaders  map[string]string `json:"customRequestHeaders,omitempty"`
	CustomResponseHeaders map[string]string `json:"customResponseHeaders,omitempty"`
}
