package health

import (
	"fmt"
	"net/http"
	"strings"
)

// DefaultLivenessPath is the default path of the liveness endpoint.
const DefaultLivenessPath = "/livez"

// Route binds a mux pattern to a handler.
type Route struct {
	Pattern     string
	Handler     http.Handler
	Description string
}

// RouteConfig configures the route table.
type RouteConfig struct {
	// LivenessPath serves a static "OK". Empty uses /livez; "-" disables it.
	LivenessPath string

	// Extra routes are appended unchanged, e.g. a metrics endpoint.
	Extra []Route
}

// Routes returns the explicit route table for h.
func Routes(h *Handler, config RouteConfig) []Route {
	path := h.Path()

	routes := []Route{
		{Pattern: path, Handler: h, Description: "aggregate health report"},
	}
	if path != "/" {
		routes = append(routes, Route{Pattern: path + "/", Handler: h, Description: "single check report"})
	}

	switch config.LivenessPath {
	case "-":
	case "":
		routes = append(routes, Route{Pattern: DefaultLivenessPath, Handler: LivenessHandler(), Description: "liveness"})
	default:
		routes = append(routes, Route{Pattern: NormalizePath(config.LivenessPath), Handler: LivenessHandler(), Description: "liveness"})
	}

	return append(routes, config.Extra...)
}

// ValidateRoutes reports patterns that appear more than once.
func ValidateRoutes(routes []Route) error {
	seen := make(map[string]string, len(routes))
	for _, rt := range routes {
		if prev, ok := seen[rt.Pattern]; ok {
			return fmt.Errorf("%w: %q serves both %s and %s", ErrRouteConflict, rt.Pattern, prev, describe(rt))
		}
		seen[rt.Pattern] = describe(rt)
	}
	return nil
}

// Mount registers routes on mux. A conflicting pattern is returned as
// ErrRouteConflict and nothing is registered.
func Mount(mux *http.ServeMux, routes []Route) (err error) {
	if err := ValidateRoutes(routes); err != nil {
		return err
	}

	// ServeMux panics on patterns that clash with ones registered earlier.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrRouteConflict, p)
		}
	}()
	for _, rt := range routes {
		mux.Handle(rt.Pattern, rt.Handler)
	}
	return nil
}

// NormalizePath returns p with a leading slash and no trailing slash.
// An empty path becomes DefaultPath.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return DefaultPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func describe(rt Route) string {
	if rt.Description == "" {
		return "an unnamed route"
	}
	return rt.Description
}
