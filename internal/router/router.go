package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Options provide configuration options for router
type Options struct {
	Log         *logrus.Logger
	CORSOrigins []string
}

// Router implements http routing
type Router struct {
	Mux        *chi.Mux
	Log        *logrus.Logger
	Groups     []*Group
	Routes     []*Route
	Middleware []MiddlewareFunc
}

// NewRouter returns new router instance
func NewRouter(options Options) *Router {
	if options.Log == nil {
		options.Log = logrus.New()
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	if len(options.CORSOrigins) > 0 {
		mux.Use(cors.New(cors.Options{
			AllowedOrigins: options.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{HeaderAPIKey, "Content-Type"},
		}).Handler)
	}

	router := &Router{
		Mux: mux,
		Log: options.Log,
	}

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(&Context{Writer: w, Request: r, Log: router.Log}, NotFound("Not found"))
	})

	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(&Context{Writer: w, Request: r, Log: router.Log}, NewError(http.StatusMethodNotAllowed, "Method not allowed"))
	})

	return router
}

// AppendMiddleware adds router-wide middleware
func (router *Router) AppendMiddleware(mws ...MiddlewareFunc) {
	router.Middleware = append(router.Middleware, mws...)
}

// Group returns group with given path prefix
func (router *Router) Group(prefix string) *Group {
	for _, g := range router.Groups {
		if g.Prefix == prefix {
			return g
		}
	}

	group := &Group{
		Prefix: prefix,
		Router: router,
	}

	router.Groups = append(router.Groups, group)

	return group
}

// Route registers handler for method and full pattern
func (router *Router) Route(method, pattern string, handler HandlerFunc) *Route {
	route := &Route{
		Method:  method,
		Pattern: pattern,
		Handler: handler,
		Router:  router,
	}

	router.Routes = append(router.Routes, route)
	router.Mux.Method(method, pattern, route)

	return route
}

// Get registers GET handler
func (router *Router) Get(pattern string, handler HandlerFunc) *Route {
	return router.Route(http.MethodGet, pattern, handler)
}

// Post registers POST handler
func (router *Router) Post(pattern string, handler HandlerFunc) *Route {
	return router.Route(http.MethodPost, pattern, handler)
}

// Handle mounts plain http handler outside of middleware chain
func (router *Router) Handle(pattern string, handler http.Handler) {
	router.Mux.Handle(pattern, handler)
}

// ServeHTTP implementation
func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.Mux.ServeHTTP(w, r)
}
