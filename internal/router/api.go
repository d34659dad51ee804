// Package router provides http request router
package router

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// MiddlewareFunc implements handler wrapping
type MiddlewareFunc func(handler HandlerFunc) HandlerFunc

// HandlerFunc implements request handling
type HandlerFunc func(ctx *Context) error

// Context carries request state through middleware and handler
type Context struct {
	Writer  http.ResponseWriter
	Request *http.Request
	Route   *Route
	Log     logrus.FieldLogger
	Status  int
}

// Context returns request context
func (ctx *Context) Context() context.Context {
	return ctx.Request.Context()
}

// Param returns path parameter by name
func (ctx *Context) Param(name string) string {
	return chi.URLParam(ctx.Request, name)
}

// RemoteAddr returns caller address without port
func (ctx *Context) RemoteAddr() string {
	host, _, err := net.SplitHostPort(ctx.Request.RemoteAddr)
	if err != nil {
		return ctx.Request.RemoteAddr
	}

	return host
}

// Bind decodes json request body into v
func (ctx *Context) Bind(v interface{}) error {
	return json.NewDecoder(ctx.Request.Body).Decode(v)
}

// JSON writes json response
func (ctx *Context) JSON(status int, v interface{}) error {
	ctx.Writer.Header().Set("Content-Type", "application/json")
	ctx.Writer.WriteHeader(status)
	ctx.Status = status

	return json.NewEncoder(ctx.Writer).Encode(v)
}

// Text writes plain text response
func (ctx *Context) Text(status int, s string) error {
	ctx.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	ctx.Writer.WriteHeader(status)
	ctx.Status = status

	_, err := ctx.Writer.Write([]byte(s))

	return err
}

// Written returns true if response status was already sent
func (ctx *Context) Written() bool {
	return ctx.Status != 0
}

// StatusFor returns response status for handler outcome
func (ctx *Context) StatusFor(err error) int {
	if ctx.Status != 0 {
		return ctx.Status
	}

	if err != nil {
		return statusOf(err)
	}

	return http.StatusOK
}

// Route describes http route
type Route struct {
	Method     string
	Pattern    string
	Handler    HandlerFunc
	Middleware []MiddlewareFunc
	Group      *Group
	Router     *Router
	baked      HandlerFunc
	once       sync.Once
}

// Use appends route middleware
func (route *Route) Use(middleware ...MiddlewareFunc) *Route {
	route.Middleware = append(route.Middleware, middleware...)

	return route
}

func (route *Route) bake() {
	var middlewares []MiddlewareFunc

	middlewares = append(middlewares, route.Router.Middleware...)

	if route.Group != nil {
		middlewares = append(middlewares, route.Group.Middleware...)
	}

	middlewares = append(middlewares, route.Middleware...)

	route.baked = route.Handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		route.baked = middlewares[i](route.baked)
	}
}

// ServeHTTP implementation
func (route *Route) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route.once.Do(route.bake)

	ctx := &Context{
		Writer:  w,
		Request: r,
		Route:   route,
		Log:     route.Router.Log,
	}

	err := route.baked(ctx)
	if err != nil && !ctx.Written() {
		writeError(ctx, err)
	}
}
