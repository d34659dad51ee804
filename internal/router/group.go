package router

import (
	"net/http"
)

// Group groups a number of routes under common prefix and middleware
type Group struct {
	Prefix     string
	Routes     []*Route
	Middleware []MiddlewareFunc
	Router     *Router
}

// Use appends group middleware
func (group *Group) Use(middleware ...MiddlewareFunc) *Group {
	group.Middleware = append(group.Middleware, middleware...)

	return group
}

// On adds route to group
func (group *Group) On(method, pattern string, handler HandlerFunc) (route *Route) {
	route = group.Router.Route(method, group.Prefix+pattern, handler)
	route.Group = group

	group.Routes = append(group.Routes, route)

	return route
}

// Get adds GET route to group
func (group *Group) Get(pattern string, handler HandlerFunc) *Route {
	return group.On(http.MethodGet, pattern, handler)
}

// Post adds POST route to group
func (group *Group) Post(pattern string, handler HandlerFunc) *Route {
	return group.On(http.MethodPost, pattern, handler)
}
