package http

import (
	"github.com/gin-gonic/gin"
)

// AuthType says whether a route needs a verified access token.
type AuthType int

const (
	AuthBearer AuthType = iota
	AuthNone
)

func (a AuthType) String() string {
	if a == AuthNone {
		return "none"
	}
	return "bearer"
}

type route struct {
	auth AuthType
	mw   []gin.HandlerFunc
}

type RouteOption func(*route)

// Public marks a route as reachable without an access token.
func Public() RouteOption {
	return func(r *route) { r.auth = AuthNone }
}

// With runs mw after the authentication gate and before the handler. Nil
// middleware is skipped.
func With(mw ...gin.HandlerFunc) RouteOption {
	return func(r *route) {
		for _, m := range mw {
			if m != nil {
				r.mw = append(r.mw, m)
			}
		}
	}
}

// Router registers routes on a gin group and puts the authentication gate in
// front of every route that is not explicitly Public.
type Router struct {
	group  gin.IRoutes
	gate   gin.HandlerFunc
	routes map[string]AuthType
}

func NewRouter(group gin.IRoutes, gate gin.HandlerFunc) *Router {
	return &Router{group: group, gate: gate, routes: make(map[string]AuthType)}
}

func (r *Router) Handle(method, path string, h gin.HandlerFunc, opts ...RouteOption) {
	rt := route{auth: AuthBearer}
	for _, o := range opts {
		o(&rt)
	}
	r.routes[method+" "+path] = rt.auth

	chain := make([]gin.HandlerFunc, 0, len(rt.mw)+2)
	if rt.auth == AuthBearer {
		chain = append(chain, r.gate)
	}
	chain = append(chain, rt.mw...)
	chain = append(chain, h)
	r.group.Handle(method, path, chain...)
}

func (r *Router) GET(path string, h gin.HandlerFunc, opts ...RouteOption) {
	r.Handle("GET", path, h, opts...)
}

func (r *Router) POST(path string, h gin.HandlerFunc, opts ...RouteOption) {
	r.Handle("POST", path, h, opts...)
}

func (r *Router) PATCH(path string, h gin.HandlerFunc, opts ...RouteOption) {
	r.Handle("PATCH", path, h, opts...)
}

func (r *Router) DELETE(path string, h gin.HandlerFunc, opts ...RouteOption) {
	r.Handle("DELETE", path, h, opts...)
}

// AuthTypeOf reports how a registered route is protected.
func (r *Router) AuthTypeOf(method, path string) (AuthType, bool) {
	a, ok := r.routes[method+" "+path]
	return a, ok
}
