package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *Router {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return NewRouter(Options{Log: log})
}

func serve(router *Router, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(HeaderAPIKey, key)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func Test_Router_Params(t *testing.T) {
	router := newTestRouter()

	router.Group("/api").Get("/echo/{userId}/{roleName}", func(ctx *Context) error {
		return ctx.Text(http.StatusOK, ctx.Param("userId")+":"+ctx.Param("roleName"))
	})

	rec := serve(router, http.MethodGet, "/api/echo/42/VIP", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "42:VIP", rec.Body.String())
}

func Test_Router_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "not found",
			err:     NotFound("User not found"),
			status:  http.StatusNotFound,
			message: "User not found",
		},
		{
			name:    "wrapped forbidden",
			err:     errors.Join(errors.New("context"), Forbidden("Cannot timeout an admin user")),
			status:  http.StatusForbidden,
			message: "Cannot timeout an admin user",
		},
		{
			name:    "formatted",
			err:     BadRequest("Channel %q not found", "nowhere"),
			status:  http.StatusBadRequest,
			message: `Channel "nowhere" not found`,
		},
		{
			name:    "generic",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			router.Get("/fail", func(ctx *Context) error {
				return tt.err
			})

			rec := serve(router, http.MethodGet, "/fail", "")
			require.Equal(t, tt.status, rec.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tt.status, body.Error.Code)
			require.Equal(t, tt.message, body.Error.Message)
		})
	}
}

func Test_Router_NotFound(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodGet, "/nowhere", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Not found")
}

func Test_APIKey(t *testing.T) {
	router := newTestRouter()

	router.Group("/api").Use(APIKey("secret")).Get("/ping", func(ctx *Context) error {
		return ctx.Text(http.StatusOK, "pong")
	})

	router.Get("/", func(ctx *Context) error {
		return ctx.Text(http.StatusOK, "open")
	})

	tests := []struct {
		name   string
		path   string
		key    string
		status int
	}{
		{name: "missing", path: "/api/ping", status: http.StatusUnauthorized},
		{name: "wrong", path: "/api/ping", key: "nope", status: http.StatusUnauthorized},
		{name: "prefix", path: "/api/ping", key: "secre", status: http.StatusUnauthorized},
		{name: "valid", path: "/api/ping", key: "secret", status: http.StatusOK},
		{name: "outside group", path: "/", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, tt.path, tt.key)
			require.Equal(t, tt.status, rec.Code)

			if tt.status == http.StatusUnauthorized {
				require.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func Test_APIKey_EmptyKeyRejectsAll(t *testing.T) {
	router := newTestRouter()

	router.Group("/api").Use(APIKey("")).Get("/ping", func(ctx *Context) error {
		return ctx.Text(http.StatusOK, "pong")
	})

	require.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/ping", "").Code)
}

func Test_Middleware_Order(t *testing.T) {
	var order []string

	mark := func(name string) MiddlewareFunc {
		return func(handler HandlerFunc) HandlerFunc {
			return func(ctx *Context) error {
				order = append(order, name)
				return handler(ctx)
			}
		}
	}

	router := newTestRouter()
	router.AppendMiddleware(mark("router"))

	router.Group("/g").Use(mark("group")).Get("/r", func(ctx *Context) error {
		order = append(order, "handler")
		return ctx.Text(http.StatusOK, "")
	}).Use(mark("route"))

	serve(router, http.MethodGet, "/g/r", "")
	require.Equal(t, []string{"router", "group", "route", "handler"}, order)
}

func Test_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	mw, err := Metrics(registry)
	require.NoError(t, err)

	router := newTestRouter()
	router.AppendMiddleware(AccessLog(), mw)
	router.Get("/ok", func(ctx *Context) error {
		return ctx.Text(http.StatusOK, "ok")
	})
	router.Get("/missing/{id}", func(ctx *Context) error {
		return NotFound("User not found")
	})
	router.Handle("/metrics", MetricsHandler(registry))

	serve(router, http.MethodGet, "/ok", "")
	serve(router, http.MethodGet, "/missing/1", "")
	serve(router, http.MethodGet, "/missing/2", "")

	expected := `
# HELP eagle_http_requests_total Number of handled http requests
# TYPE eagle_http_requests_total counter
eagle_http_requests_total{code="200",method="GET",route="/ok"} 1
eagle_http_requests_total{code="404",method="GET",route="/missing/{id}"} 2
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "eagle_http_requests_total"))

	rec := serve(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "eagle_http_request_duration_seconds")
}
