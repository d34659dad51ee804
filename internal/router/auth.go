package router

import (
	"crypto/subtle"
	"net/http"
)

// HeaderAPIKey carries shared secret of api caller
const HeaderAPIKey = "X-API-Key"

// APIKey rejects requests not carrying exact shared secret
func APIKey(key string) MiddlewareFunc {
	return func(handler HandlerFunc) HandlerFunc {
		return func(ctx *Context) error {
			provided := ctx.Request.Header.Get(HeaderAPIKey)

			if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				return ctx.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Unauthorized",
				})
			}

			return handler(ctx)
		}
	}
}
