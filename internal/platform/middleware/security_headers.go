package middleware

import (
	"github.com/labstack/echo/v4"
)

// apiHeaders are set on every response. The API serves JSON and PDF
// downloads only, so nothing may be framed, embedded or cached.
var apiHeaders = [...]struct{ name, value string }{
	{echo.HeaderXContentTypeOptions, "nosniff"},
	{echo.HeaderXFrameOptions, "DENY"},
	{echo.HeaderXXSSProtection, "0"},
	{echo.HeaderContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'"},
	{echo.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains"},
	{echo.HeaderReferrerPolicy, "no-referrer"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	{echo.HeaderCacheControl, "no-store"},
}

// SecurityHeaders sets apiHeaders before the handler runs, so they are
// present on error responses too.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, hdr := range apiHeaders {
				h.Set(hdr.name, hdr.value)
			}
			return next(c)
		}
	}
}
