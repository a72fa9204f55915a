package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/web/middleware"
)

// WithRequestMetadata adds client IP and User-Agent to ctx for import logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, middleware.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
