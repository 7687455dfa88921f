package middleware

import (
	"time"

	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware attaches a Sentry hub to each request and reports panics.
// It is a passthrough when Sentry is disabled.
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}

// SentryScopeMiddleware tags the request's hub with the operator, campus and
// request id. It runs after AuthenticateMiddleware.
func SentryScopeMiddleware(c *gin.Context) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		ctx := c.Request.Context()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			if userID := types.GetUserID(ctx); userID != "" {
				scope.SetUser(sentry.User{ID: userID})
			}
			if campusID := types.GetCampusID(ctx); campusID != "" {
				scope.SetTag("campus_id", campusID)
			}
			if requestID := types.GetRequestID(ctx); requestID != "" {
				scope.SetTag("request_id", requestID)
			}
		})
	}
	c.Next()
}
