package middleware

import (
	"strings"

	"github.com/flexprice/feeledger/internal/auth"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/gin-gonic/gin"
)

// AuthenticateMiddleware resolves the operator from a bearer token. The campus
// scope comes from the token's campus_id claim, else from X-Campus-ID.
func AuthenticateMiddleware(provider auth.Provider, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(types.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abortWithError(c, ierr.NewError("missing bearer token").
				WithHint("Authorization header with a bearer token is required").
				Mark(ierr.ErrPermissionDenied))
			return
		}

		claims, err := provider.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			log.Debugw("rejected bearer token", "error", err)
			abortWithError(c, err)
			return
		}

		ctx := types.SetUserID(c.Request.Context(), claims.UserID)
		campusID := claims.CampusID
		if campusID == "" {
			campusID = c.GetHeader(types.HeaderCampusID)
		}
		if campusID != "" {
			ctx = types.SetCampusID(ctx, campusID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}
