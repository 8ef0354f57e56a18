package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"healthops/internal/core/apperror"
	appctx "healthops/internal/core/context"
	"healthops/internal/core/security"
)

const callerKey = "caller"

// Authenticator verifies a bearer token and returns the caller with its grants.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (security.Caller, error)
}

// Auth middleware validates bearer tokens and stores the caller.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		caller, err := authn.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			if !apperror.IsAppError(err) {
				err = apperror.NewInternal(err)
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx := appctx.WithCaller(c.Request.Context(), caller)
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set("user_id", caller.UserID)
		c.Set(callerKey, caller)

		c.Next()
	}
}

// RequireVendor middleware rejects callers outside the platform operator.
func RequireVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := security.RequireVendor(GetCaller(c)); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCaller returns the caller stored by Auth, or an anonymous caller.
func GetCaller(c *gin.Context) security.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(security.Caller); ok {
			return caller
		}
	}
	return security.Caller{}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
