package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realestate-service/internal/apperror"
	"realestate-service/internal/auth"
	"realestate-service/internal/model"
	"realestate-service/internal/repository"
)

const (
	ctxClaims   = "claims"
	ctxIdentity = "identity"
)

// IdentityLookup resolves the identity named by a token.
type IdentityLookup interface {
	GetByID(ctx context.Context, role model.Role, id string) (*model.Identity, error)
}

// Abort stops the chain with err rendered as JSON.
func Abort(c *gin.Context, err error) {
	status, body := apperror.Response(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// RequireRole admits requests whose bearer token carries role. With a
// non-nil lookup the identity must also still exist; it is then available
// through CurrentIdentity.
func RequireRole(tokens *auth.TokenManager, role model.Role, lookup IdentityLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearer(c)
		if tokenStr == "" {
			Abort(c, apperror.Unauthorized("No authentication token, access denied"))
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			log.Warn("token rejected", zap.String("path", c.FullPath()), zap.String("ip", c.ClientIP()))
			Abort(c, apperror.Unauthorized("Invalid token"))
			return
		}

		if claims.Role != role {
			log.Warn("role mismatch",
				zap.String("path", c.FullPath()),
				zap.String("want", string(role)),
				zap.String("got", string(claims.Role)),
			)
			Abort(c, apperror.Forbidden("Access denied. "+role.Title()+" only."))
			return
		}

		c.Set(ctxClaims, claims)

		if lookup != nil {
			ident, err := lookup.GetByID(c.Request.Context(), role, claims.ID)
			if errors.Is(err, repository.ErrNotFound) {
				Abort(c, apperror.Unauthorized(role.Title()+" not found"))
				return
			}
			if err != nil {
				Abort(c, apperror.Internal(err))
				return
			}
			c.Set(ctxIdentity, ident)
		}

		c.Next()
	}
}

// CurrentClaims returns the verified token claims.
func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// CurrentIdentity returns the identity resolved by RequireRole.
func CurrentIdentity(c *gin.Context) *model.Identity {
	if v, ok := c.Get(ctxIdentity); ok {
		if ident, ok := v.(*model.Identity); ok {
			return ident
		}
	}
	return nil
}
