package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelbook/internal/app/middleware"
	"hotelbook/internal/app/services/auth"
	domainclient "hotelbook/internal/domain/client"
	"hotelbook/internal/infra/obs"
)

const principalContextKey = "hotelbook.principal"

type principal struct {
	ID    string
	Roles []string
}

func (p principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range p.Roles {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

func (p principal) IsAdmin() bool {
	return p.HasRole(string(domainclient.RoleAdmin))
}

// AuthMiddleware resolves an optional bearer token. Requests without a valid
// token continue anonymously; handlers decide whether that is enough.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainclient.ErrNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	p := principal{ID: string(resolved.ClientID), Roles: resolved.Roles}
	setPrincipal(c, p)
	c.Set(obs.ClientIDKey, p.ID)
	ctx := middleware.WithActor(c.Request.Context(), middleware.Actor{ClientID: p.ID, Roles: p.Roles})
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "auth required", Kind: kindUnauthenticated})
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		c.JSON(http.StatusForbidden, errorResponse{Error: "insufficient permissions", Kind: kindForbidden})
		return principal{}, false
	}
	return p, true
}

func requireAdmin(c *gin.Context) (principal, bool) {
	return requireRole(c, string(domainclient.RoleAdmin))
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
