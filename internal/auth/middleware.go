package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rollbook/internal/authz"
)

const claimsKey = "claims"

// RequireAuth enforces bearer JWT tokens signed with HS256 and stores
// the parsed claims in the request context.
func RequireAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authzHeader := c.GetHeader("Authorization")
		if authzHeader == "" || !strings.HasPrefix(strings.ToLower(authzHeader), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authzHeader[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ActorFrom extracts the authorization actor stored by RequireAuth.
func ActorFrom(c *gin.Context) (authz.Actor, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return authz.Actor{}, false
	}
	claims, ok := v.(Claims)
	if !ok {
		return authz.Actor{}, false
	}
	role, ok := authz.ParseRole(claims.Role)
	if !ok {
		return authz.Actor{}, false
	}
	return authz.Actor{
		ID:         claims.Subject,
		IdentityID: claims.IdentityID,
		Role:       role,
		Department: strings.ToLower(claims.Department),
	}, true
}

// ClaimsFrom returns the raw claims stored by RequireAuth.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}
