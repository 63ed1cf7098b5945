package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rollbook/internal/auth"
)

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// exchangeToken trades an identity-provider session token for a local
// access/refresh pair. The principal is mirrored into the users table
// on first sight.
func (s *Server) exchangeToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	account, err := s.deps.Identity.VerifySession(c.Request.Context(), req.Token)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid identity token")
		return
	}

	user, err := s.deps.Users.Sync(c.Request.Context(), *account)
	if err != nil {
		s.failErr(c, err)
		return
	}

	pair, err := auth.Issue(user.ID, string(user.Role), user.Department, user.IdentityID,
		s.deps.JWTIssuer, s.deps.JWTSigningKey, s.deps.AccessTTL, s.deps.RefreshTTL)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if err := s.deps.UsersRepo.SaveRefreshToken(c.Request.Context(), user.ID, pair.RefreshToken, pair.RefreshExp); err != nil {
		s.deps.Log.Warn().Err(err).Str("user", user.ID).Msg("refresh token not persisted")
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresAt":    pair.AccessExp.Unix(),
		"user":         user,
	})
}

func (s *Server) protected(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "authenticated",
		"userId":  claims.Subject,
		"role":    claims.Role,
	})
}
