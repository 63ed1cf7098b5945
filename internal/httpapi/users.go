package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rollbook/internal/auth"
	"rollbook/internal/authz"
	"rollbook/internal/identity"
	"rollbook/internal/users"
)

func (s *Server) addUser(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	var in users.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	role, ok := authz.ParseRole(in.Role)
	if !ok {
		fail(c, http.StatusBadRequest, users.ErrBadRole.Error())
		return
	}
	if !authz.CanManageRole(actor, role) {
		forbidden(c)
		return
	}
	created, err := s.deps.Users.Create(c.Request.Context(), in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getUsers(c *gin.Context) {
	list, err := s.deps.Users.List(c.Request.Context())
	if err != nil {
		s.failErr(c, err)
		return
	}
	if list == nil {
		list = []users.User{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := principalID(c, c.Param("id"))
	if !ok {
		return
	}
	user, err := s.deps.Users.Resolve(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateUser(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := principalID(c, c.Param("id"))
	if !ok {
		return
	}
	target, err := s.deps.Users.Resolve(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	// Self-updates are always allowed; touching someone else needs
	// hierarchy over both the current and any requested role.
	if actor.ID != target.ID && !authz.CanManageRole(actor, target.Role) {
		forbidden(c)
		return
	}
	var in users.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	if in.Role != nil {
		newRole, ok := authz.ParseRole(*in.Role)
		if !ok {
			fail(c, http.StatusBadRequest, users.ErrBadRole.Error())
			return
		}
		if !authz.CanManageRole(actor, newRole) {
			forbidden(c)
			return
		}
	}
	updated, err := s.deps.Users.Update(c.Request.Context(), target, in)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteUser(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := principalID(c, c.Param("id"))
	if !ok {
		return
	}
	target, err := s.deps.Users.Resolve(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if actor.ID == target.ID {
		fail(c, http.StatusBadRequest, users.ErrSelfDelete.Error())
		return
	}
	if !authz.CanManageRole(actor, target.Role) {
		forbidden(c)
		return
	}
	if err := s.deps.Users.Delete(c.Request.Context(), target); err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// syncUser mirrors the authenticated principal into the users table if
// it is not there yet and returns the stored row.
func (s *Server) syncUser(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := s.deps.Users.Sync(c.Request.Context(), identity.Account{
		ID:         claims.IdentityID,
		Role:       claims.Role,
		Department: claims.Department,
	})
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
