package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/auth"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/services"
)

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func (s *Server) registerUser(c *gin.Context) {
	var req services.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	u, err := s.svc.Users.Register(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, createdResponse{Message: "Registration successful", ID: u.ID})
}

func (s *Server) authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.svc.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, authenticateResponse{
		ID:       res.User.ID,
		Username: res.User.Username,
		Email:    res.User.Email,
		Token:    res.Token,
	})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.svc.Users.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) currentUser(c *gin.Context) {
	u, _ := auth.IdentityFromContext(c.Request.Context())
	c.JSON(http.StatusOK, u.Summary())
}

func (s *Server) getUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	u, err := s.svc.Users.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, fmt.Errorf("user %d: %w", id, err))
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var req services.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	if err := s.svc.Users.Update(c.Request.Context(), id, req); err != nil {
		s.fail(c, fmt.Errorf("user %d: %w", id, err))
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "User updated successfully"})
}

func (s *Server) deleteUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.svc.Users.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, fmt.Errorf("user %d: %w", id, err))
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
