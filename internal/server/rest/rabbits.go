package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/auth"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/services"
)

func (s *Server) registerRabbit(c *gin.Context) {
	var req services.RegisterRabbitRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	caller, _ := auth.IdentityFromContext(c.Request.Context())
	r, err := s.svc.Rabbits.Register(c.Request.Context(), req, caller)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, createdResponse{Message: "Rabbit registered successfully", ID: r.ID})
}

func (s *Server) listRabbits(c *gin.Context) {
	rabbits, err := s.svc.Rabbits.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rabbits)
}

func (s *Server) getRabbit(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	r, err := s.svc.Rabbits.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, fmt.Errorf("rabbit %d: %w", id, err))
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) updateRabbit(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var req services.UpdateRabbitRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	if err := s.svc.Rabbits.Update(c.Request.Context(), id, req); err != nil {
		s.fail(c, fmt.Errorf("rabbit %d: %w", id, err))
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Rabbit updated successfully"})
}

func (s *Server) deleteRabbit(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.svc.Rabbits.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, fmt.Errorf("rabbit %d: %w", id, err))
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Rabbit deleted successfully"})
}
