package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) CreatePet(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	view, err := s.petSvc.Create(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordPetCreated(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"data": view})
}

func (s *Server) GetPet(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	view, err := s.petSvc.Get(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}
