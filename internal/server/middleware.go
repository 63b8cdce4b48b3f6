package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/tamedachi/tamedachi/internal/identity"
	obscontext "github.com/tamedachi/tamedachi/internal/observability/context"
)

// HeaderUser carries the authenticated user's ID. Authentication happens at
// the edge; this service trusts the forwarded identity.
const HeaderUser = "X-User-Id"

func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUser))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		userID, err := snowflake.ParseString(raw)
		if err != nil || userID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := identity.WithUserID(c.Request.Context(), userID)
		ctx = obscontext.WithUserID(ctx, userID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func userFromContext(c *gin.Context) (snowflake.ID, bool) {
	return identity.UserIDFromContext(c.Request.Context())
}
