package handlers

import (
	"watchtrade_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// currentActor assembles the acting user from the claims that
// AuthMiddleware stored in the gin context.
func currentActor(c *gin.Context) services.Actor {
	actor := services.Actor{}
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int64); ok {
			actor.UserID = id
		}
	}
	if v, ok := c.Get("username"); ok {
		if s, ok := v.(string); ok {
			actor.Username = s
		}
	}
	if v, ok := c.Get("userRole"); ok {
		if s, ok := v.(string); ok {
			actor.Role = s
		}
	}
	if v, ok := c.Get("partnerID"); ok {
		if s, ok := v.(string); ok && s != "" {
			actor.PartnerID = &s
		}
	}
	return actor
}
