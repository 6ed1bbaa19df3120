package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipro/internal/domain"
)

// ActorContextKey is the gin context key the actor is stored under.
const ActorContextKey = "actor"

// ActorMiddleware resolves the calling actor from the X-Actor-ID and
// X-Actor-Role headers and stores it on the request context. Requests
// without both headers are rejected as unauthenticated.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Actor-ID")
		role := domain.ActorRole(c.GetHeader("X-Actor-Role"))

		if id == "" || !validRole(role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing or invalid actor credentials",
			})
			return
		}

		c.Set(ActorContextKey, domain.Actor{ID: id, Role: role})
		c.Next()
	}
}

func validRole(r domain.ActorRole) bool {
	switch r {
	case domain.ActorPassenger, domain.ActorDriver, domain.ActorAdmin, domain.ActorSystem:
		return true
	}
	return false
}
