package middleware

import (
	"net/http"
	"strings"

	"gesture_rps/internal/service"

	"github.com/gin-gonic/gin"
)

// FeedSubjectKey is the gin context key holding the authenticated feed name.
const FeedSubjectKey = "feed_subject"

// FeedAuth requires a feed token (Authorization: Bearer or ?token=) when
// auth is enabled. With a nil issuer every request passes.
func FeedAuth(iss *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !iss.Enabled() {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		subject, err := iss.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(FeedSubjectKey, subject)
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return strings.TrimSpace(token)
}
