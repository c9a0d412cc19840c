package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/ultra_import/internal/utils"
)

type JWTMiddleware struct {
	jwt     *utils.JWTManager
	limiter *InvalidAuthRateLimiter
}

func NewJWTMiddleware(jwt *utils.JWTManager, limiter *InvalidAuthRateLimiter) *JWTMiddleware {
	return &JWTMiddleware{jwt: jwt, limiter: limiter}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if m.limiter != nil && m.limiter.Blocked(ip) {
			utils.Error(c, 429, "TOO_MANY_ATTEMPTS", "Too many invalid authentication attempts")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.fail(ip)
			utils.Error(c, 401, "UNAUTHORIZED", "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := m.jwt.ValidateJWT(parts[1])
		if err != nil {
			m.fail(ip)
			log.Warn().Err(err).Str("ip", ip).Msg("Rejected admin token")
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}

func (m *JWTMiddleware) fail(ip string) {
	if m.limiter != nil {
		m.limiter.Fail(ip)
	}
}
