package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cartsvc "storefront/internal/service/cart"
)

const sessionCtxKey = "session"

// sessionMiddleware resolves the caller's session from the bearer token:
// customer tokens map to an authenticated session owning the remote cart,
// anonymous tokens to a local one. An unknown or missing token is a 401.
func sessionMiddleware(anon anonymousService, customers customerSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		if customers != nil {
			if customerID, err := customers.Validate(c.Request.Context(), token); err == nil {
				c.Set(sessionCtxKey, cartsvc.Session{Authenticated: true, OwnerID: customerID})
				c.Next()
				return
			}
		}
		if anonymousID, err := anon.LookupByToken(c.Request.Context(), token); err == nil {
			c.Set(sessionCtxKey, cartsvc.Session{OwnerID: anonymousID})
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func sessionFrom(c *gin.Context) cartsvc.Session {
	v, _ := c.Get(sessionCtxKey)
	sess, _ := v.(cartsvc.Session)
	return sess
}

type anonymousTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	AnonymousID  string `json:"anonymousId"`
	ExpiresIn    int    `json:"expiresIn"`
}

func anonymousTokenHandler(anon anonymousService) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, refresh, anonymousID, err := anon.Issue(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue session"})
			return
		}
		c.JSON(http.StatusOK, anonymousTokenResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			AnonymousID:  anonymousID,
			ExpiresIn:    anon.AccessTTLSeconds(),
		})
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func anonymousRefreshHandler(anon anonymousService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
			return
		}
		access, anonymousID, err := anon.Refresh(c.Request.Context(), req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		c.JSON(http.StatusOK, anonymousTokenResponse{
			AccessToken: access,
			AnonymousID: anonymousID,
			ExpiresIn:   anon.AccessTTLSeconds(),
		})
	}
}
