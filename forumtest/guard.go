package forumtest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserID    = "userID"
	ctxUserRole  = "userRole"
	ctxRequestID = "requestID"
)

// ErrorResponse is the backend error body.
type ErrorResponse struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func abort(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Message:   message,
		Code:      code,
		RequestID: c.GetString(ctxRequestID),
	})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

// authenticate resolves the bearer token into the request context. With optional set, a
// missing header passes through as a guest but a bad token is still rejected.
func (s *Server) authenticate(optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if optional {
				c.Next()
				return
			}
			abort(c, http.StatusUnauthorized, "Authorization header missing", "AUTH_HEADER_MISSING")
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			abort(c, http.StatusUnauthorized, "Invalid authorization header format", "AUTH_HEADER_INVALID_FORMAT")
			return
		}

		if s.isRevoked(token) {
			abort(c, http.StatusUnauthorized, "Token revoked", "TOKEN_REVOKED")
			return
		}

		claims, err := s.tokens.Parse(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid token", "TOKEN_INVALID")
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

func rolesAllowed(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxUserRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
	}
}
