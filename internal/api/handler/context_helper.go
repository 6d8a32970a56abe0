package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chibuike2003/palgunn/pkg/response"
)

// MustGetUserID extracts the caller's account id injected by JWTAuth.
// On failure a 401 is written and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole extracts the caller's role.
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// MustGetRegNumber extracts the caller's registration number. Staff
// accounts carry none, which is reported by the service, so an empty value
// is not an authentication failure.
func MustGetRegNumber(c *gin.Context) (string, bool) {
	v, exists := c.Get("reg_number")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// tokenIdentity the jti and expiry of the access token in use.
func tokenIdentity(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString("token_jti")
	exp, ok := c.Get("token_exp")
	if jti == "" || !ok {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", time.Time{}, false
	}
	expiresAt, ok := exp.(time.Time)
	if !ok {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", time.Time{}, false
	}
	return jti, expiresAt, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// parseID reads the :id path parameter. Anything that is not a UUID names no
// row and is answered with notFoundCode; the caller should return on false.
func parseID(c *gin.Context, notFoundCode int, notFound error) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, notFoundCode, message(notFound))
		return "", false
	}
	return id.String(), true
}
