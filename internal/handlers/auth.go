package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/exowars/exowars/internal/auth"
	"github.com/exowars/exowars/pkg/response"
)

// AuthHandler issues bearer tokens for trying out the protected endpoints.
type AuthHandler struct {
	jwt *iauth.JWTService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{jwt: jwt}
}

type tokenRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Token generates a signed access token. Identity fields are optional and
// default to a test user.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	// Empty bodies are fine; only reject malformed JSON.
	if c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}

	if req.UserID == "" {
		req.UserID = "user123"
	}
	if req.Username == "" {
		req.Username = "testuser"
	}

	token, err := h.jwt.GenerateAccessToken(req.UserID, req.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int(h.jwt.TTL().Seconds()),
		"user_id":    req.UserID,
		"username":   req.Username,
	})
}
