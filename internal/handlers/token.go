package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TokenIssuer mints bearer tokens for API clients.
type TokenIssuer interface {
	Issue(clientID string) (string, error)
}

type TokenHandler struct {
	tokens TokenIssuer
}

func NewTokenHandler(tokens TokenIssuer) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

type tokenRequest struct {
	ClientID string `json:"client_id"`
}

// Token exchanges a client id for an access token
func (h *TokenHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "Missing Client Id. Try Again",
		})
		return
	}

	token, err := h.tokens.Issue(req.ClientID)
	if err != nil {
		respondFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       http.StatusOK,
		"access_token": token,
	})
}
