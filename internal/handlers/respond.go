package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondFailure collapses every mutation error into the storefront's
// generic failure envelope. The concrete error kind only goes to the
// log, never over the wire.
func respondFailure(c *gin.Context, err error) {
	log.Printf("⚠️ %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  http.StatusBadRequest,
		"message": "Unable to process your request. Please try again",
	})
}
