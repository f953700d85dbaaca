package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPayPalConfig hands the storefront the client id it needs to talk to the
// payment processor directly. Pure pass-through.
func GetPayPalConfig(clientID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"clientId": clientID})
	}
}
