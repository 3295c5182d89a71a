package health

import (
	"errors"
	"net/http"
	"time"

	"taskboard/services"

	"github.com/gin-gonic/gin"
)

func HealthController(router *gin.Engine, api *gin.RouterGroup, svc *services.TaskService) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})
	api.GET("/debug/store-auth", func(c *gin.Context) {
		StoreAuth(c, svc)
	})
}

// StoreAuth checks the record store credential without exposing it.
func StoreAuth(c *gin.Context, svc *services.TaskService) {
	identity, err := svc.VerifyCredentials(c.Request.Context())
	if errors.Is(err, errors.ErrUnsupported) {
		c.JSON(http.StatusNotImplemented, gin.H{
			"success": false,
			"error":   "record store cannot verify credentials",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "record store rejected the credential",
			"hint":    "check that the token is the integration secret and the database is shared with it",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "record store authentication successful",
		"identity": identity,
	})
}
