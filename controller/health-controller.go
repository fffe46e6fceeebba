package controller

import (
	"os"
	"time"

	"torneio/config"
	"torneio/repository"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

type HealthController struct {
	stores *repository.Stores
}

func setupHealthController(stores *repository.Stores) []RouteInfo {
	h := &HealthController{stores: stores}
	return []RouteInfo{
		{Method: "GET", Path: "/api/health", HandlerFunc: h.healthHandler()},
	}
}

func (h *HealthController) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := config.Env()
		c.JSON(200, gin.H{
			"status":      "OK",
			"timestamp":   time.Now().Format(time.RFC3339),
			"uptime":      time.Since(startedAt).Seconds(),
			"environment": os.Getenv("ENVIRONMENT"),
			"userCount":   h.stores.Users.Count(),
			"checks": gin.H{
				"users":     fileExists(config.UsersFilePath()),
				"dataDir":   fileExists(cfg.DataDir),
				"configDir": fileExists(cfg.ConfigDir),
			},
		})
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
