package controller

import (
	"torneio/app_error"
	"torneio/repository"
	"torneio/service"

	"github.com/gin-gonic/gin"
)

type BackupController struct {
	backupService *service.BackupService
}

func NewBackupController() *BackupController {
	return &BackupController{
		backupService: service.NewBackupService(),
	}
}

func setupBackupController() []RouteInfo {
	b := NewBackupController()
	basePath := "/api/admin"
	admin := []repository.Role{repository.RoleAdmin}
	routes := []RouteInfo{
		{Method: "POST", Path: "/backup", HandlerFunc: b.createBackupHandler(), Authenticated: true, RequiredRoles: admin},
		{Method: "GET", Path: "/backups", HandlerFunc: b.listBackupsHandler(), Authenticated: true, RequiredRoles: admin},
		{Method: "POST", Path: "/restore", HandlerFunc: b.restoreBackupHandler(), Authenticated: true, RequiredRoles: admin},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

func (b *BackupController) createBackupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name, err := b.backupService.Create()
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, gin.H{"success": true, "backup": name})
	}
}

func (b *BackupController) listBackupsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		backups, err := b.backupService.List()
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true, "backups": backups})
	}
}

type RestoreRequest struct {
	Backup string `json:"backup" binding:"required"`
}

func (b *BackupController) restoreBackupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request RestoreRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := b.backupService.Restore(request.Backup); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true, "restored": request.Backup})
	}
}
