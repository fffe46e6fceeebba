package controller

import (
	"torneio/app_error"
	"torneio/repository"
	"torneio/service"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService *service.UserService
}

func NewUserController(stores *repository.Stores) *UserController {
	return &UserController{
		userService: service.NewUserService(stores),
	}
}

func setupUserController(stores *repository.Stores) []RouteInfo {
	u := NewUserController(stores)
	basePath := "/api/admin/users"
	admin := []repository.Role{repository.RoleAdmin}
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: u.listUsersHandler(), Authenticated: true, RequiredRoles: admin},
		{Method: "POST", Path: "", HandlerFunc: u.createUserHandler(), Authenticated: true, RequiredRoles: admin},
		{Method: "PUT", Path: "/:username/password", HandlerFunc: u.changePasswordHandler(), Authenticated: true, RequiredRoles: admin},
		{Method: "PUT", Path: "/:username/status", HandlerFunc: u.setStatusHandler(), Authenticated: true, RequiredRoles: admin},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

type UserCreate struct {
	Username string          `json:"username" binding:"required"`
	Password string          `json:"password" binding:"required"`
	Role     repository.Role `json:"role"`
}

type PasswordChange struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

type StatusChange struct {
	Active *bool `json:"active" binding:"required"`
}

func (u *UserController) listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "users": u.userService.ListUsers()})
	}
}

func (u *UserController) createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request UserCreate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := u.userService.CreateUser(request.Username, request.Password, request.Role)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, gin.H{"success": true, "user": user})
	}
}

func (u *UserController) changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request PasswordChange
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := u.userService.ChangePassword(c.Param("username"), request.NewPassword); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true, "message": "password updated"})
	}
}

func (u *UserController) setStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request StatusChange
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		requester, _ := currentUser(c)
		if err := u.userService.SetActive(requester, c.Param("username"), *request.Active); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}
