package controller

import (
	"time"

	"torneio/app_error"
	"torneio/repository"
	"torneio/service"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	userService *service.UserService
}

func NewAuthController(stores *repository.Stores) *AuthController {
	return &AuthController{
		userService: service.NewUserService(stores),
	}
}

func setupAuthController(stores *repository.Stores) []RouteInfo {
	a := NewAuthController(stores)
	basePath := "/api/auth"
	routes := []RouteInfo{
		{Method: "POST", Path: "/login", HandlerFunc: a.loginHandler()},
		{Method: "POST", Path: "/logout", HandlerFunc: a.logoutHandler(), Authenticated: true},
		{Method: "GET", Path: "/verify", HandlerFunc: a.verifyHandler(), Authenticated: true},
		{Method: "GET", Path: "/profile", HandlerFunc: a.profileHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request LoginRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": "username and password are required"})
			return
		}
		token, user, err := a.userService.Login(request.Username, request.Password)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true, "token": token, "user": user})
	}
}

// Tokens are stateless, so logout only acknowledges. Clients drop the token.
func (a *AuthController) logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "message": "logged out"})
	}
}

func (a *AuthController) verifyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, role := currentUser(c)
		c.JSON(200, gin.H{
			"success":   true,
			"user":      gin.H{"username": username, "role": role},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func (a *AuthController) profileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, _ := currentUser(c)
		profile, err := a.userService.GetProfile(username)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true, "profile": profile})
	}
}
