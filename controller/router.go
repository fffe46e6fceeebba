package controller

import (
	"strings"
	"time"

	"torneio/auth"
	"torneio/repository"
	"torneio/service"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
)

type RouteInfo struct {
	Method        string
	Path          string
	HandlerFunc   gin.HandlerFunc
	Authenticated bool
	RequiredRoles []repository.Role
	CacheTTL      time.Duration
}

func SetRoutes(r *gin.Engine, stores *repository.Stores, cacheStore persistence.CacheStore) {
	userService := service.NewUserService(stores)
	routes := make([]RouteInfo, 0)
	routes = append(routes, setupAuthController(stores)...)
	routes = append(routes, setupUserController(stores)...)
	routes = append(routes, setupTournamentController(stores)...)
	routes = append(routes, setupRegistrationController(stores)...)
	routes = append(routes, setupPlayerController(stores)...)
	routes = append(routes, setupReportController(stores)...)
	routes = append(routes, setupBackupController()...)
	routes = append(routes, setupHealthController(stores)...)
	for _, route := range routes {
		handlerfuncs := make([]gin.HandlerFunc, 0)
		if route.Authenticated {
			handlerfuncs = append(handlerfuncs, AuthMiddleware(userService, route.RequiredRoles))
		}
		handler := route.HandlerFunc
		if route.CacheTTL > 0 && !route.Authenticated {
			handler = cache.CachePage(cacheStore, route.CacheTTL, handler)
		}
		handlerfuncs = append(handlerfuncs, handler)
		r.Handle(route.Method, route.Path, handlerfuncs...)
	}
}

func AuthMiddleware(userService *service.UserService, roles []repository.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(401, gin.H{"error": "Unauthenticated"})
			c.Abort()
			return
		}
		token, err := auth.ParseToken(tokenString)
		if err != nil || !token.Valid {
			c.JSON(401, gin.H{"error": "Unauthenticated"})
			c.Abort()
			return
		}
		claims := &auth.Claims{}
		claims.FromJWTClaims(token.Claims)
		if err := claims.Valid(); err != nil {
			c.JSON(401, gin.H{"error": "Unauthenticated"})
			c.Abort()
			return
		}
		// Tokens outlive account changes, so deactivated users are cut off here.
		if _, err := userService.GetActive(claims.Username); err != nil {
			c.JSON(401, gin.H{"error": "Unauthenticated"})
			c.Abort()
			return
		}
		c.Set("username", claims.Username)
		c.Set("role", repository.Role(claims.Role))
		if len(roles) == 0 {
			c.Next()
			return
		}
		for _, requiredRole := range roles {
			if repository.Role(claims.Role) == requiredRole {
				c.Next()
				return
			}
		}
		c.JSON(403, gin.H{"error": "Unauthorized"})
		c.Abort()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func currentUser(c *gin.Context) (string, repository.Role) {
	username := c.GetString("username")
	role, _ := c.Get("role")
	r, ok := role.(repository.Role)
	if !ok {
		return username, ""
	}
	return username, r
}
