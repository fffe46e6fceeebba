package controller

import (
	"torneio/app_error"
	"torneio/repository"
	"torneio/service"

	"github.com/gin-gonic/gin"
)

type RegistrationController struct {
	registrationService *service.RegistrationService
}

func NewRegistrationController(stores *repository.Stores) *RegistrationController {
	return &RegistrationController{
		registrationService: service.NewRegistrationService(stores),
	}
}

func setupRegistrationController(stores *repository.Stores) []RouteInfo {
	r := NewRegistrationController(stores)
	return []RouteInfo{
		{Method: "GET", Path: "/api/registrations", HandlerFunc: r.listRegistrationsHandler(), Authenticated: true},
		{Method: "DELETE", Path: "/api/registrations/:id", HandlerFunc: r.deleteRegistrationHandler(), Authenticated: true},
		{Method: "GET", Path: "/api/tournaments/:id/registrations", HandlerFunc: r.listTournamentRegistrationsHandler(), Authenticated: true},
	}
}

func (r *RegistrationController) listRegistrationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, role := currentUser(c)
		c.JSON(200, r.registrationService.ListAll(username, role))
	}
}

func (r *RegistrationController) listTournamentRegistrationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, role := currentUser(c)
		registrations, err := r.registrationService.ListForTournament(c.Param("id"), username, role)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, registrations)
	}
}

func (r *RegistrationController) deleteRegistrationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, role := currentUser(c)
		if err := r.registrationService.Delete(username, role, c.Param("id")); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}
