package controller

import (
	"fmt"
	"time"

	"torneio/app_error"
	"torneio/repository"
	"torneio/service"

	"github.com/gin-gonic/gin"
)

type TournamentController struct {
	tournamentService    *service.TournamentService
	registrationService  *service.RegistrationService
	consolidationService *service.ConsolidationService
}

func NewTournamentController(stores *repository.Stores) *TournamentController {
	return &TournamentController{
		tournamentService:    service.NewTournamentService(stores),
		registrationService:  service.NewRegistrationService(stores),
		consolidationService: service.NewConsolidationService(stores),
	}
}

func setupTournamentController(stores *repository.Stores) []RouteInfo {
	t := NewTournamentController(stores)
	basePath := "/api/tournaments"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: t.listTournamentsHandler(), Authenticated: true},
		{Method: "POST", Path: "", HandlerFunc: t.createTournamentHandler(), Authenticated: true},
		{Method: "GET", Path: "/:id", HandlerFunc: t.getTournamentHandler(), CacheTTL: time.Minute},
		{Method: "DELETE", Path: "/:id", HandlerFunc: t.deleteTournamentHandler(), Authenticated: true},
		{Method: "POST", Path: "/:id/register", HandlerFunc: t.registerHandler()},
		{Method: "POST", Path: "/:id/calculate-price", HandlerFunc: t.calculatePriceHandler()},
		{Method: "GET", Path: "/:id/unique-players", HandlerFunc: t.uniquePlayersHandler(), Authenticated: true},
		{Method: "PUT", Path: "/:id/players/:playerKey/payment", HandlerFunc: t.setPaymentStatusHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

func (t *TournamentController) listTournamentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, role := currentUser(c)
		c.JSON(200, t.tournamentService.ListForUser(username, role))
	}
}

func (t *TournamentController) getTournamentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament, err := t.tournamentService.GetById(c.Param("id"))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, tournament)
	}
}

func (t *TournamentController) createTournamentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input service.CreateTournamentInput
		if err := c.BindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		username, _ := currentUser(c)
		tournament, err := t.tournamentService.Create(username, input)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, gin.H{
			"success":          true,
			"tournament":       tournament,
			"registrationLink": registrationLink(c, tournament.Id),
		})
	}
}

func registrationLink(c *gin.Context, tournamentId string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/register/%s", scheme, c.Request.Host, tournamentId)
}

func (t *TournamentController) deleteTournamentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, role := currentUser(c)
		tournament, err := t.tournamentService.Delete(username, role, c.Param("id"))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true, "tournament": tournament})
	}
}

func (t *TournamentController) registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input service.RegisterInput
		if err := c.BindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		result, err := t.registrationService.Register(c.Param("id"), input)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, result)
	}
}

func (t *TournamentController) calculatePriceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input service.RegisterInput
		if err := c.BindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		preview, err := t.registrationService.PreviewPrice(c.Param("id"), input)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, preview)
	}
}

func (t *TournamentController) uniquePlayersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, role := currentUser(c)
		result, err := t.consolidationService.UniquePlayers(c.Param("id"), username, role)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, result)
	}
}

type PaymentUpdate struct {
	IsPaid *bool `json:"isPaid" binding:"required"`
}

func (t *TournamentController) setPaymentStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request PaymentUpdate
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		err := t.consolidationService.SetPaymentStatus(c.Param("id"), c.Param("playerKey"), *request.IsPaid)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}
