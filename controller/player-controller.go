package controller

import (
	"torneio/app_error"
	"torneio/repository"
	"torneio/service"

	"github.com/gin-gonic/gin"
)

type PlayerController struct {
	playerService  *service.PlayerService
	pricingService *service.PricingService
}

func NewPlayerController(stores *repository.Stores) *PlayerController {
	return &PlayerController{
		playerService:  service.NewPlayerService(stores),
		pricingService: service.NewPricingService(stores),
	}
}

func setupPlayerController(stores *repository.Stores) []RouteInfo {
	p := NewPlayerController(stores)
	return []RouteInfo{
		{Method: "GET", Path: "/api/players", HandlerFunc: p.listPlayersHandler()},
		{Method: "GET", Path: "/api/players/:cpf/stats", HandlerFunc: p.playerStatsHandler()},
		{Method: "POST", Path: "/api/validate-cpf", HandlerFunc: p.validateCPFHandler()},
	}
}

func (p *PlayerController) listPlayersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, p.playerService.ListPlayers())
	}
}

func (p *PlayerController) playerStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := p.playerService.GetStats(c.Param("cpf"))
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, stats)
	}
}

type CPFValidationRequest struct {
	CPF string `json:"cpf" binding:"required"`
}

func (p *PlayerController) validateCPFHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request CPFValidationRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		validation, err := p.pricingService.ValidateCPF(request.CPF)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, validation)
	}
}
