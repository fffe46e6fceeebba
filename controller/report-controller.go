package controller

import (
	"time"

	"torneio/repository"
	"torneio/service"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	pricingService *service.PricingService
}

func NewReportController(stores *repository.Stores) *ReportController {
	return &ReportController{
		pricingService: service.NewPricingService(stores),
	}
}

func setupReportController(stores *repository.Stores) []RouteInfo {
	r := NewReportController(stores)
	return []RouteInfo{
		{Method: "GET", Path: "/api/reports/pricing", HandlerFunc: r.pricingReportHandler(), CacheTTL: 30 * time.Second},
	}
}

func (r *ReportController) pricingReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, r.pricingService.Report())
	}
}
