package api

import (
	"bunyang/server/config"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func SetupRoutes(router *gin.Engine, cfg *config.Config, logger *logrus.Logger) {
	handler := NewHandler(cfg, logger)

	api := router.Group("/api")
	{
		api.GET("/geocode", handler.Geocode)
		api.GET("/trades", handler.GetTrades)
		api.GET("/districts", handler.SearchDistricts)
		api.POST("/estimate", handler.Estimate)
	}
}
