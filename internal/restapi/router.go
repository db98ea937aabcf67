package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the API handlers into the router.
func RegisterRoutes(router *gin.Engine, treasuryHandler *TreasuryHandler, yieldHandler *YieldHandler) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/treasury", treasuryHandler.GetTreasuryHandler)
		v1.GET("/treasury/strategies", treasuryHandler.GetStrategiesHandler)
		v1.POST("/treasury/refresh", treasuryHandler.RefreshTreasuryHandler)

		v1.GET("/yield/assets", yieldHandler.GetYieldAssetsHandler)
		v1.GET("/yield/protocol", yieldHandler.GetProtocolStatsHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
