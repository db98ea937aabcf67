package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIYieldResponse defines the response structure for the yield assets endpoint.
type APIYieldResponse struct {
	Data struct {
		Overview service.YieldOverview `json:"overview"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// APIProtocolStatsResponse defines the response structure for the protocol stats endpoint.
type APIProtocolStatsResponse struct {
	Data struct {
		Stats entity.ProtocolStats `json:"stats"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// YieldHandler handles HTTP requests for yield series and protocol analytics.
type YieldHandler struct {
	yieldService *service.YieldService
	logger       *zap.Logger
}

// NewYieldHandler creates a new YieldHandler.
func NewYieldHandler(ys *service.YieldService, logger *zap.Logger) *YieldHandler {
	return &YieldHandler{
		yieldService: ys,
		logger:       logger.Named("YieldHandler"),
	}
}

// GetYieldAssetsHandler serves the windowed yield series for every tracked
// asset. The window is selected with ?range=<days> and must be one of the
// configured lengths; omitting it selects the default window.
func (h *YieldHandler) GetYieldAssetsHandler(c *gin.Context) {
	rangeDays := h.yieldService.DefaultRange()
	if raw := c.Query("range"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || !h.yieldService.ValidRange(parsed) {
			c.JSON(http.StatusBadRequest, gin.H{
				"status_message": "Invalid range parameter. Use one of the configured window lengths in days.",
			})
			return
		}
		rangeDays = parsed
	}

	overview := h.yieldService.AssetSeries(c.Request.Context(), rangeDays)

	var response APIYieldResponse
	response.Data.Overview = overview
	response.StatusMessage = "Yield series retrieved successfully."
	c.JSON(http.StatusOK, response)
}

// GetProtocolStatsHandler serves the protocol-wide analytics snapshot.
func (h *YieldHandler) GetProtocolStatsHandler(c *gin.Context) {
	stats, err := h.yieldService.ProtocolStats(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status_message": "Dune API key not configured; protocol stats are unavailable.",
			})
			return
		}
		h.logger.Error("Failed to assemble protocol stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status_message": "Failed to assemble protocol stats.",
		})
		return
	}

	var response APIProtocolStatsResponse
	response.Data.Stats = stats
	response.StatusMessage = "Protocol stats retrieved successfully."
	c.JSON(http.StatusOK, response)
}
