package restapi

import (
	"context"
	"net/http"
	"time"

	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// refreshTimeout bounds one background refresh cycle end to end.
const refreshTimeout = 5 * time.Minute

// APITreasuryResponse defines the response structure for the treasury endpoint.
type APITreasuryResponse struct {
	Data struct {
		Snapshot entity.AggregateSnapshot `json:"snapshot"`
	} `json:"data"`
	ServiceErrors []entity.WalletError `json:"service_errors,omitempty"`
	StatusMessage string               `json:"status_message"`
}

// APIStrategiesResponse defines the response structure for the strategies endpoint.
type APIStrategiesResponse struct {
	Data struct {
		Strategies entity.StrategySet `json:"strategies"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// TreasuryHandler handles HTTP requests for the treasury snapshot.
type TreasuryHandler struct {
	treasuryService *service.TreasuryService
	logger          *zap.Logger
}

// NewTreasuryHandler creates a new TreasuryHandler.
func NewTreasuryHandler(ts *service.TreasuryService, logger *zap.Logger) *TreasuryHandler {
	return &TreasuryHandler{
		treasuryService: ts,
		logger:          logger.Named("TreasuryHandler"),
	}
}

// GetTreasuryHandler serves the last published aggregate snapshot.
func (h *TreasuryHandler) GetTreasuryHandler(c *gin.Context) {
	snapshot, ok := h.treasuryService.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status_message": "No treasury snapshot published yet. Trigger a refresh first.",
		})
		return
	}

	var response APITreasuryResponse
	response.Data.Snapshot = snapshot
	response.ServiceErrors = snapshot.Errors
	if len(snapshot.Errors) > 0 {
		response.StatusMessage = "Snapshot retrieved. Some wallets encountered errors during the last refresh."
	} else {
		response.StatusMessage = "Snapshot retrieved successfully."
	}
	c.JSON(http.StatusOK, response)
}

// GetStrategiesHandler serves the liquidity-bucket classification of the last snapshot.
func (h *TreasuryHandler) GetStrategiesHandler(c *gin.Context) {
	snapshot, ok := h.treasuryService.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status_message": "No treasury snapshot published yet. Trigger a refresh first.",
		})
		return
	}

	var response APIStrategiesResponse
	response.Data.Strategies = snapshot.Strategies
	response.StatusMessage = "Strategies retrieved successfully."
	c.JSON(http.StatusOK, response)
}

// RefreshTreasuryHandler starts a refresh cycle in the background. A cycle
// already in flight is reported as a conflict, not restarted.
func (h *TreasuryHandler) RefreshTreasuryHandler(c *gin.Context) {
	if !h.treasuryService.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status_message": "DeBank access key not configured; refresh is unavailable.",
		})
		return
	}
	if h.treasuryService.Busy() {
		c.JSON(http.StatusConflict, gin.H{
			"status_message": "A treasury refresh is already in progress.",
		})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := h.treasuryService.Refresh(ctx); err != nil {
			h.logger.Error("Background treasury refresh failed", zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status_message": "Treasury refresh started.",
	})
}
