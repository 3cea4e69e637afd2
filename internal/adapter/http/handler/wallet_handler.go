package handler

import (
	"net/http"
	"time"

	"chain-wallet-gateway/internal/adapter/http/dto"
	"chain-wallet-gateway/internal/core/ports"
	"chain-wallet-gateway/pkg/apperror"
	"chain-wallet-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet provisioning endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// CreateBatch handles POST /v1/wallets.
func (h *WalletHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateWalletsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	addresses, err := h.walletSvc.CreateBatch(c.Request.Context(), req.Count)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateWalletsResponse{
		Addresses: addresses,
		Count:     len(addresses),
	})
}

// List handles GET /v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	wallets, err := h.walletSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.WalletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, dto.WalletResponse{
			Address:   w.Address,
			CreatedAt: w.CreatedAt.Format(time.RFC3339),
		})
	}
	response.OK(c, out)
}

// HealthCheck handles GET /health, verifying every registered dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
