package handler

import (
	"strconv"
	"time"

	"chain-wallet-gateway/internal/adapter/http/dto"
	"chain-wallet-gateway/internal/core/domain"
	"chain-wallet-gateway/internal/core/ports"
	"chain-wallet-gateway/pkg/apperror"
	"chain-wallet-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler handles transaction-related endpoints.
type TransactionHandler struct {
	txSvc           ports.TransactionService
	defaultMinConfs uint64
}

// NewTransactionHandler creates a new TransactionHandler. defaultMinConfs
// is the confirmation depth applied when the caller requires confirmations
// without naming a depth.
func NewTransactionHandler(txSvc ports.TransactionService, defaultMinConfs uint64) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc, defaultMinConfs: defaultMinConfs}
}

// Create handles POST /v1/transaction.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.txSvc.Create(c.Request.Context(), ports.CreateTransactionRequest{
		AddressFrom:     req.AddressFrom,
		AddressTo:       req.AddressTo,
		Asset:           req.Asset,
		ContractAddress: req.ContractAddress,
		Value:           req.Value,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.CreateTransactionResponse{
		Hash:         result.Hash,
		Status:       string(result.Status),
		EffectiveFee: result.EffectiveFee,
		CreatedAt:    result.CreatedAt.Format(time.RFC3339),
	})
}

// Validate handles GET /v1/transaction/:tx_hash.
func (h *TransactionHandler) Validate(c *gin.Context) {
	hash := c.Param("tx_hash")
	if !dto.IsEthHash(hash) {
		response.Error(c, apperror.Validation("tx_hash must be a 0x-prefixed 32-byte hex string"))
		return
	}

	require, err := strconv.ParseBool(c.DefaultQuery("require_confirmations", "false"))
	if err != nil {
		response.Error(c, apperror.Validation("require_confirmations must be a boolean"))
		return
	}

	minConfs := h.defaultMinConfs
	if raw := c.Query("min_confirmations"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("min_confirmations must be a non-negative integer"))
			return
		}
		minConfs = parsed
	}

	result, err := h.txSvc.Validate(c.Request.Context(), ports.ValidateTransactionRequest{
		Hash:                 hash,
		RequireConfirmations: require,
		MinConfirmations:     minConfs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromValidationResult(result))
}

// Status handles GET /v1/transaction/status/:tx_hash.
func (h *TransactionHandler) Status(c *gin.Context) {
	hash := c.Param("tx_hash")
	if !dto.IsEthHash(hash) {
		response.Error(c, apperror.Validation("tx_hash must be a 0x-prefixed 32-byte hex string"))
		return
	}

	result, err := h.txSvc.Status(c.Request.Context(), hash)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromStatusResult(result))
}

// List handles GET /v1/transaction.
func (h *TransactionHandler) List(c *gin.Context) {
	params := ports.TransactionListParams{}

	if raw := c.Query("status"); raw != "" {
		status := domain.TransactionStatus(raw)
		switch status {
		case domain.TransactionStatusPending, domain.TransactionStatusConfirmed, domain.TransactionStatusFailed:
			params.Status = &status
		default:
			response.Error(c, apperror.Validation("status must be one of pending, confirmed, failed"))
			return
		}
	}

	if raw := c.Query("address"); raw != "" {
		if !dto.IsEthAddress(raw) {
			response.Error(c, apperror.Validation("address must be a 0x-prefixed 20-byte hex string"))
			return
		}
		params.Address = &raw
	}

	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.txSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.TransactionListItem, 0, len(items))
	for _, tx := range items {
		out = append(out, dto.FromTransaction(tx))
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	response.OK(c, dto.TransactionListResponse{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}
