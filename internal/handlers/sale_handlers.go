package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/services"
	"watchtrade_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SaleHandler holds the sale service.
type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

func respondSaleError(c *gin.Context, err error, op string) {
	utils.LogError(err, op+": Error from saleService")
	switch {
	case errors.Is(err, services.ErrSaleNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Sale not found.", err.Error()))
	case errors.Is(err, services.ErrItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Inventory item not found.", err.Error()))
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Client contact not found.", err.Error()))
	case errors.Is(err, services.ErrSaleExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A sale already exists for this item.", err.Error()))
	case errors.Is(err, services.ErrInvalidStateTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInvalidStateTransition, "Operation not allowed in the sale's current state.", err.Error()))
	case errors.Is(err, services.ErrInsufficientPermission):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeInsufficientPermission, "You do not have permission for this operation.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Sale operation failed.", "Internal error"))
	}
}

// CreateSale records the sale of one inventory item and liquidates it.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req services.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateSale: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	sale, err := h.saleService.CreateSale(currentActor(c), req)
	if err != nil {
		respondSaleError(c, err, "CreateSale")
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSales lists sales, optionally filtered by payment status.
func (h *SaleHandler) GetSales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var pStatus *string
	if s := c.Query("status"); s != "" {
		pStatus = &s
	}

	sales, totalCount, err := h.saleService.GetSales(pStatus, page, pageSize)
	if err != nil {
		respondSaleError(c, err, "GetSales")
		return
	}

	if sales == nil {
		sales = []models.Sale{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      sales,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetSaleByID fetches a single sale with its payments.
func (h *SaleHandler) GetSaleByID(c *gin.Context) {
	sale, err := h.saleService.GetSaleByID(c.Param("id"))
	if err != nil {
		respondSaleError(c, err, "GetSaleByID")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// RecordPayment appends a payment to a sale and re-derives its status.
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	var req services.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	sale, err := h.saleService.RecordPayment(currentActor(c), c.Param("id"), req)
	if err != nil {
		respondSaleError(c, err, "RecordPayment")
		return
	}
	c.JSON(http.StatusCreated, sale)
}
