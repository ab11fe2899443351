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

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

func respondInventoryError(c *gin.Context, err error, op string) {
	utils.LogError(err, op+": Error from inventoryService")
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", err.Error()))
	case errors.Is(err, services.ErrReferenceNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Catalog reference not found.", err.Error()))
	case errors.Is(err, services.ErrPartnerNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Partner not found.", err.Error()))
	case errors.Is(err, services.ErrInvalidStateTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInvalidStateTransition, "Operation not allowed in the item's current stage.", err.Error()))
	case errors.Is(err, services.ErrInvalidSplit):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidSplit, "Invalid profit split configuration.", err.Error()))
	case errors.Is(err, services.ErrInsufficientPermission):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeInsufficientPermission, "You do not have permission for this operation.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Inventory operation failed.", "Internal error"))
	}
}

// CreateItem handles taking a new watch into the book, either as an
// opportunity or directly into stock.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req services.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateItem: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	item, err := h.inventoryService.CreateItem(currentActor(c), req)
	if err != nil {
		respondInventoryError(c, err, "CreateItem")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItems handles listing items filtered by stage and status.
func (h *InventoryHandler) GetItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var pStage, pStatus *string
	if s := c.Query("stage"); s != "" {
		pStage = &s
	}
	if s := c.Query("status"); s != "" {
		pStatus = &s
	}

	items, totalCount, err := h.inventoryService.GetItems(pStage, pStatus, page, pageSize)
	if err != nil {
		respondInventoryError(c, err, "GetItems")
		return
	}

	if items == nil {
		items = []models.InventoryItem{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      items,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetItemByID handles fetching a single item with its cost lines.
func (h *InventoryHandler) GetItemByID(c *gin.Context) {
	item, err := h.inventoryService.GetItemByID(c.Param("id"))
	if err != nil {
		respondInventoryError(c, err, "GetItemByID")
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem handles editing an item's descriptive and split fields.
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var req services.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	item, err := h.inventoryService.UpdateItem(currentActor(c), c.Param("id"), req)
	if err != nil {
		respondInventoryError(c, err, "UpdateItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ApproveItem promotes an opportunity into real stock.
func (h *InventoryHandler) ApproveItem(c *gin.Context) {
	item, err := h.inventoryService.Approve(currentActor(c), c.Param("id"))
	if err != nil {
		respondInventoryError(c, err, "ApproveItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

// AddCost appends an additional cost line to an item.
func (h *InventoryHandler) AddCost(c *gin.Context) {
	var req services.AddCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	item, err := h.inventoryService.AddAdditionalCost(currentActor(c), c.Param("id"), req)
	if err != nil {
		respondInventoryError(c, err, "AddCost")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// SetStatus moves an in-stock item between display states.
func (h *InventoryHandler) SetStatus(c *gin.Context) {
	var req services.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	item, err := h.inventoryService.SetStatus(currentActor(c), c.Param("id"), req)
	if err != nil {
		respondInventoryError(c, err, "SetStatus")
		return
	}
	c.JSON(http.StatusOK, item)
}
