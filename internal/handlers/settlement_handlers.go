package handlers

import (
	"errors"
	"net/http"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/services"
	"watchtrade_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SettlementHandler exposes the profit split and settlement reports.
type SettlementHandler struct {
	settlementService services.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(ss services.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: ss}
}

func respondSettlementError(c *gin.Context, err error, op string) {
	utils.LogError(err, op+": Error from settlementService")
	switch {
	case errors.Is(err, services.ErrSettlementPartnerNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Partner not found.", err.Error()))
	case errors.Is(err, services.ErrInsufficientPermission):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeInsufficientPermission, "You do not have permission to view this settlement.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute settlement.", "Internal error"))
	}
}

// GetSettlement returns the full per-partner settlement. Directors and
// operators only; investors must use the per-partner endpoint.
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	settlements, err := h.settlementService.GetSettlement(c.Request.Context(), currentActor(c))
	if err != nil {
		respondSettlementError(c, err, "GetSettlement")
		return
	}
	if settlements == nil {
		settlements = []models.PartnerSettlement{}
	}
	c.JSON(http.StatusOK, settlements)
}

// GetPartnerSettlement returns one partner's settlement line.
// Investors may only request the partner their account is linked to.
func (h *SettlementHandler) GetPartnerSettlement(c *gin.Context) {
	settlement, err := h.settlementService.GetPartnerSettlement(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		respondSettlementError(c, err, "GetPartnerSettlement")
		return
	}
	c.JSON(http.StatusOK, settlement)
}

// GetProfitReport returns the per-sale profit breakdown.
func (h *SettlementHandler) GetProfitReport(c *gin.Context) {
	lines, err := h.settlementService.GetProfitReport(c.Request.Context(), currentActor(c))
	if err != nil {
		respondSettlementError(c, err, "GetProfitReport")
		return
	}
	if lines == nil {
		lines = []models.ProfitReportLine{}
	}
	c.JSON(http.StatusOK, lines)
}
