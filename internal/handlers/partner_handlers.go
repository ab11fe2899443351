package handlers

import (
	"errors"
	"net/http"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/services"
	"watchtrade_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PartnerHandler holds the partner service.
type PartnerHandler struct {
	partnerService services.PartnerService
}

// NewPartnerHandler creates a new PartnerHandler.
func NewPartnerHandler(ps services.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: ps}
}

func respondPartnerError(c *gin.Context, err error, op string) {
	utils.LogError(err, op+": Error from partnerService")
	switch {
	case errors.Is(err, services.ErrPartnerNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Partner not found.", err.Error()))
	case errors.Is(err, services.ErrPartnerNameExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Partner name already exists.", err.Error()))
	case errors.Is(err, services.ErrHouseEntityExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Another partner is already the house entity.", err.Error()))
	case errors.Is(err, services.ErrParticipationTotal):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Participation percentages must cover all partners and sum to 100.", err.Error()))
	case errors.Is(err, services.ErrInsufficientPermission):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeInsufficientPermission, "You do not have permission for this operation.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Partner operation failed.", "Internal error"))
	}
}

// CreatePartner registers a new capital partner.
func (h *PartnerHandler) CreatePartner(c *gin.Context) {
	var req services.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreatePartner: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	partner, err := h.partnerService.CreatePartner(currentActor(c), req)
	if err != nil {
		respondPartnerError(c, err, "CreatePartner")
		return
	}
	c.JSON(http.StatusCreated, partner)
}

// GetPartners lists all partners with their participation percentages.
func (h *PartnerHandler) GetPartners(c *gin.Context) {
	partners, err := h.partnerService.GetPartners()
	if err != nil {
		respondPartnerError(c, err, "GetPartners")
		return
	}
	if partners == nil {
		partners = []models.Partner{}
	}
	c.JSON(http.StatusOK, partners)
}

// GetPartnerByID fetches a single partner with its movement history.
func (h *PartnerHandler) GetPartnerByID(c *gin.Context) {
	partner, err := h.partnerService.GetPartnerByID(c.Param("id"))
	if err != nil {
		respondPartnerError(c, err, "GetPartnerByID")
		return
	}
	c.JSON(http.StatusOK, partner)
}

// UpdatePartner edits a partner's descriptive fields and house flag.
func (h *PartnerHandler) UpdatePartner(c *gin.Context) {
	var req services.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	partner, err := h.partnerService.UpdatePartner(currentActor(c), c.Param("id"), req)
	if err != nil {
		respondPartnerError(c, err, "UpdatePartner")
		return
	}
	c.JSON(http.StatusOK, partner)
}

// UpdateParticipations atomically rewrites the participation table.
func (h *PartnerHandler) UpdateParticipations(c *gin.Context) {
	var req services.UpdateParticipationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	partners, err := h.partnerService.UpdateParticipations(currentActor(c), req)
	if err != nil {
		respondPartnerError(c, err, "UpdateParticipations")
		return
	}
	c.JSON(http.StatusOK, partners)
}

// AddMovement appends a cash movement to a partner account.
func (h *PartnerHandler) AddMovement(c *gin.Context) {
	var req services.AddMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	movement, err := h.partnerService.AddMovement(currentActor(c), c.Param("id"), req)
	if err != nil {
		respondPartnerError(c, err, "AddMovement")
		return
	}
	c.JSON(http.StatusCreated, movement)
}
